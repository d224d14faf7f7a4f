// Package config loads cadence settings from an optional YAML file, a .env
// file and the process environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/config"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds application configuration.
type Config struct {
	App          AppConfig      `yaml:"app"`
	Database     DatabaseConfig `yaml:"database"`
	SeedExamples bool           `yaml:"seed_examples"`
	Redis        RedisConfig    `yaml:"redis"`
	RabbitMQ     RabbitMQConfig `yaml:"rabbitmq"`
	Outbox       OutboxConfig   `yaml:"outbox"`
	Worker       WorkerConfig   `yaml:"worker"`
	MCP          MCPConfig      `yaml:"mcp"`
}

type AppConfig struct {
	Env       string `yaml:"env"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

type DatabaseConfig struct {
	// Driver is sqlite or postgres. Empty means infer from URL.
	Driver     string `yaml:"driver"`
	URL        string `yaml:"url"`
	SQLitePath string `yaml:"sqlite_path"`
	MaxConns   int    `yaml:"max_conns"`
}

type RedisConfig struct {
	// URL enables the completion history cache when set.
	URL        string        `yaml:"url"`
	HistoryTTL time.Duration `yaml:"history_ttl"`
}

type RabbitMQConfig struct {
	URL string `yaml:"url"`
}

type OutboxConfig struct {
	RelaySchedule   string        `yaml:"relay_schedule"`
	CleanupSchedule string        `yaml:"cleanup_schedule"`
	BatchSize       int           `yaml:"batch_size"`
	MaxRetries      int           `yaml:"max_retries"`
	Retention       time.Duration `yaml:"retention"`
}

type WorkerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

type MCPConfig struct {
	Addr      string `yaml:"addr"`
	AuthToken string `yaml:"auth_token"`
}

// Default returns the configuration used when nothing is set: a local SQLite
// database under the home directory with example habits seeded.
func Default() Config {
	return Config{
		App: AppConfig{
			Env:       "development",
			LogLevel:  "warn",
			LogFormat: "text",
		},
		Database: DatabaseConfig{
			SQLitePath: defaultSQLitePath(),
			MaxConns:   10,
		},
		SeedExamples: true,
		Redis: RedisConfig{
			HistoryTTL: 10 * time.Minute,
		},
		Outbox: OutboxConfig{
			RelaySchedule:   "@every 5s",
			CleanupSchedule: "@every 1h",
			BatchSize:       100,
			MaxRetries:      5,
			Retention:       7 * 24 * time.Hour,
		},
		Worker: WorkerConfig{HTTPAddr: "0.0.0.0:8081"},
		MCP:    MCPConfig{Addr: "127.0.0.1:8082"},
	}
}

// Load builds the configuration. path names an optional YAML file; when
// empty, CADENCE_CONFIG is consulted. Environment variables override values
// from the file, and ${VAR} references inside the file are expanded.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path == "" {
		path = os.Getenv("CADENCE_CONFIG")
	}
	if path != "" {
		provider, err := config.NewYAML(
			config.File(path),
			config.Expand(os.LookupEnv),
		)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := provider.Get(config.Root).Populate(&cfg); err != nil {
			return nil, fmt.Errorf("populate config from %s: %w", path, err)
		}
	}

	cfg.overrideFromEnv()
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) overrideFromEnv() {
	c.App.Env = getEnv("APP_ENV", c.App.Env)
	c.App.LogLevel = getEnv("LOG_LEVEL", c.App.LogLevel)
	c.App.LogFormat = getEnv("LOG_FORMAT", c.App.LogFormat)

	c.Database.Driver = getEnv("DATABASE_DRIVER", c.Database.Driver)
	c.Database.URL = getEnv("DATABASE_URL", c.Database.URL)
	c.Database.SQLitePath = getEnv("SQLITE_PATH", c.Database.SQLitePath)
	c.Database.MaxConns = getIntEnv("DATABASE_MAX_CONNS", c.Database.MaxConns)
	c.SeedExamples = getBoolEnv("SEED_EXAMPLES", c.SeedExamples)

	c.Redis.URL = getEnv("REDIS_URL", c.Redis.URL)
	c.Redis.HistoryTTL = getDurationEnv("HISTORY_CACHE_TTL", c.Redis.HistoryTTL)

	c.RabbitMQ.URL = getEnv("RABBITMQ_URL", c.RabbitMQ.URL)

	c.Outbox.RelaySchedule = getEnv("OUTBOX_RELAY_SCHEDULE", c.Outbox.RelaySchedule)
	c.Outbox.CleanupSchedule = getEnv("OUTBOX_CLEANUP_SCHEDULE", c.Outbox.CleanupSchedule)
	c.Outbox.BatchSize = getIntEnv("OUTBOX_BATCH_SIZE", c.Outbox.BatchSize)
	c.Outbox.MaxRetries = getIntEnv("OUTBOX_MAX_RETRIES", c.Outbox.MaxRetries)
	c.Outbox.Retention = getDurationEnv("OUTBOX_RETENTION", c.Outbox.Retention)

	c.Worker.HTTPAddr = getEnv("WORKER_HTTP_ADDR", c.Worker.HTTPAddr)
	c.MCP.Addr = getEnv("MCP_ADDR", c.MCP.Addr)
	c.MCP.AuthToken = getEnv("MCP_AUTH_TOKEN", c.MCP.AuthToken)
}

// normalize infers the driver from the URL when it was not set explicitly.
func (c *Config) normalize() {
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	if c.Database.Driver != "" {
		return
	}
	url := c.Database.URL
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		c.Database.Driver = DriverPostgres
		return
	}
	c.Database.Driver = DriverSQLite
}

// Validate reports configuration that cannot work.
func (c *Config) Validate() error {
	var errs []error
	switch c.Database.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if c.Database.URL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported database driver %q", c.Database.Driver))
	}
	if c.Outbox.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("outbox batch size must be positive, got %d", c.Outbox.BatchSize))
	}
	if c.Outbox.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("outbox max retries must not be negative, got %d", c.Outbox.MaxRetries))
	}
	return errors.Join(errs...)
}

// IsSQLite reports whether the local SQLite backend is selected.
func (c *Config) IsSQLite() bool {
	return c.Database.Driver == DriverSQLite
}

// IsPostgres reports whether PostgreSQL is selected.
func (c *Config) IsPostgres() bool {
	return c.Database.Driver == DriverPostgres
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

func defaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".cadence", "cadence.db")
	}
	return filepath.Join(home, ".cadence", "cadence.db")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
