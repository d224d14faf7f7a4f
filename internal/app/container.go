package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	habitCommands "github.com/felixgeelhaar/cadence/internal/habits/application/commands"
	habitQueries "github.com/felixgeelhaar/cadence/internal/habits/application/queries"
	habitsDomain "github.com/felixgeelhaar/cadence/internal/habits/domain"
	"github.com/felixgeelhaar/cadence/internal/habits/infrastructure/cache"
	sharedApplication "github.com/felixgeelhaar/cadence/internal/shared/application"
	"github.com/felixgeelhaar/cadence/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/cadence/internal/shared/infrastructure/database/postgres" // Register PostgreSQL driver
	_ "github.com/felixgeelhaar/cadence/internal/shared/infrastructure/database/sqlite"   // Register SQLite driver
	"github.com/felixgeelhaar/cadence/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/cadence/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/cadence/pkg/config"
	"github.com/felixgeelhaar/cadence/pkg/observability"
	"github.com/redis/go-redis/v9"
)

// initialMigration marks a database created by this run.
const initialMigration = "000001_init"

// Container holds all application dependencies.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics observability.Metrics
	Health  *observability.HealthRegistry

	DBConn      database.Connection
	RedisClient *redis.Client

	HabitRepo  habitsDomain.Repository
	OutboxRepo outbox.Repository
	UnitOfWork sharedApplication.UnitOfWork

	// Habit Command Handlers
	AddHabitHandler      *habitCommands.AddHabitHandler
	DeleteHabitHandler   *habitCommands.DeleteHabitHandler
	CompleteHabitHandler *habitCommands.CompleteHabitHandler
	SeedExamplesHandler  *habitCommands.SeedExamplesHandler

	// Habit Query Handlers
	ListHabitsHandler     *habitQueries.ListHabitsHandler
	GetHabitHandler       *habitQueries.GetHabitHandler
	LongestStreaksHandler *habitQueries.LongestStreaksHandler
	BrokenHabitsHandler   *habitQueries.BrokenHabitsHandler

	// Seeded reports the example data created for a fresh database, if any.
	Seeded *habitCommands.SeedExamplesResult
}

// Option customises container construction.
type Option func(*Container)

// WithMetrics replaces the default no-op metrics sink.
func WithMetrics(metrics observability.Metrics) Option {
	return func(c *Container) { c.Metrics = metrics }
}

// NewContainer connects to the configured database, applies migrations and
// wires every handler. A fresh database is seeded with example habits when
// cfg.SeedExamples is set.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*Container, error) {
	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NoopMetrics{},
		Health:  observability.NewHealthRegistry(),
	}
	for _, opt := range opts {
		opt(c)
	}

	conn, err := database.NewConnection(ctx, database.Config{
		Driver:     database.Driver(cfg.Database.Driver),
		URL:        cfg.Database.URL,
		SQLitePath: cfg.Database.SQLitePath,
		MaxConns:   cfg.Database.MaxConns,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DBConn = conn
	c.Health.Register("database", observability.DatabaseHealthChecker(conn.Ping))
	logger.Debug("connected to database", "driver", conn.Driver())

	applied, err := migrations.Run(ctx, conn)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	if len(applied) > 0 {
		logger.Info("applied migrations", "versions", applied)
	}

	factory := NewRepositoryFactory(conn)
	if c.HabitRepo, err = factory.HabitRepository(); err != nil {
		c.Close()
		return nil, err
	}
	if c.OutboxRepo, err = factory.OutboxRepository(); err != nil {
		c.Close()
		return nil, err
	}
	c.UnitOfWork = database.NewUnitOfWork(conn)

	c.connectRedis(ctx)
	if c.RedisClient != nil {
		store := cache.NewRedisStore(c.RedisClient)
		c.HabitRepo = cache.NewHistoryCache(c.HabitRepo, store, cfg.Redis.HistoryTTL, logger, c.Metrics)
	}

	c.AddHabitHandler = habitCommands.NewAddHabitHandler(c.HabitRepo, c.OutboxRepo, c.UnitOfWork)
	c.DeleteHabitHandler = habitCommands.NewDeleteHabitHandler(c.HabitRepo, c.OutboxRepo, c.UnitOfWork)
	c.CompleteHabitHandler = habitCommands.NewCompleteHabitHandler(c.HabitRepo, c.OutboxRepo, c.UnitOfWork)
	c.SeedExamplesHandler = habitCommands.NewSeedExamplesHandler(c.HabitRepo, c.OutboxRepo, c.UnitOfWork)

	c.ListHabitsHandler = habitQueries.NewListHabitsHandler(c.HabitRepo)
	c.GetHabitHandler = habitQueries.NewGetHabitHandler(c.HabitRepo)
	c.LongestStreaksHandler = habitQueries.NewLongestStreaksHandler(c.HabitRepo)
	c.BrokenHabitsHandler = habitQueries.NewBrokenHabitsHandler(c.HabitRepo)

	if cfg.SeedExamples && slices.Contains(applied, initialMigration) {
		result, err := c.SeedExamplesHandler.Handle(ctx, habitCommands.SeedExamplesCommand{
			Pattern: habitCommands.SeedPatternRandom,
		})
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to seed example habits: %w", err)
		}
		c.Seeded = result
		logger.Info("seeded example habits", "habits", result.Habits, "completions", result.Completions)
	}

	return c, nil
}

// connectRedis enables the history cache when Redis is configured and
// reachable. Failures only cost the cache.
func (c *Container) connectRedis(ctx context.Context) {
	if c.Config.Redis.URL == "" {
		return
	}

	opt, err := redis.ParseURL(c.Config.Redis.URL)
	if err != nil {
		c.Logger.Warn("invalid Redis URL, history cache disabled", "error", err)
		return
	}

	client := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		c.Logger.Warn("Redis not available, history cache disabled", "error", err)
		return
	}

	c.RedisClient = client
	c.Health.Register("redis", observability.RedisHealthChecker(func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}))
	c.Logger.Debug("connected to Redis")
}

// Close releases every connection the container opened.
func (c *Container) Close() error {
	var errs []error
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
		c.RedisClient = nil
	}
	if c.DBConn != nil {
		if err := c.DBConn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
		c.DBConn = nil
	}
	return errors.Join(errs...)
}
