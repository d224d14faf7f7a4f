package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/felixgeelhaar/cadence/adapter/cli"
	"github.com/felixgeelhaar/cadence/internal/app"
	"github.com/felixgeelhaar/cadence/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/cadence/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/cadence/pkg/config"
	"github.com/felixgeelhaar/cadence/pkg/observability"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		cancel()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}
	// The worker only relays; seeding belongs to the CLI.
	cfg.SeedExamples = false

	logger, err := cli.NewLogger(cfg, os.Stdout)
	if err != nil {
		return err
	}
	logger = logger.With("component", "worker")
	logger.Info("starting cadence worker", "driver", cfg.Database.Driver)

	metrics := observability.NewPrometheusMetrics()
	container, err := app.NewContainer(ctx, cfg, logger, app.WithMetrics(metrics))
	if err != nil {
		return err
	}
	defer container.Close()

	publisher, err := newPublisher(cfg, logger, metrics)
	if err != nil {
		return err
	}
	defer publisher.Close()

	processor := outbox.NewProcessor(container.OutboxRepo, publisher, processorConfig(cfg), logger, metrics)

	if cfg.Worker.HTTPAddr != "" {
		srv := &http.Server{
			Addr:              cfg.Worker.HTTPAddr,
			Handler:           newMux(container.Health, metrics.Handler(), processor.GetStats, logger),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("health server starting", "addr", cfg.Worker.HTTPAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("health server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("health server shutdown error", "error", err)
			}
		}()
	}

	if err := processor.Run(ctx); err != nil {
		return err
	}
	logger.Info("worker stopped", "published", processor.GetStats().PublishedCount)
	return nil
}

// newPublisher connects to RabbitMQ behind a circuit breaker, or logs events
// when no broker is configured. Production refuses to run without a broker.
func newPublisher(cfg *config.Config, logger *slog.Logger, metrics observability.Metrics) (eventbus.Publisher, error) {
	if cfg.RabbitMQ.URL == "" {
		if cfg.IsProduction() {
			return nil, errors.New("RABBITMQ_URL is required in production")
		}
		logger.Warn("RABBITMQ_URL not set, using noop publisher")
		return eventbus.NewNoopPublisher(logger), nil
	}

	rabbit, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQ.URL, logger)
	if err != nil {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("connect to RabbitMQ: %w", err)
		}
		logger.Warn("RabbitMQ not available, using noop publisher", "error", err)
		return eventbus.NewNoopPublisher(logger), nil
	}
	return eventbus.NewBreakerPublisher(rabbit, eventbus.DefaultBreakerConfig(), logger, metrics), nil
}

func processorConfig(cfg *config.Config) outbox.ProcessorConfig {
	pc := outbox.DefaultProcessorConfig()
	if cfg.Outbox.RelaySchedule != "" {
		pc.RelaySchedule = cfg.Outbox.RelaySchedule
	}
	if cfg.Outbox.CleanupSchedule != "" {
		pc.CleanupSchedule = cfg.Outbox.CleanupSchedule
	}
	if cfg.Outbox.BatchSize > 0 {
		pc.BatchSize = cfg.Outbox.BatchSize
	}
	if cfg.Outbox.MaxRetries > 0 {
		pc.MaxRetries = cfg.Outbox.MaxRetries
	}
	if cfg.Outbox.Retention > 0 {
		pc.Retention = cfg.Outbox.Retention
	}
	return pc
}

func newMux(health *observability.HealthRegistry, metrics http.Handler, stats func() outbox.Stats, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/healthz", health.Handler())
	mux.Handle("/metrics", metrics)
	mux.HandleFunc("/outbox", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(stats()); err != nil {
			logger.WarnContext(r.Context(), "failed to write outbox stats", "error", err)
		}
	})
	return mux
}
