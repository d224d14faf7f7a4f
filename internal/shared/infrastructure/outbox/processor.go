package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/felixgeelhaar/cadence/internal/shared/domain"
	"github.com/felixgeelhaar/cadence/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/cadence/pkg/observability"
)

// ProcessorConfig holds configuration for the outbox processor.
type ProcessorConfig struct {
	BatchSize        int
	MaxRetries       int
	RetryBackoffBase time.Duration
	RetryBackoffMax  time.Duration

	// Retention is how long published messages are kept before Cleanup purges them.
	Retention time.Duration

	// RelaySchedule and CleanupSchedule are cron specs used by Run.
	RelaySchedule   string
	CleanupSchedule string
}

// DefaultProcessorConfig returns sensible defaults.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		BatchSize:        100,
		MaxRetries:       5,
		RetryBackoffBase: time.Second,
		RetryBackoffMax:  time.Minute,
		Retention:        7 * 24 * time.Hour,
		RelaySchedule:    "@every 5s",
		CleanupSchedule:  "@every 1h",
	}
}

// Processor relays outbox messages to the event bus.
type Processor struct {
	repo      Repository
	publisher eventbus.Publisher
	config    ProcessorConfig
	logger    *slog.Logger
	metrics   observability.Metrics
	now       func() time.Time

	statsMu sync.Mutex
	stats   Stats
}

// NewProcessor creates a new outbox processor.
func NewProcessor(repo Repository, publisher eventbus.Publisher, config ProcessorConfig, logger *slog.Logger, metrics observability.Metrics) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &Processor{
		repo:      repo,
		publisher: publisher,
		config:    config,
		logger:    logger,
		metrics:   metrics,
		now:       time.Now,
	}
}

// Run schedules ProcessOnce and Cleanup on the configured cron specs and
// blocks until ctx is cancelled. Overlapping runs of the same job are skipped.
func (p *Processor) Run(ctx context.Context) error {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(p.logger.Handler(), slog.LevelDebug))
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger)))

	if _, err := c.AddFunc(p.config.RelaySchedule, func() {
		if err := p.ProcessOnce(ctx); err != nil {
			p.logger.Error("outbox relay failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule outbox relay %q: %w", p.config.RelaySchedule, err)
	}

	if _, err := c.AddFunc(p.config.CleanupSchedule, func() {
		if _, err := p.Cleanup(ctx); err != nil {
			p.logger.Error("outbox cleanup failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule outbox cleanup %q: %w", p.config.CleanupSchedule, err)
	}

	c.Start()
	p.setRunning(true)
	p.logger.Info("outbox processor started",
		"relay_schedule", p.config.RelaySchedule,
		"cleanup_schedule", p.config.CleanupSchedule,
		"batch_size", p.config.BatchSize,
	)

	<-ctx.Done()

	stopped := c.Stop()
	<-stopped.Done()
	p.setRunning(false)
	p.logger.Info("outbox processor stopped")
	return nil
}

// ProcessOnce relays a single batch of pending messages.
func (p *Processor) ProcessOnce(ctx context.Context) error {
	start := p.now()
	defer func() {
		p.metrics.Timing(observability.MetricOutboxRelayDuration, time.Since(start))
	}()

	messages, err := p.repo.Pending(ctx, start, p.config.BatchSize)
	if err != nil {
		p.recordError(err)
		return fmt.Errorf("load pending outbox messages: %w", err)
	}
	p.recordBatch(messages)

	for _, msg := range messages {
		if err := p.publisher.Publish(ctx, msg.RoutingKey, msg.Payload); err != nil {
			p.handleFailure(ctx, msg, err)
			continue
		}

		if err := p.repo.MarkPublished(ctx, msg.ID, p.now()); err != nil {
			p.logger.Error("failed to mark message as published",
				"id", msg.ID,
				"event_id", msg.EventID,
				"error", err,
			)
			continue
		}
		p.recordPublished(msg)
	}

	return nil
}

func (p *Processor) handleFailure(ctx context.Context, msg *Message, err error) {
	meta := metadataOf(msg)
	p.logger.Warn("failed to publish message",
		"id", msg.ID,
		"routing_key", msg.RoutingKey,
		"event_id", msg.EventID,
		"retry_count", msg.RetryCount,
		"correlation_id", meta.CorrelationID,
		"causation_id", meta.CausationID,
		"error", err,
	)

	reason := err.Error()
	if p.shouldDeadLetter(msg) {
		p.recordDead(msg, err)
		if markErr := p.repo.MarkDead(ctx, msg.ID, reason, p.now()); markErr != nil {
			p.logger.Error("failed to mark message as dead-lettered", "id", msg.ID, "error", markErr)
		}
		return
	}

	p.recordFailed(msg, err)
	nextRetryAt := p.now().Add(p.retryBackoff(msg.RetryCount + 1))
	if markErr := p.repo.MarkFailed(ctx, msg.ID, reason, nextRetryAt); markErr != nil {
		p.logger.Error("failed to mark message as failed", "id", msg.ID, "error", markErr)
	}
}

// Cleanup purges messages published longer ago than the retention period.
func (p *Processor) Cleanup(ctx context.Context) (int64, error) {
	retention := p.config.Retention
	if retention <= 0 {
		retention = DefaultProcessorConfig().Retention
	}

	deleted, err := p.repo.DeletePublishedBefore(ctx, p.now().Add(-retention))
	if err != nil {
		p.recordError(err)
		return 0, fmt.Errorf("purge published outbox messages: %w", err)
	}

	p.metrics.Counter(observability.MetricOutboxPurged, deleted)
	if deleted > 0 {
		p.logger.Info("purged published outbox messages", "count", deleted, "retention", retention)
	}
	return deleted, nil
}

func (p *Processor) shouldDeadLetter(msg *Message) bool {
	if p.config.MaxRetries <= 0 {
		return true
	}
	return msg.RetryCount+1 >= p.config.MaxRetries
}

// retryBackoff doubles from the base delay for every attempt, capped at the max.
func (p *Processor) retryBackoff(attempt int) time.Duration {
	backoff := p.config.RetryBackoffBase
	if backoff <= 0 {
		backoff = time.Second
	}
	limit := p.config.RetryBackoffMax
	if limit <= 0 {
		limit = time.Minute
	}

	for i := 1; i < attempt; i++ {
		backoff *= 2
		if backoff >= limit {
			return limit
		}
	}
	return min(backoff, limit)
}

func metadataOf(msg *Message) domain.EventMetadata {
	var metadata domain.EventMetadata
	if len(msg.Metadata) > 0 {
		_ = json.Unmarshal(msg.Metadata, &metadata)
	}
	return metadata
}

// Stats is a snapshot of processor activity since start.
type Stats struct {
	IsRunning       bool
	PublishedCount  uint64
	FailedCount     uint64
	DeadCount       uint64
	LagSeconds      float64
	LastError       string
	LastErrorAt     *time.Time
	LastProcessedAt *time.Time
	OldestMessageAt *time.Time
}

// GetStats returns current processor statistics.
func (p *Processor) GetStats() Stats {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	return p.stats
}

func (p *Processor) setRunning(running bool) {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	p.stats.IsRunning = running
}

func (p *Processor) recordPublished(msg *Message) {
	p.metrics.Counter(observability.MetricOutboxPublished, 1, observability.T("routing_key", msg.RoutingKey))

	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	p.stats.PublishedCount++
}

func (p *Processor) recordFailed(msg *Message, err error) {
	p.metrics.Counter(observability.MetricOutboxFailed, 1, observability.T("routing_key", msg.RoutingKey))

	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	p.stats.FailedCount++
	p.setLastError(err)
}

func (p *Processor) recordDead(msg *Message, err error) {
	p.metrics.Counter(observability.MetricOutboxDeadLettered, 1, observability.T("routing_key", msg.RoutingKey))

	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	p.stats.DeadCount++
	p.setLastError(err)
}

func (p *Processor) recordError(err error) {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	p.setLastError(err)
}

// setLastError must be called with statsMu held.
func (p *Processor) setLastError(err error) {
	now := p.now()
	p.stats.LastError = err.Error()
	p.stats.LastErrorAt = &now
}

func (p *Processor) recordBatch(messages []*Message) {
	now := p.now()

	var lag float64
	var oldest *time.Time
	if len(messages) > 0 {
		first := messages[0].CreatedAt
		for _, msg := range messages[1:] {
			if msg.CreatedAt.Before(first) {
				first = msg.CreatedAt
			}
		}
		oldest = &first
		lag = now.Sub(first).Seconds()
	}
	p.metrics.Gauge(observability.MetricOutboxLagSeconds, lag)

	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	p.stats.LastProcessedAt = &now
	p.stats.OldestMessageAt = oldest
	p.stats.LagSeconds = lag
}
