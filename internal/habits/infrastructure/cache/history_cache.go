package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/cadence/internal/habits/domain"
	sharedApplication "github.com/felixgeelhaar/cadence/internal/shared/application"
	"github.com/felixgeelhaar/cadence/pkg/observability"
	"github.com/google/uuid"
)

const keyPrefix = "cadence:history:"

// HistoryCache decorates a domain.Repository with a read-through cache of
// completion dates. Writes that change a history invalidate its entry. Store
// failures are logged and fall back to the repository.
type HistoryCache struct {
	domain.Repository
	store   Store
	ttl     time.Duration
	logger  *slog.Logger
	metrics observability.Metrics
}

// NewHistoryCache wraps repo.
func NewHistoryCache(repo domain.Repository, store Store, ttl time.Duration, logger *slog.Logger, metrics observability.Metrics) *HistoryCache {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &HistoryCache{
		Repository: repo,
		store:      store,
		ttl:        ttl,
		logger:     logger,
		metrics:    metrics,
	}
}

func historyKey(habitID uuid.UUID) string {
	return keyPrefix + habitID.String()
}

// CompletionDates serves from the store when possible.
func (c *HistoryCache) CompletionDates(ctx context.Context, habitID uuid.UUID) ([]time.Time, error) {
	key := historyKey(habitID)

	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.WarnContext(ctx, "history cache read failed", "habit_id", habitID, "error", err)
	}
	if ok {
		if dates, err := decodeDates(raw); err == nil {
			c.metrics.Counter(observability.MetricHistoryCacheHits, 1)
			return dates, nil
		}
		c.logger.WarnContext(ctx, "discarding corrupt history cache entry", "habit_id", habitID)
	}
	c.metrics.Counter(observability.MetricHistoryCacheMisses, 1)

	dates, err := c.Repository.CompletionDates(ctx, habitID)
	if err != nil {
		return nil, err
	}

	if raw, err := encodeDates(dates); err == nil {
		if err := c.store.Set(ctx, key, raw, c.ttl); err != nil {
			c.logger.WarnContext(ctx, "history cache write failed", "habit_id", habitID, "error", err)
		}
	}
	return dates, nil
}

// RecordCompletion stores the completion and drops the cached history once
// the surrounding unit of work commits.
func (c *HistoryCache) RecordCompletion(ctx context.Context, completion *domain.Completion) error {
	if err := c.Repository.RecordCompletion(ctx, completion); err != nil {
		return err
	}
	c.invalidateAfterCommit(ctx, completion.HabitID())
	return nil
}

// Delete removes the habit and drops the cached history once the surrounding
// unit of work commits.
func (c *HistoryCache) Delete(ctx context.Context, id uuid.UUID) error {
	if err := c.Repository.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidateAfterCommit(ctx, id)
	return nil
}

// invalidateAfterCommit defers the delete so a read racing the transaction
// cannot cache the pre-commit history after it.
func (c *HistoryCache) invalidateAfterCommit(ctx context.Context, habitID uuid.UUID) {
	sharedApplication.AfterCommit(ctx, func(ctx context.Context) {
		if err := c.store.Del(ctx, historyKey(habitID)); err != nil {
			c.logger.WarnContext(ctx, "history cache invalidation failed", "habit_id", habitID, "error", err)
		}
	})
}

func encodeDates(dates []time.Time) ([]byte, error) {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.Format(time.DateOnly)
	}
	return json.Marshal(out)
}

func decodeDates(raw []byte) ([]time.Time, error) {
	var in []string
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, err
	}
	dates := make([]time.Time, len(in))
	for i, s := range in {
		d, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return nil, err
		}
		dates[i] = d
	}
	return dates, nil
}
