package outbox_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/felixgeelhaar/cadence/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/cadence/pkg/observability"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryRepository is an in-memory outbox.Repository.
type memoryRepository struct {
	mu           sync.Mutex
	messages     []*outbox.Message
	publishedIDs []int64
	failedIDs    []int64
	deadIDs      []int64
	pendingErr   error
}

func (r *memoryRepository) Save(_ context.Context, msgs ...*outbox.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, msg := range msgs {
		msg.ID = int64(len(r.messages) + 1)
		r.messages = append(r.messages, msg)
	}
	return nil
}

func (r *memoryRepository) Pending(_ context.Context, now time.Time, limit int) ([]*outbox.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pendingErr != nil {
		return nil, r.pendingErr
	}

	var result []*outbox.Message
	for _, msg := range r.messages {
		if msg.IsPublished() || msg.IsDead() {
			continue
		}
		if msg.NextRetryAt != nil && msg.NextRetryAt.After(now) {
			continue
		}
		result = append(result, msg)
		if len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (r *memoryRepository) find(id int64) *outbox.Message {
	for _, msg := range r.messages {
		if msg.ID == id {
			return msg
		}
	}
	return nil
}

func (r *memoryRepository) MarkPublished(_ context.Context, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.publishedIDs = append(r.publishedIDs, id)
	if msg := r.find(id); msg != nil {
		msg.PublishedAt = &at
	}
	return nil
}

func (r *memoryRepository) MarkFailed(_ context.Context, id int64, reason string, nextRetryAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failedIDs = append(r.failedIDs, id)
	if msg := r.find(id); msg != nil {
		msg.RetryCount++
		msg.LastError = &reason
		msg.NextRetryAt = &nextRetryAt
	}
	return nil
}

func (r *memoryRepository) MarkDead(_ context.Context, id int64, reason string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deadIDs = append(r.deadIDs, id)
	if msg := r.find(id); msg != nil {
		msg.DeadLetteredAt = &at
		msg.DeadLetterReason = &reason
	}
	return nil
}

func (r *memoryRepository) DeletePublishedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.messages[:0]
	var deleted int64
	for _, msg := range r.messages {
		if msg.PublishedAt != nil && msg.PublishedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, msg)
	}
	r.messages = kept
	return deleted, nil
}

// recordingPublisher captures published messages and fails for chosen keys.
type recordingPublisher struct {
	mu          sync.Mutex
	published   []string
	failForKeys map[string]bool
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{failForKeys: make(map[string]bool)}
}

func (p *recordingPublisher) Publish(_ context.Context, routingKey string, _ []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failForKeys[routingKey] {
		return errors.New("broker unavailable")
	}
	p.published = append(p.published, routingKey)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) Published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.published...)
}

func testMessage(routingKey string) *outbox.Message {
	payload, _ := json.Marshal(map[string]string{"name": "Read Book"})
	return &outbox.Message{
		EventID:       uuid.New(),
		AggregateType: "Habit",
		AggregateID:   uuid.New(),
		RoutingKey:    routingKey,
		Payload:       payload,
		Metadata:      json.RawMessage(`{}`),
		CreatedAt:     time.Now().Add(-time.Second),
	}
}

func TestProcessor_ProcessOnce(t *testing.T) {
	ctx := context.Background()
	repo := &memoryRepository{}
	publisher := newRecordingPublisher()
	metrics := observability.NewInMemoryMetrics()
	processor := outbox.NewProcessor(repo, publisher, outbox.DefaultProcessorConfig(), nil, metrics)

	require.NoError(t, repo.Save(ctx, testMessage("habits.habit.created"), testMessage("habits.habit.completed")))

	require.NoError(t, processor.ProcessOnce(ctx))

	assert.Equal(t, []string{"habits.habit.created", "habits.habit.completed"}, publisher.Published())
	assert.Len(t, repo.publishedIDs, 2)

	stats := processor.GetStats()
	assert.Equal(t, uint64(2), stats.PublishedCount)
	assert.NotNil(t, stats.LastProcessedAt)
	assert.NotNil(t, stats.OldestMessageAt)
	assert.Greater(t, stats.LagSeconds, 0.0)

	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricOutboxPublished, observability.T("routing_key", "habits.habit.created")))

	t.Run("published messages are not relayed twice", func(t *testing.T) {
		require.NoError(t, processor.ProcessOnce(ctx))
		assert.Len(t, publisher.Published(), 2)
	})
}

func TestProcessor_ProcessOnce_PublishFailure(t *testing.T) {
	ctx := context.Background()
	repo := &memoryRepository{}
	publisher := newRecordingPublisher()
	publisher.failForKeys["habits.habit.deleted"] = true
	processor := outbox.NewProcessor(repo, publisher, outbox.DefaultProcessorConfig(), nil, nil)

	failing := testMessage("habits.habit.deleted")
	require.NoError(t, repo.Save(ctx, testMessage("habits.habit.created"), failing))

	require.NoError(t, processor.ProcessOnce(ctx))

	assert.Equal(t, []string{"habits.habit.created"}, publisher.Published())
	assert.Equal(t, []int64{failing.ID}, repo.failedIDs)
	assert.Equal(t, 1, failing.RetryCount)
	require.NotNil(t, failing.LastError)
	assert.Equal(t, "broker unavailable", *failing.LastError)
	require.NotNil(t, failing.NextRetryAt)
	assert.True(t, failing.NextRetryAt.After(time.Now()))

	stats := processor.GetStats()
	assert.Equal(t, uint64(1), stats.FailedCount)
	assert.Equal(t, "broker unavailable", stats.LastError)

	t.Run("backed off messages wait for their retry time", func(t *testing.T) {
		require.NoError(t, processor.ProcessOnce(ctx))
		assert.Equal(t, []int64{failing.ID}, repo.failedIDs)
	})
}

func TestProcessor_ProcessOnce_DeadLettersAfterMaxRetries(t *testing.T) {
	ctx := context.Background()
	repo := &memoryRepository{}
	publisher := newRecordingPublisher()
	publisher.failForKeys["habits.habit.completed"] = true

	config := outbox.DefaultProcessorConfig()
	config.MaxRetries = 2
	processor := outbox.NewProcessor(repo, publisher, config, nil, nil)

	msg := testMessage("habits.habit.completed")
	msg.RetryCount = 1
	require.NoError(t, repo.Save(ctx, msg))

	require.NoError(t, processor.ProcessOnce(ctx))

	assert.Empty(t, repo.failedIDs)
	assert.Equal(t, []int64{msg.ID}, repo.deadIDs)
	assert.True(t, msg.IsDead())
	assert.Equal(t, uint64(1), processor.GetStats().DeadCount)
}

func TestProcessor_ProcessOnce_RepositoryError(t *testing.T) {
	repo := &memoryRepository{pendingErr: errors.New("database is locked")}
	processor := outbox.NewProcessor(repo, newRecordingPublisher(), outbox.DefaultProcessorConfig(), nil, nil)

	err := processor.ProcessOnce(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is locked")
	assert.Equal(t, "database is locked", processor.GetStats().LastError)
}

func TestProcessor_Cleanup(t *testing.T) {
	ctx := context.Background()
	repo := &memoryRepository{}
	metrics := observability.NewInMemoryMetrics()

	config := outbox.DefaultProcessorConfig()
	config.Retention = 24 * time.Hour
	processor := outbox.NewProcessor(repo, newRecordingPublisher(), config, nil, metrics)

	old := testMessage("habits.habit.created")
	recent := testMessage("habits.habit.created")
	pending := testMessage("habits.habit.created")
	require.NoError(t, repo.Save(ctx, old, recent, pending))

	require.NoError(t, repo.MarkPublished(ctx, old.ID, time.Now().Add(-48*time.Hour)))
	require.NoError(t, repo.MarkPublished(ctx, recent.ID, time.Now().Add(-time.Hour)))

	deleted, err := processor.Cleanup(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	assert.Len(t, repo.messages, 2)
	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricOutboxPurged))
}

func TestProcessor_Run(t *testing.T) {
	t.Run("rejects invalid schedules", func(t *testing.T) {
		config := outbox.DefaultProcessorConfig()
		config.RelaySchedule = "every so often"
		processor := outbox.NewProcessor(&memoryRepository{}, newRecordingPublisher(), config, nil, nil)

		err := processor.Run(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "every so often")
	})

	t.Run("relays on schedule until cancelled", func(t *testing.T) {
		repo := &memoryRepository{}
		publisher := newRecordingPublisher()
		require.NoError(t, repo.Save(context.Background(), testMessage("habits.habit.created")))

		config := outbox.DefaultProcessorConfig()
		config.RelaySchedule = "@every 1s"
		processor := outbox.NewProcessor(repo, publisher, config, nil, nil)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- processor.Run(ctx) }()

		assert.Eventually(t, func() bool {
			return len(publisher.Published()) == 1
		}, 5*time.Second, 50*time.Millisecond)
		assert.True(t, processor.GetStats().IsRunning)

		cancel()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("processor did not stop")
		}
		assert.False(t, processor.GetStats().IsRunning)
	})
}
