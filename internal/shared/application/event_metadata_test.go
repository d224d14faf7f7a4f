package application

import (
	"context"
	"testing"
	"time"

	"github.com/felixgeelhaar/cadence/internal/shared/domain"
	"github.com/felixgeelhaar/cadence/pkg/observability"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewEventMetadata(t *testing.T) {
	t.Run("uses correlation ID from context", func(t *testing.T) {
		correlationID := uuid.New()
		ctx := observability.WithCorrelationID(context.Background(), correlationID.String())

		metadata := NewEventMetadata(ctx)

		assert.Equal(t, correlationID, metadata.CorrelationID)
		assert.NotEqual(t, uuid.Nil, metadata.CausationID)
	})

	t.Run("generates correlation ID when context has none", func(t *testing.T) {
		metadata1 := NewEventMetadata(context.Background())
		metadata2 := NewEventMetadata(context.Background())

		assert.NotEqual(t, uuid.Nil, metadata1.CorrelationID)
		assert.NotEqual(t, metadata1.CorrelationID, metadata2.CorrelationID)
	})

	t.Run("ignores malformed correlation ID", func(t *testing.T) {
		ctx := observability.WithCorrelationID(context.Background(), "not-a-uuid")

		metadata := NewEventMetadata(ctx)

		assert.NotEqual(t, uuid.Nil, metadata.CorrelationID)
	})
}

type testEvent struct {
	domain.BaseEvent
}

type nonSetterEvent struct {
	eventID uuid.UUID
}

func (e nonSetterEvent) EventID() uuid.UUID             { return e.eventID }
func (e nonSetterEvent) AggregateID() uuid.UUID         { return uuid.Nil }
func (e nonSetterEvent) AggregateType() string          { return "test" }
func (e nonSetterEvent) RoutingKey() string             { return "test.event" }
func (e nonSetterEvent) OccurredAt() time.Time          { return time.Time{} }
func (e nonSetterEvent) Metadata() domain.EventMetadata { return domain.EventMetadata{} }

func TestApplyEventMetadata(t *testing.T) {
	first := &testEvent{BaseEvent: domain.NewBaseEvent(uuid.New(), "Habit", "habits.habit.created")}
	second := &testEvent{BaseEvent: domain.NewBaseEvent(uuid.New(), "Habit", "habits.habit.completed")}
	other := nonSetterEvent{eventID: uuid.New()}

	metadata := NewEventMetadata(context.Background())

	assert.NotPanics(t, func() {
		ApplyEventMetadata([]domain.DomainEvent{first, other, second}, metadata)
	})

	assert.Equal(t, metadata, first.Metadata())
	assert.Equal(t, metadata, second.Metadata())
	assert.Equal(t, domain.EventMetadata{}, other.Metadata())
}
