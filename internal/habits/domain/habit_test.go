package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHabit(t *testing.T) {
	now := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)

	t.Run("creates habit and records created event", func(t *testing.T) {
		habit, err := NewHabit("  Read Book ", " Read at least 10 pages every night. ", PeriodicityDaily, now)
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, habit.ID())
		assert.Equal(t, "Read Book", habit.Name())
		assert.Equal(t, "Read at least 10 pages every night.", habit.Description())
		assert.Equal(t, PeriodicityDaily, habit.Periodicity())
		assert.Equal(t, now, habit.CreatedAt())

		events := habit.DomainEvents()
		require.Len(t, events, 1)
		created, ok := events[0].(*HabitCreated)
		require.True(t, ok)
		assert.Equal(t, "habits.habit.created", created.RoutingKey())
		assert.Equal(t, "daily", created.Periodicity)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewHabit("   ", "", PeriodicityWeekly, now)
		assert.ErrorIs(t, err, ErrHabitEmptyName)
	})

	t.Run("rejects unknown periodicity", func(t *testing.T) {
		_, err := NewHabit("Stretch", "", Periodicity("monthly"), now)
		assert.ErrorIs(t, err, ErrInvalidPeriodicity)
	})

	t.Run("allows empty description", func(t *testing.T) {
		habit, err := NewHabit("Stretch", "", PeriodicityDaily, now)
		require.NoError(t, err)
		assert.Equal(t, "Stretch: ", habit.Summary())
	})
}

func TestHabit_Summary(t *testing.T) {
	habit := RehydrateHabit(uuid.New(), "Exercise", "30 minutes of physical exercise.", PeriodicityDaily, time.Now())

	assert.Equal(t, "Exercise: 30 minutes of physical exercise.", habit.Summary())
	assert.Empty(t, habit.DomainEvents())
}

func TestHabit_Complete(t *testing.T) {
	habit := RehydrateHabit(uuid.New(), "Meditate", "", PeriodicityDaily, time.Now())
	at := time.Date(2026, 10, 17, 23, 45, 0, 0, time.FixedZone("CEST", 2*60*60))

	completion := habit.Complete(at)

	assert.NotEqual(t, uuid.Nil, completion.ID())
	assert.Equal(t, habit.ID(), completion.HabitID())
	assert.Equal(t, at, completion.CompletedAt())
	assert.Equal(t, time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC), completion.Date())

	events := habit.DomainEvents()
	require.Len(t, events, 1)
	completed, ok := events[0].(*HabitCompleted)
	require.True(t, ok)
	assert.Equal(t, completion.ID(), completed.CompletionID)
	assert.Equal(t, "2026-10-17", completed.CompletedOn)
}

func TestHabit_MarkDeleted(t *testing.T) {
	habit := RehydrateHabit(uuid.New(), "Clean House", "", PeriodicityWeekly, time.Now())

	habit.MarkDeleted()

	events := habit.DomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "habits.habit.deleted", events[0].RoutingKey())
}
