package domain

import (
	"time"

	sharedDomain "github.com/felixgeelhaar/cadence/internal/shared/domain"
	"github.com/google/uuid"
)

const aggregateType = "Habit"

// HabitCreated is emitted when a habit is added.
type HabitCreated struct {
	sharedDomain.BaseEvent
	HabitID     uuid.UUID `json:"habit_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Periodicity string    `json:"periodicity"`
}

// NewHabitCreated creates a HabitCreated event.
func NewHabitCreated(h *Habit) *HabitCreated {
	return &HabitCreated{
		BaseEvent:   sharedDomain.NewBaseEvent(h.ID(), aggregateType, "habits.habit.created"),
		HabitID:     h.ID(),
		Name:        h.Name(),
		Description: h.Description(),
		Periodicity: string(h.Periodicity()),
	}
}

// HabitCompleted is emitted when a completion is recorded.
type HabitCompleted struct {
	sharedDomain.BaseEvent
	HabitID      uuid.UUID `json:"habit_id"`
	Name         string    `json:"name"`
	CompletionID uuid.UUID `json:"completion_id"`
	CompletedAt  time.Time `json:"completed_at"`
	CompletedOn  string    `json:"completed_on"`
}

// NewHabitCompleted creates a HabitCompleted event.
func NewHabitCompleted(h *Habit, c *Completion) *HabitCompleted {
	return &HabitCompleted{
		BaseEvent:    sharedDomain.NewBaseEvent(h.ID(), aggregateType, "habits.habit.completed"),
		HabitID:      h.ID(),
		Name:         h.Name(),
		CompletionID: c.ID(),
		CompletedAt:  c.CompletedAt(),
		CompletedOn:  c.Date().Format(time.DateOnly),
	}
}

// HabitDeleted is emitted when a habit and its completions are removed.
type HabitDeleted struct {
	sharedDomain.BaseEvent
	HabitID uuid.UUID `json:"habit_id"`
	Name    string    `json:"name"`
}

// NewHabitDeleted creates a HabitDeleted event.
func NewHabitDeleted(h *Habit) *HabitDeleted {
	return &HabitDeleted{
		BaseEvent: sharedDomain.NewBaseEvent(h.ID(), aggregateType, "habits.habit.deleted"),
		HabitID:   h.ID(),
		Name:      h.Name(),
	}
}
