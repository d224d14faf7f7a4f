package domain

import (
	"errors"
	"strings"
	"time"

	sharedDomain "github.com/felixgeelhaar/cadence/internal/shared/domain"
	"github.com/google/uuid"
)

var (
	ErrHabitEmptyName     = errors.New("habit name cannot be empty")
	ErrInvalidPeriodicity = errors.New("periodicity must be daily or weekly")
	ErrHabitExists        = errors.New("habit already exists")
	ErrHabitNotFound      = errors.New("habit not found")
)

// Habit is a recurring activity tracked by name.
type Habit struct {
	sharedDomain.BaseAggregateRoot
	name        string
	description string
	periodicity Periodicity
}

// NewHabit creates a habit and records a HabitCreated event.
func NewHabit(name, description string, periodicity Periodicity, now time.Time) (*Habit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrHabitEmptyName
	}
	if !periodicity.IsValid() {
		return nil, ErrInvalidPeriodicity
	}

	habit := &Habit{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(now),
		name:              name,
		description:       strings.TrimSpace(description),
		periodicity:       periodicity,
	}
	habit.AddDomainEvent(NewHabitCreated(habit))

	return habit, nil
}

// RehydrateHabit recreates a habit from persisted state without generating events.
func RehydrateHabit(id uuid.UUID, name, description string, periodicity Periodicity, createdAt time.Time) *Habit {
	return &Habit{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(
			sharedDomain.RehydrateBaseEntity(id, createdAt),
		),
		name:        name,
		description: description,
		periodicity: periodicity,
	}
}

func (h *Habit) Name() string             { return h.name }
func (h *Habit) Description() string      { return h.description }
func (h *Habit) Periodicity() Periodicity { return h.periodicity }

// Summary renders the habit as "name: description".
func (h *Habit) Summary() string {
	return h.name + ": " + h.description
}

// Complete records a completion at the given instant.
func (h *Habit) Complete(at time.Time) *Completion {
	completion := &Completion{
		id:          uuid.New(),
		habitID:     h.ID(),
		completedAt: at,
	}
	h.AddDomainEvent(NewHabitCompleted(h, completion))
	return completion
}

// MarkDeleted records a HabitDeleted event ahead of removal from the store.
func (h *Habit) MarkDeleted() {
	h.AddDomainEvent(NewHabitDeleted(h))
}

// Completion is one recorded completion of a habit. Only its calendar date
// takes part in streak and lapse calculations.
type Completion struct {
	id          uuid.UUID
	habitID     uuid.UUID
	completedAt time.Time
}

// RehydrateCompletion recreates a completion from persisted state.
func RehydrateCompletion(id, habitID uuid.UUID, completedAt time.Time) *Completion {
	return &Completion{id: id, habitID: habitID, completedAt: completedAt}
}

func (c *Completion) ID() uuid.UUID          { return c.id }
func (c *Completion) HabitID() uuid.UUID     { return c.habitID }
func (c *Completion) CompletedAt() time.Time { return c.completedAt }

// Date is the calendar date of the completion in the zone of CompletedAt.
// Adapters convert incoming times to the local zone before completing.
func (c *Completion) Date() time.Time {
	return CalendarDate(c.completedAt)
}
