package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ListFilter narrows List results. A zero filter lists every habit.
type ListFilter struct {
	Periodicity Periodicity
}

// Repository defines the interface for habit and completion persistence.
type Repository interface {
	// Create inserts a new habit. It returns ErrHabitExists when the name is taken.
	Create(ctx context.Context, habit *Habit) error

	// FindByName returns the habit with the given name, or nil when absent.
	FindByName(ctx context.Context, name string) (*Habit, error)

	// List returns habits in creation order.
	List(ctx context.Context, filter ListFilter) ([]*Habit, error)

	// Delete removes a habit together with all of its completions.
	Delete(ctx context.Context, id uuid.UUID) error

	// RecordCompletion stores a completion for an existing habit.
	RecordCompletion(ctx context.Context, completion *Completion) error

	// CompletionDates returns the calendar dates of a habit's completions,
	// most recent first. Same-day completions appear once per record.
	CompletionDates(ctx context.Context, habitID uuid.UUID) ([]time.Time, error)
}
