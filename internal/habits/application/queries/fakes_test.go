package queries

import (
	"context"
	"errors"
	"time"

	"github.com/felixgeelhaar/cadence/internal/habits/domain"
	"github.com/google/uuid"
)

var (
	now       = time.Date(2026, 10, 18, 20, 0, 0, 0, time.UTC)
	errBroken = errors.New("connection reset")
)

// fakeRepo serves fixed habits and histories.
type fakeRepo struct {
	habits    []*domain.Habit
	history   map[uuid.UUID][]time.Time
	listErr   error
	datesErr  error
	lastQuery domain.ListFilter
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{history: make(map[uuid.UUID][]time.Time)}
}

// add registers a habit completed offsets days before now, most recent first.
func (r *fakeRepo) add(name string, p domain.Periodicity, offsets ...int) *domain.Habit {
	habit := domain.RehydrateHabit(uuid.New(), name, name+" description", p, now.AddDate(0, -1, 0))
	r.habits = append(r.habits, habit)
	for _, off := range offsets {
		r.history[habit.ID()] = append(r.history[habit.ID()], domain.CalendarDate(now.AddDate(0, 0, -off)))
	}
	return habit
}

func (r *fakeRepo) Create(context.Context, *domain.Habit) error { return nil }

func (r *fakeRepo) FindByName(_ context.Context, name string) (*domain.Habit, error) {
	for _, h := range r.habits {
		if h.Name() == name {
			return h, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) List(_ context.Context, filter domain.ListFilter) ([]*domain.Habit, error) {
	r.lastQuery = filter
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []*domain.Habit
	for _, h := range r.habits {
		if filter.Periodicity == "" || filter.Periodicity == h.Periodicity() {
			out = append(out, h)
		}
	}
	return out, nil
}

func (r *fakeRepo) Delete(context.Context, uuid.UUID) error { return nil }

func (r *fakeRepo) RecordCompletion(context.Context, *domain.Completion) error { return nil }

func (r *fakeRepo) CompletionDates(_ context.Context, habitID uuid.UUID) ([]time.Time, error) {
	if r.datesErr != nil {
		return nil, r.datesErr
	}
	return r.history[habitID], nil
}
