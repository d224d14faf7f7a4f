package commands

import (
	"context"
	"sync"
	"time"

	"github.com/felixgeelhaar/cadence/internal/habits/domain"
	"github.com/felixgeelhaar/cadence/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockHabitRepo struct {
	mock.Mock
}

func (m *mockHabitRepo) Create(ctx context.Context, habit *domain.Habit) error {
	return m.Called(ctx, habit).Error(0)
}

func (m *mockHabitRepo) FindByName(ctx context.Context, name string) (*domain.Habit, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Habit), args.Error(1)
}

func (m *mockHabitRepo) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Habit, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Habit), args.Error(1)
}

func (m *mockHabitRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockHabitRepo) RecordCompletion(ctx context.Context, completion *domain.Completion) error {
	return m.Called(ctx, completion).Error(0)
}

func (m *mockHabitRepo) CompletionDates(ctx context.Context, habitID uuid.UUID) ([]time.Time, error) {
	args := m.Called(ctx, habitID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]time.Time), args.Error(1)
}

// mockOutboxRepo records saved messages; only Save is expected from commands.
type mockOutboxRepo struct {
	mock.Mock
}

func (m *mockOutboxRepo) Save(ctx context.Context, msgs ...*outbox.Message) error {
	return m.Called(ctx, msgs).Error(0)
}

func (m *mockOutboxRepo) Pending(ctx context.Context, now time.Time, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, now, limit)
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *mockOutboxRepo) MarkPublished(ctx context.Context, id int64, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *mockOutboxRepo) MarkFailed(ctx context.Context, id int64, reason string, nextRetryAt time.Time) error {
	return m.Called(ctx, id, reason, nextRetryAt).Error(0)
}

func (m *mockOutboxRepo) MarkDead(ctx context.Context, id int64, reason string, at time.Time) error {
	return m.Called(ctx, id, reason, at).Error(0)
}

func (m *mockOutboxRepo) DeletePublishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// fakeUnitOfWork counts lifecycle calls without a database.
type fakeUnitOfWork struct {
	begins, commits, rollbacks int
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	u.begins++
	return ctx, nil
}

func (u *fakeUnitOfWork) Commit(context.Context) error {
	u.commits++
	return nil
}

func (u *fakeUnitOfWork) Rollback(context.Context) error {
	u.rollbacks++
	return nil
}

// memoryHabitRepo is a small in-memory domain.Repository.
type memoryHabitRepo struct {
	mu          sync.Mutex
	habits      []*domain.Habit
	completions map[uuid.UUID][]*domain.Completion
}

func newMemoryHabitRepo() *memoryHabitRepo {
	return &memoryHabitRepo{completions: make(map[uuid.UUID][]*domain.Completion)}
}

func (r *memoryHabitRepo) Create(_ context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, h := range r.habits {
		if h.Name() == habit.Name() {
			return domain.ErrHabitExists
		}
	}
	r.habits = append(r.habits, habit)
	return nil
}

func (r *memoryHabitRepo) FindByName(_ context.Context, name string) (*domain.Habit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, h := range r.habits {
		if h.Name() == name {
			return h, nil
		}
	}
	return nil, nil
}

func (r *memoryHabitRepo) List(_ context.Context, filter domain.ListFilter) ([]*domain.Habit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Habit
	for _, h := range r.habits {
		if filter.Periodicity == "" || h.Periodicity() == filter.Periodicity {
			out = append(out, h)
		}
	}
	return out, nil
}

func (r *memoryHabitRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, h := range r.habits {
		if h.ID() == id {
			r.habits = append(r.habits[:i], r.habits[i+1:]...)
			delete(r.completions, id)
			return nil
		}
	}
	return domain.ErrHabitNotFound
}

func (r *memoryHabitRepo) RecordCompletion(_ context.Context, completion *domain.Completion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completions[completion.HabitID()] = append(r.completions[completion.HabitID()], completion)
	return nil
}

func (r *memoryHabitRepo) CompletionDates(_ context.Context, habitID uuid.UUID) ([]time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var dates []time.Time
	for _, c := range r.completions[habitID] {
		dates = append(dates, c.Date())
	}
	return dates, nil
}

// recordingOutbox keeps every saved message.
type recordingOutbox struct {
	mockOutboxRepo
	saved []*outbox.Message
}

func (r *recordingOutbox) Save(_ context.Context, msgs ...*outbox.Message) error {
	r.saved = append(r.saved, msgs...)
	return nil
}

func routingKeys(msgs []*outbox.Message) []string {
	keys := make([]string, len(msgs))
	for i, m := range msgs {
		keys[i] = m.RoutingKey
	}
	return keys
}
