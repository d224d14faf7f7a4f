package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/felixgeelhaar/cadence/internal/habits/domain"
	"github.com/felixgeelhaar/cadence/internal/shared/infrastructure/database"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var contractNow = time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

// runRepositoryContract exercises behaviour every domain.Repository
// implementation must share. newRepo must return a repository over an empty,
// migrated database.
func runRepositoryContract(t *testing.T, newRepo func(t *testing.T) (domain.Repository, database.Connection)) {
	t.Run("create and find by name", func(t *testing.T) {
		repo, _ := newRepo(t)
		ctx := context.Background()

		habit := mustHabit(t, "Read", "Read 20 pages", domain.PeriodicityDaily, contractNow)
		require.NoError(t, repo.Create(ctx, habit))

		found, err := repo.FindByName(ctx, "Read")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, habit.ID(), found.ID())
		assert.Equal(t, "Read 20 pages", found.Description())
		assert.Equal(t, domain.PeriodicityDaily, found.Periodicity())
		assert.True(t, habit.CreatedAt().Equal(found.CreatedAt()))
		assert.Empty(t, found.DomainEvents())
	})

	t.Run("find by name returns nil when absent", func(t *testing.T) {
		repo, _ := newRepo(t)

		found, err := repo.FindByName(context.Background(), "Nope")
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("duplicate name is rejected", func(t *testing.T) {
		repo, _ := newRepo(t)
		ctx := context.Background()

		require.NoError(t, repo.Create(ctx, mustHabit(t, "Read", "", domain.PeriodicityDaily, contractNow)))
		err := repo.Create(ctx, mustHabit(t, "Read", "again", domain.PeriodicityWeekly, contractNow))
		assert.ErrorIs(t, err, domain.ErrHabitExists)
	})

	t.Run("list keeps creation order and filters by periodicity", func(t *testing.T) {
		repo, _ := newRepo(t)
		ctx := context.Background()

		names := []struct {
			name string
			p    domain.Periodicity
		}{
			{"Walk", domain.PeriodicityDaily},
			{"Call Mom", domain.PeriodicityWeekly},
			{"Drink Water", domain.PeriodicityDaily},
		}
		for i, n := range names {
			habit := mustHabit(t, n.name, "", n.p, contractNow.Add(time.Duration(i)*time.Second))
			require.NoError(t, repo.Create(ctx, habit))
		}

		all, err := repo.List(ctx, domain.ListFilter{})
		require.NoError(t, err)
		assert.Equal(t, []string{"Walk", "Call Mom", "Drink Water"}, habitNames(all))

		daily, err := repo.List(ctx, domain.ListFilter{Periodicity: domain.PeriodicityDaily})
		require.NoError(t, err)
		assert.Equal(t, []string{"Walk", "Drink Water"}, habitNames(daily))

		weekly, err := repo.List(ctx, domain.ListFilter{Periodicity: domain.PeriodicityWeekly})
		require.NoError(t, err)
		assert.Equal(t, []string{"Call Mom"}, habitNames(weekly))
	})

	t.Run("completion dates are newest first and keep duplicates", func(t *testing.T) {
		repo, _ := newRepo(t)
		ctx := context.Background()

		habit := mustHabit(t, "Read", "", domain.PeriodicityDaily, contractNow)
		require.NoError(t, repo.Create(ctx, habit))

		for _, at := range []time.Time{
			contractNow.AddDate(0, 0, -2),
			contractNow,
			contractNow.AddDate(0, 0, -1),
			contractNow.Add(2 * time.Hour),
		} {
			require.NoError(t, repo.RecordCompletion(ctx, habit.Complete(at)))
		}

		dates, err := repo.CompletionDates(ctx, habit.ID())
		require.NoError(t, err)
		today := domain.CalendarDate(contractNow)
		assert.Equal(t, []time.Time{
			today,
			today,
			today.AddDate(0, 0, -1),
			today.AddDate(0, 0, -2),
		}, dates)
	})

	t.Run("completion date is the local calendar date", func(t *testing.T) {
		repo, _ := newRepo(t)
		ctx := context.Background()

		habit := mustHabit(t, "Late", "", domain.PeriodicityDaily, contractNow)
		require.NoError(t, repo.Create(ctx, habit))

		// 23:30 on the 17th at UTC-5 is already the 18th in UTC.
		zone := time.FixedZone("UTC-5", -5*60*60)
		require.NoError(t, repo.RecordCompletion(ctx, habit.Complete(time.Date(2026, 10, 17, 23, 30, 0, 0, zone))))

		dates, err := repo.CompletionDates(ctx, habit.ID())
		require.NoError(t, err)
		assert.Equal(t, []time.Time{time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)}, dates)
	})

	t.Run("delete removes habit and completions", func(t *testing.T) {
		repo, _ := newRepo(t)
		ctx := context.Background()

		habit := mustHabit(t, "Read", "", domain.PeriodicityDaily, contractNow)
		require.NoError(t, repo.Create(ctx, habit))
		require.NoError(t, repo.RecordCompletion(ctx, habit.Complete(contractNow)))

		require.NoError(t, repo.Delete(ctx, habit.ID()))

		found, err := repo.FindByName(ctx, "Read")
		require.NoError(t, err)
		assert.Nil(t, found)

		dates, err := repo.CompletionDates(ctx, habit.ID())
		require.NoError(t, err)
		assert.Empty(t, dates)

		// The name is free again.
		require.NoError(t, repo.Create(ctx, mustHabit(t, "Read", "", domain.PeriodicityWeekly, contractNow)))
	})

	t.Run("delete of unknown habit", func(t *testing.T) {
		repo, _ := newRepo(t)

		err := repo.Delete(context.Background(), uuid.New())
		assert.ErrorIs(t, err, domain.ErrHabitNotFound)
	})

	t.Run("writes join the unit of work", func(t *testing.T) {
		repo, conn := newRepo(t)
		ctx := context.Background()

		uow := database.NewUnitOfWork(conn)
		txCtx, err := uow.Begin(ctx)
		require.NoError(t, err)

		require.NoError(t, repo.Create(txCtx, mustHabit(t, "Read", "", domain.PeriodicityDaily, contractNow)))
		require.NoError(t, uow.Rollback(txCtx))

		found, err := repo.FindByName(ctx, "Read")
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}

func mustHabit(t *testing.T, name, description string, p domain.Periodicity, now time.Time) *domain.Habit {
	t.Helper()
	habit, err := domain.NewHabit(name, description, p, now)
	require.NoError(t, err)
	return habit
}

func habitNames(habits []*domain.Habit) []string {
	names := make([]string, 0, len(habits))
	for _, h := range habits {
		names = append(names, h.Name())
	}
	return names
}
