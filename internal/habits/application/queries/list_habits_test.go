package queries

import (
	"context"
	"testing"

	"github.com/felixgeelhaar/cadence/internal/habits/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListHabitsHandler_Handle(t *testing.T) {
	repo := newFakeRepo()
	repo.add("Read Book", domain.PeriodicityDaily)
	repo.add("Weekly Review", domain.PeriodicityWeekly)
	repo.add("Meditate", domain.PeriodicityDaily)

	tests := []struct {
		name        string
		periodicity string
		want        []string
	}{
		{"all habits", "", []string{"Read Book: Read Book description", "Weekly Review: Weekly Review description", "Meditate: Meditate description"}},
		{"daily only", "daily", []string{"Read Book: Read Book description", "Meditate: Meditate description"}},
		{"case insensitive", "WEEKLY", []string{"Weekly Review: Weekly Review description"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := NewListHabitsHandler(repo).Handle(context.Background(), ListHabitsQuery{Periodicity: tt.periodicity})
			require.NoError(t, err)

			var summaries []string
			for _, dto := range result {
				summaries = append(summaries, dto.Summary)
			}
			assert.Equal(t, tt.want, summaries)
		})
	}
}

func TestListHabitsHandler_EmptyStore(t *testing.T) {
	result, err := NewListHabitsHandler(newFakeRepo()).Handle(context.Background(), ListHabitsQuery{})
	require.NoError(t, err)
	assert.NotNil(t, result)
	assert.Empty(t, result)
}

func TestListHabitsHandler_Errors(t *testing.T) {
	t.Run("invalid periodicity", func(t *testing.T) {
		repo := newFakeRepo()
		_, err := NewListHabitsHandler(repo).Handle(context.Background(), ListHabitsQuery{Periodicity: "monthly"})
		assert.ErrorIs(t, err, domain.ErrInvalidPeriodicity)
	})

	t.Run("store failure", func(t *testing.T) {
		repo := newFakeRepo()
		repo.listErr = errBroken
		_, err := NewListHabitsHandler(repo).Handle(context.Background(), ListHabitsQuery{})
		assert.ErrorIs(t, err, errBroken)
	})
}

func TestGetHabitHandler_Handle(t *testing.T) {
	repo := newFakeRepo()
	repo.add("Read Book", domain.PeriodicityDaily, 0, 1, 2, 4)
	repo.add("Weekly Review", domain.PeriodicityWeekly)

	handler := NewGetHabitHandler(repo)

	detail, err := handler.Handle(context.Background(), GetHabitQuery{Name: "Read Book"})
	require.NoError(t, err)
	assert.Equal(t, "Read Book", detail.Name)
	assert.Equal(t, 4, detail.Completions)
	assert.Equal(t, 3, detail.LongestStreak)
	assert.Equal(t, "days", detail.Unit)
	require.NotNil(t, detail.LastCompleted)
	assert.Equal(t, domain.CalendarDate(now), *detail.LastCompleted)

	detail, err = handler.Handle(context.Background(), GetHabitQuery{Name: "Weekly Review"})
	require.NoError(t, err)
	assert.Zero(t, detail.Completions)
	assert.Nil(t, detail.LastCompleted)
	assert.Equal(t, "weeks", detail.Unit)

	_, err = handler.Handle(context.Background(), GetHabitQuery{Name: "Juggle"})
	assert.ErrorIs(t, err, domain.ErrHabitNotFound)
}
