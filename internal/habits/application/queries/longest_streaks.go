package queries

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/cadence/internal/habits/domain"
)

// LongestStreaksQuery scopes the streak search. An empty HabitName covers
// every habit.
type LongestStreaksQuery struct {
	HabitName string
}

// LongestStreaksHandler reports the habits holding the longest streak.
type LongestStreaksHandler struct {
	habitRepo domain.Repository
}

// NewLongestStreaksHandler creates a new LongestStreaksHandler.
func NewLongestStreaksHandler(habitRepo domain.Repository) *LongestStreaksHandler {
	return &LongestStreaksHandler{habitRepo: habitRepo}
}

// Handle returns every habit tied for the longest streak. An unknown habit
// name or a scope without completions yields an empty result.
func (h *LongestStreaksHandler) Handle(ctx context.Context, query LongestStreaksQuery) ([]domain.StreakEntry, error) {
	var habits []*domain.Habit
	if query.HabitName != "" {
		habit, err := h.habitRepo.FindByName(ctx, query.HabitName)
		if err != nil {
			return nil, fmt.Errorf("find habit: %w", err)
		}
		if habit == nil {
			return nil, nil
		}
		habits = []*domain.Habit{habit}
	} else {
		all, err := h.habitRepo.List(ctx, domain.ListFilter{})
		if err != nil {
			return nil, fmt.Errorf("list habits: %w", err)
		}
		habits = all
	}

	histories, err := loadHistories(ctx, h.habitRepo, habits)
	if err != nil {
		return nil, err
	}
	return domain.MaxStreaks(histories)
}

func loadHistories(ctx context.Context, repo domain.Repository, habits []*domain.Habit) ([]domain.HabitHistory, error) {
	histories := make([]domain.HabitHistory, 0, len(habits))
	for _, habit := range habits {
		dates, err := repo.CompletionDates(ctx, habit.ID())
		if err != nil {
			return nil, fmt.Errorf("completion dates for %q: %w", habit.Name(), err)
		}
		histories = append(histories, domain.HabitHistory{
			Name:        habit.Name(),
			Periodicity: habit.Periodicity(),
			Dates:       dates,
		})
	}
	return histories, nil
}
