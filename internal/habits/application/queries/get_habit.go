package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/cadence/internal/habits/domain"
)

// HabitDetailDTO adds completion statistics to a habit.
type HabitDetailDTO struct {
	HabitDTO
	Completions   int        `json:"completions"`
	LastCompleted *time.Time `json:"last_completed,omitempty"`
	LongestStreak int        `json:"longest_streak"`
	Unit          string     `json:"unit"`
}

// GetHabitQuery looks a habit up by name.
type GetHabitQuery struct {
	Name string
}

// GetHabitHandler handles the GetHabitQuery.
type GetHabitHandler struct {
	habitRepo domain.Repository
}

// NewGetHabitHandler creates a new GetHabitHandler.
func NewGetHabitHandler(habitRepo domain.Repository) *GetHabitHandler {
	return &GetHabitHandler{habitRepo: habitRepo}
}

// Handle returns domain.ErrHabitNotFound for unknown names.
func (h *GetHabitHandler) Handle(ctx context.Context, query GetHabitQuery) (*HabitDetailDTO, error) {
	habit, err := h.habitRepo.FindByName(ctx, query.Name)
	if err != nil {
		return nil, fmt.Errorf("find habit: %w", err)
	}
	if habit == nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrHabitNotFound, query.Name)
	}

	dates, err := h.habitRepo.CompletionDates(ctx, habit.ID())
	if err != nil {
		return nil, fmt.Errorf("completion dates for %q: %w", habit.Name(), err)
	}
	streak, err := domain.LongestStreak(dates, habit.Periodicity())
	if err != nil {
		return nil, err
	}

	dto := &HabitDetailDTO{
		HabitDTO:      toHabitDTO(habit),
		Completions:   len(dates),
		LongestStreak: streak,
		Unit:          habit.Periodicity().Unit(),
	}
	if len(dates) > 0 {
		last := dates[0]
		dto.LastCompleted = &last
	}
	return dto, nil
}
