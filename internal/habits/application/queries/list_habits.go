package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/cadence/internal/habits/domain"
	"github.com/google/uuid"
)

// HabitDTO is a data transfer object for habits.
type HabitDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Periodicity string    `json:"periodicity"`
	Summary     string    `json:"summary"`
	CreatedAt   time.Time `json:"created_at"`
}

func toHabitDTO(h *domain.Habit) HabitDTO {
	return HabitDTO{
		ID:          h.ID(),
		Name:        h.Name(),
		Description: h.Description(),
		Periodicity: string(h.Periodicity()),
		Summary:     h.Summary(),
		CreatedAt:   h.CreatedAt(),
	}
}

// ListHabitsQuery filters the roster. An empty Periodicity lists every habit.
type ListHabitsQuery struct {
	Periodicity string
}

// ListHabitsHandler handles the ListHabitsQuery.
type ListHabitsHandler struct {
	habitRepo domain.Repository
}

// NewListHabitsHandler creates a new ListHabitsHandler.
func NewListHabitsHandler(habitRepo domain.Repository) *ListHabitsHandler {
	return &ListHabitsHandler{habitRepo: habitRepo}
}

// Handle returns habits in creation order.
func (h *ListHabitsHandler) Handle(ctx context.Context, query ListHabitsQuery) ([]HabitDTO, error) {
	var filter domain.ListFilter
	if query.Periodicity != "" {
		p, err := domain.ParsePeriodicity(query.Periodicity)
		if err != nil {
			return nil, err
		}
		filter.Periodicity = p
	}

	habits, err := h.habitRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}

	dtos := make([]HabitDTO, 0, len(habits))
	for _, habit := range habits {
		dtos = append(dtos, toHabitDTO(habit))
	}
	return dtos, nil
}
