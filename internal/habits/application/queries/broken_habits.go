package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/cadence/internal/habits/domain"
)

// BrokenHabitDTO describes one overdue habit.
type BrokenHabitDTO struct {
	Name           string `json:"name"`
	Periodicity    string `json:"periodicity"`
	NeverCompleted bool   `json:"never_completed"`
	Overdue        int    `json:"overdue"`
	Unit           string `json:"unit"`
	Message        string `json:"message"`
}

// BrokenHabitsQuery evaluates lapses at At; zero means now.
type BrokenHabitsQuery struct {
	At time.Time
}

// BrokenHabitsHandler lists habits that are overdue for their periodicity.
type BrokenHabitsHandler struct {
	habitRepo domain.Repository
	now       func() time.Time
}

// NewBrokenHabitsHandler creates a new BrokenHabitsHandler.
func NewBrokenHabitsHandler(habitRepo domain.Repository) *BrokenHabitsHandler {
	return &BrokenHabitsHandler{habitRepo: habitRepo, now: time.Now}
}

// Handle returns broken habits in listing order.
func (h *BrokenHabitsHandler) Handle(ctx context.Context, query BrokenHabitsQuery) ([]BrokenHabitDTO, error) {
	at := query.At
	if at.IsZero() {
		at = h.now()
	}

	habits, err := h.habitRepo.List(ctx, domain.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}

	var broken []BrokenHabitDTO
	for _, habit := range habits {
		dates, err := h.habitRepo.CompletionDates(ctx, habit.ID())
		if err != nil {
			return nil, fmt.Errorf("completion dates for %q: %w", habit.Name(), err)
		}

		var last *time.Time
		if len(dates) > 0 {
			last = &dates[0]
		}
		lapse, err := domain.DetectLapse(last, habit.Periodicity(), at)
		if err != nil {
			return nil, err
		}
		if !lapse.Broken {
			continue
		}

		broken = append(broken, BrokenHabitDTO{
			Name:           habit.Name(),
			Periodicity:    string(habit.Periodicity()),
			NeverCompleted: lapse.NeverCompleted,
			Overdue:        lapse.Amount,
			Unit:           lapse.Unit,
			Message:        lapse.Message(habit.Name()),
		})
	}
	return broken, nil
}
