package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/cadence/internal/habits/domain"
	sharedApplication "github.com/felixgeelhaar/cadence/internal/shared/application"
	"github.com/felixgeelhaar/cadence/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// AddHabitCommand contains the data needed to register a habit.
type AddHabitCommand struct {
	Name        string
	Description string
	Periodicity string
}

// AddHabitResult contains the result of adding a habit.
type AddHabitResult struct {
	HabitID uuid.UUID
	Name    string
}

// AddHabitHandler handles the AddHabitCommand.
type AddHabitHandler struct {
	habitRepo  domain.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	now        func() time.Time
}

// NewAddHabitHandler creates a new AddHabitHandler.
func NewAddHabitHandler(habitRepo domain.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *AddHabitHandler {
	return &AddHabitHandler{
		habitRepo:  habitRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
		now:        time.Now,
	}
}

// Handle executes the AddHabitCommand. A taken name yields domain.ErrHabitExists
// and leaves the existing habit untouched.
func (h *AddHabitHandler) Handle(ctx context.Context, cmd AddHabitCommand) (*AddHabitResult, error) {
	periodicity, err := domain.ParsePeriodicity(cmd.Periodicity)
	if err != nil {
		return nil, err
	}

	habit, err := domain.NewHabit(cmd.Name, cmd.Description, periodicity, h.now())
	if err != nil {
		return nil, err
	}

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		existing, err := h.habitRepo.FindByName(txCtx, habit.Name())
		if err != nil {
			return fmt.Errorf("find habit: %w", err)
		}
		if existing != nil {
			return fmt.Errorf("%w: %q", domain.ErrHabitExists, habit.Name())
		}

		if err := h.habitRepo.Create(txCtx, habit); err != nil {
			return err
		}
		return stageEvents(txCtx, h.outboxRepo, habit)
	})
	if err != nil {
		return nil, err
	}

	return &AddHabitResult{HabitID: habit.ID(), Name: habit.Name()}, nil
}
