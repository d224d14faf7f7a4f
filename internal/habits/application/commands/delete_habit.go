package commands

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/cadence/internal/habits/domain"
	sharedApplication "github.com/felixgeelhaar/cadence/internal/shared/application"
	"github.com/felixgeelhaar/cadence/internal/shared/infrastructure/outbox"
)

// DeleteHabitCommand names the habit to remove.
type DeleteHabitCommand struct {
	Name string
}

// DeleteHabitHandler removes a habit and its completions.
type DeleteHabitHandler struct {
	habitRepo  domain.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
}

// NewDeleteHabitHandler creates a new DeleteHabitHandler.
func NewDeleteHabitHandler(habitRepo domain.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *DeleteHabitHandler {
	return &DeleteHabitHandler{
		habitRepo:  habitRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
	}
}

// Handle executes the DeleteHabitCommand.
func (h *DeleteHabitHandler) Handle(ctx context.Context, cmd DeleteHabitCommand) error {
	return sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		habit, err := h.habitRepo.FindByName(txCtx, cmd.Name)
		if err != nil {
			return fmt.Errorf("find habit: %w", err)
		}
		if habit == nil {
			return fmt.Errorf("%w: %q", domain.ErrHabitNotFound, cmd.Name)
		}

		habit.MarkDeleted()
		if err := h.habitRepo.Delete(txCtx, habit.ID()); err != nil {
			return err
		}
		return stageEvents(txCtx, h.outboxRepo, habit)
	})
}
