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

// CompleteHabitCommand records a completion. A zero CompletedAt means now.
type CompleteHabitCommand struct {
	Name        string
	CompletedAt time.Time
}

// CompleteHabitResult contains the recorded completion.
type CompleteHabitResult struct {
	HabitID      uuid.UUID
	CompletionID uuid.UUID
	CompletedAt  time.Time
}

// CompleteHabitHandler handles the CompleteHabitCommand.
type CompleteHabitHandler struct {
	habitRepo  domain.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	now        func() time.Time
}

// NewCompleteHabitHandler creates a new CompleteHabitHandler.
func NewCompleteHabitHandler(habitRepo domain.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *CompleteHabitHandler {
	return &CompleteHabitHandler{
		habitRepo:  habitRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
		now:        time.Now,
	}
}

// Handle executes the CompleteHabitCommand.
func (h *CompleteHabitHandler) Handle(ctx context.Context, cmd CompleteHabitCommand) (*CompleteHabitResult, error) {
	at := cmd.CompletedAt
	if at.IsZero() {
		at = h.now()
	}

	var result *CompleteHabitResult
	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		habit, err := h.habitRepo.FindByName(txCtx, cmd.Name)
		if err != nil {
			return fmt.Errorf("find habit: %w", err)
		}
		if habit == nil {
			return fmt.Errorf("%w: %q", domain.ErrHabitNotFound, cmd.Name)
		}

		completion := habit.Complete(at)
		if err := h.habitRepo.RecordCompletion(txCtx, completion); err != nil {
			return err
		}
		if err := stageEvents(txCtx, h.outboxRepo, habit); err != nil {
			return err
		}

		result = &CompleteHabitResult{
			HabitID:      habit.ID(),
			CompletionID: completion.ID(),
			CompletedAt:  completion.CompletedAt(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
