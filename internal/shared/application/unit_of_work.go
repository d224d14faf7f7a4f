package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// UnitOfWork scopes a set of repository calls to one transaction. Begin returns
// a context carrying the transaction; repositories pick it up from there.
type UnitOfWork interface {
	Begin(ctx context.Context) (context.Context, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UnitOfWorkFunc is a function that executes within a unit of work.
type UnitOfWorkFunc func(ctx context.Context) error

type afterCommitKey struct{}

type afterCommitHooks struct {
	mu  sync.Mutex
	fns []func(ctx context.Context)
}

func (h *afterCommitHooks) add(fn func(ctx context.Context)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fns = append(h.fns, fn)
}

func (h *afterCommitHooks) run(ctx context.Context) {
	h.mu.Lock()
	fns := h.fns
	h.fns = nil
	h.mu.Unlock()
	for _, fn := range fns {
		fn(ctx)
	}
}

// AfterCommit registers fn to run once the outermost unit of work in ctx has
// committed. It is dropped on rollback. Outside a unit of work fn runs
// immediately.
func AfterCommit(ctx context.Context, fn func(ctx context.Context)) {
	if hooks, ok := ctx.Value(afterCommitKey{}).(*afterCommitHooks); ok {
		hooks.add(fn)
		return
	}
	fn(ctx)
}

// WithUnitOfWork runs fn inside a unit of work, committing on success and
// rolling back when fn fails. A rollback failure is joined to fn's error.
// Hooks registered with AfterCommit run after the outermost commit, with ctx.
func WithUnitOfWork(ctx context.Context, uow UnitOfWork, fn UnitOfWorkFunc) error {
	hooks, nested := ctx.Value(afterCommitKey{}).(*afterCommitHooks)
	if !nested {
		hooks = &afterCommitHooks{}
	}

	txCtx, err := uow.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin unit of work: %w", err)
	}

	if err := fn(context.WithValue(txCtx, afterCommitKey{}, hooks)); err != nil {
		if rbErr := uow.Rollback(txCtx); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}

	if err := uow.Commit(txCtx); err != nil {
		return err
	}
	if !nested {
		hooks.run(ctx)
	}
	return nil
}
