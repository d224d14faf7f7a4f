package outbox

import (
	"context"
	"time"
)

// Repository persists outbox messages. Writes join the unit of work in ctx.
type Repository interface {
	// Save stores messages and assigns their IDs.
	Save(ctx context.Context, msgs ...*Message) error

	// Pending returns undelivered, non-dead messages whose retry time has
	// passed, oldest first.
	Pending(ctx context.Context, now time.Time, limit int) ([]*Message, error)

	MarkPublished(ctx context.Context, id int64, at time.Time) error

	// MarkFailed bumps the retry count and schedules the next attempt.
	MarkFailed(ctx context.Context, id int64, reason string, nextRetryAt time.Time) error

	MarkDead(ctx context.Context, id int64, reason string, at time.Time) error

	// DeletePublishedBefore purges messages published before cutoff.
	DeletePublishedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
