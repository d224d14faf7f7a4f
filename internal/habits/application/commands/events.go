package commands

import (
	"context"

	sharedApplication "github.com/felixgeelhaar/cadence/internal/shared/application"
	sharedDomain "github.com/felixgeelhaar/cadence/internal/shared/domain"
	"github.com/felixgeelhaar/cadence/internal/shared/infrastructure/outbox"
)

// stageEvents writes the aggregate's pending events to the outbox inside the
// current unit of work and clears them.
func stageEvents(ctx context.Context, outboxRepo outbox.Repository, aggregate sharedDomain.AggregateRoot) error {
	events := aggregate.DomainEvents()
	if len(events) == 0 {
		return nil
	}
	sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(ctx))

	msgs, err := outbox.NewMessages(events)
	if err != nil {
		return err
	}
	if err := outboxRepo.Save(ctx, msgs...); err != nil {
		return err
	}

	aggregate.ClearDomainEvents()
	return nil
}
