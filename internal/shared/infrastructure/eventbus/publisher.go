// Package eventbus delivers relayed domain events to a message broker.
package eventbus

import (
	"context"
	"errors"
	"log/slog"
)

// ErrCircuitOpen is returned while the broker circuit breaker rejects calls.
var ErrCircuitOpen = errors.New("event bus circuit open")

// Publisher defines the interface for publishing events to a message broker.
type Publisher interface {
	// Publish sends payload with the given routing key.
	Publish(ctx context.Context, routingKey string, payload []byte) error

	// Close releases the broker connection.
	Close() error
}

// NoopPublisher logs and discards events. It stands in when no broker is configured.
type NoopPublisher struct {
	logger *slog.Logger
}

// NewNoopPublisher creates a publisher that does nothing.
func NewNoopPublisher(logger *slog.Logger) *NoopPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoopPublisher{logger: logger}
}

func (p *NoopPublisher) Publish(_ context.Context, routingKey string, payload []byte) error {
	p.logger.Debug("noop publish", "routing_key", routingKey, "size", len(payload))
	return nil
}

func (p *NoopPublisher) Close() error {
	return nil
}
