package unitofwork

import (
	"context"

	"github.com/restaurant/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// EventSource is anything that queues domain events until commit
type EventSource interface {
	GetDomainEvents() []shared.DomainEvent
	ClearDomainEvents()
}

// EventBuffer holds events raised inside a transaction. Events are drained
// from their aggregates inside Execute and published once it has committed.
type EventBuffer struct {
	events []shared.DomainEvent
}

// Collect drains pending events from the given aggregates
func (b *EventBuffer) Collect(sources ...EventSource) {
	for _, src := range sources {
		if src == nil {
			continue
		}
		b.events = append(b.events, src.GetDomainEvents()...)
		src.ClearDomainEvents()
	}
}

// Add appends events that were not raised by an aggregate
func (b *EventBuffer) Add(events ...shared.DomainEvent) {
	b.events = append(b.events, events...)
}

// Len returns the number of buffered events
func (b *EventBuffer) Len() int {
	return len(b.events)
}

// Publish hands the buffered events to the publisher. Delivery is best
// effort: failures are logged and never returned to the caller.
func (b *EventBuffer) Publish(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger) {
	if publisher == nil || len(b.events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, b.events...); err != nil && logger != nil {
		logger.Warn("Failed to publish domain events",
			zap.Int("count", len(b.events)),
			zap.Error(err),
		)
	}
	b.events = nil
}
