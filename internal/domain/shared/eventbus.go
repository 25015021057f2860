package shared

import "context"

// EventHandler processes a single domain event
type EventHandler func(ctx context.Context, event DomainEvent) error

// EventBus publishes domain events to interested subscribers
type EventBus interface {
	// Publish delivers the events to all handlers subscribed to their types.
	// Handler failures must not abort delivery to the remaining handlers.
	Publish(ctx context.Context, events ...DomainEvent) error

	// Subscribe registers a handler for the given event type
	Subscribe(eventType string, handler EventHandler)
}
