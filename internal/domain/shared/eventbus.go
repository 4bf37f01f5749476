package shared

import "context"

// EventHandler consumes domain events off the bus
type EventHandler interface {
	// Handle processes a single event; returning an error signals failure
	// to the bus but does not stop other handlers
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes returns the event types this handler is interested in
	// An empty slice means the handler receives all events
	EventTypes() []string
}

// EventPublisher is the write side of the bus, the only part application
// services depend on
type EventPublisher interface {
	// Publish hands one or more events to the bus for delivery
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventSubscriber is the registration side of the bus
type EventSubscriber interface {
	// Subscribe registers a handler for the given event types; with none
	// given the handler sees every event
	Subscribe(handler EventHandler, eventTypes ...string)
	// Unsubscribe removes a previously registered handler
	Unsubscribe(handler EventHandler)
}

// EventBus is the full publish/subscribe surface plus lifecycle control
type EventBus interface {
	EventPublisher
	EventSubscriber
	// Start begins background delivery
	Start(ctx context.Context) error
	// Stop drains and shuts down delivery
	Stop(ctx context.Context) error
}
