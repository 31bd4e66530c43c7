// Package eventbus is the in-process publish/subscribe channel the engine
// uses to tell presentation layers about rate refreshes and status changes.
package eventbus

import "context"

// Event is anything with a type name handlers can subscribe to.
type Event interface {
	Type() string
}

// HandlerFunc handles a single event.
type HandlerFunc func(ctx context.Context, e Event) error

// Bus dispatches events to the handlers registered for their type.
type Bus interface {
	Register(eventType string, handler HandlerFunc)
	Emit(ctx context.Context, e Event) error
}
