package eventbus

import (
	"context"
	"log/slog"
	"slices"
	"sync"
)

// PublishedLimit caps how many emitted events MemoryBus remembers.
const PublishedLimit = 64

// MemoryBus dispatches events synchronously, in registration order, on the
// emitting goroutine. Handler errors and panics are logged and never reach
// the emitter.
type MemoryBus struct {
	handlers  map[string][]HandlerFunc
	mu        sync.RWMutex
	logger    *slog.Logger
	published []Event
}

// NewMemoryBus creates an empty in-memory bus.
func NewMemoryBus(logger *slog.Logger) *MemoryBus {
	return &MemoryBus{
		handlers: make(map[string][]HandlerFunc),
		logger:   logger.With("bus", "memory"),
	}
}

// Register adds a handler for eventType.
func (b *MemoryBus) Register(eventType string, handler HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Emit runs every handler registered for the event's type.
func (b *MemoryBus) Emit(ctx context.Context, e Event) error {
	b.mu.Lock()
	handlers := slices.Clone(b.handlers[e.Type()])
	b.published = append(b.published, e)
	if n := len(b.published); n > PublishedLimit {
		b.published = slices.Clone(b.published[n-PublishedLimit:])
	}
	b.mu.Unlock()

	for _, handler := range handlers {
		b.dispatch(ctx, handler, e)
	}
	return nil
}

func (b *MemoryBus) dispatch(ctx context.Context, handler HandlerFunc, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("panic recovered in event handler", "type", e.Type(), "panic", r)
		}
	}()
	if err := handler(ctx, e); err != nil {
		b.logger.Error("failed to process event", "type", e.Type(), "error", err)
	}
}

// Published returns a copy of the most recent events, oldest first, up to
// PublishedLimit. Useful in tests.
func (b *MemoryBus) Published() []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.published)
}

// ClearPublished forgets the events recorded so far.
func (b *MemoryBus) ClearPublished() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = nil
}

// Ensure MemoryBus implements Bus
var _ Bus = (*MemoryBus)(nil)
