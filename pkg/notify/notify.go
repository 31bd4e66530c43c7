// Package notify shows one transient status message at a time. A new
// message replaces the current one; each message clears itself after a
// fixed time unless it has been replaced first.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/amirasaad/fxchat/pkg/eventbus"
)

// DefaultTTL is how long a status stays visible.
const DefaultTTL = 3 * time.Second

// Level classifies a status message.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Status is the message currently displayed.
type Status struct {
	Message   string    `json:"message"`
	Level     Level     `json:"level"`
	ShownAt   time.Time `json:"shownAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Event types emitted on the bus.
const (
	EventTypeStatusShown   = "status.shown"
	EventTypeStatusCleared = "status.cleared"
)

// StatusShown is emitted when a status replaces whatever was displayed.
type StatusShown struct {
	Status Status
}

func (StatusShown) Type() string { return EventTypeStatusShown }

// StatusCleared is emitted when a status expires.
type StatusCleared struct {
	Message string
}

func (StatusCleared) Type() string { return EventTypeStatusCleared }

// Sink is the notification port used by the engine.
type Sink interface {
	Notify(ctx context.Context, level Level, message string)
}

// Notifier implements Sink and keeps the current status.
type Notifier struct {
	ttl    time.Duration
	bus    eventbus.Bus
	logger *slog.Logger
	now    func() time.Time

	mu         sync.Mutex
	current    *Status
	timer      *time.Timer
	generation uint64
}

// New creates a Notifier. bus may be nil.
func New(ttl time.Duration, bus eventbus.Bus, logger *slog.Logger) *Notifier {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Notifier{
		ttl:    ttl,
		bus:    bus,
		logger: logger.With("component", "notifier"),
		now:    time.Now,
	}
}

// Notify displays message, replacing and cancelling the previous status.
func (n *Notifier) Notify(ctx context.Context, level Level, message string) {
	n.mu.Lock()
	if n.timer != nil {
		n.timer.Stop()
	}
	n.generation++
	gen := n.generation
	shownAt := n.now()
	status := Status{
		Message:   message,
		Level:     level,
		ShownAt:   shownAt,
		ExpiresAt: shownAt.Add(n.ttl),
	}
	n.current = &status
	n.timer = time.AfterFunc(n.ttl, func() { n.expire(gen) })
	n.mu.Unlock()

	n.logger.Debug("Status shown", "level", level, "message", message)
	n.emit(context.WithoutCancel(ctx), StatusShown{Status: status})
}

func (n *Notifier) expire(gen uint64) {
	n.mu.Lock()
	if gen != n.generation || n.current == nil {
		n.mu.Unlock()
		return
	}
	message := n.current.Message
	n.current = nil
	n.timer = nil
	n.mu.Unlock()

	n.emit(context.Background(), StatusCleared{Message: message})
}

// Current returns the displayed status, if any.
func (n *Notifier) Current() (Status, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return Status{}, false
	}
	return *n.current, true
}

// Close cancels the pending expiry without emitting.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.generation++
}

func (n *Notifier) emit(ctx context.Context, e eventbus.Event) {
	if n.bus == nil {
		return
	}
	if err := n.bus.Emit(ctx, e); err != nil {
		n.logger.Warn("Failed to emit status event", "type", e.Type(), "error", err)
	}
}

// Ensure Notifier implements Sink
var _ Sink = (*Notifier)(nil)
