package app

import (
	"context"

	"github.com/amirasaad/fxchat/pkg/eventbus"
	"github.com/amirasaad/fxchat/pkg/exchange"
	"github.com/amirasaad/fxchat/pkg/notify"
)

// setupEventBus registers the application's own handlers. Presentation
// layers register theirs on Deps.EventBus after New returns.
func (a *App) setupEventBus() {
	bus := a.Deps.EventBus
	logger := a.Deps.Logger.With("component", "events")

	bus.Register(exchange.EventTypeRatesUpdated, func(_ context.Context, e eventbus.Event) error {
		if ev, ok := e.(exchange.RatesUpdated); ok {
			logger.Debug("Rates snapshot published",
				"count", ev.Snapshot.Len(),
				"fetched_at", ev.Snapshot.FetchedAt(),
			)
		}
		return nil
	})

	bus.Register(notify.EventTypeStatusShown, func(_ context.Context, e eventbus.Event) error {
		if ev, ok := e.(notify.StatusShown); ok {
			logger.Info("Status", "level", ev.Status.Level, "message", ev.Status.Message)
		}
		return nil
	})
}
