// Package exchange keeps the latest provider rates fresh: it serves them
// from a short-lived cache, refetches on demand or on a timer, and reports
// the outcome through the status notifier and the event bus.
package exchange

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/amirasaad/fxchat/pkg/cache"
	"github.com/amirasaad/fxchat/pkg/eventbus"
	"github.com/amirasaad/fxchat/pkg/notify"
	"github.com/amirasaad/fxchat/pkg/provider"
	"golang.org/x/sync/singleflight"
)

const (
	// LatestRatesKey is the cache key of the latest snapshot.
	LatestRatesKey = "latest_rates"

	// DefaultRefreshInterval is the auto-update period.
	DefaultRefreshInterval = 5 * time.Minute
)

// Status messages shown to the user.
const (
	MsgRatesUpdated      = "Tasas de cambio actualizadas exitosamente"
	MsgFetchFailedPrefix = "No se pudieron obtener las tasas de cambio: "
	MsgRefreshFailed     = "Error en la actualización: "
	MsgInitialFetchError = "Error: "
)

// EventTypeRatesUpdated is emitted after every successful fetch.
const EventTypeRatesUpdated = "rates.updated"

// RatesUpdated carries a freshly fetched snapshot.
type RatesUpdated struct {
	Snapshot *provider.RateSnapshot
}

func (RatesUpdated) Type() string { return EventTypeRatesUpdated }

// UpdateFunc receives each snapshot produced by the auto-update loop.
type UpdateFunc func(*provider.RateSnapshot)

// RateService fetches snapshots from a provider and caches them.
type RateService struct {
	provider provider.RateProvider
	cache    *cache.TTL[*provider.RateSnapshot]
	notifier notify.Sink
	bus      eventbus.Bus
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time

	group singleflight.Group

	mu          sync.Mutex
	lastUpdated time.Time
	onUpdate    UpdateFunc
	loopCtx     context.Context
	timer       *time.Timer
	running     bool
}

// Config groups the optional collaborators of a RateService.
type Config struct {
	// RefreshInterval defaults to DefaultRefreshInterval.
	RefreshInterval time.Duration
	// Notifier may be nil.
	Notifier notify.Sink
	// Bus may be nil.
	Bus eventbus.Bus
}

// NewRateService creates a RateService backed by p and c.
func NewRateService(
	p provider.RateProvider,
	c *cache.TTL[*provider.RateSnapshot],
	cfg Config,
	logger *slog.Logger,
) *RateService {
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = DefaultRefreshInterval
	}
	return &RateService{
		provider: p,
		cache:    c,
		notifier: cfg.Notifier,
		bus:      cfg.Bus,
		interval: cfg.RefreshInterval,
		logger:   logger.With("component", "rate-service", "provider", p.Name()),
		now:      time.Now,
	}
}

// GetLatestRates returns the cached snapshot unless forceRefresh is set or
// the cache is empty, in which case it fetches a new one. A failed fetch
// falls back to a still-cached snapshot when there is one; otherwise the
// failure is notified and returned.
func (s *RateService) GetLatestRates(
	ctx context.Context,
	forceRefresh, suppressNotification bool,
) (*provider.RateSnapshot, error) {
	if !forceRefresh {
		if snap, ok := s.cache.Get(LatestRatesKey); ok {
			return snap, nil
		}
	}

	v, err, shared := s.group.Do(LatestRatesKey, func() (any, error) {
		return s.fetch(ctx)
	})
	if err != nil {
		if snap, ok := s.cache.Get(LatestRatesKey); ok {
			s.logger.Warn("Using cached rates due to error", "error", err)
			return snap, nil
		}
		s.notify(ctx, notify.LevelError, MsgFetchFailedPrefix+err.Error())
		return nil, err
	}

	if shared {
		s.logger.Debug("Shared in-flight rate fetch")
	}
	if !suppressNotification {
		s.notify(ctx, notify.LevelSuccess, MsgRatesUpdated)
	}
	return v.(*provider.RateSnapshot), nil
}

func (s *RateService) fetch(ctx context.Context) (*provider.RateSnapshot, error) {
	snap, err := s.provider.Latest(ctx)
	if err != nil {
		s.logger.Error("Failed to fetch latest rates", "error", err)
		if !provider.IsRateFetchError(err) {
			err = &provider.RateFetchError{Provider: s.provider.Name(), Err: err}
		}
		return nil, err
	}
	if snap == nil {
		return nil, &provider.RateFetchError{Provider: s.provider.Name(), Err: provider.ErrMalformedPayload}
	}

	s.cache.Put(LatestRatesKey, snap)
	s.mu.Lock()
	s.lastUpdated = s.now()
	s.mu.Unlock()

	s.logger.Info("Rates updated", "count", snap.Len())
	if s.bus != nil {
		if err := s.bus.Emit(context.WithoutCancel(ctx), RatesUpdated{Snapshot: snap}); err != nil {
			s.logger.Warn("Failed to emit rates updated event", "error", err)
		}
	}
	return snap, nil
}

// StartAutoUpdate registers onUpdate, fetches once immediately when
// nothing is cached, and then refetches every refresh interval until
// StopAutoUpdate is called or ctx is cancelled. A tick failure is only
// notified; the next tick is armed regardless.
func (s *RateService) StartAutoUpdate(ctx context.Context, onUpdate UpdateFunc) {
	s.mu.Lock()
	s.onUpdate = onUpdate
	s.loopCtx = ctx
	s.running = true
	s.mu.Unlock()

	if _, ok := s.cache.Get(LatestRatesKey); !ok {
		snap, err := s.GetLatestRates(ctx, true, true)
		switch {
		case err != nil:
			s.notify(ctx, notify.LevelError, MsgInitialFetchError+err.Error())
		case onUpdate != nil:
			onUpdate(snap)
		}
	}
	s.scheduleNext()
}

// StopAutoUpdate cancels the pending tick. It is safe to call more than
// once. A tick already running finishes but does not arm another.
func (s *RateService) StopAutoUpdate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Running reports whether the auto-update loop is armed.
func (s *RateService) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *RateService) scheduleNext() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.interval, s.tick)
}

func (s *RateService) tick() {
	s.mu.Lock()
	ctx, onUpdate := s.loopCtx, s.onUpdate
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		s.logger.Info("Auto update stopped", "reason", err)
		s.StopAutoUpdate()
		return
	}

	defer s.scheduleNext()
	snap, err := s.GetLatestRates(ctx, true, false)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.notify(ctx, notify.LevelError, MsgRefreshFailed+err.Error())
		}
		return
	}
	if onUpdate != nil {
		onUpdate(snap)
	}
}

// LastUpdated returns when rates were last fetched successfully.
func (s *RateService) LastUpdated() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUpdated, !s.lastUpdated.IsZero()
}

// Interval returns the auto-update period.
func (s *RateService) Interval() time.Duration {
	return s.interval
}

func (s *RateService) notify(ctx context.Context, level notify.Level, msg string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, level, msg)
}
