// Package app assembles the rate service, currency registry, conversion
// engine, history and chat session into one running application.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/amirasaad/fxchat/pkg/cache"
	"github.com/amirasaad/fxchat/pkg/chat"
	"github.com/amirasaad/fxchat/pkg/config"
	"github.com/amirasaad/fxchat/pkg/conversion"
	"github.com/amirasaad/fxchat/pkg/currency"
	"github.com/amirasaad/fxchat/pkg/eventbus"
	"github.com/amirasaad/fxchat/pkg/exchange"
	"github.com/amirasaad/fxchat/pkg/history"
	"github.com/amirasaad/fxchat/pkg/notify"
	"github.com/amirasaad/fxchat/pkg/provider"
	"github.com/amirasaad/fxchat/pkg/storage"
)

// Deps are the infrastructure pieces chosen by configuration.
type Deps struct {
	Store        storage.Store
	RateProvider provider.RateProvider
	EventBus     eventbus.Bus
	Logger       *slog.Logger
	// Closers are released by Stop, in order.
	Closers []io.Closer
}

type App struct {
	Deps   *Deps
	Config *config.App

	Notifier   *notify.Notifier
	RateCache  *cache.TTL[*provider.RateSnapshot]
	Rates      *exchange.RateService
	Currencies *currency.Registry
	Converter  *conversion.Engine
	History    *history.Store
	Bot        *chat.Bot

	cancel context.CancelFunc
}

// New wires the services on top of deps. It restores persisted history and
// the user name but does not touch the rate provider; call Start for that.
func New(ctx context.Context, deps *Deps, cfg *config.App) (*App, error) {
	if deps == nil || deps.Store == nil || deps.RateProvider == nil {
		return nil, errors.New("app: store and rate provider are required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.EventBus == nil {
		deps.EventBus = eventbus.NewMemoryBus(deps.Logger)
	}
	cfg = withDefaults(cfg)
	logger := deps.Logger

	a := &App{Deps: deps, Config: cfg}
	a.setupEventBus()

	a.Notifier = notify.New(cfg.Notification.StatusTTL, deps.EventBus, logger)
	a.RateCache = cache.New[*provider.RateSnapshot](cfg.RateCache.TTL)
	a.Rates = exchange.NewRateService(deps.RateProvider, a.RateCache, exchange.Config{
		RefreshInterval: cfg.RateProvider.RefreshInterval,
		Notifier:        a.Notifier,
		Bus:             deps.EventBus,
	}, logger)

	var err error
	a.Currencies, err = currency.NewRegistry(deps.Store, a.Rates, a.Notifier, logger)
	if err != nil {
		return nil, err
	}
	a.Converter = conversion.NewEngine(a.Currencies, cfg.Conversion.LookupTimeout, logger)

	a.History, err = history.New(ctx, deps.Store, cfg.History.MaxEntries, logger)
	if err != nil {
		return nil, fmt.Errorf("restore history: %w", err)
	}

	a.Bot, err = chat.NewBot(ctx, chat.Deps{
		Currencies: a.Currencies,
		Converter:  a.Converter,
		History:    a.History,
		Store:      deps.Store,
	}, logger)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Start initializes the currency registry and arms the auto-update loop.
// A failed initialization leaves the registry on its fallback set and is
// logged, not returned; the loop retries on its own schedule.
func (a *App) Start(ctx context.Context) {
	ctx, a.cancel = context.WithCancel(ctx)
	logger := a.Deps.Logger

	if err := a.Currencies.Initialize(ctx); err != nil {
		logger.Warn("Currencies initialized with fallback set", "error", err)
	}
	a.Rates.StartAutoUpdate(ctx, a.Currencies.ApplySnapshot)
	logger.Info("Auto update started", "interval", a.Rates.Interval())
}

// Refresh forces a fetch and applies the result to the registry.
func (a *App) Refresh(ctx context.Context) (*provider.RateSnapshot, error) {
	snap, err := a.Rates.GetLatestRates(ctx, true, false)
	if err != nil {
		return nil, err
	}
	a.Currencies.ApplySnapshot(snap)
	return snap, nil
}

// Status summarizes the running engine.
type Status struct {
	Provider        string         `json:"provider"`
	AutoUpdate      bool           `json:"autoUpdate"`
	RefreshInterval string         `json:"refreshInterval"`
	LastUpdated     *time.Time     `json:"lastUpdated,omitempty"`
	Currencies      int            `json:"currencies"`
	CustomCount     int            `json:"customCurrencies"`
	HistoryEntries  int            `json:"historyEntries"`
	UserName        string         `json:"userName,omitempty"`
	Notification    *notify.Status `json:"notification,omitempty"`
}

func (a *App) Status() Status {
	s := Status{
		Provider:        a.Deps.RateProvider.Name(),
		AutoUpdate:      a.Rates.Running(),
		RefreshInterval: a.Rates.Interval().String(),
		Currencies:      a.Currencies.Len(),
		CustomCount:     len(a.Currencies.Custom()),
		HistoryEntries:  a.History.Len(),
		UserName:        a.Bot.UserName(),
	}
	if t, ok := a.Rates.LastUpdated(); ok {
		s.LastUpdated = &t
	}
	if st, ok := a.Notifier.Current(); ok {
		s.Notification = &st
	}
	return s
}

// Stop halts the auto-update loop and releases infrastructure.
func (a *App) Stop() error {
	if a.cancel != nil {
		a.cancel()
	}
	a.Rates.StopAutoUpdate()
	a.Notifier.Close()

	var errs []error
	for _, c := range a.Deps.Closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func withDefaults(cfg *config.App) *config.App {
	if cfg == nil {
		cfg = &config.App{}
	}
	if cfg.RateProvider == nil {
		cfg.RateProvider = &config.RateProvider{RefreshInterval: exchange.DefaultRefreshInterval}
	}
	if cfg.RateCache == nil {
		cfg.RateCache = &config.RateCache{TTL: cache.DefaultTTL}
	}
	if cfg.Conversion == nil {
		cfg.Conversion = &config.Conversion{LookupTimeout: conversion.DefaultLookupTimeout}
	}
	if cfg.History == nil {
		cfg.History = &config.History{MaxEntries: history.DefaultMaxEntries}
	}
	if cfg.Notification == nil {
		cfg.Notification = &config.Notification{StatusTTL: notify.DefaultTTL}
	}
	return cfg
}
