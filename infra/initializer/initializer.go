package initializer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	infra_provider "github.com/amirasaad/fxchat/infra/provider"
	infra_storage "github.com/amirasaad/fxchat/infra/storage"
	"github.com/amirasaad/fxchat/pkg/app"
	"github.com/amirasaad/fxchat/pkg/config"
	"github.com/amirasaad/fxchat/pkg/eventbus"
	"github.com/amirasaad/fxchat/pkg/provider"
	"github.com/amirasaad/fxchat/pkg/storage"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverDatabase = "database"
)

// Rate provider names.
const (
	ProviderFreeCurrencyAPI = "freecurrencyapi"
	ProviderStatic          = "static"
)

const pingTimeout = 3 * time.Second

// InitializeDependencies builds the infrastructure selected by cfg.
func InitializeDependencies(cfg *config.App) (deps *app.Deps, err error) {
	deps = &app.Deps{}
	logger := setupLogger(cfg.Log)
	deps.Logger = logger

	store, closer, err := initStore(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	deps.Store = store
	if closer != nil {
		deps.Closers = append(deps.Closers, closer)
	}

	deps.RateProvider, err = initRateProvider(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize rate provider: %w", err)
	}

	deps.EventBus = eventbus.NewMemoryBus(logger)
	return deps, nil
}

// initStore picks the storage backend. An unreachable Redis falls back to
// memory so the session still works, without persistence.
func initStore(cfg *config.App, logger *slog.Logger) (storage.Store, io.Closer, error) {
	driver := DriverDatabase
	if cfg.Storage != nil && cfg.Storage.Driver != "" {
		driver = strings.ToLower(cfg.Storage.Driver)
	}

	switch driver {
	case DriverMemory:
		logger.Info("Using in-memory storage")
		return storage.NewMemoryStore(), nil, nil

	case DriverRedis:
		if cfg.Redis == nil || cfg.Redis.URL == "" {
			return nil, nil, fmt.Errorf("storage driver %q requires REDIS_URL", driver)
		}
		store, err := infra_storage.NewRedisStore(cfg.Redis, logger)
		if err != nil {
			return nil, nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			logger.Warn("Redis unreachable, falling back to in-memory storage", "error", err)
			_ = store.Close()
			return storage.NewMemoryStore(), nil, nil
		}
		logger.Info("Using Redis storage", "key_prefix", cfg.Redis.KeyPrefix)
		return store, store, nil

	case DriverDatabase:
		if cfg.DB == nil || cfg.DB.Url == "" {
			return nil, nil, fmt.Errorf("storage driver %q requires DATABASE_URL", driver)
		}
		db, err := infra_storage.NewDBConnection(cfg.DB.Url, cfg.Env)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, err
		}
		store, err := infra_storage.NewGormStore(db)
		if err != nil {
			_ = sqlDB.Close()
			return nil, nil, err
		}
		logger.Info("Using database storage")
		return store, sqlDB, nil

	default:
		return nil, nil, fmt.Errorf("unsupported storage driver %q", driver)
	}
}

func initRateProvider(cfg *config.App, logger *slog.Logger) (provider.RateProvider, error) {
	if cfg.RateProvider == nil {
		return nil, fmt.Errorf("rate provider config is missing")
	}
	name := strings.ToLower(cfg.RateProvider.Name)
	if name == "" {
		name = ProviderFreeCurrencyAPI
	}

	providers := map[string]func() (provider.RateProvider, error){
		ProviderFreeCurrencyAPI: func() (provider.RateProvider, error) {
			if cfg.RateProvider.ApiKey == "" {
				return nil, fmt.Errorf("provider %q requires RATE_PROVIDER_API_KEY", name)
			}
			return infra_provider.NewFreeCurrencyAPI(cfg.RateProvider, logger), nil
		},
		ProviderStatic: func() (provider.RateProvider, error) {
			logger.Warn("Using static rates; values will not change")
			return infra_provider.NewStatic(infra_provider.DefaultStaticRates), nil
		},
	}
	factory, ok := providers[name]
	if !ok {
		return nil, fmt.Errorf("unsupported rate provider %q", name)
	}
	return factory()
}
