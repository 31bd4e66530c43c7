package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/amirasaad/fxchat/pkg/config"
	"github.com/amirasaad/fxchat/pkg/storage"
	"github.com/redis/go-redis/v9"
)

// RedisStore implements storage.Store on top of Redis string keys.
// Values never expire.
type RedisStore struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// NewRedisStore creates a RedisStore from the Redis config section.
func NewRedisStore(cfg *config.Redis, logger *slog.Logger) (*RedisStore, error) {
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if cfg.PoolSize > 0 {
		opt.PoolSize = cfg.PoolSize
	}
	if cfg.DialTimeout > 0 {
		opt.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opt.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opt.WriteTimeout = cfg.WriteTimeout
	}
	return NewRedisStoreWithOptions(opt, cfg.KeyPrefix, logger), nil
}

// NewRedisStoreWithOptions creates a RedisStore from redis.Options.
func NewRedisStoreWithOptions(
	opt *redis.Options,
	prefix string,
	logger *slog.Logger,
) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(opt),
		prefix: prefix,
		logger: logger.With("store", "redis"),
	}
}

func (r *RedisStore) key(key string) string {
	return r.prefix + key
}

// Ping checks connectivity.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) Load(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		r.logger.Debug("Redis store miss", "key", key)
		return nil, storage.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Redis store get error", "key", key, "error", err)
		return nil, err
	}
	return val, nil
}

func (r *RedisStore) Save(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		r.logger.Error("Redis store set error", "key", key, "error", err)
		return err
	}
	r.logger.Debug("Redis store set", "key", key, "bytes", len(value))
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		r.logger.Error("Redis store delete error", "key", key, "error", err)
		return err
	}
	r.logger.Debug("Redis store delete", "key", key)
	return nil
}

// Close releases the underlying connection pool.
func (r *RedisStore) Close() error {
	return r.client.Close()
}

// Ensure RedisStore implements storage.Store
var _ storage.Store = (*RedisStore)(nil)
