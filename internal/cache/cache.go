// Package cache is a small read-through cache in front of the leaderboard
// and count queries. Without a redis address it passes every call through.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"geocache/internal/config"
)

const keyPrefix = "geocache:"

type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// Connect opens the configured redis and pings it.
func Connect(ctx context.Context, cfg config.RedisConfig) (*Cache, error) {
	if cfg.Address == "" {
		logrus.Info("Redis not configured, caching disabled")
		return &Cache{}, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	logrus.WithField("address", cfg.Address).Info("Redis connection opened")
	return New(rdb, cfg.TTL), nil
}

func New(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

func (c *Cache) Enabled() bool {
	return c != nil && c.rdb != nil
}

// Remember returns the cached value for key, or calls load and caches its
// result. Redis failures are logged and fall back to load.
func Remember[T any](ctx context.Context, c *Cache, key string, load func(context.Context) (T, error)) (T, error) {
	if !c.Enabled() {
		return load(ctx)
	}
	key = keyPrefix + key

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, nil
		}
		logrus.WithField("key", key).Warn("Cache: dropping undecodable entry")
	case !errors.Is(err, redis.Nil):
		logrus.WithError(err).WithField("key", key).Warn("Cache: read failed")
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	if b, err := json.Marshal(v); err == nil {
		if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
			logrus.WithError(err).WithField("key", key).Warn("Cache: write failed")
		}
	}
	return v, nil
}

// Forget drops cached keys.
func (c *Cache) Forget(ctx context.Context, keys ...string) {
	if !c.Enabled() || len(keys) == 0 {
		return
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = keyPrefix + k
	}
	if err := c.rdb.Del(ctx, full...).Err(); err != nil {
		logrus.WithError(err).Warn("Cache: delete failed")
	}
}

func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Close()
}
