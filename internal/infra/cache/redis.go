// Package cache keeps availability answers in redis. Entries live under a
// generation number; bumping it invalidates every entry at once without a scan.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"canyon-booking/internal/pkg/config"
	"canyon-booking/internal/pkg/errs"
	"canyon-booking/internal/usecase/events"

	"github.com/redis/go-redis/v9"
)

type AvailabilityCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewAvailabilityCache(client redis.UniversalClient, cfg config.RedisConfig) *AvailabilityCache {
	return &AvailabilityCache{client: client, prefix: cfg.Prefix, ttl: cfg.TTL}
}

func (c *AvailabilityCache) generationKey() string {
	return c.prefix + ":generation"
}

func (c *AvailabilityCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, c.generationKey()).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, errs.Wrap(err, "read cache generation")
	}
	return gen, nil
}

func (c *AvailabilityCache) entryKey(gen int64, key string) string {
	return fmt.Sprintf("%s:%d:%s", c.prefix, gen, key)
}

func (c *AvailabilityCache) Get(ctx context.Context, key string, dst any) (bool, int64, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return false, 0, err
	}
	raw, err := c.client.Get(ctx, c.entryKey(gen, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, gen, nil
	}
	if err != nil {
		return false, gen, errs.Wrap(err, "read cache entry")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, gen, errs.Wrap(err, "decode cache entry")
	}
	return true, gen, nil
}

// Set writes under the generation the caller read. After an invalidation that
// generation is no longer read, so a late write of stale data stays invisible.
func (c *AvailabilityCache) Set(ctx context.Context, key string, gen int64, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return errs.Wrap(err, "encode cache entry")
	}
	return errs.Wrap(c.client.Set(ctx, c.entryKey(gen, key), raw, c.ttl).Err(), "write cache entry")
}

// Invalidate moves every reader to a fresh generation; old entries expire on their own.
func (c *AvailabilityCache) Invalidate(ctx context.Context) error {
	return errs.Wrap(c.client.Incr(ctx, c.generationKey()).Err(), "bump cache generation")
}

// Handle lets the cache subscribe to the event dispatcher.
func (c *AvailabilityCache) Handle(ctx context.Context, _ events.Event) error {
	return c.Invalidate(ctx)
}

func (c *AvailabilityCache) Name() string {
	return "availability-cache"
}
