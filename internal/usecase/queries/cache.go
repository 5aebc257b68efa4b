package queries

import (
	"context"
	"log/slog"
)

// Cache stores availability answers for a short time. Writers invalidate it
// through the event dispatcher; a miss or a broken cache only costs a recompute.
//
// Get reports the generation it read. Set stores under that generation, so an
// answer computed before an invalidation is never visible after it.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (hit bool, generation int64, err error)
	Set(ctx context.Context, key string, generation int64, v any) error
}

type NopCache struct{}

func (NopCache) Get(context.Context, string, any) (bool, int64, error) { return false, 0, nil }
func (NopCache) Set(context.Context, string, int64, any) error         { return nil }

func cached[T any](ctx context.Context, c Cache, key string, load func() (T, error)) (T, error) {
	var hit T
	ok, gen, err := c.Get(ctx, key, &hit)
	if err != nil {
		slog.WarnContext(ctx, "availability cache read failed", "key", key, "error", err.Error())
		return load()
	}
	if ok {
		return hit, nil
	}

	v, err := load()
	if err != nil {
		return v, err
	}
	if err := c.Set(ctx, key, gen, v); err != nil {
		slog.WarnContext(ctx, "availability cache write failed", "key", key, "error", err.Error())
	}
	return v, nil
}
