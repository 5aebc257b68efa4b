package cache

import (
	"context"
	"time"

	"canyon-booking/internal/pkg/config"
	"canyon-booking/internal/pkg/errs"

	"github.com/redis/go-redis/v9"
)

// NewClient connects and pings with a short timeout so a missing redis is
// reported at startup rather than on the first request.
func NewClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errs.Wrapf(err, "ping redis at %s", cfg.Addr)
	}
	return client, nil
}
