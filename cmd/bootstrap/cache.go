package bootstrap

import (
	"context"
	"log/slog"

	"canyon-booking/internal/infra/broker"
	"canyon-booking/internal/infra/cache"
	"canyon-booking/internal/pkg/config"
	"canyon-booking/internal/usecase/queries"

	"go.uber.org/fx"
)

var CacheModule = fx.Module("cache",
	fx.Provide(
		NewAvailabilityCache,
	),
)

type CacheResult struct {
	fx.Out

	Cache queries.Cache
	// Invalidation runs as an event sink so every committed write drops stale answers.
	Sinks []broker.Sink `group:"event_sinks,flatten"`
}

func NewAvailabilityCache(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (CacheResult, error) {
	if !cfg.Redis.Enabled {
		logger.Info("availability cache disabled")
		return CacheResult{Cache: queries.NopCache{}}, nil
	}

	client, err := cache.NewClient(cfg.Redis)
	if err != nil {
		return CacheResult{}, err
	}
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return client.Close()
		},
	})

	c := cache.NewAvailabilityCache(client, cfg.Redis)
	logger.Info("availability cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.TTL)
	return CacheResult{Cache: c, Sinks: []broker.Sink{c}}, nil
}
