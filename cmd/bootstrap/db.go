package bootstrap

import (
	"context"
	"log/slog"

	"canyon-booking/internal/infra/db"
	"canyon-booking/internal/pkg/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

// DBModule exposes one pool as both the UoW's connection source and the read stores' DBTX.
var DBModule = fx.Module("db",
	fx.Provide(
		NewDB,
		func(pool *pgxpool.Pool) db.DBTX { return pool },
	),
)

func NewDB(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	pool, closePool, err := db.Connect(cfg.DB)
	if err != nil {
		return nil, err
	}
	logger.Info("database pool ready",
		"host", cfg.DB.Host, "database", cfg.DB.DBName, "max_conns", pool.Config().MaxConns)

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			stat := pool.Stat()
			logger.Info("closing database pool", "acquired", stat.AcquiredConns(), "total", stat.TotalConns())
			closePool()
			return nil
		},
	})
	return pool, nil
}
