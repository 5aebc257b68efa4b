package bootstrap

import (
	"time"

	"canyon-booking/internal/pkg/config"

	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		config.LoadConfig,
		NewBusinessLocation,
	),
)

// NewBusinessLocation is the zone session dates and start times are expressed in.
func NewBusinessLocation(cfg config.Config) *time.Location {
	return cfg.Server.Location()
}
