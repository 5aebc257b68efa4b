package bootstrap

import (
	"canyon-booking/internal/pkg/config"
	"canyon-booking/internal/pkg/metrics"
	"canyon-booking/internal/usecase/commands"

	"go.uber.org/fx"
)

var MetricsModule = fx.Module("metrics",
	fx.Provide(
		metrics.New,
		NewAllocationRecorder,
	),
)

func NewAllocationRecorder(cfg config.Config, m *metrics.Metrics) commands.AllocationRecorder {
	if !cfg.Metrics.Enabled {
		return commands.NopRecorder{}
	}
	return m
}
