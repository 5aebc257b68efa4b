package bootstrap

import (
	"context"
	"log/slog"

	"canyon-booking/internal/infra/broker"
	"canyon-booking/internal/pkg/config"
	"canyon-booking/internal/usecase/events"

	"go.uber.org/fx"
)

var EventsModule = fx.Module("events",
	fx.Provide(
		NewBrokerSinks,
		fx.Annotate(
			NewDispatcher,
			fx.ParamTags(``, ``, ``, `group:"event_sinks"`),
			fx.As(new(events.Publisher)),
		),
	),
)

type SinkResult struct {
	fx.Out

	Sinks []broker.Sink `group:"event_sinks,flatten"`
}

func NewBrokerSinks(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) SinkResult {
	if !cfg.Broker.Enabled {
		logger.Info("event broker disabled; events stay in process")
		return SinkResult{}
	}
	sink := broker.NewAMQPSink(cfg.Broker)
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return sink.Close()
		},
	})
	return SinkResult{Sinks: []broker.Sink{sink}}
}

func NewDispatcher(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger, sinks []broker.Sink) *broker.Dispatcher {
	d := broker.NewDispatcher(cfg.Broker.BufferSize, logger, sinks...)
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			d.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return d.Stop(ctx)
		},
	})
	return d
}
