// Command worker consumes booking events from the broker and sends notifications.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"canyon-booking/cmd/bootstrap"
	"canyon-booking/internal/infra/broker"
	"canyon-booking/internal/infra/notify"
	"canyon-booking/internal/infra/readstore"
	"canyon-booking/internal/pkg/clock"
	"canyon-booking/internal/pkg/config"
	"canyon-booking/internal/usecase/queries"

	"go.uber.org/fx"
)

var notifyModule = fx.Module("notify",
	fx.Provide(
		clock.NewRealClock,
		readstore.NewSessionReadStore,
		fx.Annotate(
			readstore.NewBookingReadStore,
			fx.As(new(queries.BookingReadStore)),
		),
		queries.NewBookingQueries,
		fx.Annotate(
			notify.NewLogSender,
			fx.As(new(notify.Sender)),
		),
		notify.NewNotifier,
		newConsumer,
	),
)

func newConsumer(cfg config.Config, n *notify.Notifier, logger *slog.Logger) *broker.Consumer {
	return broker.NewConsumer(cfg.Broker, n.Handle, logger)
}

func runConsumer(lc fx.Lifecycle, c *broker.Consumer, logger *slog.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			logger.Info("starting event consumer")
			go func() {
				defer close(done)
				if err := c.Run(ctx); err != nil {
					logger.Error("event consumer stopped", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}

func main() {
	app := fx.New(
		bootstrap.ConfigModule,
		bootstrap.LoggerModule,
		bootstrap.DBModule,
		notifyModule,
		fx.Invoke(runConsumer),
	)

	if err := app.Start(context.Background()); err != nil {
		slog.Error("failed to start worker", "error", err)
		os.Exit(1)
	}

	<-app.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Stop(ctx); err != nil {
		slog.Error("failed to stop worker cleanly", "error", err)
	}
}
