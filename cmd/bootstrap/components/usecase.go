package components

import (
	"canyon-booking/internal/pkg/clock"
	"canyon-booking/internal/pkg/config"
	"canyon-booking/internal/usecase"
	"canyon-booking/internal/usecase/commands"
	"canyon-booking/internal/usecase/events"
	"canyon-booking/internal/usecase/queries"
	"canyon-booking/internal/usecase/shared"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseCommandsModule,
	usecaseQueriesModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	usecase.NewTokenValidator,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewBookingUseCase,
		commands.NewSessionUseCase,
		commands.NewProductUseCase,
		NewCheckoutUseCase,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewSessionQueries,
		queries.NewAvailabilityQueries,
		queries.NewBookingQueries,
		queries.NewProductQueries,
	),
)

func NewCheckoutUseCase(
	uow shared.UnitOfWork,
	clk clock.Clock,
	publisher events.Publisher,
	recorder commands.AllocationRecorder,
	cfg config.Config,
) commands.CheckoutCommands {
	return commands.NewCheckoutUseCase(uow, clk, publisher, recorder, cfg.Webhook.CheckoutSecret)
}
