package components

import (
	"canyon-booking/internal/handler"
	"canyon-booking/internal/handler/api"
	"canyon-booking/internal/handler/middleware"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewSessionHandler,
		api.NewBookingHandler,
		api.NewAvailabilityHandler,
		api.NewProductHandler,
		api.NewWebhookHandler,
		middleware.NewAuthMiddleware,
		func(pool *pgxpool.Pool) handler.Pinger { return pool },
	),
	fx.Invoke(handler.NewRouter),
)
