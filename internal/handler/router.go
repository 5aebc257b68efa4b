package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"

	"canyon-booking/internal/domain/user"
	"canyon-booking/internal/handler/api"
	"canyon-booking/internal/handler/middleware"
	"canyon-booking/internal/pkg/config"
	"canyon-booking/internal/pkg/metrics"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

// Pinger reports whether a backing store answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

type RouterParams struct {
	fx.In

	Engine       *gin.Engine
	Config       config.Config
	Logger       *slog.Logger
	Metrics      *metrics.Metrics
	DB           Pinger
	Auth         *middleware.AuthMiddleware
	Sessions     *api.SessionHandler
	Bookings     *api.BookingHandler
	Availability *api.AvailabilityHandler
	Products     *api.ProductHandler
	Webhooks     *api.WebhookHandler
}

func NewRouter(p RouterParams) {
	setupMiddleware(p.Engine, p.Config, p.Logger, p.Metrics)
	setupRoutes(p)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, logger *slog.Logger, m *metrics.Metrics) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(logger))
	if cfg.Metrics.Enabled {
		engine.Use(middleware.Metrics(m))
	}
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(p RouterParams) {
	engine := p.Engine
	engine.GET("/health", healthCheck(p.DB))

	if p.Config.Metrics.Enabled {
		engine.GET(p.Config.Metrics.Path, gin.WrapH(p.Metrics.Handler()))
	}
	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	auth := p.Auth
	adminOnly := auth.RequireRole(user.Role.CanHardDelete)

	apiGroup := engine.Group("/api")
	{
		// Public widget endpoints; a token only enriches the logs.
		public := apiGroup.Group("")
		public.Use(auth.OptionalAuth())
		addRoutes(public, []route{
			{Method: http.MethodGet, Path: "/sessions/search/available", Handler: p.Availability.Search},
			{Method: http.MethodGet, Path: "/availability/product", Handler: p.Availability.ForProduct},
			{Method: http.MethodGet, Path: "/availability/next-dates", Handler: p.Availability.NextDates},
		})

		// Authenticated by signature, not by token.
		addRoutes(apiGroup.Group("/webhooks"), []route{
			{Method: http.MethodPost, Path: "/checkout", Handler: p.Webhooks.Checkout},
		})

		sessions := apiGroup.Group("/sessions")
		sessions.Use(auth.RequireAuth())
		{
			addRoutes(sessions, []route{
				{Method: http.MethodGet, Path: "", Handler: p.Sessions.List},
				{Method: http.MethodPost, Path: "", Handler: p.Sessions.Create},
				{Method: http.MethodGet, Path: "/:id", Handler: p.Sessions.Get},
				{Method: http.MethodPut, Path: "/:id", Handler: p.Sessions.Update},
				{Method: http.MethodDelete, Path: "/:id", Handler: p.Sessions.Delete},
				{Method: http.MethodGet, Path: "/:id/alternatives", Handler: p.Sessions.Alternatives},
			})
		}

		bookings := apiGroup.Group("/bookings")
		bookings.Use(auth.RequireAuth())
		{
			addRoutes(bookings, []route{
				{Method: http.MethodPost, Path: "", Handler: p.Bookings.Create},
				{Method: http.MethodGet, Path: "/:id", Handler: p.Bookings.Get},
				{Method: http.MethodPost, Path: "/:id/move", Handler: p.Bookings.Move},
				{Method: http.MethodPost, Path: "/:id/payment", Handler: p.Bookings.ApplyPayment},
				{Method: http.MethodPost, Path: "/:id/cancel", Handler: p.Bookings.Cancel},
				{Method: http.MethodPut, Path: "/:id/participants", Handler: p.Bookings.ReplaceParticipants},
				{Method: http.MethodDelete, Path: "/:id", Handler: p.Bookings.Delete, Mw: []gin.HandlerFunc{adminOnly}},
			})
		}

		products := apiGroup.Group("/products")
		products.Use(auth.RequireAuth())
		{
			addRoutes(products, []route{
				{Method: http.MethodGet, Path: "", Handler: p.Products.List},
				{Method: http.MethodPost, Path: "", Handler: p.Products.Create},
				{Method: http.MethodPut, Path: "/:id", Handler: p.Products.Update},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service and its database are healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func healthCheck(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			slog.Warn("health check: database unreachable", "error", err.Error())
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "degraded",
				"database": "unreachable",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"database": "ok",
		})
	}
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
