// Package server assembles the HTTP engine from the module routers.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	circleRouter "github.com/festy23/kurukatsu/internal/circle/router"
	"github.com/festy23/kurukatsu/internal/config"
	"github.com/festy23/kurukatsu/internal/events"
	"github.com/festy23/kurukatsu/internal/health"
	joinRequestRouter "github.com/festy23/kurukatsu/internal/joinrequest/router"
	memberRouter "github.com/festy23/kurukatsu/internal/member/router"
	"github.com/festy23/kurukatsu/internal/metrics"
	"github.com/festy23/kurukatsu/internal/middleware"
	"github.com/festy23/kurukatsu/internal/notify"
	statisticsRouter "github.com/festy23/kurukatsu/internal/statistics/router"
	userRouter "github.com/festy23/kurukatsu/internal/user/router"
	"github.com/festy23/kurukatsu/internal/validation"
)

// Deps are the shared components the routers are built from.
type Deps struct {
	DB *gorm.DB
	// Redis is only used for health reporting and may be nil.
	Redis    redis.UniversalClient
	Bus      *events.Bus
	Notifier notify.Notifier
	Metrics  *metrics.Metrics
	Tokens   middleware.TokenParser
	Logger   *zap.SugaredLogger
}

// NewBus creates the count event bus and reports delivery results to m.
func NewBus(cfg config.EventsConfig, m *metrics.Metrics, logger *zap.SugaredLogger) *events.Bus {
	return events.NewBus(cfg.SubscriberBuffer, logger, events.WithObserver(func(kind events.Kind, result string) {
		m.ObserveCountEvent(string(kind), result)
	}))
}

// NewRouter builds the gin engine. /health and /metrics are public; every
// other route requires a bearer token.
func NewRouter(cfg config.Config, deps Deps) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	if err := validation.Register(); err != nil {
		deps.Logger.Warnw("Validator setup failed, errors report struct field names", "error", err)
	}

	r := gin.New()
	r.Use(
		middleware.RequestIDs(),
		middleware.Logger(deps.Logger),
		middleware.Recovery(deps.Logger),
		middleware.Metrics(deps.Metrics),
		middleware.CORS(cfg.Server.AllowedOrigins),
		middleware.SecureHeaders(cfg.GinMode != gin.ReleaseMode, deps.Logger),
	)

	r.GET("/health", health.New(deps.DB, deps.Redis, deps.Logger).Check)
	r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	api := r.Group("/", middleware.Auth(deps.Tokens, deps.Logger))
	userRouter.RegisterRoutes(api, deps.DB, deps.Logger)
	circleRouter.RegisterRoutes(api, deps.DB, deps.Bus, deps.Metrics, cfg.Server.AllowedOrigins, deps.Logger)
	memberRouter.RegisterRoutes(api, deps.DB, deps.Bus, deps.Notifier, deps.Metrics, deps.Logger)
	joinRequestRouter.RegisterRoutes(api, deps.DB, deps.Bus, deps.Notifier, deps.Metrics, deps.Logger)
	statisticsRouter.RegisterRoutes(api, deps.DB, deps.Logger)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "route not found"}})
	})

	return r
}

// NewHTTPServer wraps handler with the configured timeouts.
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.GetAddress(),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}
