package router

import (
	"context"
	"time"

	"github.com/agromart/backend/internal/domain/routing"
	"github.com/agromart/backend/internal/infrastructure/config"
	"github.com/agromart/backend/internal/infrastructure/logger"
	"github.com/agromart/backend/internal/infrastructure/telemetry"
	"github.com/agromart/backend/internal/interfaces/http/handler"
	"github.com/agromart/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EngineConfig holds everything NewEngine needs besides the handlers
type EngineConfig struct {
	ServiceName    string
	HTTP           config.HTTPConfig
	RequestTimeout time.Duration
	TracingEnabled bool
	MetricsPath    string // empty disables the metrics endpoint
	Session        middleware.SessionConfig
	Guard          *routing.Guard
	Metrics        *telemetry.Metrics
	Logger         *zap.Logger
}

// NewEngine builds the gin engine: the shared middleware chain, the v1 API,
// health and metrics endpoints, and the page fallback. ctx bounds background
// work such as rate limiter eviction.
func NewEngine(ctx context.Context, cfg EngineConfig, h Handlers) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	guard := cfg.Guard
	if guard == nil {
		guard = routing.NewGuard()
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Invalid trusted proxies, ignoring", zap.Error(err))
		}
	}

	skip := []string{"/health"}
	if cfg.MetricsPath != "" {
		skip = append(skip, cfg.MetricsPath)
	}

	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		logger.GinMiddleware(log),
		middleware.TracingWithConfig(middleware.TracingConfig{ServiceName: cfg.ServiceName, Enabled: cfg.TracingEnabled}),
		middleware.SecureWithConfig(middleware.DefaultSecurityConfig()),
		middleware.CORSWithConfig(middleware.CORSConfigFromHTTP(cfg.HTTP)),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
		middleware.Timeout(cfg.RequestTimeout),
		middleware.Metrics(cfg.Metrics, skip...),
		middleware.LoadSession(cfg.Session),
		middleware.SpanEnricher(),
	)
	if cfg.HTTP.RateLimitEnabled && cfg.HTTP.RateLimitRequests > 0 {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		go limiter.Run(ctx)
		engine.Use(middleware.RateLimit(limiter))
	}
	engine.Use(middleware.PageGuard(guard, cfg.Metrics))

	engine.GET("/health", h.System.Health)
	if cfg.MetricsPath != "" && cfg.Metrics != nil {
		engine.GET(cfg.MetricsPath, gin.WrapH(cfg.Metrics.Handler()))
	}

	NewRouter(engine, WithAPIVersion("v1")).
		Register(Routes(h, middleware.RequireSession())...).
		Setup()

	pages := handler.NewPageHandler()
	engine.NoRoute(pages.NoRoute)
	engine.NoMethod(pages.NoMethod)

	return engine
}
