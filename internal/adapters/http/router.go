package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotebook/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quotebook/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quotebook/internal/platform/telemetry"
)

// DefaultRequestTimeout is the default deadline of API requests.
const DefaultRequestTimeout = 30 * time.Second

// RouterConfig contains what SetupRouter wires together.
type RouterConfig struct {
	Logger      *slog.Logger
	ServiceName string

	HealthHandler *handlers.HealthHandler
	QuoteHandler  *handlers.QuoteHandler

	// Timeout is the API request deadline. Zero disables it.
	Timeout time.Duration
}

// SetupRouter installs the middleware chain and registers the routes.
// Middleware order:
//  1. Recovery
//  2. Context logger
//  3. Request ID and correlation ID
//  4. OpenTelemetry tracing and metrics
//  5. Request logging (skips /-/)
//
// API routes under /api/v1 also get the request timeout. Probes under /-/
// do not.
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	engine.Use(
		middleware.Recovery(),
		middleware.ContextLogger(logger),
		middleware.RequestID(),
		middleware.CorrelationID(),
	)
	engine.Use(telemetry.Middleware(cfg.ServiceName)...)
	engine.Use(middleware.Logging())

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterHealthRoutes(engine.Group("/-"))
	}

	if cfg.QuoteHandler == nil {
		return
	}

	apiV1 := engine.Group("/api/v1")
	if cfg.Timeout > 0 {
		apiV1.Use(middleware.Timeout(cfg.Timeout))
	}

	cfg.QuoteHandler.RegisterQuoteRoutes(apiV1)
}
