// Package http assembles the gin route tree and the HTTP server wrapper for
// the discovery API.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/CombiRx-Discovery/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CombiRx-Discovery/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/CombiRx-Discovery/internal/interfaces/http/handlers"
	"github.com/turtacn/CombiRx-Discovery/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handler and middleware dependencies required
// to build the complete route tree.
type RouterConfig struct {
	DiscoveryHandler *handlers.DiscoveryHandler
	DatasetHandler   *handlers.DatasetHandler
	HealthHandler    *handlers.HealthHandler

	Logger  logging.Logger
	Metrics *prometheus.AppMetrics

	// MetricsHandler serves GET /metrics when non-nil (the collector's
	// promhttp handler).
	MetricsHandler http.Handler

	CORS    *middleware.CORSConfig
	Logging *middleware.LoggingConfig
}

// NewRouter builds the route tree: global middleware, public probe and
// metrics endpoints, and the /api/v1 resource group.
func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(logger))

	logCfg := middleware.DefaultLoggingConfig()
	if cfg.Logging != nil {
		logCfg = *cfg.Logging
	}
	r.Use(middleware.RequestLogging(logger, logCfg))

	corsCfg := middleware.DefaultCORSConfig()
	if cfg.CORS != nil {
		corsCfg = *cfg.CORS
	}
	r.Use(middleware.CORS(corsCfg))

	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterRoutes(r)
	}
	if cfg.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	api := r.Group("/api/v1")
	if cfg.DiscoveryHandler != nil {
		cfg.DiscoveryHandler.RegisterRoutes(api)
	}
	if cfg.DatasetHandler != nil {
		cfg.DatasetHandler.RegisterRoutes(api)
	}

	return r
}

//Personal.AI order the ending
