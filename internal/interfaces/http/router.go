// Package http wires the gin route tree and HTTP server for the engine.
package http

import (
	"github.com/gin-gonic/gin"

	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/config"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/infrastructure/monitoring/logging"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/infrastructure/monitoring/prometheus"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/interfaces/http/handlers"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handler and middleware dependencies of the
// route tree.  Nil handlers leave their routes unregistered, so tests can
// mount a subset.
type RouterConfig struct {
	RequestHandler    *handlers.RequestHandler
	ImportHandler     *handlers.ImportHandler
	SuggestionHandler *handlers.SuggestionHandler
	MappingHandler    *handlers.MappingHandler
	HealthHandler     *handlers.HealthHandler

	OwnerHeader string

	Logger           logging.Logger
	Metrics          *prometheus.AppMetrics
	MetricsCollector prometheus.MetricsCollector
}

// NewRouter constructs the complete route tree.
func NewRouter(cfg RouterConfig, serverCfg config.ServerConfig) *gin.Engine {
	gin.SetMode(ginMode(serverCfg.Mode))

	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Logger != nil {
		r.Use(middleware.RequestLogging(cfg.Logger, cfg.Metrics))
	}

	// Probes and metrics stay outside the owner-scoped API.
	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Liveness)
		r.GET("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsCollector != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsCollector.Handler()))
	}

	api := r.Group("/api/v1")
	api.Use(middleware.Owner(cfg.OwnerHeader))

	if h := cfg.RequestHandler; h != nil {
		api.POST("/requests", h.Create)
		api.GET("/requests/:id", h.Get)
		api.PATCH("/requests/:id", h.Update)
		api.DELETE("/requests/:id", h.Delete)

		api.GET("/cases/:caseID/requests", h.ListByCase)
		api.GET("/cases/:caseID/requests/next-number", h.NextNumber)
		api.GET("/cases/:caseID/requests/number-exists", h.NumberExists)
		api.GET("/cases/:caseID/stats", h.Stats)
	}

	if h := cfg.ImportHandler; h != nil {
		api.POST("/cases/:caseID/requests/import", h.Import)
		api.POST("/cases/:caseID/requests/import/validate", h.Validate)
	}

	if h := cfg.SuggestionHandler; h != nil {
		api.GET("/requests/:id/suggestions", h.Suggest)
		api.POST("/requests/:id/suggestions", h.Persist)
	}

	if h := cfg.MappingHandler; h != nil {
		api.POST("/mappings", h.Create)
		api.POST("/mappings/:id/review", h.Review)
		api.DELETE("/mappings/:id", h.Delete)
		api.GET("/requests/:id/mappings", h.ListByRequest)
		api.POST("/requests/:id/coverage", h.Coverage)
	}

	return r
}

func ginMode(mode string) string {
	switch mode {
	case "debug":
		return gin.DebugMode
	case "test":
		return gin.TestMode
	default:
		return gin.ReleaseMode
	}
}
