package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/infrastructure/monitoring/prometheus"
)

// HealthChecker probes one dependency.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	checks  map[string]HealthChecker
	metrics *prometheus.AppMetrics
}

// NewHealthHandler creates a HealthHandler over the named dependency checks.
// metrics may be nil.
func NewHealthHandler(checks map[string]HealthChecker, metrics *prometheus.AppMetrics) *HealthHandler {
	return &HealthHandler{checks: checks, metrics: metrics}
}

// Liveness handles GET /healthz.  The process is up if it can answer.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz and probes every registered dependency.
func (h *HealthHandler) Readiness(c *gin.Context) {
	components := make(map[string]string, len(h.checks))
	healthy := true
	for name, check := range h.checks {
		status := "ok"
		up := 1.0
		if err := check.HealthCheck(c.Request.Context()); err != nil {
			status = err.Error()
			healthy = false
			up = 0
		}
		components[name] = status
		if h.metrics != nil {
			h.metrics.HealthCheckStatus.WithLabelValues(name).Set(up)
		}
	}

	status := http.StatusOK
	overall := "ok"
	if !healthy {
		status = http.StatusServiceUnavailable
		overall = "degraded"
	}
	c.JSON(status, gin.H{"status": overall, "components": components})
}
