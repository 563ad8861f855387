package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/application/discovery"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/infrastructure/monitoring/prometheus"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/types/common"
)

// SuggestionHandler serves the matching engine.
type SuggestionHandler struct {
	engine  *discovery.Engine
	metrics *prometheus.AppMetrics
}

// NewSuggestionHandler creates a SuggestionHandler.  metrics may be nil.
func NewSuggestionHandler(engine *discovery.Engine, metrics *prometheus.AppMetrics) *SuggestionHandler {
	return &SuggestionHandler{engine: engine, metrics: metrics}
}

// Suggest handles GET /api/v1/requests/:id/suggestions.
// Query parameters limit and min_confidence override the configured defaults.
func (h *SuggestionHandler) Suggest(c *gin.Context) {
	var opts discovery.SuggestOptions
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respondInvalid(c, "limit must be a positive integer")
			return
		}
		opts.Limit = n
	}
	if v := c.Query("min_confidence"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > 100 {
			respondInvalid(c, "min_confidence must be in [0, 100]")
			return
		}
		opts.MinConfidence = n
	}

	start := time.Now()
	suggestions, err := h.engine.SuggestDocuments(c.Request.Context(),
		common.ID(c.Param("id")), ownerID(c), opts)
	prometheus.RecordSuggestionRun(h.metrics, "preview", len(suggestions), err, time.Since(start))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions, "count": len(suggestions)})
}

// Persist handles POST /api/v1/requests/:id/suggestions.  The surviving
// candidates become suggested mappings awaiting review.
func (h *SuggestionHandler) Persist(c *gin.Context) {
	start := time.Now()
	created, err := h.engine.CreateAISuggestions(c.Request.Context(),
		common.ID(c.Param("id")), ownerID(c))
	prometheus.RecordSuggestionRun(h.metrics, "persist", len(created), err, time.Since(start))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"mappings": created, "count": len(created)})
}
