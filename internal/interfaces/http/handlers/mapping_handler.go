package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/domain/mapping"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/errors"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/types/common"
	dtypes "github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/types/discovery"
)

// MappingHandler serves the document mapping resource.
type MappingHandler struct {
	mappings *mapping.Service
}

// NewMappingHandler creates a MappingHandler.
func NewMappingHandler(mappings *mapping.Service) *MappingHandler {
	return &MappingHandler{mappings: mappings}
}

type createMappingBody struct {
	DocumentID string `json:"document_id" binding:"required"`
	RequestID  string `json:"request_id" binding:"required"`
	Source     string `json:"source"`
	Confidence int    `json:"confidence"`
	Reasoning  string `json:"reasoning"`
}

// Create handles POST /api/v1/mappings.  Without an explicit source the
// mapping is a manual addition, which counts toward coverage immediately.
func (h *MappingHandler) Create(c *gin.Context) {
	var body createMappingBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondInvalid(c, "invalid request body: document_id and request_id are required")
		return
	}

	source := dtypes.MappingSource(body.Source)
	if body.Source == "" {
		source = dtypes.SourceManualAddition
	}
	confidence := body.Confidence
	if source == dtypes.SourceManualAddition && confidence == 0 {
		confidence = 100
	}

	m, err := h.mappings.Create(c.Request.Context(),
		common.ID(body.DocumentID), common.ID(body.RequestID), ownerID(c),
		source, confidence, body.Reasoning)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

type reviewMappingBody struct {
	Status string `json:"status" binding:"required"`
}

// Review handles POST /api/v1/mappings/:id/review.
func (h *MappingHandler) Review(c *gin.Context) {
	var body reviewMappingBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondInvalid(c, "invalid request body: status is required")
		return
	}
	status := dtypes.MappingStatus(body.Status)
	if !status.IsReviewed() {
		respondError(c, errors.InvalidParam("status must be accepted or rejected").WithDetail(body.Status))
		return
	}

	m, err := h.mappings.Review(c.Request.Context(), common.ID(c.Param("id")), ownerID(c), status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// Delete handles DELETE /api/v1/mappings/:id.
func (h *MappingHandler) Delete(c *gin.Context) {
	if err := h.mappings.Delete(c.Request.Context(), common.ID(c.Param("id")), ownerID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListByRequest handles GET /api/v1/requests/:id/mappings.
func (h *MappingHandler) ListByRequest(c *gin.Context) {
	ms, err := h.mappings.ListByRequest(c.Request.Context(), common.ID(c.Param("id")), ownerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mappings": ms, "count": len(ms)})
}

// Coverage handles POST /api/v1/requests/:id/coverage.  Recomputes and
// persists the request's coverage on demand.
func (h *MappingHandler) Coverage(c *gin.Context) {
	cov, err := h.mappings.CalculateCoverage(c.Request.Context(), common.ID(c.Param("id")), ownerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cov)
}
