package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/application/discovery"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/infrastructure/monitoring/prometheus"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/types/common"
)

// ImportHandler serves bulk import of served discovery text.
type ImportHandler struct {
	importer *discovery.Importer
	metrics  *prometheus.AppMetrics
}

// NewImportHandler creates an ImportHandler.  metrics may be nil.
func NewImportHandler(importer *discovery.Importer, metrics *prometheus.AppMetrics) *ImportHandler {
	return &ImportHandler{importer: importer, metrics: metrics}
}

type importBody struct {
	Text string `json:"text" binding:"required"`
}

// Import handles POST /api/v1/cases/:caseID/requests/import.
func (h *ImportHandler) Import(c *gin.Context) {
	var body importBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondInvalid(c, "invalid request body: text is required")
		return
	}

	start := time.Now()
	result, err := h.importer.BulkImport(c.Request.Context(),
		common.CaseID(c.Param("caseID")), ownerID(c), body.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	prometheus.RecordImport(h.metrics, result.Imported, result.Failed, time.Since(start))

	status := http.StatusCreated
	if result.Imported == 0 {
		status = http.StatusConflict
	}
	c.JSON(status, result)
}

// Validate handles POST /api/v1/cases/:caseID/requests/import/validate.
// A dry run: nothing is persisted.
func (h *ImportHandler) Validate(c *gin.Context) {
	var body importBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondInvalid(c, "invalid request body: text is required")
		return
	}
	c.JSON(http.StatusOK, h.importer.ValidateImportText(body.Text))
}
