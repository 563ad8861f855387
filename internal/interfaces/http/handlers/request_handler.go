package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/domain/request"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/types/common"
	dtypes "github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/types/discovery"
)

// RequestHandler serves the discovery request resource.
type RequestHandler struct {
	requests *request.Service
}

// NewRequestHandler creates a RequestHandler.
func NewRequestHandler(requests *request.Service) *RequestHandler {
	return &RequestHandler{requests: requests}
}

type createRequestBody struct {
	CaseID   string `json:"case_id" binding:"required"`
	Type     string `json:"type" binding:"required"`
	Number   int    `json:"number" binding:"required"`
	Text     string `json:"text" binding:"required"`
	Category string `json:"category"`
}

// Create handles POST /api/v1/requests.
func (h *RequestHandler) Create(c *gin.Context) {
	var body createRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondInvalid(c, "invalid request body: case_id, type, number and text are required")
		return
	}

	req, err := h.requests.Create(c.Request.Context(),
		common.CaseID(body.CaseID), ownerID(c),
		dtypes.RequestType(body.Type), body.Number, body.Text,
		dtypes.Category(body.Category))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

// Get handles GET /api/v1/requests/:id.
func (h *RequestHandler) Get(c *gin.Context) {
	req, err := h.requests.Get(c.Request.Context(), common.ID(c.Param("id")), ownerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// ListByCase handles GET /api/v1/cases/:caseID/requests.
func (h *RequestHandler) ListByCase(c *gin.Context) {
	reqs, err := h.requests.ListByCase(c.Request.Context(), common.CaseID(c.Param("caseID")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": reqs, "count": len(reqs)})
}

type updateRequestBody struct {
	Text               *string `json:"text"`
	Category           *string `json:"category"`
	Status             *string `json:"status"`
	CoveragePercentage *int    `json:"coverage_percentage"`
}

// Update handles PATCH /api/v1/requests/:id.
func (h *RequestHandler) Update(c *gin.Context) {
	var body updateRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondInvalid(c, "invalid request body")
		return
	}

	in := request.UpdateInput{
		Text:               body.Text,
		CoveragePercentage: body.CoveragePercentage,
	}
	if body.Category != nil {
		cat := dtypes.Category(*body.Category)
		in.Category = &cat
	}
	if body.Status != nil {
		status := dtypes.RequestStatus(*body.Status)
		in.Status = &status
	}

	req, err := h.requests.Update(c.Request.Context(), common.ID(c.Param("id")), ownerID(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// Delete handles DELETE /api/v1/requests/:id.
func (h *RequestHandler) Delete(c *gin.Context) {
	if err := h.requests.Delete(c.Request.Context(), common.ID(c.Param("id")), ownerID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// NextNumber handles GET /api/v1/cases/:caseID/requests/next-number?type=RFP.
func (h *RequestHandler) NextNumber(c *gin.Context) {
	reqType := dtypes.RequestType(c.Query("type"))
	number, err := h.requests.NextRequestNumber(c.Request.Context(), common.CaseID(c.Param("caseID")), reqType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"type": reqType, "next_number": number})
}

// NumberExists handles GET /api/v1/cases/:caseID/requests/number-exists?type=RFP&number=3.
func (h *RequestHandler) NumberExists(c *gin.Context) {
	reqType := dtypes.RequestType(c.Query("type"))
	number, err := strconv.Atoi(c.Query("number"))
	if err != nil {
		respondInvalid(c, "number must be an integer")
		return
	}

	exists, err := h.requests.NumberExists(c.Request.Context(), common.CaseID(c.Param("caseID")), reqType, number)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"type": reqType, "number": number, "exists": exists})
}

// Stats handles GET /api/v1/cases/:caseID/stats.
func (h *RequestHandler) Stats(c *gin.Context) {
	stats, err := h.requests.Stats(c.Request.Context(), common.CaseID(c.Param("caseID")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
