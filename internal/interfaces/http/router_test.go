package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/application/discovery"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/config"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/domain/document"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/domain/mapping"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/domain/request"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/intelligence/category"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/intelligence/daterange"
	apihttp "github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/interfaces/http"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/interfaces/http/handlers"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/testutil"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/types/common"
	dtypes "github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/types/discovery"
)

const (
	testOwner = "owner-1"
	testCase  = "case-1"
)

type env struct {
	router   http.Handler
	docs     *testutil.MemoryDocumentRepo
	requests *request.Service
}

func newEnv(t *testing.T) *env {
	t.Helper()

	logger := testutil.NewMockLogger()
	detector := category.NewDetector()
	dates := daterange.NewParser()

	requestRepo := testutil.NewMemoryRequestRepo()
	mappingRepo := testutil.NewMemoryMappingRepo()
	docRepo := testutil.NewMemoryDocumentRepo(mappingRepo)

	requestSvc := request.NewService(requestRepo, detector, dates, nil, logger)
	mappingSvc := mapping.NewService(mappingRepo, requestRepo, nil, nil, logger)
	importer := discovery.NewImporter(requestSvc, nil, logger)
	engine := discovery.NewEngine(requestSvc, docRepo, mappingSvc, detector, dates, nil,
		config.MatchingConfig{
			DefaultLimit:            10,
			DefaultMinConfidence:    30,
			SuggestionMinConfidence: 50,
			SemanticMinSimilarity:   0.1,
			SemanticLimit:           100,
		}, logger)

	router := apihttp.NewRouter(apihttp.RouterConfig{
		RequestHandler:    handlers.NewRequestHandler(requestSvc),
		ImportHandler:     handlers.NewImportHandler(importer, nil),
		SuggestionHandler: handlers.NewSuggestionHandler(engine, nil),
		MappingHandler:    handlers.NewMappingHandler(mappingSvc),
		HealthHandler:     handlers.NewHealthHandler(nil, nil),
		Logger:            logger,
	}, config.ServerConfig{Mode: "test"})

	return &env{router: router, docs: docRepo, requests: requestSvc}
}

func (e *env) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Owner-ID", testOwner)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest))
}

func (e *env) createRequest(t *testing.T, number int, text string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/v1/requests", map[string]interface{}{
		"case_id": testCase,
		"type":    "RFP",
		"number":  number,
		"text":    text,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID string `json:"id"`
	}
	decode(t, w, &created)
	return created.ID
}

func TestOwnerHeaderRequired(t *testing.T) {
	e := newEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cases/"+testCase+"/requests", nil)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHealthEndpointsBypassOwnerHeader(t *testing.T) {
	e := newEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateRequest(t *testing.T) {
	e := newEnv(t)
	w := e.do(t, http.MethodPost, "/api/v1/requests", map[string]interface{}{
		"case_id": testCase,
		"type":    "RFP",
		"number":  1,
		"text":    "All bank statements and tax returns from January 2020 to December 2023.",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		ID       string `json:"id"`
		Category string `json:"category"`
		Status   string `json:"status"`
	}
	decode(t, w, &created)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, string(dtypes.CategoryFinancial), created.Category)
	assert.Equal(t, string(dtypes.StatusIncomplete), created.Status)
}

func TestCreateRequest_DuplicateNumberConflicts(t *testing.T) {
	e := newEnv(t)
	e.createRequest(t, 1, "All employment contracts.")

	w := e.do(t, http.MethodPost, "/api/v1/requests", map[string]interface{}{
		"case_id": testCase,
		"type":    "RFP",
		"number":  1,
		"text":    "All pay stubs.",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	var resp struct {
		Code string `json:"code"`
	}
	decode(t, w, &resp)
	assert.Equal(t, "REQ_002", resp.Code)
}

func TestCreateRequest_MissingFields(t *testing.T) {
	e := newEnv(t)
	w := e.do(t, http.MethodPost, "/api/v1/requests", map[string]interface{}{
		"case_id": testCase,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetRequest_ForeignOwnerIsNotFound(t *testing.T) {
	e := newEnv(t)
	id := e.createRequest(t, 1, "All medical records.")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/requests/"+id, nil)
	req.Header.Set("X-Owner-ID", "someone-else")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateRequest_TextRedetectsCategory(t *testing.T) {
	e := newEnv(t)
	id := e.createRequest(t, 1, "All bank statements and tax returns.")

	text := "All medical records and hospital treatment notes."
	w := e.do(t, http.MethodPatch, "/api/v1/requests/"+id, map[string]interface{}{"text": text})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated struct {
		Category string `json:"category"`
	}
	decode(t, w, &updated)
	assert.Equal(t, string(dtypes.CategoryMedical), updated.Category)
}

func TestDeleteRequest(t *testing.T) {
	e := newEnv(t)
	id := e.createRequest(t, 1, "All property deeds.")

	w := e.do(t, http.MethodDelete, "/api/v1/requests/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = e.do(t, http.MethodGet, "/api/v1/requests/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListNextNumberAndExists(t *testing.T) {
	e := newEnv(t)
	e.createRequest(t, 1, "All bank statements.")
	e.createRequest(t, 2, "All tax returns.")

	w := e.do(t, http.MethodGet, "/api/v1/cases/"+testCase+"/requests", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Count int `json:"count"`
	}
	decode(t, w, &list)
	assert.Equal(t, 2, list.Count)

	w = e.do(t, http.MethodGet, "/api/v1/cases/"+testCase+"/requests/next-number?type=RFP", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var next struct {
		NextNumber int `json:"next_number"`
	}
	decode(t, w, &next)
	assert.Equal(t, 3, next.NextNumber)

	w = e.do(t, http.MethodGet, "/api/v1/cases/"+testCase+"/requests/number-exists?type=RFP&number=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var exists struct {
		Exists bool `json:"exists"`
	}
	decode(t, w, &exists)
	assert.True(t, exists.Exists)

	w = e.do(t, http.MethodGet, "/api/v1/cases/"+testCase+"/requests/next-number?type=Subpoena", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImportAndValidate(t *testing.T) {
	e := newEnv(t)
	text := "REQUEST FOR PRODUCTION NO. 1: All bank statements.\n\n" +
		"REQUEST FOR PRODUCTION NO. 2: All tax returns."

	w := e.do(t, http.MethodPost, "/api/v1/cases/"+testCase+"/requests/import/validate",
		map[string]interface{}{"text": text})
	require.Equal(t, http.StatusOK, w.Code)
	var validation struct {
		Valid bool `json:"valid"`
		Count int  `json:"count"`
	}
	decode(t, w, &validation)
	assert.True(t, validation.Valid)
	assert.Equal(t, 2, validation.Count)

	w = e.do(t, http.MethodPost, "/api/v1/cases/"+testCase+"/requests/import",
		map[string]interface{}{"text": text})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var result struct {
		Imported int `json:"imported"`
		Failed   int `json:"failed"`
	}
	decode(t, w, &result)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 0, result.Failed)

	// Re-importing the same text collides on every number.
	w = e.do(t, http.MethodPost, "/api/v1/cases/"+testCase+"/requests/import",
		map[string]interface{}{"text": text})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestImport_UnparseableTextFails(t *testing.T) {
	e := newEnv(t)
	w := e.do(t, http.MethodPost, "/api/v1/cases/"+testCase+"/requests/import",
		map[string]interface{}{"text": "nothing resembling discovery here"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMappingLifecycleOverHTTP(t *testing.T) {
	e := newEnv(t)
	reqID := e.createRequest(t, 1, "All bank statements for 2022.")

	doc := &document.Document{
		BaseEntity: common.BaseEntity{ID: common.NewID(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
		CaseID:     testCase,
		OwnerID:    testOwner,
		FileName:   "chase_statements_2022.pdf",
		Category:   dtypes.CategoryFinancial,
	}
	e.docs.Add(doc)

	// Manual mapping counts toward coverage immediately.
	w := e.do(t, http.MethodPost, "/api/v1/mappings", map[string]interface{}{
		"document_id": string(doc.ID),
		"request_id":  reqID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID         string `json:"id"`
		Status     string `json:"status"`
		Confidence int    `json:"confidence"`
	}
	decode(t, w, &created)
	assert.Equal(t, string(dtypes.MappingAccepted), created.Status)
	assert.Equal(t, 100, created.Confidence)

	w = e.do(t, http.MethodGet, "/api/v1/requests/"+reqID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var reqState struct {
		Status             string `json:"status"`
		CoveragePercentage int    `json:"coverage_percentage"`
	}
	decode(t, w, &reqState)
	assert.Equal(t, string(dtypes.StatusComplete), reqState.Status)
	assert.Equal(t, 100, reqState.CoveragePercentage)

	// Duplicate pair conflicts.
	w = e.do(t, http.MethodPost, "/api/v1/mappings", map[string]interface{}{
		"document_id": string(doc.ID),
		"request_id":  reqID,
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = e.do(t, http.MethodGet, "/api/v1/requests/"+reqID+"/mappings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Count int `json:"count"`
	}
	decode(t, w, &list)
	assert.Equal(t, 1, list.Count)

	// Deleting the only accepted mapping drops coverage.
	w = e.do(t, http.MethodDelete, "/api/v1/mappings/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = e.do(t, http.MethodPost, "/api/v1/requests/"+reqID+"/coverage", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cov struct {
		Percentage int    `json:"percentage"`
		Status     string `json:"status"`
	}
	decode(t, w, &cov)
	assert.Equal(t, 0, cov.Percentage)
	assert.Equal(t, string(dtypes.StatusIncomplete), cov.Status)
}

func TestReviewMappingOverHTTP(t *testing.T) {
	e := newEnv(t)
	reqID := e.createRequest(t, 1, "All bank statements for 2022.")

	doc := &document.Document{
		BaseEntity: common.BaseEntity{ID: common.NewID(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
		CaseID:     testCase,
		OwnerID:    testOwner,
		FileName:   "statements.pdf",
		Category:   dtypes.CategoryFinancial,
	}
	e.docs.Add(doc)

	w := e.do(t, http.MethodPost, "/api/v1/mappings", map[string]interface{}{
		"document_id": string(doc.ID),
		"request_id":  reqID,
		"source":      "ai_suggestion",
		"confidence":  70,
		"reasoning":   "Category match (Financial).",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var m struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	decode(t, w, &m)
	require.Equal(t, string(dtypes.MappingSuggested), m.Status)

	// Review target must be terminal.
	w = e.do(t, http.MethodPost, "/api/v1/mappings/"+m.ID+"/review",
		map[string]interface{}{"status": "suggested"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, http.MethodPost, "/api/v1/mappings/"+m.ID+"/review",
		map[string]interface{}{"status": "accepted"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var reviewed struct {
		Status     string `json:"status"`
		ReviewedBy string `json:"reviewed_by"`
	}
	decode(t, w, &reviewed)
	assert.Equal(t, string(dtypes.MappingAccepted), reviewed.Status)
	assert.Equal(t, testOwner, reviewed.ReviewedBy)

	// A second review of a terminal mapping conflicts.
	w = e.do(t, http.MethodPost, "/api/v1/mappings/"+m.ID+"/review",
		map[string]interface{}{"status": "rejected"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSuggestionsOverHTTP(t *testing.T) {
	e := newEnv(t)
	reqID := e.createRequest(t, 1,
		"All bank statements and tax returns for the years 2020-2023.")

	for i, name := range []string{"bank statement 2021.pdf", "vacation_photos.zip"} {
		cat := dtypes.CategoryFinancial
		if i == 1 {
			cat = dtypes.CategoryPersonal
		}
		e.docs.Add(&document.Document{
			BaseEntity: common.BaseEntity{ID: common.NewID(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
			CaseID:     testCase,
			OwnerID:    testOwner,
			FileName:   name,
			Category:   cat,
		})
	}

	w := e.do(t, http.MethodGet, "/api/v1/requests/"+reqID+"/suggestions", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var preview struct {
		Count       int `json:"count"`
		Suggestions []struct {
			Confidence int    `json:"confidence"`
			Reasoning  string `json:"reasoning"`
		} `json:"suggestions"`
	}
	decode(t, w, &preview)
	require.Equal(t, 1, preview.Count)
	assert.GreaterOrEqual(t, preview.Suggestions[0].Confidence, 30)

	w = e.do(t, http.MethodGet, "/api/v1/requests/"+reqID+"/suggestions?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, http.MethodPost, "/api/v1/requests/"+reqID+"/suggestions", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var persisted struct {
		Count int `json:"count"`
	}
	decode(t, w, &persisted)
	assert.Equal(t, 1, persisted.Count)
}

func TestCaseStatsOverHTTP(t *testing.T) {
	e := newEnv(t)
	e.createRequest(t, 1, "All bank statements.")
	e.createRequest(t, 2, "All tax returns.")

	w := e.do(t, http.MethodGet, fmt.Sprintf("/api/v1/cases/%s/stats", testCase), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats dtypes.CaseStats
	decode(t, w, &stats)
	assert.Equal(t, 2, stats.TotalRequests)
	assert.Equal(t, 2, stats.RFPs)
	assert.Equal(t, 2, stats.Incomplete)
}

func TestReadinessReportsDependencies(t *testing.T) {
	logger := testutil.NewMockLogger()
	router := apihttp.NewRouter(apihttp.RouterConfig{
		HealthHandler: handlers.NewHealthHandler(map[string]handlers.HealthChecker{
			"postgres": healthFunc(func(ctx context.Context) error { return nil }),
			"redis":    healthFunc(func(ctx context.Context) error { return fmt.Errorf("connection refused") }),
		}, nil),
		Logger: logger,
	}, config.ServerConfig{Mode: "test"})

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp struct {
		Status     string            `json:"status"`
		Components map[string]string `json:"components"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "ok", resp.Components["postgres"])
}

type healthFunc func(ctx context.Context) error

func (f healthFunc) HealthCheck(ctx context.Context) error { return f(ctx) }
