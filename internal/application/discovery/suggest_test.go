package discovery_test

import (
	"context"
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
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/testutil"
	pkgerrors "github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/errors"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/types/common"
	dtypes "github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/types/discovery"
)

type stubMatcher struct {
	hits []discovery.SemanticHit
	err  error
}

func (m *stubMatcher) SimilarDocuments(ctx context.Context, text string, caseID common.CaseID, limit int, minSimilarity float64) ([]discovery.SemanticHit, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.hits, nil
}

type engineFixture struct {
	engine   *discovery.Engine
	requests *request.Service
	mappings *mapping.Service
	docs     *testutil.MemoryDocumentRepo
	req      *request.DiscoveryRequest
}

func testMatchingConfig() config.MatchingConfig {
	return config.MatchingConfig{
		DefaultLimit:            10,
		DefaultMinConfidence:    30,
		SuggestionMinConfidence: 50,
		SemanticMinSimilarity:   0.1,
		SemanticLimit:           100,
	}
}

func newEngineFixture(t *testing.T, matcher discovery.SemanticMatcher) *engineFixture {
	t.Helper()
	logger := testutil.NewMockLogger()
	reqRepo := testutil.NewMemoryRequestRepo()
	mapRepo := testutil.NewMemoryMappingRepo()
	docRepo := testutil.NewMemoryDocumentRepo(mapRepo)

	detector := category.NewDetector()
	now := func() time.Time { return time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC) }
	dates := daterange.NewParser(daterange.WithNow(now))

	reqSvc := request.NewService(reqRepo, detector, dates, nil, logger)
	mapSvc := mapping.NewService(mapRepo, reqRepo, testutil.NewStubPublisher(), nil, logger)

	req, err := reqSvc.Create(context.Background(), testCase, testOwner,
		dtypes.RequestTypeRFP, 1,
		"All bank statements and tax returns for the years 2020-2023.", "")
	require.NoError(t, err)

	return &engineFixture{
		engine: discovery.NewEngine(reqSvc, docRepo, mapSvc, detector, dates,
			matcher, testMatchingConfig(), logger),
		requests: reqSvc,
		mappings: mapSvc,
		docs:     docRepo,
		req:      req,
	}
}

func seedDoc(f *engineFixture, id common.ID, fileName string, cat dtypes.Category, start, end *time.Time) {
	f.docs.Add(&document.Document{
		BaseEntity: common.BaseEntity{ID: id, CreatedAt: time.Now().UTC()},
		CaseID:     testCase,
		OwnerID:    testOwner,
		FileName:   fileName,
		Category:   cat,
		Metadata:   document.Metadata{StartDate: start, EndDate: end},
	})
}

func datePtr(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestSuggestDocuments_CombinesSignals(t *testing.T) {
	f := newEngineFixture(t, nil)
	ctx := context.Background()

	seedDoc(f, "doc-bank", "2021 Bank Statement - Chase.pdf", dtypes.CategoryFinancial,
		datePtr(2021, time.January, 1), datePtr(2021, time.December, 31))
	seedDoc(f, "doc-misc", "Wedding photos.zip", dtypes.CategoryPersonal, nil, nil)

	suggestions, err := f.engine.SuggestDocuments(ctx, f.req.ID, testOwner, discovery.SuggestOptions{})
	require.NoError(t, err)
	require.Len(t, suggestions, 1)

	s := suggestions[0]
	assert.Equal(t, common.ID("doc-bank"), s.Document.ID)
	// Category (30) + keyword (20) + full date overlap (20).
	assert.Equal(t, 70, s.Confidence)
	assert.Contains(t, s.Reasoning, "Category match (Financial).")
	assert.Contains(t, s.Reasoning, "bank statement")
	assert.Contains(t, s.Reasoning, "Date range match.")
}

func TestSuggestDocuments_CategoryComparisonIgnoresCase(t *testing.T) {
	f := newEngineFixture(t, nil)
	ctx := context.Background()

	// Stored document categories are not normalized; a lowercase value must
	// still earn the category points.
	seedDoc(f, "doc-lower", "2021 Bank Statement - Chase.pdf", "financial",
		datePtr(2021, time.January, 1), datePtr(2021, time.December, 31))

	suggestions, err := f.engine.SuggestDocuments(ctx, f.req.ID, testOwner, discovery.SuggestOptions{})
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, 70, suggestions[0].Confidence)
	assert.Contains(t, suggestions[0].Reasoning, "Category match (Financial).")
}

func TestSuggestDocuments_OrderedAndBounded(t *testing.T) {
	f := newEngineFixture(t, nil)
	ctx := context.Background()

	seedDoc(f, "doc-strong", "Bank statement 2021.pdf", dtypes.CategoryFinancial,
		datePtr(2021, time.March, 1), nil)
	seedDoc(f, "doc-weak", "Ledger.xlsx", dtypes.CategoryFinancial, nil, nil)

	suggestions, err := f.engine.SuggestDocuments(ctx, f.req.ID, testOwner, discovery.SuggestOptions{})
	require.NoError(t, err)
	require.Len(t, suggestions, 2)

	assert.Equal(t, common.ID("doc-strong"), suggestions[0].Document.ID)
	for _, s := range suggestions {
		assert.GreaterOrEqual(t, s.Confidence, 30)
		assert.LessOrEqual(t, s.Confidence, 100)
	}
	assert.GreaterOrEqual(t, suggestions[0].Confidence, suggestions[1].Confidence)
}

func TestSuggestDocuments_RespectsLimitAndFloor(t *testing.T) {
	f := newEngineFixture(t, nil)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		id := common.ID("doc-" + string(rune('a'+i)))
		seedDoc(f, id, "Bank statement.pdf", dtypes.CategoryFinancial, nil, nil)
	}

	suggestions, err := f.engine.SuggestDocuments(ctx, f.req.ID, testOwner, discovery.SuggestOptions{})
	require.NoError(t, err)
	assert.Len(t, suggestions, 10)

	suggestions, err = f.engine.SuggestDocuments(ctx, f.req.ID, testOwner,
		discovery.SuggestOptions{Limit: 3, MinConfidence: 60})
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}

func TestSuggestDocuments_SemanticSignal(t *testing.T) {
	matcher := &stubMatcher{hits: []discovery.SemanticHit{
		{DocumentID: "doc-semantic", Similarity: 0.8},
	}}
	f := newEngineFixture(t, matcher)
	ctx := context.Background()

	seedDoc(f, "doc-semantic", "Exhibit 12.pdf", "", nil, nil)

	suggestions, err := f.engine.SuggestDocuments(ctx, f.req.ID, testOwner, discovery.SuggestOptions{})
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	// 40 * 0.8 rounded.
	assert.Equal(t, 32, suggestions[0].Confidence)
	assert.Contains(t, suggestions[0].Reasoning, "High semantic similarity.")
}

func TestSuggestDocuments_MatcherFailureDegrades(t *testing.T) {
	matcher := &stubMatcher{err: pkgerrors.Unavailable("vector index down")}
	f := newEngineFixture(t, matcher)
	ctx := context.Background()

	seedDoc(f, "doc-bank", "Bank statement 2021.pdf", dtypes.CategoryFinancial,
		datePtr(2021, time.March, 1), nil)

	suggestions, err := f.engine.SuggestDocuments(ctx, f.req.ID, testOwner, discovery.SuggestOptions{})
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, common.ID("doc-bank"), suggestions[0].Document.ID)
}

func TestSuggestDocuments_ExcludesMappedDocuments(t *testing.T) {
	f := newEngineFixture(t, nil)
	ctx := context.Background()

	seedDoc(f, "doc-bank", "Bank statement 2021.pdf", dtypes.CategoryFinancial,
		datePtr(2021, time.March, 1), nil)
	_, err := f.mappings.Create(ctx, "doc-bank", f.req.ID, testOwner,
		dtypes.SourceManualAddition, 0, "")
	require.NoError(t, err)

	suggestions, err := f.engine.SuggestDocuments(ctx, f.req.ID, testOwner, discovery.SuggestOptions{})
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}

func TestSuggestDocuments_ForeignRequestReadsAsNotFound(t *testing.T) {
	f := newEngineFixture(t, nil)

	_, err := f.engine.SuggestDocuments(context.Background(), f.req.ID,
		common.UserID("user-002"), discovery.SuggestOptions{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeRequestNotFound))
}

func TestCreateAISuggestions_PersistsHighConfidenceOnly(t *testing.T) {
	f := newEngineFixture(t, nil)
	ctx := context.Background()

	seedDoc(f, "doc-strong", "Bank statement 2021.pdf", dtypes.CategoryFinancial,
		datePtr(2021, time.March, 1), nil)
	seedDoc(f, "doc-weak", "Ledger.xlsx", dtypes.CategoryFinancial, nil, nil)

	created, err := f.engine.CreateAISuggestions(ctx, f.req.ID, testOwner)
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, common.ID("doc-strong"), created[0].DocumentID)
	assert.Equal(t, dtypes.MappingSuggested, created[0].Status)

	// Suggested mappings do not alter coverage.
	req, err := f.requests.Get(ctx, f.req.ID, testOwner)
	require.NoError(t, err)
	assert.Equal(t, 0, req.CoveragePercentage)

	// A second run finds nothing left to suggest.
	created, err = f.engine.CreateAISuggestions(ctx, f.req.ID, testOwner)
	require.NoError(t, err)
	assert.Empty(t, created)
}
