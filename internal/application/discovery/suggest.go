package discovery

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/config"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/domain/document"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/domain/mapping"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/domain/request"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/infrastructure/monitoring/logging"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/intelligence/category"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/intelligence/daterange"
	pkgerrors "github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/errors"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/types/common"
	dtypes "github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/types/discovery"
)

// Score weights.  The four signals sum to a theoretical 110, capped at 100,
// so a document strong on three signals is not penalised for missing the
// fourth.
const (
	weightCategory = 30
	weightKeyword  = 20
	weightDate     = 20
	weightSemantic = 40

	semanticHighSimilarity     = 0.7
	semanticModerateSimilarity = 0.5
)

// SemanticHit is one vector-index neighbour of a request's text.
type SemanticHit struct {
	DocumentID common.ID
	Similarity float64
}

// SemanticMatcher is the port to the embedding and vector-search stack.
// Implementations return neighbours ordered by similarity descending.
type SemanticMatcher interface {
	SimilarDocuments(ctx context.Context, text string, caseID common.CaseID, limit int, minSimilarity float64) ([]SemanticHit, error)
}

// Suggestion is one scored candidate document for a request.
type Suggestion struct {
	Document   *document.Document `json:"document"`
	Confidence int                `json:"confidence"`
	Reasoning  string             `json:"reasoning"`
}

// SuggestOptions tune a suggestion run.  Zero values fall back to the
// configured defaults.
type SuggestOptions struct {
	Limit         int
	MinConfidence int
}

// ─────────────────────────────────────────────────────────────────────────────
// Engine
// ─────────────────────────────────────────────────────────────────────────────

// Engine scores a case's unmapped documents against a discovery request and
// turns the strongest candidates into suggested mappings.
//
// The semantic signal is optional twice over: the matcher itself may be
// absent (no vector stack configured), and a configured matcher may fail at
// query time.  Either way scoring proceeds on the deterministic signals
// alone; a degraded suggestion beats none.
type Engine struct {
	requests *request.Service
	docs     document.Repository
	mappings *mapping.Service
	detector *category.Detector
	dates    *daterange.Parser
	matcher  SemanticMatcher
	cfg      config.MatchingConfig
	logger   logging.Logger
}

// NewEngine creates a suggestion Engine.  matcher may be nil.
func NewEngine(
	requests *request.Service,
	docs document.Repository,
	mappings *mapping.Service,
	detector *category.Detector,
	dates *daterange.Parser,
	matcher SemanticMatcher,
	cfg config.MatchingConfig,
	logger logging.Logger,
) *Engine {
	return &Engine{
		requests: requests,
		docs:     docs,
		mappings: mappings,
		detector: detector,
		dates:    dates,
		matcher:  matcher,
		cfg:      cfg,
		logger:   logger,
	}
}

// SuggestDocuments scores the request's unmapped case documents and returns
// the candidates at or above the confidence floor, strongest first.
func (e *Engine) SuggestDocuments(
	ctx context.Context,
	requestID common.ID,
	userID common.UserID,
	opts SuggestOptions,
) ([]Suggestion, error) {
	req, err := e.requests.Get(ctx, requestID, userID)
	if err != nil {
		return nil, err
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = e.cfg.DefaultLimit
	}
	minConfidence := opts.MinConfidence
	if minConfidence <= 0 {
		minConfidence = e.cfg.DefaultMinConfidence
	}

	docs, err := e.docs.FindUnmappedForRequest(ctx, req.CaseID, req.ID)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}

	hits := e.semanticHits(ctx, req)
	keywords := e.detector.ExtractKeywords(req.Text)

	var out []Suggestion
	for _, doc := range docs {
		confidence, reasoning := e.scoreDocument(req, doc, keywords, hits)
		if confidence < minConfidence {
			continue
		}
		out = append(out, Suggestion{Document: doc, Confidence: confidence, Reasoning: reasoning})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Confidence > out[j].Confidence })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// CreateAISuggestions persists the high-confidence candidates as suggested
// mappings awaiting review.  Candidates already mapped by a concurrent run
// are skipped, not failed.
func (e *Engine) CreateAISuggestions(
	ctx context.Context,
	requestID common.ID,
	userID common.UserID,
) ([]*mapping.Mapping, error) {
	suggestions, err := e.SuggestDocuments(ctx, requestID, userID, SuggestOptions{
		MinConfidence: e.cfg.SuggestionMinConfidence,
	})
	if err != nil {
		return nil, err
	}

	var created []*mapping.Mapping
	for _, s := range suggestions {
		m, err := e.mappings.Create(ctx, s.Document.ID, requestID, userID,
			dtypes.SourceAISuggestion, s.Confidence, s.Reasoning)
		if err != nil {
			if pkgerrors.IsConflict(err) {
				continue
			}
			return created, err
		}
		created = append(created, m)
	}
	e.logger.Info("ai suggestions created",
		logging.String("request_id", string(requestID)),
		logging.Int("count", len(created)))
	return created, nil
}

// scoreDocument combines the four signals into a 0..100 confidence and a
// human-readable reasoning line.
func (e *Engine) scoreDocument(
	req *request.DiscoveryRequest,
	doc *document.Document,
	keywords []string,
	hits map[common.ID]float64,
) (int, string) {
	score := 0
	var reasons []string

	// doc.Category comes from an unconstrained external column; compare
	// case-insensitively.
	if req.Category != "" && strings.EqualFold(string(doc.Category), string(req.Category)) {
		score += weightCategory
		reasons = append(reasons, fmt.Sprintf("Category match (%s).", req.Category))
	}

	if matched := matchKeywords(doc.SearchText(), keywords); len(matched) > 0 {
		score += weightKeyword
		reasons = append(reasons, fmt.Sprintf("Keyword match: %s.", strings.Join(matched, ", ")))
	}

	if overlap := e.dates.MatchDocument(doc.Metadata.StartDate, doc.Metadata.EndDate, req.DateRange); overlap.Matches && !req.DateRange.IsZero() {
		score += int(math.Round(float64(weightDate) * float64(overlap.OverlapPercentage) / 100))
		if overlap.OverlapPercentage >= 100 {
			reasons = append(reasons, "Date range match.")
		} else {
			reasons = append(reasons, fmt.Sprintf("Partial date overlap (%d%%).", overlap.OverlapPercentage))
		}
	}

	if sim, ok := hits[doc.ID]; ok {
		score += int(math.Round(float64(weightSemantic) * sim))
		switch {
		case sim > semanticHighSimilarity:
			reasons = append(reasons, "High semantic similarity.")
		case sim > semanticModerateSimilarity:
			reasons = append(reasons, "Moderate semantic similarity.")
		}
	}

	if score > 100 {
		score = 100
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "General relevance.")
	}
	return score, strings.Join(reasons, " ")
}

// semanticHits queries the vector stack, degrading to an empty result on any
// failure.
func (e *Engine) semanticHits(ctx context.Context, req *request.DiscoveryRequest) map[common.ID]float64 {
	if e.matcher == nil {
		return nil
	}
	hits, err := e.matcher.SimilarDocuments(ctx, req.Text, req.CaseID,
		e.cfg.SemanticLimit, e.cfg.SemanticMinSimilarity)
	if err != nil {
		e.logger.Warn("semantic matcher unavailable, scoring without it",
			logging.Err(err),
			logging.String("request_id", string(req.ID)))
		return nil
	}
	out := make(map[common.ID]float64, len(hits))
	for _, h := range hits {
		out[h.DocumentID] = h.Similarity
	}
	return out
}

// matchKeywords returns the request keywords occurring in the document's
// search text.
func matchKeywords(searchText string, keywords []string) []string {
	lower := strings.ToLower(searchText)
	var matched []string
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			matched = append(matched, kw)
		}
	}
	return matched
}
