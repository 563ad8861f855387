package semantic

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/application/discovery"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/config"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/errors"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/types/common"
)

const (
	vectorField     = "embedding"
	documentIDField = "document_id"
	caseIDField     = "case_id"
	searchTimeout   = 10 * time.Second
	hnswSearchEf    = 64
)

// Matcher implements the suggestion engine's SemanticMatcher port over
// Milvus.  Cosine scores land in [-1, 1] and are rescaled to [0, 1] so the
// scoring weights stay independent of the metric.
type Matcher struct {
	milvus     client.Client
	embedder   Embedder
	collection string
	logger     logging.Logger
}

var _ discovery.SemanticMatcher = (*Matcher)(nil)

// NewMatcher connects to Milvus and returns a Matcher.
func NewMatcher(ctx context.Context, cfg config.MilvusConfig, embedder Embedder, logger logging.Logger) (*Matcher, error) {
	milvusClient, err := client.NewClient(ctx, client.Config{
		Address: cfg.Addr,
		DBName:  cfg.DBName,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeSemanticUnavailable, "failed to connect to milvus")
	}
	logger.Info("connected to milvus",
		logging.String("addr", cfg.Addr),
		logging.String("collection", cfg.Collection))
	return &Matcher{
		milvus:     milvusClient,
		embedder:   embedder,
		collection: cfg.Collection,
		logger:     logger,
	}, nil
}

// Close releases the Milvus connection.
func (m *Matcher) Close() error {
	return m.milvus.Close()
}

// SimilarDocuments embeds the text and runs a filtered vector search over
// the case's documents.
func (m *Matcher) SimilarDocuments(
	ctx context.Context,
	text string,
	caseID common.CaseID,
	limit int,
	minSimilarity float64,
) ([]discovery.SemanticHit, error) {
	vec, err := m.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	sp, err := entity.NewIndexHNSWSearchParam(hnswSearchEf)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeVectorSearchFailed, "failed to build search params")
	}

	searchCtx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	expr := fmt.Sprintf(`%s == "%s"`, caseIDField, escapeExpr(string(caseID)))
	results, err := m.milvus.Search(searchCtx, m.collection, nil, expr,
		[]string{documentIDField},
		[]entity.Vector{entity.FloatVector(vec)},
		vectorField, entity.COSINE, limit, sp)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeVectorSearchFailed, "vector search failed")
	}

	var hits []discovery.SemanticHit
	for _, result := range results {
		idCol := result.Fields.GetColumn(documentIDField)
		if idCol == nil {
			continue
		}
		for i := 0; i < result.ResultCount; i++ {
			docID, err := idCol.GetAsString(i)
			if err != nil {
				return nil, pkgerrors.Wrap(err, pkgerrors.CodeVectorSearchFailed, "unexpected document id column")
			}
			similarity := cosineToUnit(result.Scores[i])
			if similarity < minSimilarity {
				continue
			}
			hits = append(hits, discovery.SemanticHit{
				DocumentID: common.ID(docID),
				Similarity: similarity,
			})
		}
	}
	return hits, nil
}

// cosineToUnit rescales a cosine score from [-1, 1] to [0, 1].
func cosineToUnit(score float32) float64 {
	s := (float64(score) + 1) / 2
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

// escapeExpr guards the filter expression against embedded quotes in IDs.
func escapeExpr(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
