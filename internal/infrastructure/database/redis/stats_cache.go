package redis

import (
	"context"
	"time"

	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/domain/request"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/infrastructure/monitoring/logging"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/types/common"
	dtypes "github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/types/discovery"
)

const statsTTL = 5 * time.Minute

// StatsCache adapts the generic Cache to the request context's statistics
// port.  Loads go through GetOrSet so concurrent requests for the same case
// share one statistics query.
type StatsCache struct {
	cache  Cache
	logger logging.Logger
}

// NewStatsCache creates a StatsCache.
func NewStatsCache(cache Cache, logger logging.Logger) *StatsCache {
	return &StatsCache{cache: cache, logger: logger}
}

var _ request.StatsCache = (*StatsCache)(nil)

func statsKey(caseID common.CaseID) string {
	return "stats:case:" + string(caseID)
}

func (s *StatsCache) LoadStats(ctx context.Context, caseID common.CaseID,
	compute func(context.Context) (*dtypes.CaseStats, error)) (*dtypes.CaseStats, error) {
	var stats dtypes.CaseStats
	err := s.cache.GetOrSet(ctx, statsKey(caseID), &stats, statsTTL,
		func(ctx context.Context) (interface{}, error) {
			return compute(ctx)
		})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *StatsCache) InvalidateStats(ctx context.Context, caseID common.CaseID) {
	if err := s.cache.Delete(ctx, statsKey(caseID)); err != nil {
		s.logger.Warn("stats cache invalidation failed",
			logging.String("case_id", string(caseID)), logging.Err(err))
	}
}
