package testutil

import (
	"context"
	"sync"

	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/domain/mapping"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/types/common"
	dtypes "github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/types/discovery"
)

// StubStatsCache is a map-backed request.StatsCache that counts operations
// so tests can assert cache interaction.
type StubStatsCache struct {
	mu          sync.Mutex
	stats       map[common.CaseID]*dtypes.CaseStats
	Hits        int
	Misses      int
	Invalidates int
}

func NewStubStatsCache() *StubStatsCache {
	return &StubStatsCache{stats: make(map[common.CaseID]*dtypes.CaseStats)}
}

func (c *StubStatsCache) LoadStats(ctx context.Context, caseID common.CaseID,
	compute func(context.Context) (*dtypes.CaseStats, error)) (*dtypes.CaseStats, error) {
	c.mu.Lock()
	if stats, ok := c.stats[caseID]; ok {
		c.Hits++
		cp := *stats
		c.mu.Unlock()
		return &cp, nil
	}
	c.Misses++
	c.mu.Unlock()

	stats, err := compute(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	cp := *stats
	c.stats[caseID] = &cp
	c.mu.Unlock()
	return stats, nil
}

func (c *StubStatsCache) InvalidateStats(ctx context.Context, caseID common.CaseID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.stats, caseID)
	c.Invalidates++
}

// StubPublisher records mapping lifecycle events.
type StubPublisher struct {
	mu         sync.Mutex
	Created    []*mapping.Mapping
	Reviewed   []*mapping.Mapping
	Recomputes []common.ID
	Err        error
}

func NewStubPublisher() *StubPublisher { return &StubPublisher{} }

func (p *StubPublisher) MappingCreated(ctx context.Context, m *mapping.Mapping) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Created = append(p.Created, m)
	return nil
}

func (p *StubPublisher) MappingReviewed(ctx context.Context, m *mapping.Mapping) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Reviewed = append(p.Reviewed, m)
	return nil
}

func (p *StubPublisher) CoverageRecomputed(ctx context.Context, requestID common.ID, percentage int, status dtypes.RequestStatus) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Recomputes = append(p.Recomputes, requestID)
	return nil
}
