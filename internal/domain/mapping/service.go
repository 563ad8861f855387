package mapping

import (
	"context"

	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/domain/request"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/errors"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/types/common"
	dtypes "github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/types/discovery"
)

// Publisher emits mapping lifecycle events.  Publication is best-effort: the
// service logs failures and continues, so a broker outage never blocks a
// review.
type Publisher interface {
	MappingCreated(ctx context.Context, m *Mapping) error
	MappingReviewed(ctx context.Context, m *Mapping) error
	CoverageRecomputed(ctx context.Context, requestID common.ID, percentage int, status dtypes.RequestStatus) error
}

// Coverage is the result of a coverage recompute.
type Coverage struct {
	Percentage    int                  `json:"percentage"`
	Status        dtypes.RequestStatus `json:"status"`
	AcceptedCount int                  `json:"accepted_count"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Service — mapping domain service
// ─────────────────────────────────────────────────────────────────────────────

// Service orchestrates the mapping lifecycle and keeps request coverage
// consistent with it.  Every mutation that can change the accepted set ends
// in a coverage recompute written back through the request repository.
//
// Coverage is deliberately binary: a request with at least one accepted
// mapping is fully covered, otherwise it is not covered at all.  Reviewers
// judge sufficiency; the engine only tracks whether they have.
type Service struct {
	repo      Repository
	requests  request.Repository
	publisher Publisher
	cache     request.StatsCache
	logger    logging.Logger
}

// NewService creates a mapping Service.  publisher and cache may be nil.
func NewService(
	repo Repository,
	requests request.Repository,
	publisher Publisher,
	cache request.StatsCache,
	logger logging.Logger,
) *Service {
	return &Service{
		repo:      repo,
		requests:  requests,
		publisher: publisher,
		cache:     cache,
		logger:    logger,
	}
}

// Create links a document to a request.  Manual additions immediately count
// toward coverage; AI suggestions wait for review.
func (s *Service) Create(
	ctx context.Context,
	documentID common.ID,
	requestID common.ID,
	userID common.UserID,
	source dtypes.MappingSource,
	confidence int,
	reasoning string,
) (*Mapping, error) {
	req, err := s.ownedRequest(ctx, requestID, userID)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.Exists(ctx, documentID, requestID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, pkgerrors.New(pkgerrors.CodeMappingAlreadyExists,
			"document is already mapped to this request")
	}

	m, err := NewMapping(documentID, requestID, source, confidence, reasoning, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, m); err != nil {
		return nil, err
	}

	if m.IsAccepted() {
		if _, err := s.recomputeCoverage(ctx, req); err != nil {
			return nil, err
		}
	}
	s.publish(ctx, "mapping created event", func() error { return s.publisher.MappingCreated(ctx, m) })
	s.logger.Info("mapping created",
		logging.String("id", string(m.ID)),
		logging.String("request_id", string(requestID)),
		logging.String("source", string(source)))
	return m, nil
}

// Review accepts or rejects a suggested mapping and recomputes coverage.
func (s *Service) Review(
	ctx context.Context,
	id common.ID,
	userID common.UserID,
	status dtypes.MappingStatus,
) (*Mapping, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	req, err := s.ownedRequestForMapping(ctx, m, userID)
	if err != nil {
		return nil, err
	}

	if err := m.Review(status, userID); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, m); err != nil {
		return nil, err
	}

	if _, err := s.recomputeCoverage(ctx, req); err != nil {
		return nil, err
	}
	s.publish(ctx, "mapping reviewed event", func() error { return s.publisher.MappingReviewed(ctx, m) })
	s.logger.Info("mapping reviewed",
		logging.String("id", string(m.ID)),
		logging.String("status", string(status)))
	return m, nil
}

// Delete removes a mapping and recomputes coverage; deleting the last
// accepted mapping drops the request back to incomplete.
func (s *Service) Delete(ctx context.Context, id common.ID, userID common.UserID) error {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	req, err := s.ownedRequestForMapping(ctx, m, userID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, m.ID); err != nil {
		return err
	}
	if _, err := s.recomputeCoverage(ctx, req); err != nil {
		return err
	}
	return nil
}

// ListByRequest returns a request's mappings, highest confidence first.
func (s *Service) ListByRequest(ctx context.Context, requestID common.ID, userID common.UserID) ([]*Mapping, error) {
	if _, err := s.ownedRequest(ctx, requestID, userID); err != nil {
		return nil, err
	}
	return s.repo.FindByRequest(ctx, requestID)
}

// CalculateCoverage recomputes and persists a request's coverage on demand.
func (s *Service) CalculateCoverage(ctx context.Context, requestID common.ID, userID common.UserID) (*Coverage, error) {
	req, err := s.ownedRequest(ctx, requestID, userID)
	if err != nil {
		return nil, err
	}
	return s.recomputeCoverage(ctx, req)
}

// recomputeCoverage derives the binary coverage figure from the accepted
// mapping count and writes it back to the request.
func (s *Service) recomputeCoverage(ctx context.Context, req *request.DiscoveryRequest) (*Coverage, error) {
	accepted, err := s.repo.CountAccepted(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	cov := &Coverage{Percentage: 0, Status: dtypes.StatusIncomplete, AcceptedCount: accepted}
	if accepted > 0 {
		cov.Percentage = 100
		cov.Status = dtypes.StatusComplete
	}

	if err := s.requests.UpdateCoverage(ctx, req.ID, cov.Percentage, cov.Status); err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.InvalidateStats(ctx, req.CaseID)
	}
	s.publish(ctx, "coverage recomputed event", func() error {
		return s.publisher.CoverageRecomputed(ctx, req.ID, cov.Percentage, cov.Status)
	})
	return cov, nil
}

// ownedRequest loads a request and verifies ownership, collapsing foreign
// requests into not-found.
func (s *Service) ownedRequest(ctx context.Context, requestID common.ID, userID common.UserID) (*request.DiscoveryRequest, error) {
	req, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !req.IsOwnedBy(userID) {
		return nil, pkgerrors.New(pkgerrors.CodeRequestNotFound, "discovery request not found")
	}
	return req, nil
}

// ownedRequestForMapping resolves a mapping's parent request with the same
// collapse: a mapping under a foreign request reads as a missing mapping.
func (s *Service) ownedRequestForMapping(ctx context.Context, m *Mapping, userID common.UserID) (*request.DiscoveryRequest, error) {
	req, err := s.requests.FindByID(ctx, m.RequestID)
	if err != nil {
		return nil, err
	}
	if !req.IsOwnedBy(userID) {
		return nil, pkgerrors.New(pkgerrors.CodeMappingNotFound, "mapping not found")
	}
	return req, nil
}

func (s *Service) publish(ctx context.Context, what string, fn func() error) {
	if s.publisher == nil {
		return
	}
	if err := fn(); err != nil {
		s.logger.Warn("failed to publish "+what, logging.Err(err))
	}
}
