package request

import (
	"context"
	"strings"

	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/infrastructure/monitoring/logging"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/intelligence/category"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/intelligence/daterange"
	pkgerrors "github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/errors"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/types/common"
	dtypes "github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/types/discovery"
)

// StatsCache is the optional read-through cache for case statistics.
// LoadStats returns the cached figure or invokes compute on a miss and
// caches the result; cache failures degrade to a direct compute.
type StatsCache interface {
	LoadStats(ctx context.Context, caseID common.CaseID,
		compute func(context.Context) (*dtypes.CaseStats, error)) (*dtypes.CaseStats, error)
	InvalidateStats(ctx context.Context, caseID common.CaseID)
}

// UpdateInput carries the mutable fields of a request update.  Nil fields are
// left unchanged.
type UpdateInput struct {
	Text               *string
	Category           *dtypes.Category
	Status             *dtypes.RequestStatus
	CoveragePercentage *int
}

// ─────────────────────────────────────────────────────────────────────────────
// Service — discovery request domain service
// ─────────────────────────────────────────────────────────────────────────────

// Service orchestrates request lifecycle operations: creation with per-case
// numbering, reads scoped to the owning user, updates, and aggregated case
// statistics.  Coverage recomputation lives in the mapping context, which
// writes back through Repository.UpdateCoverage.
type Service struct {
	repo     Repository
	detector *category.Detector
	dates    *daterange.Parser
	cache    StatsCache
	logger   logging.Logger
}

// NewService creates a request Service.  cache may be nil; statistics are
// then computed on every call.
func NewService(
	repo Repository,
	detector *category.Detector,
	dates *daterange.Parser,
	cache StatsCache,
	logger logging.Logger,
) *Service {
	return &Service{
		repo:     repo,
		detector: detector,
		dates:    dates,
		cache:    cache,
		logger:   logger,
	}
}

// Create validates, enriches, and persists a new request.  The request
// number must be free within (case, type); a taken number is rejected before
// the insert so the caller gets a clean conflict rather than a database
// error, and the unique constraint backstops the race.
func (s *Service) Create(
	ctx context.Context,
	caseID common.CaseID,
	ownerID common.UserID,
	reqType dtypes.RequestType,
	number int,
	text string,
	categoryHint dtypes.Category,
) (*DiscoveryRequest, error) {
	req, err := NewDiscoveryRequest(caseID, ownerID, reqType, number, text)
	if err != nil {
		return nil, err
	}

	taken, err := s.repo.NumberExists(ctx, caseID, reqType, number)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, pkgerrors.Newf(pkgerrors.CodeRequestNumberTaken,
			"%s %d already exists in this case", reqType, number)
	}

	if categoryHint != "" {
		if !categoryHint.IsValid() {
			return nil, pkgerrors.InvalidParam("invalid category").WithDetail(string(categoryHint))
		}
		req.Category = categoryHint
	} else if detected, ok := s.detector.Detect(req.Text); ok {
		req.Category = detected
	}
	req.DateRange = s.dates.ParseRange(req.Text)

	if err := s.repo.Save(ctx, req); err != nil {
		s.logger.Error("failed to save request",
			logging.Err(err),
			logging.String("case_id", string(caseID)))
		return nil, err
	}

	s.invalidateStats(ctx, caseID)
	s.logger.Info("request created",
		logging.String("id", string(req.ID)),
		logging.String("case_id", string(caseID)),
		logging.String("type", string(reqType)),
		logging.Int("number", number))
	return req, nil
}

// Get returns a request if it exists and belongs to the user.  Missing and
// foreign requests are indistinguishable to the caller.
func (s *Service) Get(ctx context.Context, id common.ID, userID common.UserID) (*DiscoveryRequest, error) {
	req, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !req.IsOwnedBy(userID) {
		return nil, pkgerrors.New(pkgerrors.CodeRequestNotFound, "discovery request not found")
	}
	return req, nil
}

// ListByCase returns the case's requests ordered by type then number.
func (s *Service) ListByCase(ctx context.Context, caseID common.CaseID) ([]*DiscoveryRequest, error) {
	return s.repo.FindByCase(ctx, caseID)
}

// Update applies a partial update.  A text change re-runs category detection
// and date-range parsing unless an explicit category accompanies it.
func (s *Service) Update(ctx context.Context, id common.ID, userID common.UserID, in UpdateInput) (*DiscoveryRequest, error) {
	req, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if in.Text != nil {
		text := strings.TrimSpace(*in.Text)
		if text == "" {
			return nil, pkgerrors.InvalidParam("request text is required")
		}
		if len(text) > maxTextLength {
			return nil, pkgerrors.Validation("request text exceeds maximum length")
		}
		req.Text = text
		req.DateRange = s.dates.ParseRange(text)
		if in.Category == nil {
			if detected, ok := s.detector.Detect(text); ok {
				req.Category = detected
			} else {
				req.Category = ""
			}
		}
	}
	if in.Category != nil {
		if *in.Category != "" && !in.Category.IsValid() {
			return nil, pkgerrors.InvalidParam("invalid category").WithDetail(string(*in.Category))
		}
		req.Category = *in.Category
	}
	if in.Status != nil || in.CoveragePercentage != nil {
		status := req.Status
		if in.Status != nil {
			status = *in.Status
		}
		pct := req.CoveragePercentage
		if in.CoveragePercentage != nil {
			pct = *in.CoveragePercentage
		}
		if err := req.SetCoverage(pct, status); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, req); err != nil {
		return nil, err
	}
	s.invalidateStats(ctx, req.CaseID)
	return req, nil
}

// Delete removes a request and, by cascade, its mappings.
func (s *Service) Delete(ctx context.Context, id common.ID, userID common.UserID) error {
	req, err := s.Get(ctx, id, userID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, req.ID); err != nil {
		return err
	}
	s.invalidateStats(ctx, req.CaseID)
	s.logger.Info("request deleted",
		logging.String("id", string(req.ID)),
		logging.String("case_id", string(req.CaseID)))
	return nil
}

// NextRequestNumber returns the next free number for (case, type).
func (s *Service) NextRequestNumber(ctx context.Context, caseID common.CaseID, reqType dtypes.RequestType) (int, error) {
	if !reqType.IsValid() {
		return 0, pkgerrors.InvalidParam("invalid request type").WithDetail(string(reqType))
	}
	max, err := s.repo.MaxNumber(ctx, caseID, reqType)
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

// NumberExists reports whether (case, type, number) is taken.
func (s *Service) NumberExists(ctx context.Context, caseID common.CaseID, reqType dtypes.RequestType, number int) (bool, error) {
	if !reqType.IsValid() {
		return false, pkgerrors.InvalidParam("invalid request type").WithDetail(string(reqType))
	}
	return s.repo.NumberExists(ctx, caseID, reqType, number)
}

// Stats returns aggregated case statistics, read through the cache when one
// is configured.
func (s *Service) Stats(ctx context.Context, caseID common.CaseID) (*dtypes.CaseStats, error) {
	compute := func(ctx context.Context) (*dtypes.CaseStats, error) {
		return s.repo.Stats(ctx, caseID)
	}
	if s.cache != nil {
		return s.cache.LoadStats(ctx, caseID, compute)
	}
	return compute(ctx)
}

func (s *Service) invalidateStats(ctx context.Context, caseID common.CaseID) {
	if s.cache != nil {
		s.cache.InvalidateStats(ctx, caseID)
	}
}
