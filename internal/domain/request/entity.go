// Package request implements the DiscoveryRequest bounded context: the
// aggregate, its invariants, and the domain service that enforces per-case
// numbering and coverage bookkeeping.  Persistence lives behind the
// Repository port.
package request

import (
	"strings"
	"time"

	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/intelligence/daterange"
	pkgerrors "github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/errors"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/types/common"
	dtypes "github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/types/discovery"
)

// maxTextLength bounds request text; opposing counsel occasionally pastes
// entire exhibit lists into a single request.
const maxTextLength = 20000

// DiscoveryRequest is one numbered item served in a discovery demand: a
// request for production or an interrogatory.  Numbers are unique per
// (case, type); the database enforces the same constraint.
type DiscoveryRequest struct {
	common.BaseEntity

	CaseID  common.CaseID `json:"case_id"`
	OwnerID common.UserID `json:"owner_id"`

	Type   dtypes.RequestType `json:"type"`
	Number int                `json:"number"`
	Text   string             `json:"text"`

	// Category is the detected (or manually corrected) subject category.
	// Empty when detection found nothing.
	Category dtypes.Category `json:"category,omitempty"`

	// DateRange is the normalized date constraint parsed from Text.
	DateRange daterange.Range `json:"date_range"`

	Status             dtypes.RequestStatus `json:"status"`
	CoveragePercentage int                  `json:"coverage_percentage"`
}

// NewDiscoveryRequest validates and constructs a request in its initial
// state: incomplete with zero coverage.
func NewDiscoveryRequest(
	caseID common.CaseID,
	ownerID common.UserID,
	reqType dtypes.RequestType,
	number int,
	text string,
) (*DiscoveryRequest, error) {
	if caseID == "" {
		return nil, pkgerrors.InvalidParam("case id is required")
	}
	if ownerID == "" {
		return nil, pkgerrors.InvalidParam("owner id is required")
	}
	if !reqType.IsValid() {
		return nil, pkgerrors.InvalidParam("invalid request type").WithDetail(string(reqType))
	}
	if number < 1 {
		return nil, pkgerrors.InvalidParam("request number must be positive")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, pkgerrors.InvalidParam("request text is required")
	}
	if len(text) > maxTextLength {
		return nil, pkgerrors.Validation("request text exceeds maximum length")
	}

	now := time.Now().UTC()
	return &DiscoveryRequest{
		BaseEntity: common.BaseEntity{
			ID:        common.NewID(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		CaseID:             caseID,
		OwnerID:            ownerID,
		Type:               reqType,
		Number:             number,
		Text:               text,
		Status:             dtypes.StatusIncomplete,
		CoveragePercentage: 0,
	}, nil
}

// SetCoverage applies a recomputed coverage figure and its derived status.
func (r *DiscoveryRequest) SetCoverage(percentage int, status dtypes.RequestStatus) error {
	if percentage < 0 || percentage > 100 {
		return pkgerrors.Validation("coverage percentage must be within 0..100")
	}
	if !status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeRequestInvalidStatus, "invalid request status").WithDetail(string(status))
	}
	r.CoveragePercentage = percentage
	r.Status = status
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// IsOwnedBy reports whether the given user owns this request.  Callers
// surface a not-found error on failure rather than a permission error, so
// request IDs do not leak across tenants.
func (r *DiscoveryRequest) IsOwnedBy(userID common.UserID) bool {
	return r.OwnerID == userID
}
