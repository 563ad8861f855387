package request

import (
	"context"

	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/types/common"
	dtypes "github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/types/discovery"
)

// Repository is the persistence port for discovery requests.
type Repository interface {
	// Save inserts a new request.  A (case, type, number) collision
	// returns a CodeRequestNumberTaken error.
	Save(ctx context.Context, req *DiscoveryRequest) error

	// FindByID returns the request or a CodeRequestNotFound error.
	FindByID(ctx context.Context, id common.ID) (*DiscoveryRequest, error)

	// FindByCase returns a case's requests ordered by type then number.
	FindByCase(ctx context.Context, caseID common.CaseID) ([]*DiscoveryRequest, error)

	// Update persists mutable fields (text, category, date range, status,
	// coverage) of an existing request.
	Update(ctx context.Context, req *DiscoveryRequest) error

	// UpdateCoverage persists only the coverage figure and derived status.
	// Used by the mapping context on every review so a coverage recompute
	// does not race concurrent text edits.
	UpdateCoverage(ctx context.Context, id common.ID, percentage int, status dtypes.RequestStatus) error

	// Delete removes the request; its mappings cascade.
	Delete(ctx context.Context, id common.ID) error

	// MaxNumber returns the highest number in use for (case, type), zero
	// when none exist.
	MaxNumber(ctx context.Context, caseID common.CaseID, reqType dtypes.RequestType) (int, error)

	// NumberExists reports whether (case, type, number) is already taken.
	NumberExists(ctx context.Context, caseID common.CaseID, reqType dtypes.RequestType, number int) (bool, error)

	// Stats aggregates per-case counts and overall coverage.
	Stats(ctx context.Context, caseID common.CaseID) (*dtypes.CaseStats, error)
}
