package mapping

import (
	"context"

	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/types/common"
)

// Repository is the persistence port for mappings.
type Repository interface {
	// Save inserts a new mapping.  A (document, request) collision
	// returns a CodeMappingAlreadyExists error.
	Save(ctx context.Context, m *Mapping) error

	// FindByID returns the mapping or a CodeMappingNotFound error.
	FindByID(ctx context.Context, id common.ID) (*Mapping, error)

	// FindByRequest returns a request's mappings, highest confidence
	// first.
	FindByRequest(ctx context.Context, requestID common.ID) ([]*Mapping, error)

	// Update persists review state changes.
	Update(ctx context.Context, m *Mapping) error

	// Delete removes the mapping.
	Delete(ctx context.Context, id common.ID) error

	// CountAccepted returns the number of accepted mappings on a request.
	CountAccepted(ctx context.Context, requestID common.ID) (int, error)

	// Exists reports whether a mapping already links (document, request).
	Exists(ctx context.Context, documentID, requestID common.ID) (bool, error)
}
