package document

import (
	"context"

	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/types/common"
)

// Repository is the persistence port for documents.  This context never
// writes documents, so the port is read-only.
type Repository interface {
	// FindByID returns the document or a CodeDocumentNotFound error.
	FindByID(ctx context.Context, id common.ID) (*Document, error)

	// FindByCase returns all documents belonging to a case, newest first.
	FindByCase(ctx context.Context, caseID common.CaseID) ([]*Document, error)

	// FindUnmappedForRequest returns the case's documents that have no
	// mapping to the given request yet, in no guaranteed order.  The
	// matcher uses this to avoid re-suggesting documents already mapped.
	FindUnmappedForRequest(ctx context.Context, caseID common.CaseID, requestID common.ID) ([]*Document, error)
}
