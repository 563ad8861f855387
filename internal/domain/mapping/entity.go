// Package mapping implements the document-to-request Mapping bounded
// context: the mapping aggregate and its review state machine, and the
// coverage recompute that the request context's status derives from.
package mapping

import (
	"time"

	pkgerrors "github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/errors"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/types/common"
	dtypes "github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/types/discovery"
)

// Mapping links one document to one discovery request.  At most one mapping
// may exist per (document, request) pair; the database enforces the same
// constraint.
//
// Review state machine:
//
//	suggested ──► accepted
//	     │
//	     └──────► rejected
//
// accepted and rejected are terminal.  Manual additions are born accepted.
type Mapping struct {
	common.BaseEntity

	DocumentID common.ID `json:"document_id"`
	RequestID  common.ID `json:"request_id"`

	Source dtypes.MappingSource `json:"source"`
	Status dtypes.MappingStatus `json:"status"`

	// Confidence is the match score (0..100) for AI suggestions; manual
	// additions default to 100 when the caller does not state one.
	Confidence int    `json:"confidence"`
	Reasoning  string `json:"reasoning,omitempty"`

	ReviewedBy common.UserID `json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time    `json:"reviewed_at,omitempty"`
}

// NewMapping validates and constructs a mapping.  AI suggestions start in
// the suggested state awaiting review; manual additions are an attorney's
// explicit judgement, so they start accepted with the creator stamped as
// reviewer.
func NewMapping(
	documentID common.ID,
	requestID common.ID,
	source dtypes.MappingSource,
	confidence int,
	reasoning string,
	createdBy common.UserID,
) (*Mapping, error) {
	if documentID == "" {
		return nil, pkgerrors.InvalidParam("document id is required")
	}
	if requestID == "" {
		return nil, pkgerrors.InvalidParam("request id is required")
	}
	if !source.IsValid() {
		return nil, pkgerrors.InvalidParam("invalid mapping source").WithDetail(string(source))
	}
	if confidence < 0 || confidence > 100 {
		return nil, pkgerrors.Validation("confidence must be within 0..100")
	}

	now := time.Now().UTC()
	m := &Mapping{
		BaseEntity: common.BaseEntity{
			ID:        common.NewID(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		DocumentID: documentID,
		RequestID:  requestID,
		Source:     source,
		Status:     dtypes.MappingSuggested,
		Confidence: confidence,
		Reasoning:  reasoning,
	}
	if source == dtypes.SourceManualAddition {
		m.Status = dtypes.MappingAccepted
		if m.Confidence == 0 {
			m.Confidence = 100
		}
		m.ReviewedBy = createdBy
		m.ReviewedAt = &now
	}
	return m, nil
}

// Review moves a suggested mapping into a terminal state, stamping the
// reviewer.  Reviewing an already-reviewed mapping fails.
func (m *Mapping) Review(status dtypes.MappingStatus, reviewer common.UserID) error {
	if !status.IsReviewed() {
		return pkgerrors.InvalidParam("review status must be accepted or rejected").WithDetail(string(status))
	}
	if m.Status != dtypes.MappingSuggested {
		return pkgerrors.Newf(pkgerrors.CodeMappingNotReviewable,
			"mapping is already %s", m.Status)
	}
	now := time.Now().UTC()
	m.Status = status
	m.ReviewedBy = reviewer
	m.ReviewedAt = &now
	m.UpdatedAt = now
	return nil
}

// IsAccepted reports whether the mapping counts toward coverage.
func (m *Mapping) IsAccepted() bool {
	return m.Status == dtypes.MappingAccepted
}
