// Package discovery defines the closed enumerations and shared DTOs of the
// discovery request compliance engine.  The enums here are deliberately
// modelled as typed constants with IsValid checks so that the category
// detector, the matching engine, and document validation all agree at compile
// time on the same value sets.
package discovery

// ─────────────────────────────────────────────────────────────────────────────
// RequestType
// ─────────────────────────────────────────────────────────────────────────────

// RequestType distinguishes requests for production from interrogatories.
type RequestType string

const (
	RequestTypeRFP           RequestType = "RFP"
	RequestTypeInterrogatory RequestType = "Interrogatory"
)

// IsValid reports whether t is one of the declared request types.
func (t RequestType) IsValid() bool {
	switch t {
	case RequestTypeRFP, RequestTypeInterrogatory:
		return true
	}
	return false
}

func (t RequestType) String() string { return string(t) }

// ─────────────────────────────────────────────────────────────────────────────
// RequestStatus
// ─────────────────────────────────────────────────────────────────────────────

// RequestStatus is the coverage-derived completion state of a request.
//
// StatusPartial exists in the schema but is unreachable through the binary
// coverage recompute; it is kept for forward compatibility and accepted by
// update validation.
type RequestStatus string

const (
	StatusIncomplete RequestStatus = "incomplete"
	StatusPartial    RequestStatus = "partial"
	StatusComplete   RequestStatus = "complete"
)

// IsValid reports whether s is one of the declared statuses.
func (s RequestStatus) IsValid() bool {
	switch s {
	case StatusIncomplete, StatusPartial, StatusComplete:
		return true
	}
	return false
}

func (s RequestStatus) String() string { return string(s) }

// ─────────────────────────────────────────────────────────────────────────────
// MappingSource / MappingStatus
// ─────────────────────────────────────────────────────────────────────────────

// MappingSource records how a document-to-request mapping was produced.
type MappingSource string

const (
	SourceAISuggestion   MappingSource = "ai_suggestion"
	SourceManualAddition MappingSource = "manual_addition"
)

// IsValid reports whether src is one of the declared sources.
func (src MappingSource) IsValid() bool {
	switch src {
	case SourceAISuggestion, SourceManualAddition:
		return true
	}
	return false
}

func (src MappingSource) String() string { return string(src) }

// MappingStatus is the review state of a mapping.
type MappingStatus string

const (
	MappingSuggested MappingStatus = "suggested"
	MappingAccepted  MappingStatus = "accepted"
	MappingRejected  MappingStatus = "rejected"
)

// IsValid reports whether s is one of the declared mapping statuses.
func (s MappingStatus) IsValid() bool {
	switch s {
	case MappingSuggested, MappingAccepted, MappingRejected:
		return true
	}
	return false
}

func (s MappingStatus) String() string { return string(s) }

// IsReviewed reports whether s is a terminal review state.
func (s MappingStatus) IsReviewed() bool {
	return s == MappingAccepted || s == MappingRejected
}

// ─────────────────────────────────────────────────────────────────────────────
// Category taxonomy
// ─────────────────────────────────────────────────────────────────────────────

// Category is one of the fixed document/request categories.
type Category string

const (
	CategoryFinancial  Category = "Financial"
	CategoryMedical    Category = "Medical"
	CategoryEmployment Category = "Employment"
	CategoryProperty   Category = "Property"
	CategoryLegal      Category = "Legal"
	CategoryPersonal   Category = "Personal"
)

// Categories lists every category in declaration order.  The category
// detector depends on this order as its tie-break, so the slice must not be
// reordered.
var Categories = []Category{
	CategoryFinancial,
	CategoryMedical,
	CategoryEmployment,
	CategoryProperty,
	CategoryLegal,
	CategoryPersonal,
}

// IsValid reports whether c is one of the declared categories.
func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string { return string(c) }

// ─────────────────────────────────────────────────────────────────────────────
// Shared DTOs
// ─────────────────────────────────────────────────────────────────────────────

// ParsedRequest is the transient artifact produced by text parsing before
// persistence.  It is never stored independently.
type ParsedRequest struct {
	Type   RequestType `json:"type"`
	Number int         `json:"number"`
	Text   string      `json:"text"`
}

// CaseStats aggregates a case's discovery position by type and status.
type CaseStats struct {
	TotalRequests     int     `json:"total_requests"`
	RFPs              int     `json:"rfps"`
	Interrogatories   int     `json:"interrogatories"`
	Incomplete        int     `json:"incomplete"`
	Partial           int     `json:"partial"`
	Complete          int     `json:"complete"`
	AverageCompletion float64 `json:"average_completion"`
}
