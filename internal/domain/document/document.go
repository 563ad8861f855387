// Package document holds the read-side Document model the discovery engine
// matches against.  Documents are ingested and owned by the wider platform;
// this bounded context only reads them, so the package carries no factory or
// state machine, just the entity and its repository port.
package document

import (
	"time"

	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/types/common"
	dtypes "github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/types/discovery"
)

// Metadata carries the extracted facts the matcher scores on.  All fields are
// optional; extraction quality varies by document source.
type Metadata struct {
	// StartDate and EndDate bound the period the document covers.  A
	// single-dated document (an invoice, a letter) sets StartDate only.
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`

	Parties []string `json:"parties,omitempty"`
	Amounts []string `json:"amounts,omitempty"`
}

// Document is a produced or collected case document.
type Document struct {
	common.BaseEntity

	CaseID  common.CaseID `json:"case_id"`
	OwnerID common.UserID `json:"owner_id"`

	FileName string          `json:"file_name"`
	Category dtypes.Category `json:"category,omitempty"`
	Subtype  string          `json:"subtype,omitempty"`

	Metadata Metadata `json:"metadata"`
}

// SearchText returns the text surface keyword matching runs against: the
// file name plus subtype.  Full-text content is held by the ingestion
// pipeline and exposed only through the vector index.
func (d *Document) SearchText() string {
	if d.Subtype == "" {
		return d.FileName
	}
	return d.FileName + " " + d.Subtype
}

// HasDates reports whether any date metadata was extracted.
func (d *Document) HasDates() bool {
	return d.Metadata.StartDate != nil || d.Metadata.EndDate != nil
}
