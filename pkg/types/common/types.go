// Package common defines identifier aliases and base types shared by every
// layer of the discovery compliance engine.
package common

import (
	"time"

	"github.com/google/uuid"
)

// ID is a string alias for a UUID v4 platform identifier.
type ID string

// UserID identifies the owner of a case and its discovery artifacts.
type UserID string

// CaseID identifies a legal case (matter).  All reads and writes are scoped
// by CaseID and UserID together.
type CaseID string

// NewID generates a fresh random ID.
func NewID() ID {
	return ID(uuid.NewString())
}

// BaseEntity carries audit metadata shared by persisted entities.
type BaseEntity struct {
	ID        ID        `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Pagination defines parameters for paginated listings.
type Pagination struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total,omitempty"`
}

// Validate checks that pagination parameters are usable.
func (p Pagination) Validate() error {
	if p.Page < 0 {
		return errPagination
	}
	if p.PageSize < 0 || p.PageSize > 500 {
		return errPagination
	}
	return nil
}

type paginationError struct{}

func (paginationError) Error() string { return "common: invalid pagination parameters" }

var errPagination = paginationError{}

// SortOrder defines the direction of sorting.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)
