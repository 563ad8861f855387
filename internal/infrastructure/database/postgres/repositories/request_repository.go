// Package repositories implements the persistence ports of the domain
// contexts over PostgreSQL via pgx.  Composite values (date ranges, document
// metadata) are stored as jsonb so the schema tracks the Go types without a
// migration per field.
package repositories

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/domain/request"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/intelligence/daterange"
	pkgerrors "github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/errors"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/types/common"
	dtypes "github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/types/discovery"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint hits.
const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// RequestRepository is the pgx-backed request.Repository.
type RequestRepository struct {
	pool *pgxpool.Pool
}

// NewRequestRepository creates a RequestRepository over the given pool.
func NewRequestRepository(pool *pgxpool.Pool) *RequestRepository {
	return &RequestRepository{pool: pool}
}

var _ request.Repository = (*RequestRepository)(nil)

const requestColumns = `id, case_id, owner_id, type, number, text, category,
	date_range, status, coverage_percentage, created_at, updated_at`

func (r *RequestRepository) Save(ctx context.Context, req *request.DiscoveryRequest) error {
	rangeJSON, err := json.Marshal(req.DateRange)
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeSerialization, "failed to encode date range")
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO discovery_requests
			(`+requestColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		req.ID, req.CaseID, req.OwnerID, req.Type, req.Number, req.Text,
		nullableString(string(req.Category)), rangeJSON, req.Status,
		req.CoveragePercentage, req.CreatedAt, req.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return pkgerrors.Newf(pkgerrors.CodeRequestNumberTaken,
				"%s %d already exists in this case", req.Type, req.Number)
		}
		return pkgerrors.Wrap(err, pkgerrors.CodeDatabase, "failed to insert request")
	}
	return nil
}

func (r *RequestRepository) FindByID(ctx context.Context, id common.ID) (*request.DiscoveryRequest, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+requestColumns+`
		FROM discovery_requests
		WHERE id = $1`, id)
	return scanRequest(row)
}

func (r *RequestRepository) FindByCase(ctx context.Context, caseID common.CaseID) ([]*request.DiscoveryRequest, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+requestColumns+`
		FROM discovery_requests
		WHERE case_id = $1
		ORDER BY type, number`, caseID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeDatabase, "failed to query requests")
	}
	defer rows.Close()

	var out []*request.DiscoveryRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeDatabase, "failed to read request rows")
	}
	return out, nil
}

func (r *RequestRepository) Update(ctx context.Context, req *request.DiscoveryRequest) error {
	rangeJSON, err := json.Marshal(req.DateRange)
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeSerialization, "failed to encode date range")
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE discovery_requests
		SET text = $2, category = $3, date_range = $4, status = $5,
			coverage_percentage = $6, updated_at = now()
		WHERE id = $1`,
		req.ID, req.Text, nullableString(string(req.Category)), rangeJSON,
		req.Status, req.CoveragePercentage)
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeDatabase, "failed to update request")
	}
	if tag.RowsAffected() == 0 {
		return pkgerrors.New(pkgerrors.CodeRequestNotFound, "discovery request not found")
	}
	return nil
}

func (r *RequestRepository) UpdateCoverage(ctx context.Context, id common.ID, percentage int, status dtypes.RequestStatus) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE discovery_requests
		SET coverage_percentage = $2, status = $3, updated_at = now()
		WHERE id = $1`, id, percentage, status)
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeDatabase, "failed to update coverage")
	}
	if tag.RowsAffected() == 0 {
		return pkgerrors.New(pkgerrors.CodeRequestNotFound, "discovery request not found")
	}
	return nil
}

func (r *RequestRepository) Delete(ctx context.Context, id common.ID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM discovery_requests WHERE id = $1`, id)
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeDatabase, "failed to delete request")
	}
	if tag.RowsAffected() == 0 {
		return pkgerrors.New(pkgerrors.CodeRequestNotFound, "discovery request not found")
	}
	return nil
}

func (r *RequestRepository) MaxNumber(ctx context.Context, caseID common.CaseID, reqType dtypes.RequestType) (int, error) {
	var max int
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(MAX(number), 0)
		FROM discovery_requests
		WHERE case_id = $1 AND type = $2`, caseID, reqType).Scan(&max)
	if err != nil {
		return 0, pkgerrors.Wrap(err, pkgerrors.CodeDatabase, "failed to query max request number")
	}
	return max, nil
}

func (r *RequestRepository) NumberExists(ctx context.Context, caseID common.CaseID, reqType dtypes.RequestType, number int) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM discovery_requests
			WHERE case_id = $1 AND type = $2 AND number = $3
		)`, caseID, reqType, number).Scan(&exists)
	if err != nil {
		return false, pkgerrors.Wrap(err, pkgerrors.CodeDatabase, "failed to check request number")
	}
	return exists, nil
}

func (r *RequestRepository) Stats(ctx context.Context, caseID common.CaseID) (*dtypes.CaseStats, error) {
	stats := &dtypes.CaseStats{}
	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE type = 'RFP'),
			COUNT(*) FILTER (WHERE type = 'Interrogatory'),
			COUNT(*) FILTER (WHERE status = 'incomplete'),
			COUNT(*) FILTER (WHERE status = 'partial'),
			COUNT(*) FILTER (WHERE status = 'complete'),
			COALESCE(AVG(coverage_percentage), 0)
		FROM discovery_requests
		WHERE case_id = $1`, caseID).Scan(
		&stats.TotalRequests, &stats.RFPs, &stats.Interrogatories,
		&stats.Incomplete, &stats.Partial, &stats.Complete,
		&stats.AverageCompletion)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeDatabase, "failed to aggregate case stats")
	}
	return stats, nil
}

// scanRequest hydrates one row regardless of whether it came from QueryRow
// or Rows.
func scanRequest(row pgx.Row) (*request.DiscoveryRequest, error) {
	var (
		req       request.DiscoveryRequest
		category  *string
		rangeJSON []byte
	)
	err := row.Scan(&req.ID, &req.CaseID, &req.OwnerID, &req.Type, &req.Number,
		&req.Text, &category, &rangeJSON, &req.Status,
		&req.CoveragePercentage, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pkgerrors.New(pkgerrors.CodeRequestNotFound, "discovery request not found")
		}
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeDatabase, "failed to scan request row")
	}
	if category != nil {
		req.Category = dtypes.Category(*category)
	}
	if len(rangeJSON) > 0 {
		var rng daterange.Range
		if err := json.Unmarshal(rangeJSON, &rng); err != nil {
			return nil, pkgerrors.Wrap(err, pkgerrors.CodeSerialization, "failed to decode date range")
		}
		req.DateRange = rng
	}
	return &req, nil
}

// nullableString maps "" to SQL NULL.
func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
