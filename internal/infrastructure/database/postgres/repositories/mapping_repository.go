package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/domain/mapping"
	pkgerrors "github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/errors"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/types/common"
)

// MappingRepository is the pgx-backed mapping.Repository.
type MappingRepository struct {
	pool *pgxpool.Pool
}

// NewMappingRepository creates a MappingRepository over the given pool.
func NewMappingRepository(pool *pgxpool.Pool) *MappingRepository {
	return &MappingRepository{pool: pool}
}

var _ mapping.Repository = (*MappingRepository)(nil)

const mappingColumns = `id, document_id, request_id, source, status,
	confidence, reasoning, reviewed_by, reviewed_at, created_at, updated_at`

func (r *MappingRepository) Save(ctx context.Context, m *mapping.Mapping) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO document_mappings
			(`+mappingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		m.ID, m.DocumentID, m.RequestID, m.Source, m.Status, m.Confidence,
		nullableString(m.Reasoning), nullableString(string(m.ReviewedBy)),
		m.ReviewedAt, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return pkgerrors.New(pkgerrors.CodeMappingAlreadyExists,
				"document is already mapped to this request")
		}
		return pkgerrors.Wrap(err, pkgerrors.CodeDatabase, "failed to insert mapping")
	}
	return nil
}

func (r *MappingRepository) FindByID(ctx context.Context, id common.ID) (*mapping.Mapping, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+mappingColumns+`
		FROM document_mappings
		WHERE id = $1`, id)
	return scanMapping(row)
}

func (r *MappingRepository) FindByRequest(ctx context.Context, requestID common.ID) ([]*mapping.Mapping, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+mappingColumns+`
		FROM document_mappings
		WHERE request_id = $1
		ORDER BY confidence DESC, created_at`, requestID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeDatabase, "failed to query mappings")
	}
	defer rows.Close()

	var out []*mapping.Mapping
	for rows.Next() {
		m, err := scanMapping(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeDatabase, "failed to read mapping rows")
	}
	return out, nil
}

func (r *MappingRepository) Update(ctx context.Context, m *mapping.Mapping) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE document_mappings
		SET status = $2, reviewed_by = $3, reviewed_at = $4, updated_at = now()
		WHERE id = $1`,
		m.ID, m.Status, nullableString(string(m.ReviewedBy)), m.ReviewedAt)
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeDatabase, "failed to update mapping")
	}
	if tag.RowsAffected() == 0 {
		return pkgerrors.New(pkgerrors.CodeMappingNotFound, "mapping not found")
	}
	return nil
}

func (r *MappingRepository) Delete(ctx context.Context, id common.ID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM document_mappings WHERE id = $1`, id)
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeDatabase, "failed to delete mapping")
	}
	if tag.RowsAffected() == 0 {
		return pkgerrors.New(pkgerrors.CodeMappingNotFound, "mapping not found")
	}
	return nil
}

func (r *MappingRepository) CountAccepted(ctx context.Context, requestID common.ID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM document_mappings
		WHERE request_id = $1 AND status = 'accepted'`, requestID).Scan(&count)
	if err != nil {
		return 0, pkgerrors.Wrap(err, pkgerrors.CodeDatabase, "failed to count accepted mappings")
	}
	return count, nil
}

func (r *MappingRepository) Exists(ctx context.Context, documentID, requestID common.ID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM document_mappings
			WHERE document_id = $1 AND request_id = $2
		)`, documentID, requestID).Scan(&exists)
	if err != nil {
		return false, pkgerrors.Wrap(err, pkgerrors.CodeDatabase, "failed to check mapping existence")
	}
	return exists, nil
}

func scanMapping(row pgx.Row) (*mapping.Mapping, error) {
	var (
		m          mapping.Mapping
		reasoning  *string
		reviewedBy *string
	)
	err := row.Scan(&m.ID, &m.DocumentID, &m.RequestID, &m.Source, &m.Status,
		&m.Confidence, &reasoning, &reviewedBy, &m.ReviewedAt,
		&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pkgerrors.New(pkgerrors.CodeMappingNotFound, "mapping not found")
		}
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeDatabase, "failed to scan mapping row")
	}
	if reasoning != nil {
		m.Reasoning = *reasoning
	}
	if reviewedBy != nil {
		m.ReviewedBy = common.UserID(*reviewedBy)
	}
	return &m, nil
}
