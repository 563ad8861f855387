package repositories

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/internal/domain/document"
	pkgerrors "github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/errors"
	"github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/types/common"
	dtypes "github.com/Human-Frontier-Labs-Inc/parencylegal-sub001/pkg/types/discovery"
)

// DocumentRepository is the pgx-backed document.Repository.
type DocumentRepository struct {
	pool *pgxpool.Pool
}

// NewDocumentRepository creates a DocumentRepository over the given pool.
func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{pool: pool}
}

var _ document.Repository = (*DocumentRepository)(nil)

const documentColumns = `id, case_id, owner_id, file_name, category, subtype,
	metadata, created_at, updated_at`

func (r *DocumentRepository) FindByID(ctx context.Context, id common.ID) (*document.Document, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+documentColumns+`
		FROM documents
		WHERE id = $1`, id)
	return scanDocument(row)
}

func (r *DocumentRepository) FindByCase(ctx context.Context, caseID common.CaseID) ([]*document.Document, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+documentColumns+`
		FROM documents
		WHERE case_id = $1
		ORDER BY created_at DESC`, caseID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeDatabase, "failed to query documents")
	}
	defer rows.Close()
	return collectDocuments(rows)
}

func (r *DocumentRepository) FindUnmappedForRequest(ctx context.Context, caseID common.CaseID, requestID common.ID) ([]*document.Document, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+documentColumns+`
		FROM documents d
		WHERE d.case_id = $1
		  AND NOT EXISTS (
			SELECT 1 FROM document_mappings m
			WHERE m.document_id = d.id AND m.request_id = $2
		  )`, caseID, requestID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeDatabase, "failed to query unmapped documents")
	}
	defer rows.Close()
	return collectDocuments(rows)
}

func collectDocuments(rows pgx.Rows) ([]*document.Document, error) {
	var out []*document.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeDatabase, "failed to read document rows")
	}
	return out, nil
}

func scanDocument(row pgx.Row) (*document.Document, error) {
	var (
		doc      document.Document
		category *string
		subtype  *string
		metaJSON []byte
	)
	err := row.Scan(&doc.ID, &doc.CaseID, &doc.OwnerID, &doc.FileName,
		&category, &subtype, &metaJSON, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pkgerrors.New(pkgerrors.CodeDocumentNotFound, "document not found")
		}
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeDatabase, "failed to scan document row")
	}
	if category != nil {
		doc.Category = dtypes.Category(*category)
	}
	if subtype != nil {
		doc.Subtype = *subtype
	}
	if len(metaJSON) > 0 {
		if err := json.Unmarshal(metaJSON, &doc.Metadata); err != nil {
			return nil, pkgerrors.Wrap(err, pkgerrors.CodeSerialization, "failed to decode document metadata")
		}
	}
	return &doc, nil
}
