package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"land_proforma/pkg/core/document"
)

// DocumentRepo provides storage for document metadata records
type DocumentRepo struct {
	pool *pgxpool.Pool
}

// NewDocumentRepo creates a new document repository
func NewDocumentRepo(pool *pgxpool.Pool) *DocumentRepo {
	return &DocumentRepo{pool: pool}
}

// Save upserts one document record keyed by its ID.
//
// Schema assumption:
// CREATE TABLE IF NOT EXISTS documents (
//   id TEXT PRIMARY KEY,
//   project_id TEXT,
//   data JSONB,
//   updated_at TIMESTAMPTZ
// );
func (r *DocumentRepo) Save(ctx context.Context, d *document.Document) error {
	if r.pool == nil {
		return fmt.Errorf("database pool not configured")
	}

	jsonData, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	query := `
		INSERT INTO documents (id, project_id, data, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id)
		DO UPDATE SET
			project_id = EXCLUDED.project_id,
			data = EXCLUDED.data,
			updated_at = EXCLUDED.updated_at
	`

	if _, err := r.pool.Exec(ctx, query, d.ID, d.ProjectID, jsonData, time.Now()); err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}

// Get retrieves one document record by ID
func (r *DocumentRepo) Get(ctx context.Context, id string) (*document.Document, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("database pool not configured")
	}

	var jsonData []byte
	err := r.pool.QueryRow(ctx, `SELECT data FROM documents WHERE id = $1`, id).Scan(&jsonData)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("document '%s' not found", id)
		}
		return nil, fmt.Errorf("failed to load document: %w", err)
	}

	return document.Parse(jsonData)
}

// ByProject retrieves a project's document records in upload order
func (r *DocumentRepo) ByProject(ctx context.Context, projectID string) ([]*document.Document, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("database pool not configured")
	}

	rows, err := r.pool.Query(ctx, `SELECT data FROM documents WHERE project_id = $1 ORDER BY id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var out []*document.Document
	for rows.Next() {
		var jsonData []byte
		if err := rows.Scan(&jsonData); err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		d, err := document.Parse(jsonData)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// Delete removes a document record. Unknown IDs delete cleanly.
func (r *DocumentRepo) Delete(ctx context.Context, id string) error {
	if r.pool == nil {
		return fmt.Errorf("database pool not configured")
	}

	if _, err := r.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}
