package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"land_proforma/pkg/core/assumption"
)

// AssumptionRepo provides storage for growth-rate assumptions
type AssumptionRepo struct {
	pool *pgxpool.Pool
}

// NewAssumptionRepo creates a new assumption repository
func NewAssumptionRepo(pool *pgxpool.Pool) *AssumptionRepo {
	return &AssumptionRepo{pool: pool}
}

// Save upserts one assumption keyed by its ID. Steps travel inside the JSONB
// blob with their resolved bounds, so the base variant can read persisted
// coverage without recomputing.
//
// Schema assumption:
// CREATE TABLE IF NOT EXISTS assumptions (
//   id TEXT PRIMARY KEY,
//   project_id TEXT,
//   category TEXT,
//   data JSONB,
//   updated_at TIMESTAMPTZ
// );
func (r *AssumptionRepo) Save(ctx context.Context, a *assumption.Assumption) error {
	if r.pool == nil {
		return fmt.Errorf("database pool not configured")
	}

	jsonData, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal assumption: %w", err)
	}

	query := `
		INSERT INTO assumptions (id, project_id, category, data, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id)
		DO UPDATE SET
			project_id = EXCLUDED.project_id,
			category = EXCLUDED.category,
			data = EXCLUDED.data,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.pool.Exec(ctx, query, a.ID, a.ProjectID, string(a.Category), jsonData, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save assumption: %w", err)
	}
	return nil
}

// Get retrieves one assumption by ID
func (r *AssumptionRepo) Get(ctx context.Context, id string) (*assumption.Assumption, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("database pool not configured")
	}

	var jsonData []byte
	err := r.pool.QueryRow(ctx, `SELECT data FROM assumptions WHERE id = $1`, id).Scan(&jsonData)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("assumption '%s' not found", id)
		}
		return nil, fmt.Errorf("failed to load assumption: %w", err)
	}

	return assumption.Parse(jsonData)
}

// ByProject retrieves all assumptions for a project in creation order
func (r *AssumptionRepo) ByProject(ctx context.Context, projectID string) ([]*assumption.Assumption, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("database pool not configured")
	}

	rows, err := r.pool.Query(ctx,
		`SELECT data FROM assumptions WHERE project_id = $1 ORDER BY data->>'created_at', id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query assumptions: %w", err)
	}
	defer rows.Close()

	var out []*assumption.Assumption
	for rows.Next() {
		var jsonData []byte
		if err := rows.Scan(&jsonData); err != nil {
			return nil, fmt.Errorf("failed to scan assumption row: %w", err)
		}
		a, err := assumption.Parse(jsonData)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// Delete removes an assumption. Unknown IDs delete cleanly; the frontend
// retries failed deletes and the second attempt must succeed too.
func (r *AssumptionRepo) Delete(ctx context.Context, id string) error {
	if r.pool == nil {
		return fmt.Errorf("database pool not configured")
	}

	if _, err := r.pool.Exec(ctx, `DELETE FROM assumptions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete assumption: %w", err)
	}
	return nil
}

// Exists checks if an assumption is already stored
func (r *AssumptionRepo) Exists(ctx context.Context, id string) bool {
	if r.pool == nil {
		return false
	}

	var exists int
	err := r.pool.QueryRow(ctx, `SELECT 1 FROM assumptions WHERE id = $1 LIMIT 1`, id).Scan(&exists)
	return err == nil
}
