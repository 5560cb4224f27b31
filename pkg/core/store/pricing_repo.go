package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"land_proforma/pkg/core/pricing"
)

// PricingRepo provides storage for price lines
type PricingRepo struct {
	pool *pgxpool.Pool
}

// NewPricingRepo creates a new pricing repository
func NewPricingRepo(pool *pgxpool.Pool) *PricingRepo {
	return &PricingRepo{pool: pool}
}

// SaveLines replaces a project's price table: delete then insert, so an
// import lands as one consistent set.
//
// Schema assumption:
// CREATE TABLE IF NOT EXISTS price_lines (
//   id TEXT PRIMARY KEY,
//   project_id TEXT,
//   container_id TEXT,
//   data JSONB
// );
func (r *PricingRepo) SaveLines(ctx context.Context, projectID string, lines []*pricing.PriceLine) error {
	if r.pool == nil {
		return fmt.Errorf("database pool not configured")
	}

	if _, err := r.pool.Exec(ctx, `DELETE FROM price_lines WHERE project_id = $1`, projectID); err != nil {
		return fmt.Errorf("failed to clear price lines: %w", err)
	}

	query := `INSERT INTO price_lines (id, project_id, container_id, data) VALUES ($1, $2, $3, $4)`
	for _, l := range lines {
		jsonData, err := json.Marshal(l)
		if err != nil {
			return fmt.Errorf("failed to marshal price line '%s': %w", l.ID, err)
		}
		if _, err := r.pool.Exec(ctx, query, l.ID, projectID, l.ContainerID, jsonData); err != nil {
			return fmt.Errorf("failed to save price line '%s': %w", l.ID, err)
		}
	}
	return nil
}

// ByProject retrieves a project's price lines in creation order
func (r *PricingRepo) ByProject(ctx context.Context, projectID string) ([]*pricing.PriceLine, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("database pool not configured")
	}

	rows, err := r.pool.Query(ctx, `SELECT data FROM price_lines WHERE project_id = $1 ORDER BY id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query price lines: %w", err)
	}
	defer rows.Close()

	var out []*pricing.PriceLine
	for rows.Next() {
		var jsonData []byte
		if err := rows.Scan(&jsonData); err != nil {
			return nil, fmt.Errorf("failed to scan price line row: %w", err)
		}
		var l pricing.PriceLine
		if err := json.Unmarshal(jsonData, &l); err != nil {
			return nil, fmt.Errorf("failed to unmarshal price line: %w", err)
		}
		out = append(out, &l)
	}
	return out, nil
}
