package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"land_proforma/pkg/core/project"
)

// ProjectRepo handles the storage of projects and their land plans.
type ProjectRepo struct{}

// NewProjectRepo creates a new repository instance.
func NewProjectRepo() *ProjectRepo {
	return &ProjectRepo{}
}

// Save persists a project. It uses an upsert strategy based on project ID.
// A single JSONB blob keeps the record flexible while the frontend shape
// still moves.
//
// Schema assumption:
// CREATE TABLE IF NOT EXISTS projects (
//   id TEXT PRIMARY KEY,
//   name TEXT,
//   data JSONB,
//   updated_at TIMESTAMPTZ
// );
func (r *ProjectRepo) Save(ctx context.Context, proj *project.Project) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	jsonData, err := json.Marshal(proj)
	if err != nil {
		return fmt.Errorf("failed to marshal project: %w", err)
	}

	query := `
		INSERT INTO projects (id, name, data, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id)
		DO UPDATE SET
			name = EXCLUDED.name,
			data = EXCLUDED.data,
			updated_at = EXCLUDED.updated_at;
	`

	_, err = pool.Exec(ctx, query, proj.ID, proj.Name, jsonData, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}
	return nil
}

// Load retrieves one project by ID.
func (r *ProjectRepo) Load(ctx context.Context, id string) (*project.Project, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	var jsonData []byte
	err := pool.QueryRow(ctx, `SELECT data FROM projects WHERE id = $1`, id).Scan(&jsonData)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("project '%s' not found", id)
		}
		return nil, fmt.Errorf("failed to load project: %w", err)
	}

	return project.Parse(jsonData)
}

// List retrieves every stored project, newest first.
func (r *ProjectRepo) List(ctx context.Context) ([]*project.Project, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	rows, err := pool.Query(ctx, `SELECT data FROM projects ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var projects []*project.Project
	for rows.Next() {
		var jsonData []byte
		if err := rows.Scan(&jsonData); err != nil {
			return nil, fmt.Errorf("failed to scan project row: %w", err)
		}
		proj, err := project.Parse(jsonData)
		if err != nil {
			return nil, err
		}
		projects = append(projects, proj)
	}
	return projects, nil
}

// Delete removes a project. Deleting an unknown ID is not an error.
func (r *ProjectRepo) Delete(ctx context.Context, id string) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	if _, err := pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

// SaveContainers replaces a project's land plan. Containers upsert at the
// project level: delete then insert, the same way table rows hang off a
// parent record.
//
// Schema assumption:
// CREATE TABLE IF NOT EXISTS containers (
//   id TEXT PRIMARY KEY,
//   project_id TEXT,
//   data JSONB
// );
func (r *ProjectRepo) SaveContainers(ctx context.Context, projectID string, containers []*project.Container) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	if _, err := pool.Exec(ctx, `DELETE FROM containers WHERE project_id = $1`, projectID); err != nil {
		return fmt.Errorf("failed to clear land plan: %w", err)
	}

	query := `INSERT INTO containers (id, project_id, data) VALUES ($1, $2, $3)`
	for _, c := range containers {
		jsonData, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("failed to marshal container '%s': %w", c.ID, err)
		}
		if _, err := pool.Exec(ctx, query, c.ID, projectID, jsonData); err != nil {
			return fmt.Errorf("failed to save container '%s': %w", c.ID, err)
		}
	}
	return nil
}

// LoadContainers retrieves a project's land plan in creation order.
func (r *ProjectRepo) LoadContainers(ctx context.Context, projectID string) ([]*project.Container, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	rows, err := pool.Query(ctx, `SELECT data FROM containers WHERE project_id = $1 ORDER BY id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query containers: %w", err)
	}
	defer rows.Close()

	var containers []*project.Container
	for rows.Next() {
		var jsonData []byte
		if err := rows.Scan(&jsonData); err != nil {
			return nil, fmt.Errorf("failed to scan container row: %w", err)
		}
		var c project.Container
		if err := json.Unmarshal(jsonData, &c); err != nil {
			return nil, fmt.Errorf("failed to unmarshal container: %w", err)
		}
		containers = append(containers, &c)
	}
	return containers, nil
}
