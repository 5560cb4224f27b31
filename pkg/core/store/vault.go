package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"land_proforma/pkg/models"
)

// ProjectVault stores full project snapshots (the ProformaExport document).
// Supports Hybrid Vault: DB (Primary) + File System (Fallback/Local), so a
// laptop without Postgres still keeps its work.
type ProjectVault struct {
	pool    *pgxpool.Pool
	fileDir string
}

// NewProjectVault creates a new vault instance.
// If pool is nil, it falls back to a file-based vault in the specified
// directory. If dir is empty too, snapshots land under .cache.
func NewProjectVault(pool *pgxpool.Pool, dir string) *ProjectVault {
	if pool == nil && dir == "" {
		dir = filepath.Join(".cache", "proforma", "snapshots")
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			fmt.Printf("[WARNING] Check ProjectVault dir: %v\n", err)
		}
	}
	return &ProjectVault{pool: pool, fileDir: dir}
}

// VaultEntry wraps a snapshot with the lookup fields the file scan needs
type VaultEntry struct {
	ID          string                 `json:"id"` // project ID
	ProjectName string                 `json:"project_name"`
	Version     int                    `json:"version"`
	SavedAt     time.Time              `json:"saved_at"`
	Export      *models.ProformaExport `json:"export"`
}

// Save stores a snapshot in the vault, DB and file both when configured.
//
// Schema assumption:
// CREATE TABLE IF NOT EXISTS proforma_snapshots (
//   project_id TEXT PRIMARY KEY,
//   project_name TEXT,
//   version INT,
//   data JSONB,
//   updated_at TIMESTAMPTZ
// );
func (v *ProjectVault) Save(ctx context.Context, exp *models.ProformaExport) error {
	if exp == nil || exp.Project.ID == "" {
		return fmt.Errorf("snapshot requires a project ID")
	}

	dataJSON, err := json.MarshalIndent(exp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	// 1. Save to DB
	if v.pool != nil {
		query := `
			INSERT INTO proforma_snapshots (project_id, project_name, version, data, updated_at)
			VALUES ($1, $2, $3, $4, NOW())
			ON CONFLICT (project_id)
			DO UPDATE SET
				project_name = EXCLUDED.project_name,
				version = EXCLUDED.version,
				data = EXCLUDED.data,
				updated_at = NOW()
		`
		_, err = v.pool.Exec(ctx, query, exp.Project.ID, exp.Project.Name, exp.Version, dataJSON)
		if err != nil {
			return fmt.Errorf("failed to save snapshot to db: %w", err)
		}
	}

	// 2. Save to File (Always if configured, or if pool is nil)
	if v.fileDir != "" {
		entry := VaultEntry{
			ID:          exp.Project.ID,
			ProjectName: exp.Project.Name,
			Version:     exp.Version,
			SavedAt:     time.Now(),
			Export:      exp,
		}
		fileBytes, _ := json.MarshalIndent(entry, "", "  ")
		if err := ioutil.WriteFile(v.snapshotPath(exp.Project.ID), fileBytes, 0644); err != nil {
			return fmt.Errorf("failed to save snapshot to file: %w", err)
		}
	}

	return nil
}

// Get retrieves a snapshot by project ID. DB is authoritative when
// configured; the file vault only serves local runs.
func (v *ProjectVault) Get(ctx context.Context, projectID string) (*models.ProformaExport, error) {
	if v.pool != nil {
		var dataJSON []byte
		err := v.pool.QueryRow(ctx,
			`SELECT data FROM proforma_snapshots WHERE project_id = $1 LIMIT 1`, projectID).Scan(&dataJSON)
		if err != nil {
			return nil, nil // Vault miss
		}
		var exp models.ProformaExport
		if err := json.Unmarshal(dataJSON, &exp); err != nil {
			return nil, fmt.Errorf("failed to unmarshal db snapshot: %w", err)
		}
		return &exp, nil
	}

	if v.fileDir != "" {
		return v.loadFromFile(v.snapshotPath(projectID))
	}

	return nil, nil
}

// GetByName retrieves a snapshot by project name, case-insensitive.
func (v *ProjectVault) GetByName(ctx context.Context, name string) (*models.ProformaExport, error) {
	if v.pool != nil {
		var dataJSON []byte
		err := v.pool.QueryRow(ctx, `
			SELECT data FROM proforma_snapshots
			WHERE LOWER(project_name) = LOWER($1)
			ORDER BY updated_at DESC
			LIMIT 1
		`, name).Scan(&dataJSON)
		if err != nil {
			return nil, nil
		}
		var exp models.ProformaExport
		if err := json.Unmarshal(dataJSON, &exp); err != nil {
			return nil, fmt.Errorf("failed to unmarshal db snapshot: %w", err)
		}
		return &exp, nil
	}

	if v.fileDir != "" {
		return v.scanFileVault(name)
	}

	return nil, nil
}

// List returns every snapshot in the vault, newest first. DB rows carry
// metadata only (Export is nil, fetch via Get); file entries come back whole
// because the scan has to read them anyway.
func (v *ProjectVault) List(ctx context.Context) ([]VaultEntry, error) {
	if v.pool != nil {
		rows, err := v.pool.Query(ctx, `
			SELECT project_id, project_name, version, updated_at
			FROM proforma_snapshots
			ORDER BY updated_at DESC
		`)
		if err != nil {
			return nil, fmt.Errorf("failed to list snapshots: %w", err)
		}
		defer rows.Close()

		var entries []VaultEntry
		for rows.Next() {
			var entry VaultEntry
			if err := rows.Scan(&entry.ID, &entry.ProjectName, &entry.Version, &entry.SavedAt); err != nil {
				return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
			}
			entries = append(entries, entry)
		}
		return entries, rows.Err()
	}

	if v.fileDir == "" {
		return nil, nil
	}
	files, err := ioutil.ReadDir(v.fileDir)
	if err != nil {
		return nil, nil
	}
	var entries []VaultEntry
	for _, f := range files {
		if filepath.Ext(f.Name()) != ".json" {
			continue
		}
		entry, err := v.loadEntry(filepath.Join(v.fileDir, f.Name()))
		if err != nil || entry.ID == "" {
			continue
		}
		entries = append(entries, *entry)
	}
	return entries, nil
}

// Delete removes a project's snapshot from both stores. Missing snapshots
// are not an error.
func (v *ProjectVault) Delete(ctx context.Context, projectID string) error {
	if v.pool != nil {
		_, err := v.pool.Exec(ctx,
			`DELETE FROM proforma_snapshots WHERE project_id = $1`, projectID)
		if err != nil {
			return fmt.Errorf("failed to delete snapshot from db: %w", err)
		}
	}

	if v.fileDir != "" {
		if err := os.Remove(v.snapshotPath(projectID)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete snapshot file: %w", err)
		}
	}

	return nil
}

// Exists checks if a project already has a snapshot
func (v *ProjectVault) Exists(ctx context.Context, projectID string) bool {
	if v.pool != nil {
		var exists int
		err := v.pool.QueryRow(ctx,
			`SELECT 1 FROM proforma_snapshots WHERE project_id = $1 LIMIT 1`, projectID).Scan(&exists)
		if err == nil {
			return true
		}
	}

	if v.fileDir != "" {
		if _, err := os.Stat(v.snapshotPath(projectID)); err == nil {
			return true
		}
	}

	return false
}

// Internal File Helpers

func (v *ProjectVault) snapshotPath(projectID string) string {
	safeID := strings.ReplaceAll(projectID, "-", "")
	return filepath.Join(v.fileDir, safeID+".json")
}

func (v *ProjectVault) loadFromFile(path string) (*models.ProformaExport, error) {
	bytes, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, nil // Not found
	}
	// Try parsing as VaultEntry wrapper first
	var entry VaultEntry
	if err := json.Unmarshal(bytes, &entry); err == nil && entry.Export != nil {
		return entry.Export, nil
	}

	// Fallback: maybe it's a raw export
	var exp models.ProformaExport
	if err := json.Unmarshal(bytes, &exp); err != nil {
		return nil, err
	}
	return &exp, nil
}

func (v *ProjectVault) scanFileVault(targetName string) (*models.ProformaExport, error) {
	files, err := ioutil.ReadDir(v.fileDir)
	if err != nil {
		return nil, nil
	}

	for _, f := range files {
		if filepath.Ext(f.Name()) != ".json" {
			continue
		}
		entry, err := v.loadEntry(filepath.Join(v.fileDir, f.Name()))
		if err != nil {
			continue
		}
		if strings.EqualFold(entry.ProjectName, targetName) {
			return entry.Export, nil
		}
	}
	return nil, nil
}

func (v *ProjectVault) loadEntry(path string) (*VaultEntry, error) {
	bytes, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entry VaultEntry
	if err := json.Unmarshal(bytes, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}
