// Package assumptions exposes the growth-rate assumption CRUD surface the
// dashboard syncs against. Postgres is the primary store; without a
// configured pool the handler works against vault snapshots instead, so the
// editing flow still functions on a laptop with no database.
package assumptions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"land_proforma/pkg/core/assumption"
	"land_proforma/pkg/core/importer"
	"land_proforma/pkg/core/schedule"
	"land_proforma/pkg/core/store"
	"land_proforma/pkg/models"
)

// Handler holds the persistence backends for /api/assumptions.
type Handler struct {
	repo  *store.AssumptionRepo
	vault *store.ProjectVault
}

// NewHandler creates the assumptions handler.
func NewHandler(repo *store.AssumptionRepo, vault *store.ProjectVault) *Handler {
	return &Handler{repo: repo, vault: vault}
}

// CreateRequest is the POST body: a custom schedule variant promoted into a
// persisted assumption, or a brand new one keyed in directly.
type CreateRequest struct {
	ProjectID  string          `json:"project_id"`
	Name       string          `json:"name"`
	Category   string          `json:"category"`
	GlobalRate string          `json:"global_rate,omitempty"`
	Steps      []schedule.Step `json:"steps"`
}

// UpdateRequest is the PUT body. ProjectID is only needed when running
// without a database, to locate the snapshot the assumption lives in.
type UpdateRequest struct {
	ID         string          `json:"id"`
	ProjectID  string          `json:"project_id,omitempty"`
	Name       string          `json:"name,omitempty"`
	GlobalRate *string         `json:"global_rate,omitempty"`
	Steps      []schedule.Step `json:"steps,omitempty"`
}

// HandleAssumptions dispatches the /api/assumptions surface.
func (h *Handler) HandleAssumptions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	switch r.Method {
	case "OPTIONS":
		w.WriteHeader(http.StatusOK)
	case "GET":
		h.handleList(w, r)
	case "POST":
		h.handleCreate(w, r)
	case "PUT":
		h.handleUpdate(w, r)
	case "DELETE":
		h.handleDelete(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	projectID := r.URL.Query().Get("project_id")
	if projectID == "" {
		http.Error(w, "Missing project_id parameter", http.StatusBadRequest)
		return
	}

	list, err := h.list(r.Context(), projectID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*assumption.Assumption{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	a, err := assumption.New(req.ProjectID, req.Name, assumption.Category(req.Category), req.GlobalRate, req.Steps)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.save(r.Context(), a); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	fmt.Printf("[ASSUMPTIONS] Created '%s' (%s) for project %s\n", a.Name, a.Category, a.ProjectID)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(a)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if req.ID == "" {
		http.Error(w, "Missing assumption id", http.StatusBadRequest)
		return
	}

	a, err := h.get(r.Context(), req.ID, req.ProjectID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	if req.Name != "" {
		a.Name = req.Name
	}
	if req.GlobalRate != nil {
		a.GlobalRate = *req.GlobalRate
	}
	if req.Steps != nil {
		if err := a.ReplaceSteps(req.Steps); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	if err := h.save(r.Context(), a); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(a)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Missing id parameter", http.StatusBadRequest)
		return
	}

	// Deleting something already gone is not an error.
	if err := h.delete(r.Context(), id, r.URL.Query().Get("project_id")); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
}

// ===== STORAGE DISPATCH =====

func (h *Handler) list(ctx context.Context, projectID string) ([]*assumption.Assumption, error) {
	if store.GetPool() != nil {
		return h.repo.ByProject(ctx, projectID)
	}
	bundle, err := h.snapshotBundle(ctx, projectID)
	if err != nil || bundle == nil {
		return nil, err
	}
	return bundle.Assumptions, nil
}

func (h *Handler) get(ctx context.Context, id, projectID string) (*assumption.Assumption, error) {
	if store.GetPool() != nil {
		return h.repo.Get(ctx, id)
	}
	if projectID == "" {
		return nil, fmt.Errorf("project_id is required when running without a database")
	}
	bundle, err := h.snapshotBundle(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if bundle != nil {
		for _, a := range bundle.Assumptions {
			if a.ID == id {
				return a, nil
			}
		}
	}
	return nil, fmt.Errorf("assumption '%s' not found", id)
}

func (h *Handler) save(ctx context.Context, a *assumption.Assumption) error {
	if store.GetPool() != nil {
		return h.repo.Save(ctx, a)
	}
	return h.spliceIntoSnapshot(ctx, a)
}

func (h *Handler) delete(ctx context.Context, id, projectID string) error {
	if store.GetPool() != nil {
		return h.repo.Delete(ctx, id)
	}
	if projectID == "" {
		return nil
	}
	exp, err := h.vault.Get(ctx, projectID)
	if err != nil || exp == nil {
		return err
	}
	kept := exp.Assumptions[:0]
	for _, rec := range exp.Assumptions {
		if rec.ID != id {
			kept = append(kept, rec)
		}
	}
	if len(kept) == len(exp.Assumptions) {
		return nil
	}
	exp.Assumptions = kept
	return h.vault.Save(ctx, exp)
}

// snapshotBundle loads the project's vault snapshot and rebuilds it through
// the importer, which resolves schedule bounds and validates as it goes.
func (h *Handler) snapshotBundle(ctx context.Context, projectID string) (*importer.Bundle, error) {
	exp, err := h.vault.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if exp == nil {
		return nil, nil
	}
	data, err := json.Marshal(exp)
	if err != nil {
		return nil, err
	}
	return importer.Load(string(data))
}

// spliceIntoSnapshot is the no-database write path: read the project
// snapshot, replace or append the assumption record, write it back.
func (h *Handler) spliceIntoSnapshot(ctx context.Context, a *assumption.Assumption) error {
	exp, err := h.vault.Get(ctx, a.ProjectID)
	if err != nil {
		return err
	}
	if exp == nil {
		return fmt.Errorf("no snapshot for project '%s', save or import the project first", a.ProjectID)
	}

	record := models.AssumptionExport{
		ID:         a.ID,
		ProjectID:  a.ProjectID,
		Name:       a.Name,
		Category:   string(a.Category),
		GlobalRate: a.GlobalRate,
		Steps:      a.Steps,
	}

	replaced := false
	for i := range exp.Assumptions {
		if exp.Assumptions[i].ID == a.ID {
			exp.Assumptions[i] = record
			replaced = true
			break
		}
	}
	if !replaced {
		exp.Assumptions = append(exp.Assumptions, record)
	}
	return h.vault.Save(ctx, exp)
}
