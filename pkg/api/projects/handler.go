// Package projects exposes project setup and land-plan CRUD. Syncs with the
// frontend's project switcher and the container tree editor.
package projects

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"land_proforma/pkg/core/importer"
	"land_proforma/pkg/core/project"
	"land_proforma/pkg/core/store"
	"land_proforma/pkg/models"
)

// Handler holds the persistence backends for /api/projects and
// /api/projects/containers.
type Handler struct {
	repo  *store.ProjectRepo
	vault *store.ProjectVault
}

// NewHandler creates the projects handler.
func NewHandler(repo *store.ProjectRepo, vault *store.ProjectVault) *Handler {
	return &Handler{repo: repo, vault: vault}
}

// CreateRequest is the POST body for a new project.
type CreateRequest struct {
	Name           string `json:"name"`
	Type           string `json:"type"`
	AnalysisType   string `json:"analysis_type"`
	Purpose        string `json:"purpose"`
	HorizonPeriods int    `json:"horizon_periods"`
	StartYear      int    `json:"start_year"`
}

// UpdateRequest is the PUT body. Zero-valued fields are left untouched.
type UpdateRequest struct {
	ID             string `json:"id"`
	Name           string `json:"name,omitempty"`
	Type           string `json:"type,omitempty"`
	AnalysisType   string `json:"analysis_type,omitempty"`
	Purpose        string `json:"purpose,omitempty"`
	HorizonPeriods int    `json:"horizon_periods,omitempty"`
	StartYear      int    `json:"start_year,omitempty"`
}

// ContainersRequest replaces a project's whole land plan in one call. The
// records come in export form so the frontend can round-trip them.
type ContainersRequest struct {
	ProjectID  string                   `json:"project_id"`
	Containers []models.ContainerExport `json:"containers"`
}

// HandleProjects dispatches the /api/projects surface.
func (h *Handler) HandleProjects(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	switch r.Method {
	case "OPTIONS":
		w.WriteHeader(http.StatusOK)
	case "GET":
		h.handleGet(w, r)
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

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")

	w.Header().Set("Content-Type", "application/json")
	if id == "" {
		list, err := h.list(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if list == nil {
			list = []*project.Project{}
		}
		json.NewEncoder(w).Encode(list)
		return
	}

	proj, err := h.load(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(proj)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	proj, err := project.New(req.Name, project.ProjectType(req.Type),
		project.AnalysisType(req.AnalysisType), project.Purpose(req.Purpose),
		req.HorizonPeriods, req.StartYear)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.save(r.Context(), proj); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	fmt.Printf("[PROJECTS] Created '%s' (%s)\n", proj.Name, proj.ID)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(proj)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if req.ID == "" {
		http.Error(w, "Missing project id", http.StatusBadRequest)
		return
	}

	proj, err := h.load(r.Context(), req.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	if req.Name != "" {
		proj.Name = req.Name
	}
	if req.Type != "" {
		proj.Type = project.ProjectType(req.Type)
	}
	if req.AnalysisType != "" {
		proj.AnalysisType = project.AnalysisType(req.AnalysisType)
	}
	if req.Purpose != "" {
		proj.Purpose = project.Purpose(req.Purpose)
	}
	if req.HorizonPeriods != 0 {
		proj.HorizonPeriods = req.HorizonPeriods
	}
	if req.StartYear != 0 {
		proj.StartYear = req.StartYear
	}
	proj.UpdatedAt = time.Now()

	if err := proj.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.save(r.Context(), proj); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(proj)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Missing id parameter", http.StatusBadRequest)
		return
	}

	// Repo delete cascades to the project's rows; the snapshot goes with it.
	if store.GetPool() != nil {
		if err := h.repo.Delete(r.Context(), id); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
	if err := h.vault.Delete(r.Context(), id); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
}

// ===== CONTAINERS =====

// HandleContainers dispatches /api/projects/containers: read the land plan,
// or replace it wholesale.
func (h *Handler) HandleContainers(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	switch r.Method {
	case "OPTIONS":
		w.WriteHeader(http.StatusOK)
	case "GET":
		h.handleContainersGet(w, r)
	case "POST":
		h.handleContainersReplace(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleContainersGet(w http.ResponseWriter, r *http.Request) {
	projectID := r.URL.Query().Get("project_id")
	if projectID == "" {
		http.Error(w, "Missing project_id parameter", http.StatusBadRequest)
		return
	}

	containers, err := h.loadContainers(r.Context(), projectID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if containers == nil {
		containers = []*project.Container{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(containers)
}

func (h *Handler) handleContainersReplace(w http.ResponseWriter, r *http.Request) {
	var req ContainersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if req.ProjectID == "" {
		http.Error(w, "Missing project_id", http.StatusBadRequest)
		return
	}

	// Containers validates the records as a tree before anything persists.
	containers, err := importer.Containers(req.ProjectID, req.Containers)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.saveContainers(r.Context(), req.ProjectID, containers); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	fmt.Printf("[PROJECTS] Replaced land plan for %s (%d containers)\n", req.ProjectID, len(containers))
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(containers)
}

// ===== STORAGE DISPATCH =====

func (h *Handler) load(ctx context.Context, id string) (*project.Project, error) {
	if store.GetPool() != nil {
		return h.repo.Load(ctx, id)
	}
	bundle, err := h.snapshotBundle(ctx, id)
	if err != nil {
		return nil, err
	}
	if bundle == nil {
		return nil, fmt.Errorf("project '%s' not found", id)
	}
	return bundle.Project, nil
}

func (h *Handler) list(ctx context.Context) ([]*project.Project, error) {
	if store.GetPool() != nil {
		return h.repo.List(ctx)
	}
	entries, err := h.vault.List(ctx)
	if err != nil {
		return nil, err
	}
	var projects []*project.Project
	for _, entry := range entries {
		if entry.Export == nil {
			continue
		}
		bundle, err := h.snapshotBundle(ctx, entry.ID)
		if err != nil {
			fmt.Printf("[WARNING] Skipping unreadable snapshot %s: %v\n", entry.ID, err)
			continue
		}
		if bundle != nil {
			projects = append(projects, bundle.Project)
		}
	}
	return projects, nil
}

func (h *Handler) save(ctx context.Context, proj *project.Project) error {
	if store.GetPool() != nil {
		return h.repo.Save(ctx, proj)
	}
	exp, err := h.vault.Get(ctx, proj.ID)
	if err != nil {
		return err
	}
	if exp == nil {
		exp = importer.BuildExport(proj, nil, nil, nil, nil)
	} else {
		exp.Project = exportProject(proj)
	}
	return h.vault.Save(ctx, exp)
}

func (h *Handler) loadContainers(ctx context.Context, projectID string) ([]*project.Container, error) {
	if store.GetPool() != nil {
		return h.repo.LoadContainers(ctx, projectID)
	}
	bundle, err := h.snapshotBundle(ctx, projectID)
	if err != nil || bundle == nil {
		return nil, err
	}
	return bundle.Containers, nil
}

func (h *Handler) saveContainers(ctx context.Context, projectID string, containers []*project.Container) error {
	if store.GetPool() != nil {
		return h.repo.SaveContainers(ctx, projectID, containers)
	}
	exp, err := h.vault.Get(ctx, projectID)
	if err != nil {
		return err
	}
	if exp == nil {
		return fmt.Errorf("no snapshot for project '%s', save the project first", projectID)
	}
	records := make([]models.ContainerExport, len(containers))
	for i, c := range containers {
		parent := ""
		if c.ParentID != nil {
			parent = *c.ParentID
		}
		records[i] = models.ContainerExport{
			ID:        c.ID,
			ProjectID: c.ProjectID,
			Name:      c.Name,
			Kind:      string(c.Kind),
			ParentID:  parent,
			Acres:     c.Acres,
		}
	}
	exp.Containers = records
	return h.vault.Save(ctx, exp)
}

// snapshotBundle loads the project's vault snapshot and rebuilds it through
// the importer so everything comes back validated.
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

func exportProject(p *project.Project) models.ProjectExport {
	return models.ProjectExport{
		ID:             p.ID,
		Name:           p.Name,
		Type:           string(p.Type),
		AnalysisType:   string(p.AnalysisType),
		Purpose:        string(p.Purpose),
		HorizonPeriods: p.HorizonPeriods,
		StartYear:      p.StartYear,
	}
}
