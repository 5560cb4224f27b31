// Package exchange moves whole projects in and out of the dashboard: legacy
// export import (synchronous and SSE-streamed), HTML pricing-table
// extraction, and the export round trip.
package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"

	"land_proforma/pkg/core/importer"
	"land_proforma/pkg/core/pricing"
	"land_proforma/pkg/core/store"
	"land_proforma/pkg/models"
)

// Handler holds every store the import pipeline writes to.
type Handler struct {
	projects    *store.ProjectRepo
	assumptions *store.AssumptionRepo
	pricing     *store.PricingRepo
	documents   *store.DocumentRepo
	vault       *store.ProjectVault
}

// NewHandler creates the exchange handler.
func NewHandler(projects *store.ProjectRepo, assumptions *store.AssumptionRepo,
	pricing *store.PricingRepo, documents *store.DocumentRepo, vault *store.ProjectVault) *Handler {
	return &Handler{
		projects:    projects,
		assumptions: assumptions,
		pricing:     pricing,
		documents:   documents,
		vault:       vault,
	}
}

// ImportResult summarizes what an import landed. Errors are component-level:
// a failed section is reported, the rest still persists.
type ImportResult struct {
	ProjectID   string   `json:"project_id"`
	ProjectName string   `json:"project_name"`
	Containers  int      `json:"containers"`
	Assumptions int      `json:"assumptions"`
	PriceLines  int      `json:"price_lines"`
	Documents   int      `json:"documents"`
	Errors      []string `json:"errors,omitempty"`
}

// HandleImport serves POST /api/import: the request body is a legacy export
// document, parsed leniently and persisted in one shot.
func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to read body: %v", err), http.StatusBadRequest)
		return
	}

	bundle, err := importer.Load(string(body))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result := h.persistBundle(r.Context(), bundle)
	fmt.Printf("[IMPORT] Loaded '%s': %d containers, %d assumptions, %d price lines\n",
		result.ProjectName, result.Containers, result.Assumptions, result.PriceLines)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// HandleExport serves GET /api/export?project_id: the project reassembled
// into a single wire document, the inverse of import.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != "GET" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	projectID := r.URL.Query().Get("project_id")
	if projectID == "" {
		http.Error(w, "Missing project_id parameter", http.StatusBadRequest)
		return
	}

	exp, err := h.buildExport(r.Context(), projectID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(exp)
}

// ===== PRICING TABLE IMPORT =====

// PricingImportRequest carries a pasted or uploaded HTML pricing table.
type PricingImportRequest struct {
	ProjectID string `json:"project_id"`
	HTML      string `json:"html"`
}

// HandlePricingImport serves POST /api/import/pricing: parse an HTML pricing
// grid, attach rows to the project's containers by name, replace the
// project's price lines.
func (h *Handler) HandlePricingImport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req PricingImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if req.ProjectID == "" {
		http.Error(w, "Missing project_id", http.StatusBadRequest)
		return
	}

	rows, err := importer.ParsePricingTable(req.HTML)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	containerIDs, err := h.containerNameIndex(r.Context(), req.ProjectID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	lines, err := importer.PriceLines(rows, req.ProjectID, containerIDs)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.saveLines(r.Context(), req.ProjectID, lines); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	fmt.Printf("[IMPORT] Pricing table for %s: %d lines\n", req.ProjectID, len(lines))
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(lines)
}

// ===== PERSISTENCE =====

// persistBundle writes every section of an imported bundle to its store.
// Section failures collect as error strings; the snapshot still saves so the
// import is never silently lost.
func (h *Handler) persistBundle(ctx context.Context, b *importer.Bundle) ImportResult {
	result := ImportResult{
		ProjectID:   b.Project.ID,
		ProjectName: b.Project.Name,
		Containers:  len(b.Containers),
		Assumptions: len(b.Assumptions),
		PriceLines:  len(b.PriceLines),
		Documents:   len(b.Documents),
	}

	if store.GetPool() != nil {
		if err := h.projects.Save(ctx, b.Project); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("project: %v", err))
		}
		if err := h.projects.SaveContainers(ctx, b.Project.ID, b.Containers); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("containers: %v", err))
		}
		for _, a := range b.Assumptions {
			if err := h.assumptions.Save(ctx, a); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("assumption '%s': %v", a.Name, err))
			}
		}
		if err := h.pricing.SaveLines(ctx, b.Project.ID, b.PriceLines); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("price lines: %v", err))
		}
		for _, d := range b.Documents {
			if err := h.documents.Save(ctx, d); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("document '%s': %v", d.Name, err))
			}
		}
	}

	exp := importer.BuildExport(b.Project, b.Containers, b.Assumptions, b.PriceLines, b.Documents)
	if err := h.vault.Save(ctx, exp); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("snapshot: %v", err))
	}

	return result
}

// buildExport reassembles a project from the repos, or falls back to the
// vault snapshot when no database is configured.
func (h *Handler) buildExport(ctx context.Context, projectID string) (*models.ProformaExport, error) {
	if store.GetPool() == nil {
		exp, err := h.vault.Get(ctx, projectID)
		if err != nil {
			return nil, err
		}
		if exp == nil {
			return nil, fmt.Errorf("project '%s' not found", projectID)
		}
		return exp, nil
	}

	proj, err := h.projects.Load(ctx, projectID)
	if err != nil {
		return nil, err
	}
	containers, err := h.projects.LoadContainers(ctx, projectID)
	if err != nil {
		return nil, err
	}
	assumptions, err := h.assumptions.ByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	lines, err := h.pricing.ByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	docs, err := h.documents.ByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	exp := importer.BuildExport(proj, containers, assumptions, lines, docs)
	// Refresh the snapshot while everything is in hand.
	if err := h.vault.Save(ctx, exp); err != nil {
		fmt.Printf("[WARNING] Failed to refresh snapshot for %s: %v\n", projectID, err)
	}
	return exp, nil
}

// containerNameIndex maps container names to IDs for pricing-row attachment.
func (h *Handler) containerNameIndex(ctx context.Context, projectID string) (map[string]string, error) {
	index := make(map[string]string)

	if store.GetPool() != nil {
		containers, err := h.projects.LoadContainers(ctx, projectID)
		if err != nil {
			return nil, err
		}
		for _, c := range containers {
			index[c.Name] = c.ID
		}
		return index, nil
	}

	exp, err := h.vault.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if exp != nil {
		for _, c := range exp.Containers {
			index[c.Name] = c.ID
		}
	}
	return index, nil
}

// saveLines replaces the project's price lines, in the database or in the
// vault snapshot when running without one.
func (h *Handler) saveLines(ctx context.Context, projectID string, lines []*pricing.PriceLine) error {
	if store.GetPool() != nil {
		return h.pricing.SaveLines(ctx, projectID, lines)
	}

	exp, err := h.vault.Get(ctx, projectID)
	if err != nil {
		return err
	}
	if exp == nil {
		return fmt.Errorf("no snapshot for project '%s', save or import the project first", projectID)
	}
	records := make([]models.PriceLineExport, len(lines))
	for i, l := range lines {
		records[i] = models.PriceLineExport{
			ID:          l.ID,
			ProjectID:   l.ProjectID,
			ContainerID: l.ContainerID,
			Product:     l.Product,
			BasePrice:   l.BasePrice.String(),
			Premium:     l.Premium.String(),
		}
	}
	exp.PriceLines = records
	return h.vault.Save(ctx, exp)
}
