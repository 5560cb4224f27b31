// Package reports serves the rendered project report, optionally with an AI
// commentary section drafted by the configured provider.
package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"land_proforma/pkg/core/assumption"
	"land_proforma/pkg/core/importer"
	"land_proforma/pkg/core/pricing"
	"land_proforma/pkg/core/project"
	"land_proforma/pkg/core/report"
	"land_proforma/pkg/core/store"
)

// Handler holds the stores the report reads from plus an optional
// commentator. A nil commentator just means the commentary flag is ignored.
type Handler struct {
	projects    *store.ProjectRepo
	assumptions *store.AssumptionRepo
	pricing     *store.PricingRepo
	vault       *store.ProjectVault
	commentator report.Commentator
}

// NewHandler creates the reports handler.
func NewHandler(projects *store.ProjectRepo, assumptions *store.AssumptionRepo,
	pricing *store.PricingRepo, vault *store.ProjectVault, commentator report.Commentator) *Handler {
	return &Handler{
		projects:    projects,
		assumptions: assumptions,
		pricing:     pricing,
		vault:       vault,
		commentator: commentator,
	}
}

// ReportResponse carries the rendered Markdown. CommentaryError is set when
// the AI draft failed; the report itself still comes back.
type ReportResponse struct {
	ProjectID       string `json:"project_id"`
	Markdown        string `json:"markdown"`
	Provider        string `json:"provider,omitempty"`
	CommentaryError string `json:"commentary_error,omitempty"`
}

// HandleReport serves GET /api/report?project_id=&commentary=1.
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
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

	proj, containers, assumptions, lines, err := h.loadProject(r.Context(), projectID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	summary, err := report.ProjectSummary(proj, containers, assumptions, lines)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := ReportResponse{ProjectID: projectID, Markdown: summary}

	if r.URL.Query().Get("commentary") == "1" && h.commentator != nil {
		resp.Provider = h.commentator.Name()
		commentary, err := h.commentator.Draft(r.Context(), summary)
		if err != nil {
			resp.CommentaryError = err.Error()
		} else if combined, err := report.WithCommentary(summary, commentary); err != nil {
			resp.CommentaryError = err.Error()
		} else {
			resp.Markdown = combined
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// loadProject gathers everything the report needs, from the repos or from
// the vault snapshot when no database is configured.
func (h *Handler) loadProject(ctx context.Context, projectID string) (*project.Project, []*project.Container, []*assumption.Assumption, []*pricing.PriceLine, error) {
	if store.GetPool() == nil {
		exp, err := h.vault.Get(ctx, projectID)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		if exp == nil {
			return nil, nil, nil, nil, fmt.Errorf("project '%s' not found", projectID)
		}
		data, err := json.Marshal(exp)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		bundle, err := importer.Load(string(data))
		if err != nil {
			return nil, nil, nil, nil, err
		}
		return bundle.Project, bundle.Containers, bundle.Assumptions, bundle.PriceLines, nil
	}

	proj, err := h.projects.Load(ctx, projectID)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	containers, err := h.projects.LoadContainers(ctx, projectID)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	assumptions, err := h.assumptions.ByProject(ctx, projectID)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	lines, err := h.pricing.ByProject(ctx, projectID)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return proj, containers, assumptions, lines, nil
}
