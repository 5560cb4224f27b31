// Package navigator parses natural-language requests into dashboard
// navigation intents. The tab registry and visibility rules live in
// pkg/core/navigation; this layer adds the LLM round trip.
package navigator

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"land_proforma/pkg/core/agent"
	"land_proforma/pkg/core/navigation"
	"land_proforma/pkg/core/project"
	"land_proforma/pkg/core/prompt"
	"land_proforma/pkg/core/store"
)

// Handler provides HTTP handlers for the navigation advisor
type Handler struct {
	agentMgr *agent.Manager
	projects *store.ProjectRepo
	vault    *store.ProjectVault
}

// NewHandler creates a new navigator handler
func NewHandler(mgr *agent.Manager, projects *store.ProjectRepo, vault *store.ProjectVault) *Handler {
	return &Handler{agentMgr: mgr, projects: projects, vault: vault}
}

// NavigationRequest represents the user's natural language query
type NavigationRequest struct {
	Message    string `json:"message"`
	CurrentTab string `json:"current_tab,omitempty"`
	ProjectID  string `json:"project_id,omitempty"`
}

// NavigationResponse contains the LLM's parsed intent
type NavigationResponse struct {
	Intent      string           `json:"intent"` // "navigate", "query", "chat"
	TargetTab   string           `json:"target_tab,omitempty"`
	TabLabel    string           `json:"tab_label,omitempty"`
	Confidence  float64          `json:"confidence"`
	Explanation string           `json:"explanation"`
	Suggestions []NavigationHint `json:"suggestions,omitempty"`
}

// NavigationHint provides alternative navigation suggestions
type NavigationHint struct {
	TabID     string `json:"tab_id"`
	Label     string `json:"label"`
	Relevance string `json:"relevance"`
}

// defaultNavigationPrompt is the role header when the prompt library has no
// assistant.navigation entry.
const defaultNavigationPrompt = `You are a navigation assistant for the Land Proforma dashboard.
Your job is to understand the user's intent and determine if they want to navigate to a specific section of the dashboard.`

// HandleNavigationIntent parses user message and returns navigation intent
func (h *Handler) HandleNavigationIntent(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
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

	var req NavigationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Project context narrows the registry to visible tabs only.
	proj := h.loadProject(r, req.ProjectID)

	role := defaultNavigationPrompt
	if p, err := prompt.GetAssistantPrompt("navigation"); err == nil && p != "" {
		role = p
	}

	systemPrompt := fmt.Sprintf(`%s

%s

User's current section: %s

Analyze the user's message and respond with a JSON object:
{
  "intent": "navigate" | "query" | "chat",
  "target_tab": "<tab_id if intent is navigate>",
  "tab_label": "<human readable label>",
  "confidence": <0.0-1.0>,
  "explanation": "<brief explanation in the same language as user's message>",
  "suggestions": [{"tab_id": "...", "label": "...", "relevance": "..."}]
}

Rules:
1. If user clearly wants to go somewhere, set intent="navigate" and provide target_tab
2. If user is asking about data that lives in a specific section, set intent="query" and suggest the section
3. If user is just chatting or asking general questions, set intent="chat"
4. Only use tab_ids from the list above
5. Always respond in the same language as the user's message
6. Return ONLY valid JSON, no markdown or extra text`,
		role, navigation.RegistryPrompt(proj), req.CurrentTab)

	userPrompt := req.Message

	// Call LLM
	resp, err := h.agentMgr.ExecutePrompt("assistant", userPrompt, systemPrompt, nil)
	if err != nil {
		// Fallback to keyword matching
		fallbackResp := h.fallbackKeywordMatch(req.Message)
		json.NewEncoder(w).Encode(fallbackResp)
		return
	}

	// Parse LLM response
	var navResp NavigationResponse
	cleanResp := strings.TrimPrefix(resp, "```json")
	cleanResp = strings.TrimSuffix(cleanResp, "```")
	cleanResp = strings.TrimSpace(cleanResp)

	if err := json.Unmarshal([]byte(cleanResp), &navResp); err != nil {
		// Return raw response if parsing fails
		navResp = NavigationResponse{
			Intent:      "chat",
			Explanation: resp,
			Confidence:  0.5,
		}
	}

	// The model sometimes invents tab ids; verify against the registry and
	// the project's visibility rules before the frontend acts on it.
	if navResp.Intent == "navigate" {
		tab, err := navigation.ResolveTab(navResp.TargetTab)
		if err != nil || !tab.VisibleFor(proj) {
			navResp = h.fallbackKeywordMatch(req.Message)
		} else {
			navResp.TabLabel = tab.Label
		}
	}

	json.NewEncoder(w).Encode(navResp)
}

// loadProject resolves the request's project for visibility gating. A
// missing or unloadable project just means the full registry applies.
func (h *Handler) loadProject(r *http.Request, projectID string) *project.Project {
	if projectID == "" {
		return nil
	}
	if store.GetPool() != nil {
		proj, err := h.projects.Load(r.Context(), projectID)
		if err != nil {
			return nil
		}
		return proj
	}
	if h.vault == nil {
		return nil
	}
	exp, err := h.vault.Get(r.Context(), projectID)
	if err != nil || exp == nil {
		return nil
	}
	proj, err := project.New(exp.Project.Name,
		project.ProjectType(exp.Project.Type),
		project.AnalysisType(exp.Project.AnalysisType),
		project.Purpose(exp.Project.Purpose),
		exp.Project.HorizonPeriods, exp.Project.StartYear)
	if err != nil {
		return nil
	}
	proj.ID = exp.Project.ID
	return proj
}

// fallbackKeywordMatch provides keyword-based navigation when the LLM is
// unavailable or hallucinating
func (h *Handler) fallbackKeywordMatch(message string) NavigationResponse {
	tab, keyword, ok := navigation.Suggest(message)
	if !ok {
		return NavigationResponse{
			Intent:      "chat",
			Confidence:  1.0,
			Explanation: "No navigation intent detected",
		}
	}
	return NavigationResponse{
		Intent:      "navigate",
		TargetTab:   tab.ID,
		TabLabel:    tab.Label,
		Confidence:  0.8,
		Explanation: fmt.Sprintf("Matched keyword '%s', suggesting %s", keyword, tab.Label),
	}
}
