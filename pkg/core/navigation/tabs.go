// Package navigation holds the folder-tab registry for the dashboard and the
// rules that decide which tabs a given project shows. Syncs with the frontend
// folder-tab bar: tab ids and groups here must match the section ids the UI
// routes on.
package navigation

import (
	"fmt"
	"strings"

	"land_proforma/pkg/core/project"
)

// =============================================================================
// TAB REGISTRY
// =============================================================================

// Tab is one dashboard section. The allow-lists narrow visibility; an empty
// list leaves that axis unrestricted.
type Tab struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Group       string `json:"group"`
	Description string `json:"description"`

	Types    []project.ProjectType  `json:"types,omitempty"`
	Analyses []project.AnalysisType `json:"analyses,omitempty"`
	Purposes []project.Purpose      `json:"purposes,omitempty"`
}

// Tab groups in display order
const (
	GroupPlan   = "PLAN"
	GroupModel  = "MODEL"
	GroupOutput = "OUTPUT"
	GroupOther  = "OTHER"
)

var tabRegistry = []Tab{
	{
		ID:          "overview",
		Label:       "Project Overview",
		Group:       GroupPlan,
		Description: "Project summary, horizon, start year, headline metrics",
	},
	{
		ID:          "containers",
		Label:       "Land Plan",
		Group:       GroupPlan,
		Description: "Area, phase, parcel, and unit hierarchy with acreage",
		Types:       []project.ProjectType{project.TypeLandDevelopment, project.TypeMixedUse},
	},
	{
		ID:          "growth-rates",
		Label:       "Growth Rates",
		Group:       GroupModel,
		Description: "Growth-rate assumptions with step schedules, rates and periods per step",
	},
	{
		ID:          "land-pricing",
		Label:       "Land Pricing",
		Group:       GroupModel,
		Description: "Base prices and premiums per parcel, escalated along growth schedules",
		Types:       []project.ProjectType{project.TypeLandDevelopment, project.TypeMixedUse},
	},
	{
		ID:          "absorption",
		Label:       "Absorption",
		Group:       GroupModel,
		Description: "Sale pace by parcel and period against escalated pricing",
		Types:       []project.ProjectType{project.TypeLandDevelopment, project.TypeMixedUse},
		Analyses:    []project.AnalysisType{project.AnalysisFeasibility, project.AnalysisDisposition},
	},
	{
		ID:          "proforma",
		Label:       "Pro Forma",
		Group:       GroupModel,
		Description: "Operating statement, NOI, direct capitalization, cash-on-cash",
		Types:       []project.ProjectType{project.TypeIncomeProperty, project.TypeMixedUse},
	},
	{
		ID:          "documents",
		Label:       "Documents",
		Group:       GroupOutput,
		Description: "Uploaded files linked to the project",
	},
	{
		ID:          "reports",
		Label:       "Reports",
		Group:       GroupOutput,
		Description: "Generated project summaries and exports",
	},
	{
		ID:          "settings",
		Label:       "Settings",
		Group:       GroupOther,
		Description: "Model providers and system configuration",
		Purposes:    []project.Purpose{project.PurposeInternal},
	},
}

// Registry returns every tab in display order.
func Registry() []Tab {
	out := make([]Tab, len(tabRegistry))
	copy(out, tabRegistry)
	return out
}

// ResolveTab looks a tab up by id.
func ResolveTab(id string) (Tab, error) {
	for _, t := range tabRegistry {
		if t.ID == id {
			return t, nil
		}
	}
	return Tab{}, fmt.Errorf("tab '%s' not found", id)
}

// =============================================================================
// VISIBILITY RULES
// =============================================================================

// VisibleFor reports whether the tab shows for the given project setup.
func (t Tab) VisibleFor(p *project.Project) bool {
	if !containsType(t.Types, p.Type) {
		return false
	}
	if !containsAnalysis(t.Analyses, p.AnalysisType) {
		return false
	}
	return containsPurpose(t.Purposes, p.Purpose)
}

// VisibleTabs filters the registry down to the tabs the project shows,
// preserving display order. A nil project means no project context yet, so
// everything stays visible.
func VisibleTabs(p *project.Project) []Tab {
	if p == nil {
		return Registry()
	}
	out := make([]Tab, 0, len(tabRegistry))
	for _, t := range tabRegistry {
		if t.VisibleFor(p) {
			out = append(out, t)
		}
	}
	return out
}

func containsType(allowed []project.ProjectType, v project.ProjectType) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == v {
			return true
		}
	}
	return false
}

func containsAnalysis(allowed []project.AnalysisType, v project.AnalysisType) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == v {
			return true
		}
	}
	return false
}

func containsPurpose(allowed []project.Purpose, v project.Purpose) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == v {
			return true
		}
	}
	return false
}

// =============================================================================
// LLM CONTEXT
// =============================================================================

// RegistryPrompt renders the visible tabs as a context block for the
// navigation advisor, grouped the way the dashboard groups them.
func RegistryPrompt(p *project.Project) string {
	var b strings.Builder
	b.WriteString("Available sections in the Land Proforma dashboard:\n")

	lastGroup := ""
	for _, t := range VisibleTabs(p) {
		if t.Group != lastGroup {
			fmt.Fprintf(&b, "\n%s:\n", t.Group)
			lastGroup = t.Group
		}
		fmt.Fprintf(&b, "- %s: %s - %s\n", t.ID, t.Label, t.Description)
	}
	return b.String()
}
