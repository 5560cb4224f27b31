// Package importer loads project data from outside the API: legacy dashboard
// exports in whatever JSON dialect they were written, and pricing tables
// exported as HTML. Parsing is forgiving, validation is not: anything that
// reaches the core types must hold up.
package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"

	"land_proforma/pkg/core/assumption"
	"land_proforma/pkg/core/document"
	"land_proforma/pkg/core/pricing"
	"land_proforma/pkg/core/project"
	"land_proforma/pkg/core/schedule"
	"land_proforma/pkg/core/utils"
	"land_proforma/pkg/models"
)

// =============================================================================
// LEGACY EXPORT LOADING
// =============================================================================

// Bundle is a fully validated export: every record rebuilt as a core type and
// the container hierarchy checked.
type Bundle struct {
	Export      *models.ProformaExport
	Project     *project.Project
	Containers  []*project.Container
	Tree        *project.Tree
	Assumptions []*assumption.Assumption
	PriceLines  []*pricing.PriceLine
	Documents   []*document.Document
}

// ParseExport reads an export document. Legacy exports were written by hand
// or by old dashboard builds, so this runs the lenient chain: strict JSON,
// then repair, then hjson.
func ParseExport(input string) (*models.ProformaExport, error) {
	var exp models.ProformaExport
	if _, err := utils.SmartParse(input, &exp); err != nil {
		return nil, fmt.Errorf("unreadable export: %w", err)
	}
	return &exp, nil
}

// Load parses and converts an export into validated core records.
func Load(input string) (*Bundle, error) {
	exp, err := ParseExport(input)
	if err != nil {
		return nil, err
	}

	proj, err := buildProject(exp.Project)
	if err != nil {
		return nil, fmt.Errorf("project: %w", err)
	}

	containers, tree, err := Containers(proj.ID, exp.Containers)
	if err != nil {
		return nil, err
	}

	assumptions, err := buildAssumptions(proj, exp.Assumptions)
	if err != nil {
		return nil, err
	}

	lines, err := buildPriceLines(proj.ID, exp.PriceLines)
	if err != nil {
		return nil, err
	}

	docs, err := buildDocuments(proj.ID, exp.Documents)
	if err != nil {
		return nil, err
	}

	return &Bundle{
		Export:      exp,
		Project:     proj,
		Containers:  containers,
		Tree:        tree,
		Assumptions: assumptions,
		PriceLines:  lines,
		Documents:   docs,
	}, nil
}

func buildProject(exp models.ProjectExport) (*project.Project, error) {
	ptype := project.ProjectType(normalizeEnum(exp.Type))
	analysis := project.AnalysisType(normalizeEnum(exp.AnalysisType))
	purpose := project.Purpose(normalizeEnum(exp.Purpose))

	// Exports from before the setup wizard carry neither analysis type nor
	// purpose. Those default; the project type never does.
	if analysis == "" {
		analysis = project.AnalysisFeasibility
	}
	if purpose == "" {
		purpose = project.PurposeInternal
	}

	if exp.ID == "" {
		return project.New(exp.Name, ptype, analysis, purpose, exp.HorizonPeriods, exp.StartYear)
	}

	horizon := exp.HorizonPeriods
	if horizon == 0 {
		horizon = schedule.HorizonPeriods
	}
	now := time.Now()
	proj := &project.Project{
		ID:             exp.ID,
		Name:           exp.Name,
		Type:           ptype,
		AnalysisType:   analysis,
		Purpose:        purpose,
		HorizonPeriods: horizon,
		StartYear:      exp.StartYear,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := proj.Validate(); err != nil {
		return nil, err
	}
	return proj, nil
}

// Containers rebuilds a land plan from wire records and validates it as a
// tree. The projects API accepts plans in this shape too, so it is exported.
func Containers(projectID string, exps []models.ContainerExport) ([]*project.Container, *project.Tree, error) {
	containers := make([]*project.Container, 0, len(exps))
	for i, exp := range exps {
		if exp.Name == "" {
			return nil, nil, fmt.Errorf("container %d has no name", i+1)
		}
		id := exp.ID
		if id == "" {
			id = ulid.Make().String()
		}
		var parent *string
		if exp.ParentID != "" {
			p := exp.ParentID
			parent = &p
		}
		now := time.Now()
		containers = append(containers, &project.Container{
			ID:        id,
			ProjectID: projectID,
			Name:      exp.Name,
			Kind:      project.ContainerKind(normalizeEnum(exp.Kind)),
			ParentID:  parent,
			Acres:     exp.Acres,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	tree, err := project.BuildTree(containers)
	if err != nil {
		return nil, nil, fmt.Errorf("land plan: %w", err)
	}
	return containers, tree, nil
}

func buildAssumptions(proj *project.Project, exps []models.AssumptionExport) ([]*assumption.Assumption, error) {
	out := make([]*assumption.Assumption, 0, len(exps))
	for i, exp := range exps {
		category := assumption.Category(normalizeEnum(exp.Category))

		if exp.ID == "" {
			steps := make([]schedule.Step, len(exp.Steps))
			for j, s := range exp.Steps {
				steps[j] = s.Step
			}
			a, err := assumption.New(proj.ID, exp.Name, category, exp.GlobalRate, steps)
			if err != nil {
				return nil, fmt.Errorf("assumption %d (%s): %w", i+1, exp.Name, err)
			}
			out = append(out, a)
			continue
		}

		now := time.Now()
		a := &assumption.Assumption{
			ID:         exp.ID,
			ProjectID:  proj.ID,
			Name:       exp.Name,
			Category:   category,
			GlobalRate: exp.GlobalRate,
			Steps:      schedule.ResolveBaseBounds(exp.Steps, proj.HorizonPeriods),
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("assumption %d (%s): %w", i+1, exp.Name, err)
		}
		out = append(out, a)
	}
	return out, nil
}

func buildPriceLines(projectID string, exps []models.PriceLineExport) ([]*pricing.PriceLine, error) {
	out := make([]*pricing.PriceLine, 0, len(exps))
	for i, exp := range exps {
		base, err := decimal.NewFromString(normalizeMoney(exp.BasePrice))
		if err != nil {
			return nil, fmt.Errorf("price line %d (%s): unreadable base price '%s'", i+1, exp.Product, exp.BasePrice)
		}
		premium := decimal.Zero
		if strings.TrimSpace(exp.Premium) != "" {
			premium, err = decimal.NewFromString(normalizeMoney(exp.Premium))
			if err != nil {
				return nil, fmt.Errorf("price line %d (%s): unreadable premium '%s'", i+1, exp.Product, exp.Premium)
			}
		}

		line, err := pricing.NewPriceLine(projectID, exp.ContainerID, exp.Product, base, premium)
		if err != nil {
			return nil, fmt.Errorf("price line %d: %w", i+1, err)
		}
		if exp.ID != "" {
			line.ID = exp.ID
		}
		out = append(out, line)
	}
	return out, nil
}

func buildDocuments(projectID string, exps []models.DocumentExport) ([]*document.Document, error) {
	out := make([]*document.Document, 0, len(exps))
	for i, exp := range exps {
		if exp.ID == "" {
			d, err := document.New(projectID, exp.Name, exp.ContentType, exp.SizeBytes)
			if err != nil {
				return nil, fmt.Errorf("document %d: %w", i+1, err)
			}
			out = append(out, d)
			continue
		}

		now := time.Now()
		d := &document.Document{
			ID:          exp.ID,
			ProjectID:   projectID,
			Name:        exp.Name,
			ContentType: exp.ContentType,
			SizeBytes:   exp.SizeBytes,
			ObjectKey:   exp.ObjectKey,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("document %d (%s): %w", i+1, exp.Name, err)
		}
		out = append(out, d)
	}
	return out, nil
}

// normalizeEnum uppercases and underscores a legacy enum value so
// "price appreciation" and "PRICE_APPRECIATION" both match.
func normalizeEnum(v string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(v)), " ", "_")
}

// =============================================================================
// EXPORT BUILDING
// =============================================================================

// BuildExport assembles the wire document from live records, the inverse of
// Load. Used by the report generator and the planner CLI.
func BuildExport(proj *project.Project, containers []*project.Container, assumptions []*assumption.Assumption, lines []*pricing.PriceLine, docs []*document.Document) *models.ProformaExport {
	exp := &models.ProformaExport{
		Version:    models.ExportVersion,
		ExportedAt: time.Now(),
		Project: models.ProjectExport{
			ID:             proj.ID,
			Name:           proj.Name,
			Type:           string(proj.Type),
			AnalysisType:   string(proj.AnalysisType),
			Purpose:        string(proj.Purpose),
			HorizonPeriods: proj.HorizonPeriods,
			StartYear:      proj.StartYear,
		},
	}

	for _, c := range containers {
		parent := ""
		if c.ParentID != nil {
			parent = *c.ParentID
		}
		exp.Containers = append(exp.Containers, models.ContainerExport{
			ID:        c.ID,
			ProjectID: c.ProjectID,
			Name:      c.Name,
			Kind:      string(c.Kind),
			ParentID:  parent,
			Acres:     c.Acres,
		})
	}

	for _, a := range assumptions {
		exp.Assumptions = append(exp.Assumptions, models.AssumptionExport{
			ID:         a.ID,
			ProjectID:  a.ProjectID,
			Name:       a.Name,
			Category:   string(a.Category),
			GlobalRate: a.GlobalRate,
			Steps:      a.Steps,
		})
	}

	for _, l := range lines {
		exp.PriceLines = append(exp.PriceLines, models.PriceLineExport{
			ID:          l.ID,
			ProjectID:   l.ProjectID,
			ContainerID: l.ContainerID,
			Product:     l.Product,
			BasePrice:   l.BasePrice.String(),
			Premium:     l.Premium.String(),
		})
	}

	for _, d := range docs {
		exp.Documents = append(exp.Documents, models.DocumentExport{
			ID:          d.ID,
			ProjectID:   d.ProjectID,
			Name:        d.Name,
			ContentType: d.ContentType,
			SizeBytes:   d.SizeBytes,
			ObjectKey:   d.ObjectKey,
		})
	}
	return exp
}
