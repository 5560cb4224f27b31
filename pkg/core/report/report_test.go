package report

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"land_proforma/pkg/core/assumption"
	"land_proforma/pkg/core/pricing"
	"land_proforma/pkg/core/project"
	"land_proforma/pkg/core/schedule"
)

func step(t *testing.T, rate string, periods int) schedule.Step {
	t.Helper()
	d, err := schedule.DurationOf(periods)
	if err != nil {
		t.Fatalf("bad duration: %v", err)
	}
	return schedule.Step{Rate: rate, Periods: d}
}

func summaryFixture(t *testing.T) (*project.Project, []*project.Container, []*assumption.Assumption, []*pricing.PriceLine) {
	t.Helper()

	proj, err := project.New("Cedar Ridge", project.TypeLandDevelopment, project.AnalysisFeasibility, project.PurposeInternal, 0, 2026)
	if err != nil {
		t.Fatalf("project.New: %v", err)
	}

	area, err := project.NewContainer(proj.ID, "North Area", project.KindArea, "")
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	area.Acres = 120
	phase, err := project.NewContainer(proj.ID, "Phase 1", project.KindPhase, area.ID)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}

	costs, err := assumption.New(proj.ID, "Dev Costs", assumption.CategoryDevelopmentCosts, "3.0%", []schedule.Step{
		step(t, "3.0%", 12),
		{Rate: "2.5%", Periods: schedule.ToHorizon()},
	})
	if err != nil {
		t.Fatalf("assumption.New: %v", err)
	}
	appreciation, err := assumption.New(proj.ID, "Lot Appreciation", assumption.CategoryPriceAppreciation, "12%", nil)
	if err != nil {
		t.Fatalf("assumption.New: %v", err)
	}

	line, err := pricing.NewPriceLine(proj.ID, phase.ID, "50' Lot", decimal.RequireFromString("185000"), decimal.RequireFromString("7500"))
	if err != nil {
		t.Fatalf("NewPriceLine: %v", err)
	}

	return proj, []*project.Container{area, phase}, []*assumption.Assumption{costs, appreciation}, []*pricing.PriceLine{line}
}

func TestProjectSummarySections(t *testing.T) {
	proj, containers, assumptions, lines := summaryFixture(t)

	out, err := ProjectSummary(proj, containers, assumptions, lines)
	if err != nil {
		t.Fatalf("ProjectSummary: %v", err)
	}

	for _, want := range []string{
		"# Cedar Ridge",
		"| Project type | LAND_DEVELOPMENT |",
		"## Land Plan",
		"- **North Area** (AREA, 120.0 ac)",
		"  - **Phase 1** (PHASE)",
		"### Dev Costs (DEVELOPMENT_COSTS)",
		"| 1 | 3.0% | 12 | 1-12 |",
		"| 2 | 2.5% | E | 13-180 |",
		"## Pricing",
		"Period 12",
		"$192500.00",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected summary to contain %q", want)
		}
	}
}

func TestProjectSummarySkipsEmptySections(t *testing.T) {
	proj, _, _, _ := summaryFixture(t)

	out, err := ProjectSummary(proj, nil, nil, nil)
	if err != nil {
		t.Fatalf("ProjectSummary: %v", err)
	}
	if strings.Contains(out, "## Land Plan") || strings.Contains(out, "## Pricing") {
		t.Error("Expected empty sections to be skipped")
	}
}

func TestProjectSummaryPricingWithoutAppreciation(t *testing.T) {
	proj, containers, assumptions, lines := summaryFixture(t)

	// Drop the appreciation assumption, keep the cost schedule.
	out, err := ProjectSummary(proj, containers, assumptions[:1], lines)
	if err != nil {
		t.Fatalf("ProjectSummary: %v", err)
	}
	if strings.Contains(out, "Period 12") {
		t.Error("Expected no escalation columns without an appreciation assumption")
	}
	if !strings.Contains(out, "$192500.00") {
		t.Error("Expected the effective price column to remain")
	}
}

func TestWithCommentary(t *testing.T) {
	out, err := WithCommentary("# Summary\n\n", "```markdown\nLooks **healthy** overall.\n```")
	if err != nil {
		t.Fatalf("WithCommentary: %v", err)
	}
	if !strings.Contains(out, "## Commentary") {
		t.Error("Expected a commentary section")
	}
	if strings.Contains(out, "```") {
		t.Error("Expected the code fence to be stripped")
	}

	same, err := WithCommentary("# Summary\n\n", "   ")
	if err != nil {
		t.Fatalf("WithCommentary: %v", err)
	}
	if same != "# Summary\n\n" {
		t.Error("Expected blank commentary to leave the summary unchanged")
	}
}
