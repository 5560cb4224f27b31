// Package report renders a project summary as Markdown: setup, land plan,
// growth-rate schedules with their resolved coverage, pricing, and an
// optional model commentary block.
package report

import (
	"fmt"
	"strings"

	"land_proforma/pkg/core/assumption"
	"land_proforma/pkg/core/pricing"
	"land_proforma/pkg/core/project"
	"land_proforma/pkg/core/schedule"
	"land_proforma/pkg/core/utils"
)

// Sample periods shown in the escalated pricing table.
var samplePeriods = []int{12, 36, 60}

// ProjectSummary renders the whole project as Markdown. The output is
// validated before it goes out; a render bug fails here, not in the browser.
func ProjectSummary(proj *project.Project, containers []*project.Container, assumptions []*assumption.Assumption, lines []*pricing.PriceLine) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", proj.Name)
	b.WriteString("| Setting | Value |\n| --- | --- |\n")
	fmt.Fprintf(&b, "| Project type | %s |\n", proj.Type)
	fmt.Fprintf(&b, "| Analysis | %s |\n", proj.AnalysisType)
	fmt.Fprintf(&b, "| Prepared for | %s |\n", proj.Purpose)
	fmt.Fprintf(&b, "| Horizon | %d periods |\n", proj.HorizonPeriods)
	if proj.StartYear > 0 {
		fmt.Fprintf(&b, "| Start year | %d |\n", proj.StartYear)
	}
	b.WriteString("\n")

	if err := writeLandPlan(&b, containers); err != nil {
		return "", err
	}
	writeAssumptions(&b, assumptions)
	writePricing(&b, assumptions, lines, proj.HorizonPeriods)

	out := b.String()
	if !utils.ValidateMarkdown(out) {
		return "", fmt.Errorf("generated summary is not valid markdown")
	}
	return out, nil
}

// WithCommentary appends a model-written narrative to a rendered summary.
// The narrative gets the code-fence cleanup because providers love wrapping
// Markdown in Markdown.
func WithCommentary(summary, commentary string) (string, error) {
	cleaned := utils.CleanMarkdown(commentary)
	if cleaned == "" {
		return summary, nil
	}
	if !utils.ValidateMarkdown(cleaned) {
		return "", fmt.Errorf("commentary is not valid markdown")
	}
	return summary + "## Commentary\n\n" + cleaned + "\n", nil
}

// =============================================================================
// SECTIONS
// =============================================================================

func writeLandPlan(b *strings.Builder, containers []*project.Container) error {
	if len(containers) == 0 {
		return nil
	}
	tree, err := project.BuildTree(containers)
	if err != nil {
		return fmt.Errorf("land plan: %w", err)
	}

	b.WriteString("## Land Plan\n\n")
	for _, rootID := range tree.Roots() {
		if err := writeContainer(b, tree, rootID, 0); err != nil {
			return err
		}
	}
	b.WriteString("\n")
	return nil
}

func writeContainer(b *strings.Builder, tree *project.Tree, id string, depth int) error {
	c, err := tree.Get(id)
	if err != nil {
		return err
	}

	indent := strings.Repeat("  ", depth)
	if c.Acres > 0 {
		fmt.Fprintf(b, "%s- **%s** (%s, %.1f ac)\n", indent, c.Name, c.Kind, c.Acres)
	} else {
		fmt.Fprintf(b, "%s- **%s** (%s)\n", indent, c.Name, c.Kind)
	}

	for _, childID := range tree.Children(id) {
		if err := writeContainer(b, tree, childID, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func writeAssumptions(b *strings.Builder, assumptions []*assumption.Assumption) {
	if len(assumptions) == 0 {
		return
	}
	b.WriteString("## Growth Rates\n\n")

	for _, a := range assumptions {
		fmt.Fprintf(b, "### %s (%s)\n\n", a.Name, a.Category)
		if a.GlobalRate != "" {
			fmt.Fprintf(b, "Global rate: %s\n\n", a.GlobalRate)
		}
		if len(a.Steps) == 0 {
			continue
		}

		b.WriteString("| Step | Rate | Periods | Coverage |\n| --- | --- | --- | --- |\n")
		for i, s := range a.Steps {
			coverage := "-"
			if s.From > 0 && s.Thru > 0 {
				coverage = fmt.Sprintf("%d-%d", s.From, s.Thru)
			}
			fmt.Fprintf(b, "| %d | %s | %s | %s |\n", i+1, s.Rate, s.Periods.Text(), coverage)
		}
		b.WriteString("\n")
	}
}

func writePricing(b *strings.Builder, assumptions []*assumption.Assumption, lines []*pricing.PriceLine, horizon int) {
	if len(lines) == 0 {
		return
	}
	b.WriteString("## Pricing\n\n")

	esc := appreciationEscalation(assumptions, horizon)
	if esc != nil {
		b.WriteString("| Product | Base | Premium | Effective |")
		for _, p := range samplePeriods {
			fmt.Fprintf(b, " Period %d |", p)
		}
		b.WriteString("\n| --- | --- | --- | --- |")
		for range samplePeriods {
			b.WriteString(" --- |")
		}
		b.WriteString("\n")
	} else {
		b.WriteString("| Product | Base | Premium | Effective |\n| --- | --- | --- | --- |\n")
	}

	for _, l := range lines {
		fmt.Fprintf(b, "| %s | $%s | $%s | $%s |",
			l.Product, l.BasePrice.StringFixed(2), l.Premium.StringFixed(2), l.EffectivePrice().StringFixed(2))
		if esc != nil {
			for _, p := range samplePeriods {
				fmt.Fprintf(b, " $%s |", esc.PriceAt(l.EffectivePrice(), p).StringFixed(2))
			}
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

// appreciationEscalation builds the price escalation from the project's first
// appreciation assumption, if any.
func appreciationEscalation(assumptions []*assumption.Assumption, horizon int) *pricing.Escalation {
	if horizon <= 0 {
		horizon = schedule.HorizonPeriods
	}
	for _, a := range assumptions {
		if a.Category != assumption.CategoryPriceAppreciation {
			continue
		}
		esc, err := pricing.NewEscalation(a.Steps, a.GlobalRate, horizon)
		if err != nil {
			continue
		}
		return esc
	}
	return nil
}
