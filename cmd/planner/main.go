package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"land_proforma/pkg/core/assumption"
	"land_proforma/pkg/core/importer"
	"land_proforma/pkg/core/pricing"
	"land_proforma/pkg/core/proforma"
	"land_proforma/pkg/core/project"
	"land_proforma/pkg/core/report"
)

func main() {
	filePath := flag.String("file", "", "Path to a ProformaExport JSON file")
	markdown := flag.Bool("md", false, "Print the Markdown report instead of the console report")
	gross := flag.Float64("gross", 0, "Year-one gross income for the pro-forma section")
	vacancy := flag.Float64("vacancy", 0.05, "Vacancy rate as a fraction")
	opex := flag.Float64("opex", 0, "Year-one operating expenses")
	capRate := flag.Float64("cap", 0.055, "Cap rate as a fraction")
	equity := flag.Float64("equity", 0, "Invested equity for cash-on-cash")
	debt := flag.Float64("debt", 0, "Annual debt service")
	flag.Parse()

	if *filePath == "" {
		log.Fatal("Error: -file is required (a ProformaExport JSON document)")
	}

	fmt.Println("🚀 Land Proforma Planner Starting...")

	raw, err := os.ReadFile(*filePath)
	if err != nil {
		log.Fatalf("Critical: export file %s not found: %v", *filePath, err)
	}

	bundle, err := importer.Load(string(raw))
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}
	proj := bundle.Project

	if *markdown {
		md, err := report.ProjectSummary(proj, bundle.Containers, bundle.Assumptions, bundle.PriceLines)
		if err != nil {
			log.Fatalf("Report failed: %v", err)
		}
		fmt.Println(md)
		return
	}

	fmt.Println("\n################################################################################")
	fmt.Println("                     LAND PROFORMA PLANNER - PROJECT REPORT")
	fmt.Printf("                     Target: %s (%s)\n", proj.Name, proj.Type)
	fmt.Println("################################################################################")

	// [1] SETUP
	fmt.Println("\n[1] PROJECT SETUP")
	fmt.Printf("Analysis:            %s for %s\n", proj.AnalysisType, proj.Purpose)
	fmt.Printf("Horizon:             %d periods (%d years from %d)\n",
		proj.HorizonPeriods, proj.HorizonPeriods/pricing.PeriodsPerYear, proj.StartYear)
	fmt.Printf("Records:             %d containers, %d assumptions, %d price lines\n",
		len(bundle.Containers), len(bundle.Assumptions), len(bundle.PriceLines))

	// [2] LAND PLAN
	fmt.Println("\n[2] LAND PLAN")
	printLandPlan(bundle.Containers)

	// [3] SCHEDULES
	fmt.Println("\n[3] GROWTH-RATE SCHEDULES")
	for _, a := range bundle.Assumptions {
		fmt.Printf("%-30s (%s)\n", a.Name, a.Category)
		for i, s := range a.Steps {
			fmt.Printf("  step %d: periods %3d..%3d @ %s per annum\n", i+1, s.From, s.Thru, s.Rate)
		}
		if a.GlobalRate != "" {
			fmt.Printf("  fallback: %s per annum\n", a.GlobalRate)
		}
	}

	// [4] PRICING
	fmt.Println("\n[4] PRICING")
	appreciation := escalationFor(bundle.Assumptions, assumption.CategoryPriceAppreciation, proj.HorizonPeriods)
	printPricing(bundle.PriceLines, appreciation, proj.HorizonPeriods)

	// [5] PRO-FORMA
	if *gross > 0 {
		fmt.Println("\n[5] INCOME PRO-FORMA")
		runProforma(bundle.Assumptions, proj, *gross, *vacancy, *opex, *capRate, *equity, *debt)
	}

	fmt.Println("\n[Done] Planning Complete.")
}

// printLandPlan walks the container tree with indentation.
func printLandPlan(containers []*project.Container) {
	if len(containers) == 0 {
		fmt.Println("(no containers)")
		return
	}
	tree, err := project.BuildTree(containers)
	if err != nil {
		fmt.Printf("Invalid land plan: %v\n", err)
		return
	}
	for _, rootID := range tree.Roots() {
		printContainer(tree, rootID, 0)
	}
}

func printContainer(tree *project.Tree, id string, depth int) {
	c, err := tree.Get(id)
	if err != nil {
		return
	}
	acres := ""
	if c.Acres > 0 {
		acres = fmt.Sprintf("  (%.1f ac)", c.Acres)
	}
	fmt.Printf("%s%-7s %s%s\n", strings.Repeat("  ", depth), c.Kind, c.Name, acres)
	for _, childID := range tree.Children(id) {
		printContainer(tree, childID, depth+1)
	}
}

// printPricing lists the price lines with escalated milestones every five
// years along the appreciation schedule.
func printPricing(lines []*pricing.PriceLine, esc *pricing.Escalation, horizon int) {
	if len(lines) == 0 {
		fmt.Println("(no price lines)")
		return
	}
	fmt.Printf("%-25s | %12s | %12s | %12s | %12s\n", "Product", "Base", "Effective", "Year 5", "Year 10")
	fmt.Println(strings.Repeat("-", 85))
	for _, l := range lines {
		y5 := esc.PriceAt(l.EffectivePrice(), min(5*pricing.PeriodsPerYear, horizon))
		y10 := esc.PriceAt(l.EffectivePrice(), min(10*pricing.PeriodsPerYear, horizon))
		fmt.Printf("%-25s | $ %10s | $ %10s | $ %10s | $ %10s\n",
			l.Product, l.BasePrice.StringFixed(2), l.EffectivePrice().StringFixed(2),
			y5.StringFixed(2), y10.StringFixed(2))
	}
}

// runProforma evaluates the year-one statement and a five-year projection,
// with income following the appreciation schedule and expenses the
// development-cost schedule.
func runProforma(assumptions []*assumption.Assumption, proj *project.Project,
	gross, vacancy, opex, capRate, equity, debt float64) {

	stmt := proforma.Statement{
		GrossIncome:       decimal.NewFromFloat(gross),
		VacancyRate:       decimal.NewFromFloat(vacancy),
		OperatingExpenses: decimal.NewFromFloat(opex),
	}

	fmt.Printf("Gross Income:        $ %12s\n", stmt.GrossIncome.StringFixed(2))
	fmt.Printf("Vacancy:             $ %12s (%.1f%%)\n", stmt.Vacancy().StringFixed(2), vacancy*100)
	fmt.Printf("Operating Expenses:  $ %12s\n", stmt.OperatingExpenses.StringFixed(2))
	fmt.Printf("NOI:                 $ %12s\n", stmt.NOI().StringFixed(2))

	if equity > 0 {
		val, err := proforma.Evaluate(stmt, decimal.NewFromFloat(capRate), proforma.Financing{
			Equity:            decimal.NewFromFloat(equity),
			AnnualDebtService: decimal.NewFromFloat(debt),
		})
		if err != nil {
			fmt.Printf("Valuation failed: %v\n", err)
		} else {
			fmt.Printf("Direct Cap Value:    $ %12s (at %.2f%%)\n", val.Value.StringFixed(2), capRate*100)
			fmt.Printf("Cash Flow:           $ %12s\n", val.CashFlow.StringFixed(2))
			fmt.Printf("Cash-on-Cash:          %12s%%\n", val.CashOnCash.Mul(decimal.NewFromInt(100)).StringFixed(2))
		}
	}

	incomeGrowth := escalationFor(assumptions, assumption.CategoryPriceAppreciation, proj.HorizonPeriods)
	expenseGrowth := escalationFor(assumptions, assumption.CategoryDevelopmentCosts, proj.HorizonPeriods)
	rows, err := proforma.Project(stmt, incomeGrowth, expenseGrowth, 5)
	if err != nil {
		fmt.Printf("Projection failed: %v\n", err)
		return
	}
	fmt.Printf("\n%4s | %12s | %12s | %12s\n", "Year", "Eff. Gross", "Opex", "NOI")
	fmt.Println(strings.Repeat("-", 50))
	for _, row := range rows {
		fmt.Printf("%4d | $ %10s | $ %10s | $ %10s\n",
			row.Year, row.EffectiveGross.StringFixed(2),
			row.OperatingExpenses.StringFixed(2), row.NOI.StringFixed(2))
	}
}

// escalationFor builds the escalation for the first assumption in a
// category, or a zero-rate escalation when the project has none.
func escalationFor(assumptions []*assumption.Assumption, cat assumption.Category, horizon int) *pricing.Escalation {
	for _, a := range assumptions {
		if a.Category != cat {
			continue
		}
		esc, err := pricing.NewEscalation(a.Steps, a.GlobalRate, horizon)
		if err != nil {
			fmt.Printf("[WARNING] Skipping schedule '%s': %v\n", a.Name, err)
			continue
		}
		return esc
	}
	esc, _ := pricing.NewEscalation(nil, "", horizon)
	return esc
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
