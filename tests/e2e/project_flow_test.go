package e2e_test

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"land_proforma/pkg/core/assumption"
	"land_proforma/pkg/core/importer"
	"land_proforma/pkg/core/pricing"
	"land_proforma/pkg/core/proforma"
	"land_proforma/pkg/core/report"
	"land_proforma/pkg/core/schedule"
)

// cedarTrailsExport is a dashboard export the way the frontend writes one:
// a land-development project with a small land plan, two growth-rate
// assumptions, lot pricing, and an attached document.
const cedarTrailsExport = `{
  "version": 1,
  "project": {
    "id": "proj-cedar",
    "name": "Cedar Trails",
    "type": "LAND_DEVELOPMENT",
    "analysis_type": "FEASIBILITY",
    "purpose": "INTERNAL",
    "horizon_periods": 180,
    "start_year": 2026
  },
  "containers": [
    {"id": "area-1", "project_id": "proj-cedar", "name": "Cedar Trails Master Plan", "kind": "AREA"},
    {"id": "phase-1", "project_id": "proj-cedar", "name": "Phase 1", "kind": "PHASE", "parent_id": "area-1", "acres": 42.5},
    {"id": "parcel-11", "project_id": "proj-cedar", "name": "Parcel 1.1", "kind": "PARCEL", "parent_id": "phase-1", "acres": 12.8},
    {"id": "parcel-12", "project_id": "proj-cedar", "name": "Parcel 1.2", "kind": "PARCEL", "parent_id": "phase-1", "acres": 9.6}
  ],
  "assumptions": [
    {"id": "asm-price", "project_id": "proj-cedar", "name": "Base Price Growth", "category": "PRICE_APPRECIATION",
     "steps": [{"rate": "3%", "periods": 12}, {"rate": "2.5%", "periods": "E"}]},
    {"id": "asm-costs", "project_id": "proj-cedar", "name": "Cost Inflation", "category": "DEVELOPMENT_COSTS", "global_rate": "4%"}
  ],
  "price_lines": [
    {"id": "pl-1", "project_id": "proj-cedar", "container_id": "parcel-11", "product": "50' Lot", "base_price": "185000", "premium": "5000"},
    {"id": "pl-2", "project_id": "proj-cedar", "container_id": "parcel-12", "product": "60' Lot", "base_price": "230000"}
  ],
  "documents": [
    {"id": "doc-1", "project_id": "proj-cedar", "name": "phase1_site_plan.pdf", "content_type": "application/pdf", "size_bytes": 482133}
  ]
}`

// TestE2E_ImportEditPromoteReport walks the dashboard's whole analyst loop
// in process: import an export, rework a growth schedule in a custom
// variant, promote the variant to a persisted assumption, price lots along
// it, run the income pro-forma, and render the project report.
func TestE2E_ImportEditPromoteReport(t *testing.T) {
	// A. Import the export into validated core records.
	t.Logf("🚀 [Stage 1] Importing export...")
	bundle, err := importer.Load(cedarTrailsExport)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if bundle.Project.Name != "Cedar Trails" {
		t.Fatalf("Wrong project name: %s", bundle.Project.Name)
	}
	if len(bundle.Containers) != 4 || len(bundle.Assumptions) != 2 || len(bundle.PriceLines) != 2 || len(bundle.Documents) != 1 {
		t.Fatalf("Wrong record counts: %d containers, %d assumptions, %d lines, %d documents",
			len(bundle.Containers), len(bundle.Assumptions), len(bundle.PriceLines), len(bundle.Documents))
	}
	roots := bundle.Tree.Roots()
	if len(roots) != 1 || roots[0].Name != "Cedar Trails Master Plan" {
		t.Fatalf("Land plan did not rebuild a single root area")
	}
	t.Logf("✅ Imported '%s' with %d containers", bundle.Project.Name, len(bundle.Containers))

	// B. Seed the schedule store with the persisted price schedule and
	// check the derived periods line up.
	t.Logf("📅 [Stage 2] Resolving base schedule...")
	var priceAsm *assumption.Assumption
	for _, a := range bundle.Assumptions {
		if a.Category == assumption.CategoryPriceAppreciation {
			priceAsm = a
		}
	}
	if priceAsm == nil {
		t.Fatal("No price appreciation assumption in bundle")
	}

	store := schedule.NewStepStore()
	store.SetBase(priceAsm.ID, priceAsm.Steps)
	resolver := store.ResolverFor(priceAsm.ID)

	if from, ok := resolver.FromPeriod(schedule.BaseVariant, 0); !ok || from != 1 {
		t.Errorf("Base step 1 From = %d (ok=%v), want 1", from, ok)
	}
	if thru, ok := resolver.ThruPeriod(schedule.BaseVariant, 0); !ok || thru != 12 {
		t.Errorf("Base step 1 Thru = %d (ok=%v), want 12", thru, ok)
	}
	if thru, ok := resolver.ThruPeriod(schedule.BaseVariant, 1); !ok || thru != schedule.HorizonPeriods {
		t.Errorf("Sentinel step Thru = %d (ok=%v), want %d", thru, ok, schedule.HorizonPeriods)
	}

	// C. Build an aggressive price scenario in custom variant 1 through the
	// cell editor, the way the grid drives it: focus, type, blur.
	t.Logf("✏️  [Stage 3] Editing custom variant...")
	editor := schedule.NewEditor(store)

	type entry struct {
		step  int
		field schedule.Field
		text  string
		want  string
	}
	entries := []entry{
		{0, schedule.FieldRate, "4", "4%"},
		{0, schedule.FieldPeriods, "24", "24"},
		{1, schedule.FieldRate, "0.025", "2.5%"},
		{1, schedule.FieldPeriods, "e", "E"},
	}
	for _, in := range entries {
		key := schedule.CellKey{AssumptionID: priceAsm.ID, Variant: 1, Step: in.step, Field: in.field}
		if _, err := editor.Focus(key); err != nil {
			t.Fatalf("Focus %s: %v", key, err)
		}
		if err := editor.Input(key, in.text); err != nil {
			t.Fatalf("Input %s: %v", key, err)
		}
		got, err := editor.Blur(key)
		if err != nil {
			t.Fatalf("Blur %s: %v", key, err)
		}
		if got != in.want {
			t.Errorf("Blur %s = %q, want %q", key, got, in.want)
		}
	}

	// Typing a fixed duration on the last visible row reveals the next one.
	if rows := store.VisibleRowCount(priceAsm.ID, 1); rows != 2 {
		t.Errorf("Visible rows after edit = %d, want 2", rows)
	}
	if err := store.SaveDraft(priceAsm.ID, 1); err != nil {
		t.Fatalf("SaveDraft failed: %v", err)
	}
	if from, ok := resolver.FromPeriod(1, 1); !ok || from != 25 {
		t.Errorf("Variant step 2 From = %d (ok=%v), want 25", from, ok)
	}

	resolved := store.ResolvedSteps(priceAsm.ID, 1)
	if len(resolved) != 2 {
		t.Fatalf("Resolved %d steps, want 2", len(resolved))
	}
	t.Logf("✅ Variant resolved to %d steps", len(resolved))

	// D. Promote the variant buffer into a persisted assumption and lock
	// the tab it came from.
	t.Logf("📌 [Stage 4] Promoting variant...")
	aggressive, err := assumption.New(bundle.Project.ID, "Aggressive Price Growth",
		assumption.CategoryPriceAppreciation, "", resolved)
	if err != nil {
		t.Fatalf("Promotion failed: %v", err)
	}
	if aggressive.Steps[0].From != 1 || aggressive.Steps[0].Thru != 24 {
		t.Errorf("Promoted step 1 bounds = %d..%d, want 1..24", aggressive.Steps[0].From, aggressive.Steps[0].Thru)
	}
	if aggressive.Steps[1].From != 25 || aggressive.Steps[1].Thru != schedule.HorizonPeriods {
		t.Errorf("Promoted step 2 bounds = %d..%d, want 25..%d", aggressive.Steps[1].From, aggressive.Steps[1].Thru, schedule.HorizonPeriods)
	}

	if err := store.LockVariant(priceAsm.ID, 1); err != nil {
		t.Fatalf("LockVariant failed: %v", err)
	}
	lockedKey := schedule.CellKey{AssumptionID: priceAsm.ID, Variant: 1, Step: 0, Field: schedule.FieldRate}
	if err := store.SetValue(lockedKey, "9"); err == nil {
		t.Error("Write to a locked variant should fail")
	}

	// E. Price lots along the promoted schedule.
	t.Logf("💰 [Stage 5] Escalating prices...")
	esc, err := pricing.NewEscalation(aggressive.Steps, aggressive.GlobalRate, bundle.Project.HorizonPeriods)
	if err != nil {
		t.Fatalf("Escalation build failed: %v", err)
	}
	base := decimal.NewFromInt(250000)
	if !esc.PriceAt(base, 0).Equal(base) {
		t.Error("Period 0 should return the base price unchanged")
	}
	year1 := esc.PriceAt(base, 12)
	if year1.LessThan(decimal.NewFromInt(260180)) || year1.GreaterThan(decimal.NewFromInt(260190)) {
		t.Errorf("12-month price at 4%% = %s, want about 260185", year1)
	}
	if !esc.PriceAt(base, 36).GreaterThan(year1) {
		t.Error("Price should keep compounding past the first step")
	}

	// F. Run the income pro-forma off the same growth schedules.
	t.Logf("🏦 [Stage 6] Evaluating pro-forma...")
	stmt := proforma.Statement{
		GrossIncome:       decimal.NewFromInt(1200000),
		VacancyRate:       decimal.RequireFromString("0.05"),
		OperatingExpenses: decimal.NewFromInt(450000),
	}
	if !stmt.NOI().Equal(decimal.NewFromInt(690000)) {
		t.Fatalf("NOI = %s, want 690000", stmt.NOI())
	}

	val, err := proforma.Evaluate(stmt, decimal.RequireFromString("0.06"), proforma.Financing{
		Equity:            decimal.NewFromInt(3000000),
		AnnualDebtService: decimal.NewFromInt(420000),
	})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if !val.Value.Equal(decimal.NewFromInt(11500000)) {
		t.Errorf("Direct cap value = %s, want 11500000", val.Value)
	}
	if !val.CashFlow.Equal(decimal.NewFromInt(270000)) {
		t.Errorf("Cash flow = %s, want 270000", val.CashFlow)
	}
	if !val.CashOnCash.Equal(decimal.RequireFromString("0.09")) {
		t.Errorf("Cash-on-cash = %s, want 0.09", val.CashOnCash)
	}

	costEsc, err := pricing.NewEscalation(nil, "4%", bundle.Project.HorizonPeriods)
	if err != nil {
		t.Fatalf("Cost escalation build failed: %v", err)
	}
	rows, err := proforma.Project(stmt, esc, costEsc, 5)
	if err != nil {
		t.Fatalf("Projection failed: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("Projection returned %d years, want 5", len(rows))
	}
	if !rows[0].GrossIncome.Equal(stmt.GrossIncome) {
		t.Errorf("Year 1 gross = %s, want the statement unchanged", rows[0].GrossIncome)
	}
	if !rows[4].NOI.GreaterThan(rows[0].NOI) {
		t.Error("NOI should grow when income escalates faster than 0")
	}
	t.Logf("✅ Year 5 NOI: %s", rows[4].NOI)

	// G. Render the report over the imported plan plus the promoted
	// assumption.
	t.Logf("📝 [Stage 7] Rendering report...")
	assumptions := append(bundle.Assumptions, aggressive)
	md, err := report.ProjectSummary(bundle.Project, bundle.Containers, assumptions, bundle.PriceLines)
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}
	for _, want := range []string{
		"# Cedar Trails",
		"## Land Plan",
		"## Growth Rates",
		"## Pricing",
		"Aggressive Price Growth",
		"Parcel 1.1",
		"50' Lot",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Report missing %q", want)
		}
	}
	t.Logf("✅ Report rendered (%d bytes)", len(md))
}
