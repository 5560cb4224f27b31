package schedule

import "testing"

func seededStore() *StepStore {
	store := NewStepStore()
	store.SetBase("dev-costs", []BaseStep{
		{Step: Step{Rate: "2.5%", Periods: fixedDuration(12)}, From: 1, Thru: 12},
		{Step: Step{Rate: "3.0%", Periods: ToHorizon()}, From: 13, Thru: 180},
	})
	return store
}

func TestGetValueBaseVariantReadsPersisted(t *testing.T) {
	store := seededStore()

	rate, ok := store.GetValue(CellKey{"dev-costs", 0, 0, FieldRate})
	if !ok || rate != "2.5%" {
		t.Errorf("Expected persisted rate 2.5%%, got %q (ok=%v)", rate, ok)
	}
	periods, ok := store.GetValue(CellKey{"dev-costs", 0, 1, FieldPeriods})
	if !ok || periods != "E" {
		t.Errorf("Expected persisted sentinel E, got %q (ok=%v)", periods, ok)
	}
	if _, ok := store.GetValue(CellKey{"dev-costs", 0, 2, FieldRate}); ok {
		t.Error("Expected no value beyond the persisted rows")
	}
}

func TestGetValueCustomVariantUndefinedWithoutOverride(t *testing.T) {
	store := seededStore()
	if _, ok := store.GetValue(CellKey{"dev-costs", 1, 0, FieldRate}); ok {
		t.Error("Expected a fresh custom variant to have no values")
	}
}

func TestGetValueEditWinsOverPersisted(t *testing.T) {
	store := seededStore()
	if err := store.SetValue(CellKey{"dev-costs", 0, 0, FieldRate}, "4.0%"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	rate, ok := store.GetValue(CellKey{"dev-costs", 0, 0, FieldRate})
	if !ok || rate != "4.0%" {
		t.Errorf("Expected the in-progress edit to win, got %q (ok=%v)", rate, ok)
	}
}

func TestDraftLayerSurvivesEditRemoval(t *testing.T) {
	store := seededStore()
	key := CellKey{"dev-costs", 1, 0, FieldRate}
	if err := store.SetValue(key, "5.0%"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if err := store.SaveDraft("dev-costs", 1); err != nil {
		t.Fatalf("SaveDraft failed: %v", err)
	}
	store.DropEdit(key)

	rate, ok := store.GetValue(key)
	if !ok || rate != "5.0%" {
		t.Errorf("Expected the saved draft value 5.0%%, got %q (ok=%v)", rate, ok)
	}
}

func TestSetValueRejectsOutOfRange(t *testing.T) {
	store := seededStore()
	if err := store.SetValue(CellKey{"dev-costs", 4, 0, FieldRate}, "1%"); err == nil {
		t.Error("Expected variant 4 to be rejected")
	}
	if err := store.SetValue(CellKey{"dev-costs", -1, 0, FieldRate}, "1%"); err == nil {
		t.Error("Expected variant -1 to be rejected")
	}
	if err := store.SetValue(CellKey{"dev-costs", 1, MaxRows, FieldPeriods}, "12"); err == nil {
		t.Error("Expected a custom-variant row beyond the cap to be rejected")
	}
	if err := store.SetValue(CellKey{"dev-costs", 0, -1, FieldRate}, "1%"); err == nil {
		t.Error("Expected a negative step index to be rejected")
	}
}

func TestLockedVariantIsReadOnly(t *testing.T) {
	store := seededStore()
	key := CellKey{"dev-costs", 2, 0, FieldRate}
	if err := store.SetValue(key, "3%"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if err := store.LockVariant("dev-costs", 2); err != nil {
		t.Fatalf("LockVariant failed: %v", err)
	}
	if !store.IsLocked("dev-costs", 2) {
		t.Error("Expected variant 2 to report locked")
	}
	if err := store.SetValue(key, "9%"); err == nil {
		t.Error("Expected SetValue on a locked variant to fail")
	}
	if err := store.SaveDraft("dev-costs", 2); err == nil {
		t.Error("Expected SaveDraft on a locked variant to fail")
	}

	// Existing values stay readable
	if rate, ok := store.GetValue(key); !ok || rate != "3%" {
		t.Errorf("Expected locked variant to stay readable, got %q (ok=%v)", rate, ok)
	}
}

func TestVariantNames(t *testing.T) {
	store := seededStore()
	if err := store.SetVariantName("dev-costs", 0, "Base"); err == nil {
		t.Error("Expected naming the base variant to be rejected")
	}
	if err := store.SetVariantName("dev-costs", 1, "Aggressive"); err != nil {
		t.Fatalf("SetVariantName failed: %v", err)
	}
	name, ok := store.VariantName("dev-costs", 1)
	if !ok || name != "Aggressive" {
		t.Errorf("Expected custom name Aggressive, got %q (ok=%v)", name, ok)
	}
	if _, ok := store.VariantName("dev-costs", 2); ok {
		t.Error("Expected no name for an unnamed variant")
	}
}

func TestClearVariantWipesBufferedState(t *testing.T) {
	store := seededStore()
	if err := store.SetVariantName("dev-costs", 1, "Aggressive"); err != nil {
		t.Fatalf("SetVariantName failed: %v", err)
	}
	if err := store.SetValue(CellKey{"dev-costs", 1, 0, FieldRate}, "9%"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if err := store.SetValue(CellKey{"dev-costs", 1, 0, FieldPeriods}, "12"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if err := store.SaveDraft("dev-costs", 1); err != nil {
		t.Fatalf("SaveDraft failed: %v", err)
	}
	if err := store.LockVariant("dev-costs", 1); err != nil {
		t.Fatalf("LockVariant failed: %v", err)
	}
	if n := store.VisibleRowCount("dev-costs", 1); n != 2 {
		t.Fatalf("Expected 2 visible rows before clearing, got %d", n)
	}

	if err := store.ClearVariant("dev-costs", 1); err != nil {
		t.Fatalf("ClearVariant failed: %v", err)
	}

	if _, ok := store.VariantName("dev-costs", 1); ok {
		t.Error("Expected the custom name to be cleared")
	}
	if _, ok := store.GetValue(CellKey{"dev-costs", 1, 0, FieldRate}); ok {
		t.Error("Expected cleared cells to read undefined")
	}
	if n := store.VisibleRowCount("dev-costs", 1); n != 1 {
		t.Errorf("Expected the row counter to reset to 1, got %d", n)
	}
	if store.IsLocked("dev-costs", 1) {
		t.Error("Expected clearing to unlock the variant")
	}
}

func TestClearVariantLeavesOthersAlone(t *testing.T) {
	store := seededStore()
	if err := store.SetValue(CellKey{"dev-costs", 1, 0, FieldRate}, "9%"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if err := store.SetValue(CellKey{"dev-costs", 2, 0, FieldRate}, "7%"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}

	if err := store.ClearVariant("dev-costs", 1); err != nil {
		t.Fatalf("ClearVariant failed: %v", err)
	}

	if rate, ok := store.GetValue(CellKey{"dev-costs", 2, 0, FieldRate}); !ok || rate != "7%" {
		t.Errorf("Expected variant 2 to be untouched, got %q (ok=%v)", rate, ok)
	}
	if rate, ok := store.GetValue(CellKey{"dev-costs", 0, 0, FieldRate}); !ok || rate != "2.5%" {
		t.Errorf("Expected base data to be untouched, got %q (ok=%v)", rate, ok)
	}
}

func TestResolvedStepsMaterializesContiguousRows(t *testing.T) {
	store := seededStore()
	edits := []struct {
		step  int
		field Field
		value string
	}{
		{0, FieldRate, "2%"},
		{0, FieldPeriods, "12"},
		{1, FieldRate, "3%"},
		{1, FieldPeriods, "e"},
	}
	for _, e := range edits {
		if err := store.SetValue(CellKey{"dev-costs", 1, e.step, e.field}, e.value); err != nil {
			t.Fatalf("SetValue failed: %v", err)
		}
	}

	steps := store.ResolvedSteps("dev-costs", 1)
	if len(steps) != 2 {
		t.Fatalf("Expected 2 resolved steps, got %d", len(steps))
	}
	if steps[0].Rate != "2%" || steps[0].Periods.Count() != 12 {
		t.Errorf("Unexpected first step: %+v", steps[0])
	}
	if steps[1].Rate != "3%" || !steps[1].Periods.IsSentinel() {
		t.Errorf("Unexpected second step: %+v", steps[1])
	}
}

func TestResolvedStepsStopsAtBrokenRow(t *testing.T) {
	store := seededStore()
	if err := store.SetValue(CellKey{"dev-costs", 1, 0, FieldPeriods}, "12"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	// Row 1 holds garbage, so materialization stops before it and row 2
	// (even if valid) is unreachable without breaking contiguity.
	if err := store.SetValue(CellKey{"dev-costs", 1, 1, FieldPeriods}, "soon"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if err := store.SetValue(CellKey{"dev-costs", 1, 2, FieldPeriods}, "24"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}

	steps := store.ResolvedSteps("dev-costs", 1)
	if len(steps) != 1 {
		t.Fatalf("Expected 1 resolved step, got %d", len(steps))
	}
}

func TestRemoveAssumptionPurgesAllState(t *testing.T) {
	store := seededStore()
	if err := store.SetValue(CellKey{"dev-costs", 1, 0, FieldRate}, "9%"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if err := store.SetVariantName("dev-costs", 1, "Aggressive"); err != nil {
		t.Fatalf("SetVariantName failed: %v", err)
	}

	store.RemoveAssumption("dev-costs")

	if len(store.BaseSteps("dev-costs")) != 0 {
		t.Error("Expected base steps to be removed")
	}
	if _, ok := store.GetValue(CellKey{"dev-costs", 1, 0, FieldRate}); ok {
		t.Error("Expected buffered edits to be removed")
	}
	if _, ok := store.VariantName("dev-costs", 1); ok {
		t.Error("Expected the custom name to be removed")
	}
}
