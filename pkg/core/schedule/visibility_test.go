package schedule

import (
	"fmt"
	"testing"
)

func TestVisibleRowCountBaseVariant(t *testing.T) {
	store := NewStepStore()
	store.SetBase("dev", []BaseStep{
		{Step: Step{Rate: "1%", Periods: fixedDuration(6)}},
		{Step: Step{Rate: "2%", Periods: fixedDuration(6)}},
		{Step: Step{Rate: "3%", Periods: fixedDuration(6)}},
	})

	if n := store.VisibleRowCount("dev", 0); n != 3 {
		t.Errorf("Expected all 3 persisted rows, got %d", n)
	}
	// An assumption with no persisted rows still shows one editable row
	if n := store.VisibleRowCount("unknown", 0); n != 1 {
		t.Errorf("Expected a minimum of 1 row, got %d", n)
	}
}

func TestVisibleRowCountGrowsWithConfirmedDurations(t *testing.T) {
	store := seededStore()

	if n := store.VisibleRowCount("dev-costs", 1); n != 1 {
		t.Fatalf("Expected a fresh custom variant to show 1 row, got %d", n)
	}

	if err := store.SetValue(CellKey{"dev-costs", 1, 0, FieldPeriods}, "12"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if n := store.VisibleRowCount("dev-costs", 1); n != 2 {
		t.Fatalf("Expected 2 rows after confirming row 0, got %d", n)
	}

	// Four more confirmed durations cap the counter at the row maximum
	for step := 1; step < MaxRows; step++ {
		if err := store.SetValue(CellKey{"dev-costs", 1, step, FieldPeriods}, fmt.Sprintf("%d", 6*step)); err != nil {
			t.Fatalf("SetValue failed: %v", err)
		}
	}
	if n := store.VisibleRowCount("dev-costs", 1); n != MaxRows {
		t.Errorf("Expected the counter to cap at %d, got %d", MaxRows, n)
	}
}

func TestSentinelDoesNotRevealNextRow(t *testing.T) {
	store := seededStore()
	// A to-horizon step is the last step, so neither case form grows the count
	if err := store.SetValue(CellKey{"dev-costs", 1, 0, FieldPeriods}, "E"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if n := store.VisibleRowCount("dev-costs", 1); n != 1 {
		t.Errorf("Expected E to leave the count at 1, got %d", n)
	}
	if err := store.SetValue(CellKey{"dev-costs", 1, 0, FieldPeriods}, "e"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if n := store.VisibleRowCount("dev-costs", 1); n != 1 {
		t.Errorf("Expected e to leave the count at 1, got %d", n)
	}
}

func TestConfirmingNonLastRowDoesNotGrow(t *testing.T) {
	store := seededStore()
	if err := store.SetValue(CellKey{"dev-costs", 1, 0, FieldPeriods}, "12"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	// Counter is now 2. Re-confirming row 0 (no longer the last visible row)
	// must not grow it again.
	if err := store.SetValue(CellKey{"dev-costs", 1, 0, FieldPeriods}, "24"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if n := store.VisibleRowCount("dev-costs", 1); n != 2 {
		t.Errorf("Expected the counter to stay at 2, got %d", n)
	}
}

func TestShouldRenderRow(t *testing.T) {
	store := seededStore()

	// Base variant renders every row unconditionally
	if !store.ShouldRenderRow("dev-costs", 0, 7) {
		t.Error("Expected base variant rows to always render")
	}
	// First custom row always renders
	if !store.ShouldRenderRow("dev-costs", 1, 0) {
		t.Error("Expected the first custom row to render")
	}
	// Later rows need content in the previous duration cell
	if store.ShouldRenderRow("dev-costs", 1, 1) {
		t.Error("Expected row 1 hidden while row 0 has no duration")
	}

	if err := store.SetValue(CellKey{"dev-costs", 1, 0, FieldPeriods}, "12"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if !store.ShouldRenderRow("dev-costs", 1, 1) {
		t.Error("Expected row 1 to render once row 0 holds a duration")
	}

	// The sentinel is content for rendering purposes, unlike for the counter
	if err := store.SetValue(CellKey{"dev-costs", 1, 1, FieldPeriods}, "E"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if !store.ShouldRenderRow("dev-costs", 1, 2) {
		t.Error("Expected row 2 to render behind a sentinel row")
	}

	// Dash and whitespace do not count as content
	if err := store.SetValue(CellKey{"dev-costs", 1, 2, FieldPeriods}, "-"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if store.ShouldRenderRow("dev-costs", 1, 3) {
		t.Error("Expected the dash placeholder to hide the next row")
	}
	if err := store.SetValue(CellKey{"dev-costs", 1, 2, FieldPeriods}, "   "); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if store.ShouldRenderRow("dev-costs", 1, 3) {
		t.Error("Expected whitespace to hide the next row")
	}

	// Rows past the cap never render on custom variants
	if store.ShouldRenderRow("dev-costs", 1, MaxRows) {
		t.Error("Expected rows beyond the cap to stay hidden")
	}
}
