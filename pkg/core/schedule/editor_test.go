package schedule

import "testing"

func TestEditorFocusClearsBufferAndReturnsRawForm(t *testing.T) {
	store := seededStore()
	editor := NewEditor(store)
	key := CellKey{"dev-costs", 0, 0, FieldRate}

	raw, err := editor.Focus(key)
	if err != nil {
		t.Fatalf("Focus failed: %v", err)
	}
	// The canonical "2.5%" is edited as the bare number
	if raw != "2.5" {
		t.Errorf("Expected raw form 2.5, got %q", raw)
	}
	if editor.State(key) != StateEditing {
		t.Errorf("Expected cell to be Editing, got %s", editor.State(key))
	}
	// Entry buffer starts empty
	if v, ok := store.GetValue(key); !ok || v != "" {
		t.Errorf("Expected a cleared entry buffer, got %q (ok=%v)", v, ok)
	}
}

func TestEditorIllegalTransitions(t *testing.T) {
	store := seededStore()
	editor := NewEditor(store)
	key := CellKey{"dev-costs", 0, 0, FieldRate}

	if err := editor.Input(key, "3"); err == nil {
		t.Error("Expected Input without Focus to fail")
	}
	if _, err := editor.Blur(key); err == nil {
		t.Error("Expected Blur without Focus to fail")
	}

	if _, err := editor.Focus(key); err != nil {
		t.Fatalf("Focus failed: %v", err)
	}
	if _, err := editor.Focus(key); err == nil {
		t.Error("Expected a second Focus to fail")
	}
}

func TestEditorBlurNormalizesRate(t *testing.T) {
	store := seededStore()
	editor := NewEditor(store)
	key := CellKey{"dev-costs", 0, 0, FieldRate}

	if _, err := editor.Focus(key); err != nil {
		t.Fatalf("Focus failed: %v", err)
	}
	if err := editor.Input(key, "0.03"); err != nil {
		t.Fatalf("Input failed: %v", err)
	}
	final, err := editor.Blur(key)
	if err != nil {
		t.Fatalf("Blur failed: %v", err)
	}
	// 0.03 is a fraction: 0.03 * 100 = 3.0 -> "3.0%"
	if final != "3.0%" {
		t.Errorf("Expected 3.0%%, got %q", final)
	}
	if editor.State(key) != StateDisplay {
		t.Errorf("Expected cell back in Display, got %s", editor.State(key))
	}
}

func TestEditorBlurEmptyReverts(t *testing.T) {
	store := seededStore()
	editor := NewEditor(store)
	key := CellKey{"dev-costs", 0, 0, FieldRate}

	if _, err := editor.Focus(key); err != nil {
		t.Fatalf("Focus failed: %v", err)
	}
	final, err := editor.Blur(key)
	if err != nil {
		t.Fatalf("Blur failed: %v", err)
	}
	if final != "2.5%" {
		t.Errorf("Expected the prior value 2.5%% back, got %q", final)
	}
	if v, ok := store.GetValue(key); !ok || v != "2.5%" {
		t.Errorf("Expected the cell to hold 2.5%% again, got %q (ok=%v)", v, ok)
	}
}

func TestEditorBlurEmptyOnUndefinedCellStaysUndefined(t *testing.T) {
	store := seededStore()
	editor := NewEditor(store)
	key := CellKey{"dev-costs", 1, 0, FieldRate}

	if _, err := editor.Focus(key); err != nil {
		t.Fatalf("Focus failed: %v", err)
	}
	final, err := editor.Blur(key)
	if err != nil {
		t.Fatalf("Blur failed: %v", err)
	}
	if final != "" {
		t.Errorf("Expected an empty canonical value, got %q", final)
	}
	if _, ok := store.GetValue(key); ok {
		t.Error("Expected the cell to read undefined again")
	}
}

func TestEditorBlurGarbageReverts(t *testing.T) {
	store := seededStore()
	editor := NewEditor(store)
	key := CellKey{"dev-costs", 0, 0, FieldRate}

	if _, err := editor.Focus(key); err != nil {
		t.Fatalf("Focus failed: %v", err)
	}
	if err := editor.Input(key, "not a number"); err != nil {
		t.Fatalf("Input failed: %v", err)
	}
	final, err := editor.Blur(key)
	if err != nil {
		t.Fatalf("Blur failed: %v", err)
	}
	if final != "2.5%" {
		t.Errorf("Expected garbage to be absorbed and 2.5%% restored, got %q", final)
	}
}

func TestEditorDurationFlow(t *testing.T) {
	store := seededStore()
	editor := NewEditor(store)
	key := CellKey{"dev-costs", 1, 0, FieldPeriods}

	raw, err := editor.Focus(key)
	if err != nil {
		t.Fatalf("Focus failed: %v", err)
	}
	if raw != "" {
		t.Errorf("Expected an undefined duration to edit from empty, got %q", raw)
	}
	if err := editor.Input(key, "12"); err != nil {
		t.Fatalf("Input failed: %v", err)
	}
	final, err := editor.Blur(key)
	if err != nil {
		t.Fatalf("Blur failed: %v", err)
	}
	if final != "12" {
		t.Errorf("Expected 12, got %q", final)
	}
	// The confirmed duration revealed the next row
	if n := store.VisibleRowCount("dev-costs", 1); n != 2 {
		t.Errorf("Expected 2 visible rows, got %d", n)
	}

	// Lowercase sentinel canonicalizes on blur
	if _, err := editor.Focus(key); err != nil {
		t.Fatalf("Focus failed: %v", err)
	}
	if err := editor.Input(key, "e"); err != nil {
		t.Fatalf("Input failed: %v", err)
	}
	final, err = editor.Blur(key)
	if err != nil {
		t.Fatalf("Blur failed: %v", err)
	}
	if final != "E" {
		t.Errorf("Expected canonical E, got %q", final)
	}
}

func TestEditorFocusLockedVariant(t *testing.T) {
	store := seededStore()
	editor := NewEditor(store)
	if err := store.LockVariant("dev-costs", 1); err != nil {
		t.Fatalf("LockVariant failed: %v", err)
	}
	key := CellKey{"dev-costs", 1, 0, FieldRate}

	if _, err := editor.Focus(key); err == nil {
		t.Error("Expected focusing a locked variant to fail")
	}
	if editor.State(key) != StateDisplay {
		t.Error("Expected the cell to stay in Display")
	}
}

func TestValidateTransition(t *testing.T) {
	if err := ValidateTransition(StateDisplay, StateEditing); err != nil {
		t.Errorf("Expected Display->Editing to be legal: %v", err)
	}
	if err := ValidateTransition(StateEditing, StateDisplay); err != nil {
		t.Errorf("Expected Editing->Display to be legal: %v", err)
	}
	if err := ValidateTransition(StateDisplay, StateDisplay); err == nil {
		t.Error("Expected Display->Display to be rejected")
	}
	if err := ValidateTransition(CellState("LIMBO"), StateDisplay); err == nil {
		t.Error("Expected an unknown state to be rejected")
	}
}
