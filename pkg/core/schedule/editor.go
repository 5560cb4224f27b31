package schedule

import (
	"fmt"
	"strings"
	"sync"
)

// =============================================================================
// CELL EDITOR
// Explicit per-cell state machine replacing the frontend's scattered
// edit-mode flags. A cell is either displaying its canonical value or being
// edited; focus, input, and blur move it between the two. Blur runs the
// normalizers, and an empty buffer reverts to the value the edit started
// from.
// =============================================================================

// CellState is the lifecycle state of one editable cell.
type CellState string

const (
	StateDisplay CellState = "DISPLAY"
	StateEditing CellState = "EDITING"
)

// allowedTransitions defines the legal state machine per cell.
var allowedTransitions = map[CellState][]CellState{
	StateDisplay: {StateEditing},
	StateEditing: {StateDisplay},
}

// ValidateTransition checks whether a cell may move between two states.
func ValidateTransition(from, to CellState) error {
	allowed, ok := allowedTransitions[from]
	if !ok {
		return fmt.Errorf("unknown cell state '%s'", from)
	}
	for _, candidate := range allowed {
		if candidate == to {
			return nil
		}
	}
	return fmt.Errorf("invalid cell transition from %s to %s", from, to)
}

// priorValue remembers what a cell resolved to before an edit began, so blur
// can revert. ok=false means the cell was undefined.
type priorValue struct {
	text string
	ok   bool
}

// Editor drives cell editing sessions against a StepStore.
type Editor struct {
	store *StepStore
	mu    sync.Mutex
	state map[CellKey]CellState
	prior map[CellKey]priorValue
}

// NewEditor creates an editor over a store.
func NewEditor(store *StepStore) *Editor {
	return &Editor{
		store: store,
		state: make(map[CellKey]CellState),
		prior: make(map[CellKey]priorValue),
	}
}

// State returns the current state of a cell. Cells not being edited are in
// Display.
func (e *Editor) State(key CellKey) CellState {
	e.mu.Lock()
	defer e.mu.Unlock()
	if st, ok := e.state[key]; ok {
		return st
	}
	return StateDisplay
}

// Focus begins an edit: the cell moves to Editing, its prior value is
// remembered, and the entry buffer is cleared for fresh input. The returned
// text is the raw editing form of the prior value (rate cells shed their "%"
// so the user sees the bare number).
func (e *Editor) Focus(key CellKey) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ValidateTransition(e.stateLocked(key), StateEditing); err != nil {
		return "", err
	}

	text, ok := e.store.GetValue(key)
	if err := e.store.SetValue(key, ""); err != nil {
		return "", err
	}
	e.prior[key] = priorValue{text: text, ok: ok}
	e.state[key] = StateEditing

	if key.Field == FieldRate {
		return strings.TrimSuffix(strings.TrimSpace(text), "%"), nil
	}
	return text, nil
}

// Input replaces the cell's entry buffer with free text. The cell must be in
// Editing.
func (e *Editor) Input(key CellKey, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stateLocked(key) != StateEditing {
		return fmt.Errorf("cell %s is not being edited", key)
	}
	return e.store.SetValue(key, text)
}

// Blur ends the edit and returns the cell's canonical text. Non-empty input
// is normalized per field; input that cannot be normalized, and empty input,
// reverts the cell to its prior value. Parse failures never surface as
// errors.
func (e *Editor) Blur(key CellKey) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ValidateTransition(e.stateLocked(key), StateDisplay); err != nil {
		return "", err
	}

	buffer, _ := e.store.GetValue(key)
	prior := e.prior[key]
	delete(e.prior, key)
	delete(e.state, key)

	final, normalized := e.normalize(key.Field, buffer)
	if !normalized {
		// Revert. An undefined prior drops the edit entirely so the lower
		// layers show through again.
		if prior.ok {
			if err := e.store.SetValue(key, prior.text); err != nil {
				return "", err
			}
			return prior.text, nil
		}
		e.store.DropEdit(key)
		return "", nil
	}

	if err := e.store.SetValue(key, final); err != nil {
		return "", err
	}
	return final, nil
}

func (e *Editor) normalize(field Field, buffer string) (string, bool) {
	if strings.TrimSpace(buffer) == "" {
		return "", false
	}
	switch field {
	case FieldRate:
		return NormalizeRate(buffer)
	case FieldPeriods:
		return NormalizeDuration(buffer)
	}
	return "", false
}

func (e *Editor) stateLocked(key CellKey) CellState {
	if st, ok := e.state[key]; ok {
		return st
	}
	return StateDisplay
}
