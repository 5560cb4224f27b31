package schedule

import (
	"fmt"
	"sync"
)

// =============================================================================
// STEP STORE
// Layered edit state for schedule cells, keyed by typed CellKey. Resolution
// order on read: in-progress edits, then the variant's locally saved draft
// rows, then the persisted base schedule. Custom variants with no override
// read as undefined.
//
// Syncs with the frontend growth-rate editor: the store holds exactly the
// state the edit tabs hold, so the API can replay any tab server-side.
// =============================================================================

// variantKey addresses one variant of one assumption's schedule.
type variantKey struct {
	AssumptionID string
	Variant      int
}

// draftStep is a locally saved custom row. Values stay raw text so a
// half-finished entry survives a tab switch untouched.
type draftStep struct {
	rate    string
	periods string
}

// StepStore holds per-assumption schedule state across all variants.
type StepStore struct {
	mu     sync.RWMutex
	base   map[string][]BaseStep
	edits  map[CellKey]string
	drafts map[variantKey][]draftStep
	names  map[variantKey]string
	locked map[variantKey]bool
	rows   map[variantKey]int // visible-row counters for custom variants
}

// NewStepStore creates an empty store.
func NewStepStore() *StepStore {
	return &StepStore{
		base:   make(map[string][]BaseStep),
		edits:  make(map[CellKey]string),
		drafts: make(map[variantKey][]draftStep),
		names:  make(map[variantKey]string),
		locked: make(map[variantKey]bool),
		rows:   make(map[variantKey]int),
	}
}

// SetBase registers (or replaces) the persisted schedule rows backing the
// base variant of an assumption.
func (s *StepStore) SetBase(assumptionID string, steps []BaseStep) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make([]BaseStep, len(steps))
	copy(copied, steps)
	s.base[assumptionID] = copied
}

// BaseSteps returns a copy of the persisted rows for an assumption.
func (s *StepStore) BaseSteps(assumptionID string) []BaseStep {
	s.mu.RLock()
	defer s.mu.RUnlock()
	steps := s.base[assumptionID]
	copied := make([]BaseStep, len(steps))
	copy(copied, steps)
	return copied
}

// RemoveAssumption drops the persisted rows and every variant's buffered
// state for an assumption. Used when the assumption is deleted upstream.
func (s *StepStore) RemoveAssumption(assumptionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.base, assumptionID)
	for key := range s.edits {
		if key.AssumptionID == assumptionID {
			delete(s.edits, key)
		}
	}
	for v := BaseVariant; v <= MaxVariant; v++ {
		vk := variantKey{assumptionID, v}
		delete(s.drafts, vk)
		delete(s.names, vk)
		delete(s.locked, vk)
		delete(s.rows, vk)
	}
}

// -----------------------------------------------------------------------------
// Cell reads and writes
// -----------------------------------------------------------------------------

// GetValue resolves the effective text of a cell: an in-progress edit wins,
// then a saved draft row for custom variants, then the persisted base row for
// the base variant. ok=false means the cell has no value.
func (s *StepStore) GetValue(key CellKey) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getValueLocked(key)
}

func (s *StepStore) getValueLocked(key CellKey) (string, bool) {
	if v, ok := s.edits[key]; ok {
		return v, true
	}

	if key.Variant != BaseVariant {
		rows, ok := s.drafts[variantKey{key.AssumptionID, key.Variant}]
		if ok && key.Step >= 0 && key.Step < len(rows) {
			var v string
			switch key.Field {
			case FieldRate:
				v = rows[key.Step].rate
			case FieldPeriods:
				v = rows[key.Step].periods
			}
			if v != "" {
				return v, true
			}
		}
		return "", false
	}

	steps := s.base[key.AssumptionID]
	if key.Step >= 0 && key.Step < len(steps) {
		switch key.Field {
		case FieldRate:
			return steps[key.Step].Rate, true
		case FieldPeriods:
			return steps[key.Step].Periods.Text(), true
		}
	}
	return "", false
}

// SetValue writes raw text to the in-progress edit layer. Writing a confirmed
// duration on a custom variant's current last visible row reveals the next
// row, up to the row cap.
func (s *StepStore) SetValue(key CellKey, value string) error {
	if err := validateVariant(key.Variant); err != nil {
		return err
	}
	if key.Step < 0 {
		return fmt.Errorf("step index %d out of range", key.Step)
	}
	if key.Variant != BaseVariant && key.Step >= MaxRows {
		return fmt.Errorf("step index %d exceeds the %d-row cap", key.Step, MaxRows)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	vk := variantKey{key.AssumptionID, key.Variant}
	if s.locked[vk] {
		return fmt.Errorf("variant %d of assumption '%s' is locked", key.Variant, key.AssumptionID)
	}
	s.edits[key] = value

	if key.Variant != BaseVariant && key.Field == FieldPeriods && isConfirmedDuration(value) {
		cur := s.rowCountLocked(vk)
		if key.Step == cur-1 && cur < MaxRows {
			s.rows[vk] = cur + 1
		}
	}
	return nil
}

// DropEdit removes the in-progress edit for a cell so the draft and base
// layers show through again.
func (s *StepStore) DropEdit(key CellKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.edits, key)
}

// -----------------------------------------------------------------------------
// Variant lifecycle
// -----------------------------------------------------------------------------

// SaveDraft materializes a custom variant's current cell values into its
// locally saved draft rows. Called when the user leaves the tab so the buffer
// survives the switch.
func (s *StepStore) SaveDraft(assumptionID string, variant int) error {
	if err := validateCustomVariant(variant); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	vk := variantKey{assumptionID, variant}
	if s.locked[vk] {
		return fmt.Errorf("variant %d of assumption '%s' is locked", variant, assumptionID)
	}

	count := s.rowCountLocked(vk)
	rows := make([]draftStep, count)
	for i := 0; i < count; i++ {
		rate, _ := s.getValueLocked(CellKey{assumptionID, variant, i, FieldRate})
		periods, _ := s.getValueLocked(CellKey{assumptionID, variant, i, FieldPeriods})
		rows[i] = draftStep{rate: rate, periods: periods}
	}
	s.drafts[vk] = rows
	return nil
}

// ClearVariant wipes one variant's buffered state: its custom display name,
// every in-progress edit, its saved draft rows, and its visible-row counter
// (back to 1). The variant is unlocked. Other variants and the persisted base
// data are untouched.
func (s *StepStore) ClearVariant(assumptionID string, variant int) error {
	if err := validateVariant(variant); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	vk := variantKey{assumptionID, variant}
	delete(s.names, vk)
	delete(s.drafts, vk)
	delete(s.rows, vk)
	delete(s.locked, vk)
	for key := range s.edits {
		if key.AssumptionID == assumptionID && key.Variant == variant {
			delete(s.edits, key)
		}
	}
	return nil
}

// SetVariantName names a custom variant's tab. The base tab always shows the
// assumption's own name.
func (s *StepStore) SetVariantName(assumptionID string, variant int, name string) error {
	if err := validateCustomVariant(variant); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names[variantKey{assumptionID, variant}] = name
	return nil
}

// VariantName returns the custom display name for a variant, if one is set.
func (s *StepStore) VariantName(assumptionID string, variant int) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	name, ok := s.names[variantKey{assumptionID, variant}]
	return name, ok
}

// LockVariant marks a custom variant read-only, used after its buffer has
// been promoted to a persisted assumption.
func (s *StepStore) LockVariant(assumptionID string, variant int) error {
	if err := validateCustomVariant(variant); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locked[variantKey{assumptionID, variant}] = true
	return nil
}

// IsLocked reports whether a variant has been locked read-only.
func (s *StepStore) IsLocked(assumptionID string, variant int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.locked[variantKey{assumptionID, variant}]
}

// ResolvedSteps materializes the contiguous, validly-formed rows of a variant
// into step records, walking from the first row until a row has no readable
// duration. This is the shape handed to persistence when a variant is saved.
func (s *StepStore) ResolvedSteps(assumptionID string, variant int) []Step {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := MaxRows
	if variant == BaseVariant {
		limit = len(s.base[assumptionID]) + MaxRows
	}

	var steps []Step
	for i := 0; i < limit; i++ {
		raw, ok := s.getValueLocked(CellKey{assumptionID, variant, i, FieldPeriods})
		if !ok {
			break
		}
		d, ok := ParseDurationText(raw)
		if !ok {
			break
		}
		rate, _ := s.getValueLocked(CellKey{assumptionID, variant, i, FieldRate})
		steps = append(steps, Step{Rate: rate, Periods: d})
	}
	return steps
}

// -----------------------------------------------------------------------------
// Resolver wiring
// -----------------------------------------------------------------------------

// ResolverFor returns a period resolver reading this store's current state
// for one assumption. The resolver holds no state of its own, so derived
// periods always reflect the latest edit.
func (s *StepStore) ResolverFor(assumptionID string) *Resolver {
	return NewResolver(&storeSource{store: s, assumptionID: assumptionID}, HorizonPeriods)
}

type storeSource struct {
	store        *StepStore
	assumptionID string
}

func (src *storeSource) DurationText(variant, step int) (string, bool) {
	return src.store.GetValue(CellKey{src.assumptionID, variant, step, FieldPeriods})
}

func (src *storeSource) PersistedFrom(step int) (int, bool) {
	src.store.mu.RLock()
	defer src.store.mu.RUnlock()
	steps := src.store.base[src.assumptionID]
	if step >= 0 && step < len(steps) && steps[step].From > 0 {
		return steps[step].From, true
	}
	return 0, false
}

func (src *storeSource) PersistedThru(step int) (int, bool) {
	src.store.mu.RLock()
	defer src.store.mu.RUnlock()
	steps := src.store.base[src.assumptionID]
	if step >= 0 && step < len(steps) && steps[step].Thru > 0 {
		return steps[step].Thru, true
	}
	return 0, false
}

func validateVariant(variant int) error {
	if variant < BaseVariant || variant > MaxVariant {
		return fmt.Errorf("variant %d out of range (0-%d)", variant, MaxVariant)
	}
	return nil
}

func validateCustomVariant(variant int) error {
	if variant <= BaseVariant || variant > MaxVariant {
		return fmt.Errorf("variant %d is not a custom variant (1-%d)", variant, MaxVariant)
	}
	return nil
}
