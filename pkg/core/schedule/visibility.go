package schedule

import "strings"

// =============================================================================
// ROW VISIBILITY
// The base variant always exposes every persisted row. A custom variant
// starts with a single row and earns the next one each time the current last
// row's duration is confirmed, up to the row cap. Clearing the variant
// returns the counter to 1.
// =============================================================================

// VisibleRowCount returns how many step rows a variant currently exposes for
// editing.
func (s *StepStore) VisibleRowCount(assumptionID string, variant int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if variant == BaseVariant {
		if n := len(s.base[assumptionID]); n > 0 {
			return n
		}
		return 1
	}
	return s.rowCountLocked(variantKey{assumptionID, variant})
}

// rowCountLocked reads a custom variant's counter, seeded at 1. Caller holds
// the lock.
func (s *StepStore) rowCountLocked(vk variantKey) int {
	if n, ok := s.rows[vk]; ok {
		return n
	}
	return 1
}

// ShouldRenderRow reports whether a given row index is renderable. Base
// variant rows always are. On a custom variant the first row always renders;
// a later row renders only when the previous row's duration holds real
// content (defined, non-empty, not the placeholder dash, not just
// whitespace).
func (s *StepStore) ShouldRenderRow(assumptionID string, variant, step int) bool {
	if variant == BaseVariant {
		return true
	}
	if step == 0 {
		return true
	}
	if step < 0 || step >= MaxRows {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	prev, ok := s.getValueLocked(CellKey{assumptionID, variant, step - 1, FieldPeriods})
	if !ok {
		return false
	}
	return prev != "" && prev != PlaceholderDash && strings.TrimSpace(prev) != ""
}
