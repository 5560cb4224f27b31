package schedule

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// =============================================================================
// STEP SCHEDULE TYPES
// Mirrors the frontend growth-rate editor: each assumption carries up to four
// schedule variants (the persisted base plus three custom tabs), each variant
// a short ordered list of rate steps.
// =============================================================================

const (
	// HorizonPeriods is the analysis horizon in periods. A sentinel duration
	// resolves its Thru Period to this value.
	HorizonPeriods = 180

	// MaxRows caps how many step rows a custom variant can expose.
	MaxRows = 5

	// BaseVariant is the persisted edition of a schedule. Custom variants
	// run from 1 through MaxVariant.
	BaseVariant = 0
	MaxVariant  = 3

	// Sentinel is the canonical "runs to end of horizon" duration text.
	Sentinel = "E"

	// PlaceholderDash is what an undefined derived period renders as.
	PlaceholderDash = "-"
)

// Field identifies which cell of a step row a value belongs to.
type Field string

const (
	FieldRate    Field = "rate"
	FieldPeriods Field = "periods"
)

// CellKey addresses a single editable cell: one field of one step row in one
// variant of one assumption's schedule. Keys are compared by value, so they
// are safe as map keys without string concatenation.
type CellKey struct {
	AssumptionID string
	Variant      int
	Step         int // 0-based row index
	Field        Field
}

func (k CellKey) String() string {
	return fmt.Sprintf("%s/v%d/s%d/%s", k.AssumptionID, k.Variant, k.Step, k.Field)
}

// =============================================================================
// DURATION
// A step runs either for a fixed positive number of periods or to the end of
// the analysis horizon (the sentinel "E"). The zero Duration is undefined and
// rejected at construction boundaries.
// =============================================================================

// Duration is the period count of a step, or the end-of-horizon sentinel.
type Duration struct {
	count    int
	sentinel bool
}

// DurationOf builds a fixed duration of n periods. n must be positive.
func DurationOf(n int) (Duration, error) {
	if n <= 0 {
		return Duration{}, fmt.Errorf("duration must be positive, got %d", n)
	}
	return Duration{count: n}, nil
}

// ToHorizon returns the sentinel duration.
func ToHorizon() Duration {
	return Duration{sentinel: true}
}

// IsSentinel reports whether the duration runs to the end of the horizon.
func (d Duration) IsSentinel() bool { return d.sentinel }

// Count returns the fixed period count, or 0 for sentinel/zero durations.
func (d Duration) Count() int {
	if d.sentinel {
		return 0
	}
	return d.count
}

// IsZero reports whether the duration is undefined (neither a positive count
// nor the sentinel).
func (d Duration) IsZero() bool { return !d.sentinel && d.count == 0 }

// Text returns the cell-text form: the decimal count, or "E".
func (d Duration) Text() string {
	if d.sentinel {
		return Sentinel
	}
	if d.count == 0 {
		return ""
	}
	return strconv.Itoa(d.count)
}

// MarshalJSON emits the wire form the frontend exchanges: a number for fixed
// durations, the string "E" for the sentinel, null when undefined.
func (d Duration) MarshalJSON() ([]byte, error) {
	if d.sentinel {
		return json.Marshal(Sentinel)
	}
	if d.count == 0 {
		return []byte("null"), nil
	}
	return json.Marshal(d.count)
}

// UnmarshalJSON accepts a number, a numeric string, or the sentinel in any
// case form. Anything else is rejected here so malformed rows never reach the
// resolver.
func (d *Duration) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*d = Duration{}
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		if n <= 0 {
			return fmt.Errorf("duration must be positive, got %d", n)
		}
		*d = Duration{count: n}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a number or %q, got %s", Sentinel, trimmed)
	}
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, Sentinel) {
		*d = Duration{sentinel: true}
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fmt.Errorf("invalid duration %q", s)
	}
	*d = Duration{count: n}
	return nil
}

// ParseDurationText interprets raw cell text as a duration: the sentinel in
// any case form, or an integer with trailing garbage truncated ("12abc" and
// "12.9" both read as 12). Returns false when no duration can be read.
func ParseDurationText(raw string) (Duration, bool) {
	s := strings.TrimSpace(raw)
	if strings.EqualFold(s, Sentinel) {
		return Duration{sentinel: true}, true
	}
	n, ok := parseLeadingInt(s)
	if !ok || n <= 0 {
		return Duration{}, false
	}
	return Duration{count: n}, true
}

// =============================================================================
// STEP RECORDS
// =============================================================================

// Step is one row of a schedule: a percentage rate string (e.g. "2.5%") and a
// duration. Sequence position is implied by slice index; From/Thru periods are
// derived by the Resolver, never stored here.
type Step struct {
	Rate    string   `json:"rate"`
	Periods Duration `json:"periods"`
}

// NewStep validates and builds a step row.
func NewStep(rate string, periods Duration) (Step, error) {
	if periods.IsZero() {
		return Step{}, fmt.Errorf("step requires a duration")
	}
	return Step{Rate: rate, Periods: periods}, nil
}

// BaseStep is a persisted schedule row. Alongside the rate and duration it
// carries the period bounds computed at save time; the resolver falls back to
// these for the base variant when the derivation chain is broken. Zero means
// no persisted bound.
type BaseStep struct {
	Step
	From int `json:"from_period,omitempty"`
	Thru int `json:"thru_period,omitempty"`
}

// FormatPeriod renders a derived period for display. Undefined periods show
// the placeholder dash.
func FormatPeriod(p int, ok bool) string {
	if !ok {
		return PlaceholderDash
	}
	return strconv.Itoa(p)
}
