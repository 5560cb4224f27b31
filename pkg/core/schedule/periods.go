package schedule

// =============================================================================
// PERIOD RESOLVER
// Derives each step's From/Thru period from the sequence: step 1 starts at
// period 1, every later step starts the period after its predecessor ends,
// and a step ends at start + duration - 1 unless the duration is the
// sentinel, which pins the end to the analysis horizon.
//
// The derivation is memo-free. Every read walks backward through the prior
// steps so derived periods always reflect the latest cell text. Depth is
// bounded by the row cap, so the O(n) walk is cheap.
// =============================================================================

// ValueSource supplies the resolver with current duration text per cell and,
// for the base variant, the period bounds persisted at save time.
type ValueSource interface {
	// DurationText returns the effective duration cell text for a row, raw
	// and unparsed, with ok=false when the cell has no value at all.
	DurationText(variant, step int) (string, bool)

	// PersistedFrom and PersistedThru return the bounds stored on the base
	// schedule row, used only as variant-0 fallbacks.
	PersistedFrom(step int) (int, bool)
	PersistedThru(step int) (int, bool)
}

// Resolver derives From/Thru periods for one assumption's schedule.
type Resolver struct {
	src     ValueSource
	horizon int
}

// NewResolver binds a resolver to one assumption's cell values. A horizon of
// 0 uses the default analysis horizon.
func NewResolver(src ValueSource, horizon int) *Resolver {
	if horizon <= 0 {
		horizon = HorizonPeriods
	}
	return &Resolver{src: src, horizon: horizon}
}

// FromPeriod derives the first period a step covers. The first row always
// starts at period 1; later rows start right after the prior row ends. When
// the chain is broken the base variant falls back to the persisted From
// bound; custom variants report undefined.
func (r *Resolver) FromPeriod(variant, step int) (int, bool) {
	if step < 0 {
		return 0, false
	}
	if step == 0 {
		return 1, true
	}
	if thru, ok := r.ThruPeriod(variant, step-1); ok {
		return thru + 1, true
	}
	if variant == BaseVariant {
		if from, ok := r.src.PersistedFrom(step); ok {
			return from, true
		}
	}
	return 0, false
}

// ThruPeriod derives the last period a step covers. A sentinel duration pins
// the end to the horizon regardless of where the step starts. Otherwise the
// duration text must read as a positive integer and the step's From period
// must itself resolve. When neither holds the base variant falls back to the
// persisted Thru bound; custom variants report undefined.
func (r *Resolver) ThruPeriod(variant, step int) (int, bool) {
	if step < 0 {
		return 0, false
	}
	raw, has := r.src.DurationText(variant, step)
	if has && isSentinelText(raw) {
		return r.horizon, true
	}
	if has {
		if d, ok := parseLeadingInt(raw); ok && d > 0 {
			if from, ok := r.FromPeriod(variant, step); ok {
				return from + d - 1, true
			}
		}
	}
	if variant == BaseVariant {
		if thru, ok := r.src.PersistedThru(step); ok {
			return thru, true
		}
	}
	return 0, false
}

// Horizon returns the analysis horizon this resolver pins sentinel steps to.
func (r *Resolver) Horizon() int { return r.horizon }

// ResolveBaseBounds stamps each row of a base schedule with its derived
// From/Thru bounds. Runs at save time, so persisted rows carry the fallback
// values the base variant resolves against later. A horizon of 0 uses the
// default analysis horizon.
func ResolveBaseBounds(steps []BaseStep, horizon int) []BaseStep {
	if horizon <= 0 {
		horizon = HorizonPeriods
	}

	out := make([]BaseStep, len(steps))
	copy(out, steps)

	from := 1
	known := true
	for i := range out {
		out[i].From = 0
		out[i].Thru = 0
		if known {
			out[i].From = from
		}
		d := out[i].Periods
		switch {
		case d.IsSentinel():
			out[i].Thru = horizon
			from = horizon + 1
			known = true
		case d.Count() > 0 && known:
			out[i].Thru = from + d.Count() - 1
			from = out[i].Thru + 1
		default:
			known = false
		}
	}
	return out
}
