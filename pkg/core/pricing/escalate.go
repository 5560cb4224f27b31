package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"land_proforma/pkg/core/schedule"
)

// =============================================================================
// ESCALATION
// Applies a growth-rate step schedule to a base price. Rates are per annum;
// periods are months, so each period compounds at annual/12. Periods no step
// covers fall back to the assumption's global rate.
// =============================================================================

// PeriodsPerYear fixes the period resolution of the analysis calendar.
const PeriodsPerYear = 12

// window is one resolved step: an annual rate in force from period From
// through period Thru, inclusive.
type window struct {
	from, thru int
	annual     decimal.Decimal
}

// Escalation walks prices forward along a resolved step schedule.
type Escalation struct {
	windows  []window
	fallback decimal.Decimal // annual fraction used outside every window
}

// NewEscalation builds an escalation from persisted steps and the global
// fallback rate. Step bounds are recomputed here, so the caller can pass rows
// fresh off the wire. Rates must parse; an unreadable rate is rejected at
// construction rather than surfacing mid-walk.
func NewEscalation(steps []schedule.BaseStep, globalRate string, horizon int) (*Escalation, error) {
	fallback := decimal.Zero
	if strings.TrimSpace(globalRate) != "" {
		f, err := ParsePercent(globalRate)
		if err != nil {
			return nil, fmt.Errorf("global rate: %w", err)
		}
		fallback = f
	}

	e := &Escalation{fallback: fallback}
	for i, s := range schedule.ResolveBaseBounds(steps, horizon) {
		if s.From <= 0 || s.Thru <= 0 {
			continue // broken chain, the fallback covers these periods
		}
		annual, err := ParsePercent(s.Rate)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		e.windows = append(e.windows, window{from: s.From, thru: s.Thru, annual: annual})
	}
	return e, nil
}

// AnnualRate returns the annual fraction in force during a period.
func (e *Escalation) AnnualRate(period int) decimal.Decimal {
	for _, w := range e.windows {
		if period >= w.from && period <= w.thru {
			return w.annual
		}
	}
	return e.fallback
}

// periodFactor is 1 + annual/PeriodsPerYear for one period.
func (e *Escalation) periodFactor(period int) decimal.Decimal {
	rate := e.AnnualRate(period).Div(decimal.NewFromInt(PeriodsPerYear))
	return decimal.NewFromInt(1).Add(rate)
}

// PriceAt compounds a base price through the given period. Period 0 is the
// analysis start and returns the base unchanged; period n applies the factor
// of every period 1..n. The result is rounded to cents.
func (e *Escalation) PriceAt(base decimal.Decimal, period int) decimal.Decimal {
	price := base
	for p := 1; p <= period; p++ {
		price = price.Mul(e.periodFactor(p))
	}
	return price.Round(2)
}

// Series returns the escalated price for every period 1..thru, rounded to
// cents. Compounding accumulates at full precision.
func (e *Escalation) Series(base decimal.Decimal, thru int) []decimal.Decimal {
	out := make([]decimal.Decimal, 0, thru)
	price := base
	for p := 1; p <= thru; p++ {
		price = price.Mul(e.periodFactor(p))
		out = append(out, price.Round(2))
	}
	return out
}

// ParsePercent reads a percentage string like "2.5%" into the fraction
// 0.025. The trailing percent sign is optional.
func ParsePercent(rate string) (decimal.Decimal, error) {
	s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(rate), "%"))
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty rate")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unreadable rate '%s'", rate)
	}
	return d.Div(decimal.NewFromInt(100)), nil
}
