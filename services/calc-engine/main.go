package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/shopspring/decimal"

	"land_proforma/pkg/core/pricing"
	"land_proforma/pkg/core/schedule"
)

// SchedulePayload is one growth-rate schedule in wire form, the same shape
// the assumption export carries.
type SchedulePayload struct {
	Steps      []schedule.BaseStep `json:"steps"`
	GlobalRate string              `json:"global_rate,omitempty"`
	Horizon    int                 `json:"horizon,omitempty"`
	BasePrice  string              `json:"base_price,omitempty"`
}

func main() {
	mode := flag.String("mode", "calculate", "Mode: check or calculate")
	dataStr := flag.String("data", "", "JSON schedule payload")
	filePath := flag.String("file", "", "Path to a JSON schedule payload")
	flag.Parse()

	raw := *dataStr
	if raw == "" && *filePath != "" {
		bytes, err := ioutil.ReadFile(*filePath)
		if err != nil {
			fmt.Printf("Error reading file: %v\n", err)
			os.Exit(1)
		}
		raw = string(bytes)
	}
	if raw == "" {
		fmt.Println("Error: No data provided")
		os.Exit(1)
	}

	var payload SchedulePayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		fmt.Printf("Error unmarshaling data: %v\n", err)
		os.Exit(1)
	}
	if payload.Horizon == 0 {
		payload.Horizon = schedule.HorizonPeriods
	}

	switch *mode {
	case "check":
		runChecks(payload)
	case "calculate":
		runCalculations(payload)
	default:
		fmt.Printf("Unknown mode: %s\n", *mode)
	}
}

// runChecks validates the resolved schedule: contiguous bounds, no
// open-ended step before the last row, readable rates.
func runChecks(payload SchedulePayload) {
	resolved := schedule.ResolveBaseBounds(payload.Steps, payload.Horizon)
	if len(resolved) == 0 {
		fmt.Println("Error: schedule has no steps")
		os.Exit(1)
	}

	problems := 0
	expected := 1
	for i, s := range resolved {
		if s.Periods.IsZero() {
			fmt.Printf("Error: step %d has no duration\n", i+1)
			problems++
			continue
		}
		if s.Periods.IsSentinel() && i != len(resolved)-1 {
			fmt.Printf("Error: open-ended step %d is not the last row\n", i+1)
			problems++
		}
		if s.From <= 0 || s.Thru <= 0 {
			fmt.Printf("Error: step %d has unresolved bounds (broken chain)\n", i+1)
			problems++
			continue
		}
		if s.From != expected {
			fmt.Printf("Error: step %d starts at period %d, expected %d\n", i+1, s.From, expected)
			problems++
		}
		if s.Thru < s.From {
			fmt.Printf("Error: step %d ends (%d) before it starts (%d)\n", i+1, s.Thru, s.From)
			problems++
		}
		expected = s.Thru + 1

		if _, err := pricing.ParsePercent(s.Rate); err != nil {
			fmt.Printf("Error: step %d rate '%s' is unreadable: %v\n", i+1, s.Rate, err)
			problems++
		}
	}

	if problems > 0 {
		fmt.Printf("Error: %d problem(s) found\n", problems)
		os.Exit(1)
	}

	last := resolved[len(resolved)-1]
	fmt.Printf("Success: %d steps cover periods 1..%d\n", len(resolved), last.Thru)
}

// runCalculations emits the resolved period table and, when a base price is
// supplied, the escalated price at each year boundary.
func runCalculations(payload SchedulePayload) {
	esc, err := pricing.NewEscalation(payload.Steps, payload.GlobalRate, payload.Horizon)
	if err != nil {
		fmt.Printf("Error building escalation: %v\n", err)
		os.Exit(1)
	}

	resolved := schedule.ResolveBaseBounds(payload.Steps, payload.Horizon)
	fmt.Printf("Resolved schedule (horizon %d periods):\n", payload.Horizon)
	for i, s := range resolved {
		if s.From <= 0 || s.Thru <= 0 {
			fmt.Printf("  step %d: unresolved (%s @ %s)\n", i+1, s.Periods.Text(), s.Rate)
			continue
		}
		fmt.Printf("  step %d: periods %d..%d @ %s per annum\n", i+1, s.From, s.Thru, s.Rate)
	}
	if payload.GlobalRate != "" {
		fmt.Printf("  fallback: %s per annum outside the steps\n", payload.GlobalRate)
	}

	if payload.BasePrice == "" {
		fmt.Println("Calculations complete.")
		return
	}

	base, err := decimal.NewFromString(payload.BasePrice)
	if err != nil {
		fmt.Printf("Error: unreadable base price '%s'\n", payload.BasePrice)
		os.Exit(1)
	}
	fmt.Printf("Escalated price from base %s:\n", base.StringFixed(2))
	for period := pricing.PeriodsPerYear; period <= payload.Horizon; period += pricing.PeriodsPerYear {
		fmt.Printf("  period %3d (year %d): %s\n",
			period, period/pricing.PeriodsPerYear, esc.PriceAt(base, period).StringFixed(2))
	}
	fmt.Println("Calculations complete.")
}
