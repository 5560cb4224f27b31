package schedule

import "testing"

func TestNormalizeRateFraction(t *testing.T) {
	// 0.025 is below 1, so it reads as a fraction: 0.025 * 100 = 2.5 -> "2.5%"
	got, ok := NormalizeRate("0.025")
	if !ok {
		t.Fatal("Expected 0.025 to normalize")
	}
	if got != "2.5%" {
		t.Errorf("Expected 2.5%%, got %s", got)
	}
}

func TestNormalizeRateWholePercent(t *testing.T) {
	// 2 is >= 1, so it is already a percentage
	got, ok := NormalizeRate("2")
	if !ok || got != "2%" {
		t.Errorf("Expected 2%%, got %s (ok=%v)", got, ok)
	}

	// Decimals above 1 keep their minimal form
	got, ok = NormalizeRate("2.5")
	if !ok || got != "2.5%" {
		t.Errorf("Expected 2.5%%, got %s (ok=%v)", got, ok)
	}
}

func TestNormalizeRateRejects(t *testing.T) {
	if _, ok := NormalizeRate(""); ok {
		t.Error("Expected empty input to be a no-op")
	}
	if _, ok := NormalizeRate("   "); ok {
		t.Error("Expected whitespace input to be a no-op")
	}
	if _, ok := NormalizeRate("-1"); ok {
		t.Error("Expected negative input to be a no-op")
	}
	if _, ok := NormalizeRate("abc"); ok {
		t.Error("Expected non-numeric input to be a no-op")
	}
}

func TestNormalizeRateIdempotent(t *testing.T) {
	// Blurring an untouched cell re-normalizes the canonical text: the
	// trailing % is trailing garbage to the float parse, so "2.5%" stays
	// "2.5%".
	got, ok := NormalizeRate("2.5%")
	if !ok || got != "2.5%" {
		t.Errorf("Expected 2.5%% to survive renormalization, got %s (ok=%v)", got, ok)
	}
}

func TestNormalizeRateZero(t *testing.T) {
	// 0 is below 1: 0 * 100 = 0.0 -> "0.0%"
	got, ok := NormalizeRate("0")
	if !ok || got != "0.0%" {
		t.Errorf("Expected 0.0%%, got %s (ok=%v)", got, ok)
	}
}

func TestNormalizeRateOneDecimalOnFractions(t *testing.T) {
	// Fractions keep exactly one decimal: 0.12345 * 100 = 12.345 -> "12.3%"
	got, ok := NormalizeRate("0.12345")
	if !ok || got != "12.3%" {
		t.Errorf("Expected 12.3%%, got %s (ok=%v)", got, ok)
	}
}

func TestNormalizeDuration(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"e", "E", true},
		{"E", "E", true},
		{" e ", "E", true},
		{"12", "12", true},
		{"12.9", "12", true},  // integer parse truncates at the decimal point
		{"12abc", "12", true}, // trailing garbage is ignored
		{"abc", "", false},
		{"0", "", false},
		{"-4", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		got, ok := NormalizeDuration(c.in)
		if ok != c.ok || got != c.want {
			t.Errorf("NormalizeDuration(%q): expected (%q, %v), got (%q, %v)", c.in, c.want, c.ok, got, ok)
		}
	}
}

func TestParseDurationText(t *testing.T) {
	d, ok := ParseDurationText("12")
	if !ok || d.IsSentinel() || d.Count() != 12 {
		t.Errorf("Expected 12-period duration, got %+v (ok=%v)", d, ok)
	}

	d, ok = ParseDurationText("e")
	if !ok || !d.IsSentinel() {
		t.Errorf("Expected sentinel duration, got %+v (ok=%v)", d, ok)
	}

	if _, ok := ParseDurationText("-"); ok {
		t.Error("Expected the placeholder dash to parse as nothing")
	}
	if _, ok := ParseDurationText("0"); ok {
		t.Error("Expected zero to parse as nothing")
	}
}

func TestConfirmedDuration(t *testing.T) {
	// Confirmed means a committed fixed-length entry. The sentinel does not
	// confirm a row because a to-horizon step is by definition the last one.
	confirmed := []string{"12", "1", "12abc"}
	for _, v := range confirmed {
		if !isConfirmedDuration(v) {
			t.Errorf("Expected %q to be confirmed", v)
		}
	}
	unconfirmed := []string{"", "-", "e", "E"}
	for _, v := range unconfirmed {
		if isConfirmedDuration(v) {
			t.Errorf("Expected %q to not be confirmed", v)
		}
	}
}

func TestParseLeadingFloat(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"2.5", 2.5, true},
		{"2.5%", 2.5, true},
		{"0.025", 0.025, true},
		{"-1", -1, true},
		{"1e2x", 100, true},
		{".5", 0.5, true},
		{"abc", 0, false},
		{"", 0, false},
		{".", 0, false},
	}
	for _, c := range cases {
		got, ok := parseLeadingFloat(c.in)
		if ok != c.ok || got != c.want {
			t.Errorf("parseLeadingFloat(%q): expected (%v, %v), got (%v, %v)", c.in, c.want, c.ok, got, ok)
		}
	}
}
