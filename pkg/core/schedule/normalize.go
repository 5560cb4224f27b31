package schedule

import (
	"strconv"
	"strings"
)

// =============================================================================
// BLUR NORMALIZATION
// Raw cell text is canonicalized when a cell loses focus. Parse failures are
// absorbed silently: the caller keeps the prior value and no error surfaces.
// =============================================================================

// NormalizeRate coerces raw numeric entry into a percentage string. Values
// below 1 are read as fractions (0.025 becomes "2.5%"), values of 1 or more
// as whole percentages (2 becomes "2%", 2.5 becomes "2.5%"). Empty input,
// unparseable input, and negatives return ok=false and the caller reverts to
// the prior display value.
func NormalizeRate(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}
	v, ok := parseLeadingFloat(trimmed)
	if !ok || v < 0 {
		return "", false
	}
	if v < 1 {
		return strconv.FormatFloat(v*100, 'f', 1, 64) + "%", true
	}
	return strconv.FormatFloat(v, 'f', -1, 64) + "%", true
}

// NormalizeDuration canonicalizes raw duration entry: the sentinel in any
// case form becomes "E", and integer entry keeps its truncated integer part
// ("12.9" and "12abc" both become "12"). Anything else returns ok=false.
func NormalizeDuration(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if strings.EqualFold(s, Sentinel) {
		return Sentinel, true
	}
	n, ok := parseLeadingInt(s)
	if !ok || n <= 0 {
		return "", false
	}
	return strconv.Itoa(n), true
}

// isConfirmedDuration reports whether duration text counts as a committed
// fixed-length entry: non-empty, not the placeholder dash, and not the
// sentinel in any case form. Only confirmed durations reveal the next row.
func isConfirmedDuration(value string) bool {
	return value != "" && value != PlaceholderDash && !strings.EqualFold(value, Sentinel)
}

// isSentinelText reports whether raw cell text reads as the sentinel.
func isSentinelText(raw string) bool {
	return strings.EqualFold(strings.TrimSpace(raw), Sentinel)
}

// -----------------------------------------------------------------------------
// Leading-number parsing
// Cell text keeps whatever the user typed, so numeric reads tolerate trailing
// garbage the way the frontend's parseInt/parseFloat did.
// -----------------------------------------------------------------------------

// parseLeadingInt reads a base-10 integer prefix, ignoring everything after
// the last digit. Returns false when the text has no leading integer.
func parseLeadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	start := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == start {
		return 0, false
	}
	n, err := strconv.Atoi(s[:i])
	if err != nil {
		return 0, false
	}
	return n, true
}

// parseLeadingFloat reads a decimal prefix (sign, digits, optional fraction,
// optional exponent), ignoring trailing garbage. Returns false when the text
// has no leading number.
func parseLeadingFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0, false
	}
	// Optional exponent; only consumed when well formed.
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		expDigits := 0
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
			expDigits++
		}
		if expDigits > 0 {
			i = j
		}
	}
	v, err := strconv.ParseFloat(s[:i], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
