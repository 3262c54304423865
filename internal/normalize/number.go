package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

//nolint:gochecknoglobals // compiled once
var (
	intPrefixRe   = regexp.MustCompile(`^[+-]?\d+`)
	floatPrefixRe = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)
)

const halfPoint = "½"

// ParseNumber parses a base-10 integer from the leading digits of raw, so
// "1850/24" yields 1850. Blank input and a lone "-" are absent, as is input
// without leading digits.
func ParseNumber(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || s == "-" {
		return 0, false
	}
	m := intPrefixRe.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseFloatValue is ParseNumber for decimals. Scores printed with a half
// sign ("4½", "½") are understood.
func ParseFloatValue(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || s == "-" {
		return 0, false
	}
	if s == halfPoint {
		return 0.5, true
	}
	if whole, ok := strings.CutSuffix(s, halfPoint); ok {
		if n, err := strconv.Atoi(whole); err == nil && n >= 0 {
			return float64(n) + 0.5, true
		}
	}
	// "4,5" is a decimal comma; "1,234.5" keeps its comma and stops at it.
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	m := floatPrefixRe.FindString(s)
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// NumberFromValue is ParseNumber for values read straight from storage.
// Floats are truncated toward zero; floats outside the int range are
// absent.
func NumberFromValue(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int64:
		if x < math.MinInt || x > math.MaxInt {
			return 0, false
		}
		return int(x), true
	case float64:
		// float64(math.MaxInt) rounds up to 2^63, itself out of range.
		if math.IsNaN(x) || x < math.MinInt || x >= math.MaxInt {
			return 0, false
		}
		return int(x), true
	case string:
		return ParseNumber(x)
	case []byte:
		return ParseNumber(string(x))
	default:
		return 0, false
	}
}

// FloatFromValue is ParseFloatValue for values read straight from storage.
func FloatFromValue(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, false
		}
		return x, true
	case string:
		return ParseFloatValue(x)
	case []byte:
		return ParseFloatValue(string(x))
	default:
		return 0, false
	}
}

// IntPtr returns a pointer to the parsed number, nil when absent.
func IntPtr(v any) *int {
	n, ok := NumberFromValue(v)
	if !ok {
		return nil
	}
	return &n
}

// FloatPtr returns a pointer to the parsed decimal, nil when absent.
func FloatPtr(v any) *float64 {
	f, ok := FloatFromValue(v)
	if !ok {
		return nil
	}
	return &f
}
