package coerce

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// trueTokens is the single closed set of accepted true values. Anything
// outside it, including "no", "0" and garbage, coerces to false.
var trueTokens = map[string]struct{}{
	"true": {}, "t": {}, "yes": {}, "y": {}, "1": {}, "✓": {}, "✅": {},
}

// Bool is the strict flag parser used for MQL/SQL columns.
func Bool(s string) bool {
	_, ok := trueTokens[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// BoolValue coerces an arbitrary API cell to a flag. Native booleans and
// nonzero numbers count; strings go through the same strict token set.
func BoolValue(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case int:
		return val != 0
	case int64:
		return val != 0
	case float64:
		return val != 0
	case string:
		return Bool(val)
	default:
		return Bool(fmt.Sprintf("%v", val))
	}
}

// Date parses a date from whatever shape the source handed us. Blank input
// and unparseable input both return ok=false; callers that need to tell
// them apart check the raw value themselves.
func Date(v interface{}) (time.Time, bool) {
	switch val := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return val, true
	case *time.Time:
		if val == nil {
			return time.Time{}, false
		}
		return *val, true
	case string:
		return parseDateString(val)
	default:
		return parseDateString(fmt.Sprintf("%v", val))
	}
}

func parseDateString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DateOnly truncates a parsed timestamp to its date component.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Int parses an integer cell, tolerating float formatting ("2.0" -> 2).
// Failures and blanks return the caller's default.
func Int(v interface{}, def int) int {
	switch val := v.(type) {
	case nil:
		return def
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		return int(val)
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return def
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int(f)
		}
		return def
	default:
		return def
	}
}

// Float parses a numeric cell; failures and blanks return the default.
func Float(v interface{}, def float64) float64 {
	switch val := v.(type) {
	case nil:
		return def
	case float64:
		return val
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return def
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
		return def
	default:
		return def
	}
}

// NormalizeLower trims and lower-cases a value, substituting def for blanks.
func NormalizeLower(v interface{}, def string) string {
	if v == nil {
		return def
	}
	s := strings.ToLower(strings.TrimSpace(fmt.Sprintf("%v", v)))
	if s == "" {
		return def
	}
	return s
}
