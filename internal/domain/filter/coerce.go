package filter

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// toText stringifies a row or filter value for case-insensitive text comparison.
func toText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case json.Number:
		return x.String()
	case time.Time:
		return x.Format(time.RFC3339)
	case []any:
		parts := make([]string, 0, len(x))
		for _, item := range x {
			parts = append(parts, toText(item))
		}
		return strings.Join(parts, ",")
	case []string:
		return strings.Join(x, ",")
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// toNumber coerces a value the way JavaScript's Number() does.
// nil stands for a missing value and is not a number.
func toNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case float64:
		return x, !math.IsNaN(x)
	case float32:
		return float64(x), !math.IsNaN(float64(x))
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		return parseNumber(x.String())
	case time.Time:
		return float64(x.UnixMilli()), true
	case string:
		return parseNumber(x)
	default:
		return 0, false
	}
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1), true
	case "-Infinity":
		return math.Inf(-1), true
	}
	if strings.Contains(s, "_") {
		return 0, false
	}
	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			n, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil {
				return 0, false
			}
			return float64(n), true
		}
	}
	lower := strings.ToLower(s)
	if strings.Contains(lower, "inf") || strings.Contains(lower, "nan") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// dateLayouts are tried in order; the bool marks layouts without a time part.
var dateLayouts = []struct {
	layout   string
	dateOnly bool
}{
	{time.RFC3339Nano, false},
	{"2006-01-02T15:04:05", false},
	{"2006-01-02 15:04:05", false},
	{"2006-01-02T15:04", false},
	{"2006-01-02", true},
	{"02-01-2006", true},
	{"02/01/2006", true},
}

// toTime parses a date value. Values without a zone are read as UTC.
func toTime(v any) (t time.Time, dateOnly bool, ok bool) {
	switch x := v.(type) {
	case time.Time:
		return x, false, !x.IsZero()
	case *time.Time:
		if x == nil {
			return time.Time{}, false, false
		}
		return *x, false, !x.IsZero()
	case float64:
		return time.UnixMilli(int64(x)).UTC(), false, true
	case int64:
		return time.UnixMilli(x).UTC(), false, true
	case int:
		return time.UnixMilli(int64(x)).UTC(), false, true
	case json.Number:
		return toTime(x.String())
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return time.Time{}, false, false
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil && len(s) > 8 {
			return time.UnixMilli(ms).UTC(), false, true
		}
		for _, l := range dateLayouts {
			if parsed, err := time.Parse(l.layout, s); err == nil {
				return parsed, l.dateOnly, true
			}
		}
		return time.Time{}, false, false
	default:
		return time.Time{}, false, false
	}
}

// toList returns row values as a list without splitting strings.
func toList(v any) []string {
	switch x := v.(type) {
	case nil:
		return nil
	case []string:
		return x
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			if s := toText(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		if s := toText(x); s != "" {
			return []string{s}
		}
		return nil
	}
}

// toValues returns filter values as a list; strings are split on commas.
func toValues(v any) []string {
	if s, ok := v.(string); ok {
		var out []string
		for _, part := range strings.Split(s, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return toList(v)
}

// toBool parses boolean-ish values. A missing row value counts as false.
func toBool(v any) (bool, bool) {
	switch x := v.(type) {
	case nil:
		return false, true
	case bool:
		return x, true
	case float64:
		return x != 0, true
	case int:
		return x != 0, true
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true", "yes", "y", "1":
			return true, true
		case "false", "no", "n", "0":
			return false, true
		}
	}
	return false, false
}

// asDateRange accepts a DateRange, a {from,to} object or a two-element list.
func asDateRange(v any) (DateRange, bool) {
	switch x := v.(type) {
	case DateRange:
		return x, true
	case *DateRange:
		if x == nil {
			return DateRange{}, false
		}
		return *x, true
	case map[string]any:
		r := DateRange{From: toText(firstOf(x, "from", "start")), To: toText(firstOf(x, "to", "end"))}
		return r, true
	case []any:
		if len(x) != 2 {
			return DateRange{}, false
		}
		return DateRange{From: toText(x[0]), To: toText(x[1])}, true
	case []string:
		if len(x) != 2 {
			return DateRange{}, false
		}
		return DateRange{From: x[0], To: x[1]}, true
	default:
		return DateRange{}, false
	}
}

// asPropertyValue accepts a PropertyValue or a {property, values|value} object.
func asPropertyValue(v any) (PropertyValue, bool) {
	switch x := v.(type) {
	case PropertyValue:
		return x, x.Property != ""
	case *PropertyValue:
		if x == nil {
			return PropertyValue{}, false
		}
		return *x, x.Property != ""
	case map[string]any:
		pv := PropertyValue{Property: toText(x["property"])}
		pv.Values = toValues(firstOf(x, "values", "value"))
		return pv, pv.Property != ""
	default:
		return PropertyValue{}, false
	}
}

func firstOf(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// isEmpty reports whether a filter value carries no constraint.
func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case []any:
		return len(x) == 0
	case []string:
		return len(x) == 0
	case DateRange:
		return x.From == "" && x.To == ""
	case *DateRange:
		return x == nil || (x.From == "" && x.To == "")
	case PropertyValue:
		return x.Property == "" || len(x.Values) == 0
	case map[string]any:
		if len(x) == 0 {
			return true
		}
		if _, ok := x["property"]; ok {
			pv, ok := asPropertyValue(x)
			return !ok || len(pv.Values) == 0
		}
		if r, ok := asDateRange(x); ok {
			return r.From == "" && r.To == ""
		}
		return false
	default:
		return false
	}
}

// IsEmpty reports whether a quick filter value carries no constraint.
func IsEmpty(v any) bool { return isEmpty(v) }

// Values returns a multi-value filter value as a list of strings.
func Values(v any) []string { return toValues(v) }

// RangeOf returns the date range carried by a daterange filter value.
func RangeOf(v any) (DateRange, bool) { return asDateRange(v) }

// ParseTime parses a date value using the same rules as the evaluator.
func ParseTime(v any) (time.Time, bool) {
	t, _, ok := toTime(v)
	return t, ok
}

// Number coerces a value to a number using the same rules as the evaluator.
func Number(v any) (float64, bool) { return toNumber(v) }

// Text stringifies a value using the same rules as the evaluator.
func Text(v any) string { return toText(v) }
