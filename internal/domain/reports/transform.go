package reports

import (
	"math"
	"sort"
	"strings"
	"time"

	"assetdesk/internal/core/types"
	"assetdesk/internal/domain/filter"
)

// pick reads a nested value by dotted path ("asset.branch.name").
func pick(rec map[string]any, path string) any {
	var cur any = rec
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur, ok = m[part]
		if !ok {
			return nil
		}
	}
	return cur
}

// first returns the first non-nil value among paths.
func first(rec map[string]any, paths ...string) any {
	for _, p := range paths {
		if v := pick(rec, p); v != nil {
			return v
		}
	}
	return nil
}

// refText flattens {id,text}, {id,name} and similar references into their label.
func refText(v any) string {
	m, ok := v.(map[string]any)
	if !ok {
		return filter.Text(v)
	}
	for _, k := range []string{"text", "name", "label", "title", "full_name", "code"} {
		if s, ok := m[k]; ok && s != nil {
			return filter.Text(s)
		}
	}
	return filter.Text(m["id"])
}

// refID returns the identifier of a reference, or the value itself for scalars.
func refID(v any) string {
	m, ok := v.(map[string]any)
	if !ok {
		return filter.Text(v)
	}
	for _, k := range []string{"id", "value", "code"} {
		if s, ok := m[k]; ok && s != nil {
			return filter.Text(s)
		}
	}
	return ""
}

func text(rec map[string]any, paths ...string) string {
	return strings.TrimSpace(refText(first(rec, paths...)))
}

func ident(rec map[string]any, paths ...string) string {
	return refID(first(rec, paths...))
}

// number returns a float64 or nil when the value is missing or not numeric.
func number(rec map[string]any, paths ...string) any {
	v := first(rec, paths...)
	if v == nil {
		return nil
	}
	n, ok := filter.Number(v)
	if !ok || math.IsInf(n, 0) {
		return nil
	}
	return n
}

// money returns the amount rounded to cents as float64, or nil.
func money(rec map[string]any, paths ...string) any {
	m, ok := types.ParseMoney(first(rec, paths...))
	if !ok {
		return nil
	}
	return types.MoneyFloat(m)
}

func moneyValue(rec map[string]any, paths ...string) (types.Money, bool) {
	return types.ParseMoney(first(rec, paths...))
}

// date returns a time.Time or nil.
func date(rec map[string]any, paths ...string) any {
	t, ok := dateValue(rec, paths...)
	if !ok {
		return nil
	}
	return t
}

func dateValue(rec map[string]any, paths ...string) (time.Time, bool) {
	v := first(rec, paths...)
	if v == nil {
		return time.Time{}, false
	}
	return filter.ParseTime(v)
}

func boolean(rec map[string]any, paths ...string) bool {
	switch v := first(rec, paths...).(type) {
	case bool:
		return v
	case string:
		s := strings.ToLower(strings.TrimSpace(v))
		return s == "true" || s == "yes" || s == "1"
	case float64:
		return v != 0
	default:
		return false
	}
}

// list flattens a list of scalars or references into their labels.
func list(rec map[string]any, paths ...string) []any {
	raw, ok := first(rec, paths...).([]any)
	if !ok {
		return []any{}
	}
	out := make([]any, 0, len(raw))
	for _, item := range raw {
		if s := refText(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// properties accepts {name: value} maps or [{name|property, value}] lists.
func properties(rec map[string]any, paths ...string) map[string]any {
	out := make(map[string]any)
	switch v := first(rec, paths...).(type) {
	case map[string]any:
		for k, val := range v {
			out[k] = val
		}
	case []any:
		for _, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			name := filter.Text(firstKey(m, "name", "property", "key"))
			if name == "" {
				continue
			}
			out[name] = firstKey(m, "value", "values")
		}
	}
	return out
}

func firstKey(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// hoursBetween returns the elapsed hours rounded to one decimal, or nil when
// start is unknown. A missing end is measured at now.
func hoursBetween(start, end any, now time.Time) any {
	s, ok := start.(time.Time)
	if !ok {
		return nil
	}
	e, ok := end.(time.Time)
	if !ok {
		e = now
	}
	if e.Before(s) {
		return 0.0
	}
	return round1(e.Sub(s).Hours())
}

// yearsBetween returns whole-day elapsed years rounded to one decimal.
func yearsBetween(start, end time.Time) float64 {
	if end.Before(start) {
		return 0
	}
	return round1(end.Sub(start).Hours() / 24 / 365.25)
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}

// distinctValues collects the distinct non-empty values of key, sorted case-insensitively.
// List values contribute each element.
func distinctValues(rows []filter.Row, key string) []filter.Option {
	seen := make(map[string]struct{})
	var values []string
	add := func(v any) {
		s := strings.TrimSpace(filter.Text(v))
		if s == "" {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		values = append(values, s)
	}

	for _, r := range rows {
		switch v := r[key].(type) {
		case []any:
			for _, item := range v {
				add(item)
			}
		case []string:
			for _, item := range v {
				add(item)
			}
		case nil:
		default:
			add(v)
		}
	}

	sort.SliceStable(values, func(i, j int) bool {
		a, b := strings.ToLower(values[i]), strings.ToLower(values[j])
		if a == b {
			return values[i] < values[j]
		}
		return a < b
	})

	out := make([]filter.Option, 0, len(values))
	for _, v := range values {
		out = append(out, filter.Option{Value: v, Label: v})
	}
	return out
}
