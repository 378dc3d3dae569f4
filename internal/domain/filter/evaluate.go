package filter

import (
	"strings"
	"time"
)

// Apply evaluates a single predicate against a row.
// Malformed input (unsupported operator, uncoercible values) yields false.
func Apply(row Row, field Field, op Operator, value any) bool {
	if !Supports(field.Type, op) {
		return false
	}

	switch field.Type {
	case TypeText, TypeSelect:
		return applyText(row[field.Key], op, value)
	case TypeNumber:
		return applyNumber(row[field.Key], op, value)
	case TypeMultiSelect:
		return applyMultiSelect(row[field.Key], op, value)
	case TypeDateRange:
		return applyDate(row[field.Key], op, value)
	case TypeBoolean:
		return applyBoolean(row[field.Key], value)
	case TypePropertyValue:
		return applyPropertyValue(row[PropertiesKey], op, value)
	default:
		return false
	}
}

func applyText(rowVal any, op Operator, value any) bool {
	s := strings.ToLower(toText(rowVal))
	t := strings.ToLower(toText(value))

	switch op {
	case OpContains:
		return strings.Contains(s, t)
	case OpStartsWith:
		return strings.HasPrefix(s, t)
	case OpEndsWith:
		return strings.HasSuffix(s, t)
	case OpEqual:
		return s == t
	case OpNotEqual:
		return s != t
	}
	return false
}

func applyNumber(rowVal any, op Operator, value any) bool {
	n, ok := toNumber(rowVal)
	if !ok {
		return false
	}
	x, ok := toNumber(value)
	if !ok {
		return false
	}

	switch op {
	case OpEqual:
		return n == x
	case OpNotEqual:
		return n != x
	case OpGreaterEq:
		return n >= x
	case OpLessEq:
		return n <= x
	}
	return false
}

func applyMultiSelect(rowVal any, op Operator, value any) bool {
	wanted := toValues(value)
	if len(wanted) == 0 {
		return false
	}

	have := make(map[string]struct{})
	for _, v := range toList(rowVal) {
		have[strings.ToLower(v)] = struct{}{}
	}

	matched := 0
	for _, w := range wanted {
		if _, ok := have[strings.ToLower(w)]; ok {
			matched++
		}
	}

	switch op {
	case OpHasAny:
		return matched > 0
	case OpHasAll:
		return matched == len(wanted)
	case OpHasNone:
		return matched == 0
	}
	return false
}

func applyDate(rowVal any, op Operator, value any) bool {
	d, _, ok := toTime(rowVal)
	if !ok {
		return false
	}

	switch op {
	case OpInRange:
		r, ok := asDateRange(value)
		if !ok {
			return false
		}
		if r.From != "" {
			from, _, ok := toTime(r.From)
			if !ok || d.Before(from) {
				return false
			}
		}
		if r.To != "" {
			to, dateOnly, ok := toTime(r.To)
			if !ok {
				return false
			}
			if dateOnly {
				to = endOfDay(to)
			}
			if d.After(to) {
				return false
			}
		}
		return true

	case OpBefore:
		bound, ok := singleDate(value, true)
		if !ok {
			return false
		}
		t, _, ok := toTime(bound)
		return ok && d.Before(t)

	case OpAfter:
		bound, ok := singleDate(value, false)
		if !ok {
			return false
		}
		t, dateOnly, ok := toTime(bound)
		if !ok {
			return false
		}
		if dateOnly {
			t = endOfDay(t)
		}
		return d.After(t)
	}
	return false
}

// singleDate extracts the bound used by before/after. A range value uses its
// lower bound for "before" and its upper bound for "after".
func singleDate(value any, lower bool) (string, bool) {
	if _, isString := value.(string); !isString {
		if r, ok := asDateRange(value); ok {
			first, second := r.To, r.From
			if lower {
				first, second = r.From, r.To
			}
			if first != "" {
				return first, true
			}
			return second, second != ""
		}
	}
	s := toText(value)
	return s, s != ""
}

func endOfDay(t time.Time) time.Time {
	return t.AddDate(0, 0, 1).Add(-time.Nanosecond)
}

func applyBoolean(rowVal any, value any) bool {
	have, ok := toBool(rowVal)
	if !ok {
		return false
	}
	want, ok := toBool(value)
	if !ok || value == nil {
		return false
	}
	return have == want
}

func applyPropertyValue(props any, op Operator, value any) bool {
	pv, ok := asPropertyValue(value)
	if !ok || len(pv.Values) == 0 {
		return false
	}

	rowVal, present := lookupProperty(props, pv.Property)

	switch op {
	case OpHasAny, OpHasNone:
		found := false
		if present {
			have := make(map[string]struct{})
			for _, v := range toList(rowVal) {
				have[strings.ToLower(v)] = struct{}{}
			}
			for _, w := range pv.Values {
				if _, ok := have[strings.ToLower(w)]; ok {
					found = true
					break
				}
			}
		}
		if op == OpHasAny {
			return found
		}
		return !found

	case OpContains:
		if !present {
			return false
		}
		s := strings.ToLower(toText(rowVal))
		for _, w := range pv.Values {
			if strings.Contains(s, strings.ToLower(w)) {
				return true
			}
		}
		return false
	}
	return false
}

// lookupProperty finds a property by name, ignoring case.
func lookupProperty(props any, name string) (any, bool) {
	switch m := props.(type) {
	case map[string]any:
		if v, ok := m[name]; ok {
			return v, true
		}
		for k, v := range m {
			if strings.EqualFold(k, name) {
				return v, true
			}
		}
	case map[string]string:
		if v, ok := m[name]; ok {
			return v, true
		}
		for k, v := range m {
			if strings.EqualFold(k, name) {
				return v, true
			}
		}
	}
	return nil, false
}
