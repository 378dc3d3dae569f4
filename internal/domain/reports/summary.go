package reports

import (
	"fmt"
	"sort"
	"strings"

	"assetdesk/internal/domain/filter"
)

// Summarize renders the applied filters as "Label: value" lines for export headers.
// Quick filters come first in quick-field order, then advanced conditions.
func Summarize(def Definition, q Query) []string {
	var lines []string

	keys := make([]string, 0, len(q.Quick))
	for k := range q.Quick {
		keys = append(keys, k)
	}
	rank := make(map[string]int, len(def.QuickFields))
	for i, k := range def.QuickFields {
		rank[k] = i
	}
	sort.SliceStable(keys, func(i, j int) bool {
		ri, okI := rank[keys[i]]
		rj, okJ := rank[keys[j]]
		switch {
		case okI && okJ:
			return ri < rj
		case okI != okJ:
			return okI
		}
		return keys[i] < keys[j]
	})

	for _, k := range keys {
		v := q.Quick[k]
		if filter.IsEmpty(v) {
			continue
		}
		f, ok := def.Field(k)
		if !ok {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", f.Label, describeValue(f, v)))
	}

	for _, c := range q.Advanced {
		if c.Operator == "" || filter.IsEmpty(c.Value) {
			continue
		}
		if c.Operator == filter.OpExpression {
			lines = append(lines, fmt.Sprintf("Expression: %s", filter.Text(c.Value)))
			continue
		}
		f, ok := def.Field(c.Field)
		if !ok {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s %s %s", f.Label, c.Operator, describeValue(f, c.Value)))
	}

	return lines
}

func describeValue(f filter.Field, v any) string {
	switch f.Type {
	case filter.TypeDateRange:
		if r, ok := filter.RangeOf(v); ok {
			from, to := r.From, r.To
			if from == "" {
				from = "any"
			}
			if to == "" {
				to = "any"
			}
			return from + " to " + to
		}
	case filter.TypeMultiSelect:
		return strings.Join(filter.Values(v), ", ")
	case filter.TypeSelect:
		s := filter.Text(v)
		for _, o := range f.Domain {
			if o.Value == s {
				return o.Label
			}
		}
		return s
	case filter.TypePropertyValue:
		if m, ok := v.(map[string]any); ok {
			return fmt.Sprintf("%s in [%s]", filter.Text(m["property"]), strings.Join(filter.Values(firstKey(m, "values", "value")), ", "))
		}
		if pv, ok := v.(filter.PropertyValue); ok {
			return fmt.Sprintf("%s in [%s]", pv.Property, strings.Join(pv.Values, ", "))
		}
	}
	return filter.Text(v)
}
