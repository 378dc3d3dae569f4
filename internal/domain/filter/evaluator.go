package filter

import (
	"fmt"
	"strings"

	"assetdesk/internal/core/apperror"
)

// Evaluator applies quick filters and advanced conditions of one report.
// It is safe for concurrent use; compiled expressions are shared across calls.
type Evaluator struct {
	fields map[string]Field
	exprs  expressions
}

// NewEvaluator creates an evaluator over the given field descriptors.
func NewEvaluator(fields []Field) *Evaluator {
	m := make(map[string]Field, len(fields))
	for _, f := range fields {
		m[f.Key] = f
	}
	return &Evaluator{fields: m}
}

// Field returns the descriptor for key.
func (e *Evaluator) Field(key string) (Field, bool) {
	f, ok := e.fields[key]
	return f, ok
}

// Apply evaluates one condition. Unknown fields yield false.
func (e *Evaluator) Apply(row Row, c Condition) bool {
	if c.Operator == OpExpression {
		src, ok := c.Value.(string)
		return ok && e.exprs.eval(src, row)
	}
	f, ok := e.fields[c.Field]
	if !ok {
		return false
	}
	return Apply(row, f, c.Operator, c.Value)
}

// Match reports whether row passes every non-empty quick filter and every
// complete advanced condition.
func (e *Evaluator) Match(row Row, quick map[string]any, advanced []Condition) bool {
	for key, value := range quick {
		if isEmpty(value) {
			continue
		}
		f, ok := e.fields[key]
		if !ok {
			return false
		}
		op, ok := DefaultOperator(f.Type)
		if !ok || !Apply(row, f, op, value) {
			return false
		}
	}

	for _, c := range advanced {
		if !complete(c) {
			continue
		}
		if !e.Apply(row, c) {
			return false
		}
	}
	return true
}

// Rows returns the rows that match, preserving input order.
func (e *Evaluator) Rows(rows []Row, quick map[string]any, advanced []Condition) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if e.Match(r, quick, advanced) {
			out = append(out, r)
		}
	}
	return out
}

// Validate rejects filters that would silently match nothing because they are malformed.
func (e *Evaluator) Validate(quick map[string]any, advanced []Condition) error {
	for key, value := range quick {
		if isEmpty(value) {
			continue
		}
		f, ok := e.fields[key]
		if !ok {
			return apperror.NewInvalidFilter(key, "unknown field")
		}
		op, _ := DefaultOperator(f.Type)
		if reason := checkValue(f, op, value); reason != "" {
			return apperror.NewInvalidFilter(key, reason)
		}
	}

	for i, c := range advanced {
		if !complete(c) {
			continue
		}
		if c.Operator == OpExpression {
			src, ok := c.Value.(string)
			if !ok {
				return apperror.NewInvalidFilter(conditionName(i, c), "expression must be a string")
			}
			if _, err := e.exprs.compile(src); err != nil {
				return apperror.NewInvalidFilter(conditionName(i, c), err.Error())
			}
			continue
		}

		f, ok := e.fields[c.Field]
		if !ok {
			return apperror.NewInvalidFilter(c.Field, "unknown field")
		}
		if !Supports(f.Type, c.Operator) {
			return apperror.NewInvalidFilter(c.Field,
				fmt.Sprintf("operator %q is not valid for %s fields", c.Operator, f.Type))
		}
		if reason := checkValue(f, c.Operator, c.Value); reason != "" {
			return apperror.NewInvalidFilter(c.Field, reason)
		}
	}
	return nil
}

// complete reports whether an advanced condition has everything it needs.
// Expressions do not reference a single field.
func complete(c Condition) bool {
	if c.Operator == "" || isEmpty(c.Value) {
		return false
	}
	return c.Field != "" || c.Operator == OpExpression
}

func conditionName(i int, c Condition) string {
	if c.Field != "" {
		return c.Field
	}
	return fmt.Sprintf("advanced[%d]", i)
}

// checkValue returns a reason when value cannot be coerced for the field, or "".
func checkValue(f Field, op Operator, value any) string {
	switch f.Type {
	case TypeNumber:
		if _, ok := toNumber(value); !ok {
			return "value is not a number"
		}
	case TypeBoolean:
		if _, ok := toBool(value); !ok {
			return "value is not a boolean"
		}
	case TypeMultiSelect:
		if len(toValues(value)) == 0 {
			return "no values selected"
		}
	case TypeDateRange:
		return checkDate(op, value)
	case TypePropertyValue:
		pv, ok := asPropertyValue(value)
		if !ok {
			return "value must be {property, values}"
		}
		if len(f.Properties) > 0 && !containsFold(f.Properties, pv.Property) {
			return fmt.Sprintf("unknown property %q", pv.Property)
		}
	}
	return ""
}

func checkDate(op Operator, value any) string {
	if op == OpInRange {
		r, ok := asDateRange(value)
		if !ok {
			return "value must be a date range"
		}
		for _, b := range []string{r.From, r.To} {
			if b == "" {
				continue
			}
			if _, _, ok := toTime(b); !ok {
				return fmt.Sprintf("invalid date %q", b)
			}
		}
		return ""
	}
	bound, ok := singleDate(value, op == OpBefore)
	if !ok {
		return "missing date"
	}
	if _, _, ok := toTime(bound); !ok {
		return fmt.Sprintf("invalid date %q", bound)
	}
	return ""
}

func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}
