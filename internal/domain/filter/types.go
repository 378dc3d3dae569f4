// Package filter implements the typed predicate engine behind quick filters and
// advanced conditions of every report.
package filter

// FieldType determines which operators a field accepts and how values are coerced.
type FieldType string

const (
	TypeText          FieldType = "text"
	TypeNumber        FieldType = "number"
	TypeSelect        FieldType = "select"
	TypeMultiSelect   FieldType = "multiselect"
	TypeDateRange     FieldType = "daterange"
	TypeBoolean       FieldType = "boolean"
	TypePropertyValue FieldType = "property_value"
)

// Operator is a comparison applied to a row value.
// The string values are the labels the UI sends back unchanged.
type Operator string

const (
	OpContains   Operator = "contains"
	OpStartsWith Operator = "starts with"
	OpEndsWith   Operator = "ends with"
	OpEqual      Operator = "="
	OpNotEqual   Operator = "!="
	OpGreaterEq  Operator = ">="
	OpLessEq     Operator = "<="
	OpHasAny     Operator = "has any"
	OpHasAll     Operator = "has all"
	OpHasNone    Operator = "has none"
	OpInRange    Operator = "in range"
	OpBefore     Operator = "before"
	OpAfter      Operator = "after"
	OpIs         Operator = "is"

	// OpExpression evaluates a CEL expression against the whole row.
	OpExpression Operator = "expr"
)

// operatorsByType lists valid operators per field type; the first one is the
// default used for quick filters.
var operatorsByType = map[FieldType][]Operator{
	TypeText:          {OpContains, OpStartsWith, OpEndsWith, OpEqual, OpNotEqual},
	TypeSelect:        {OpEqual, OpNotEqual, OpContains, OpStartsWith, OpEndsWith},
	TypeNumber:        {OpEqual, OpNotEqual, OpGreaterEq, OpLessEq},
	TypeMultiSelect:   {OpHasAny, OpHasAll, OpHasNone},
	TypeDateRange:     {OpInRange, OpBefore, OpAfter},
	TypeBoolean:       {OpIs},
	TypePropertyValue: {OpHasAny, OpHasNone, OpContains},
}

// OperatorsFor returns the operators accepted by a field type.
func OperatorsFor(t FieldType) []Operator {
	ops := operatorsByType[t]
	out := make([]Operator, len(ops))
	copy(out, ops)
	return out
}

// DefaultOperator returns the operator quick filters use for a field type.
func DefaultOperator(t FieldType) (Operator, bool) {
	ops := operatorsByType[t]
	if len(ops) == 0 {
		return "", false
	}
	return ops[0], true
}

// Supports reports whether op is valid for the field type.
func Supports(t FieldType, op Operator) bool {
	for _, o := range operatorsByType[t] {
		if o == op {
			return true
		}
	}
	return false
}

// Option is one entry of a select/multiselect domain.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Field describes a filterable column of a report.
type Field struct {
	Key   string    `json:"key"`
	Label string    `json:"label"`
	Type  FieldType `json:"type"`

	// Domain is the static option list; dynamic domains are resolved by the report service.
	Domain []Option `json:"domain,omitempty"`

	// Properties lists property names for property_value fields.
	Properties []string `json:"properties,omitempty"`
}

// Condition is an advanced condition added by the user.
type Condition struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    any      `json:"value"`
}

// DateRange is the value of a daterange filter. Either bound may be empty.
type DateRange struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// PropertyValue is the value of a property_value filter.
type PropertyValue struct {
	Property string   `json:"property"`
	Values   []string `json:"values"`
}

// Row is a display row keyed by column key.
type Row = map[string]any

// PropertiesKey is the row key holding property_value data.
const PropertiesKey = "properties"
