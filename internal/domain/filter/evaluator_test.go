package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetdesk/internal/core/apperror"
)

func testFields() []Field {
	return []Field{
		{Key: "asset_name", Label: "Asset", Type: TypeText},
		{Key: "branch_id", Label: "Branch", Type: TypeSelect},
		{Key: "cost", Label: "Cost", Type: TypeNumber},
		{Key: "status", Label: "Status", Type: TypeMultiSelect},
		{Key: "purchase_date", Label: "Purchase date", Type: TypeDateRange},
		{Key: "is_active", Label: "Active", Type: TypeBoolean},
		{Key: "properties", Label: "Properties", Type: TypePropertyValue, Properties: []string{"Color"}},
	}
}

func testRows() []Row {
	return []Row{
		{"asset_name": "Laptop A", "branch_id": "b1", "cost": 1200.0, "status": "Active", "purchase_date": "2024-01-10", "is_active": true},
		{"asset_name": "Printer", "branch_id": "b2", "cost": 300.0, "status": "In Repair", "purchase_date": "2023-06-01", "is_active": true},
		{"asset_name": "Laptop B", "branch_id": "b1", "cost": 900.0, "status": "Retired", "purchase_date": "2021-11-20", "is_active": false},
		{"asset_name": "Server", "branch_id": "b3", "cost": 8000.0, "status": "Active", "purchase_date": "2022-02-14", "is_active": true,
			"properties": map[string]any{"Color": "Black"}},
	}
}

func names(rows []Row) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r["asset_name"].(string))
	}
	return out
}

func TestEvaluator_Rows(t *testing.T) {
	e := NewEvaluator(testFields())

	tests := []struct {
		name     string
		quick    map[string]any
		advanced []Condition
		want     []string
	}{
		{
			name: "no filters keeps order",
			want: []string{"Laptop A", "Printer", "Laptop B", "Server"},
		},
		{
			name:  "quick text uses contains",
			quick: map[string]any{"asset_name": "laptop"},
			want:  []string{"Laptop A", "Laptop B"},
		},
		{
			name:  "quick select uses equality",
			quick: map[string]any{"branch_id": "b1"},
			want:  []string{"Laptop A", "Laptop B"},
		},
		{
			name:  "empty quick values are skipped",
			quick: map[string]any{"asset_name": "", "status": []any{}, "purchase_date": DateRange{}, "cost": nil},
			want:  []string{"Laptop A", "Printer", "Laptop B", "Server"},
		},
		{
			name:  "quick multiselect and daterange are ANDed",
			quick: map[string]any{"status": []any{"active"}, "purchase_date": map[string]any{"from": "2023-01-01"}},
			want:  []string{"Laptop A"},
		},
		{
			name:     "advanced conditions",
			advanced: []Condition{{Field: "cost", Operator: OpGreaterEq, Value: "900"}},
			want:     []string{"Laptop A", "Laptop B", "Server"},
		},
		{
			name:  "quick and advanced",
			quick: map[string]any{"asset_name": "laptop"},
			advanced: []Condition{
				{Field: "is_active", Operator: OpIs, Value: true},
			},
			want: []string{"Laptop A"},
		},
		{
			name: "incomplete advanced conditions are skipped",
			advanced: []Condition{
				{Field: "", Operator: OpEqual, Value: "x"},
				{Field: "cost", Operator: "", Value: "x"},
				{Field: "cost", Operator: OpEqual, Value: ""},
			},
			want: []string{"Laptop A", "Printer", "Laptop B", "Server"},
		},
		{
			name:     "invalid operator for type matches nothing",
			advanced: []Condition{{Field: "cost", Operator: OpContains, Value: "1"}},
			want:     []string{},
		},
		{
			name:     "unknown advanced field matches nothing",
			advanced: []Condition{{Field: "serial", Operator: OpEqual, Value: "1"}},
			want:     []string{},
		},
		{
			name:  "unknown quick field matches nothing",
			quick: map[string]any{"serial": "1"},
			want:  []string{},
		},
		{
			name: "property value",
			advanced: []Condition{
				{Field: "properties", Operator: OpHasAny, Value: map[string]any{"property": "Color", "values": []any{"black"}}},
			},
			want: []string{"Server"},
		},
		{
			name: "expression",
			advanced: []Condition{
				{Operator: OpExpression, Value: `row.cost > 1000.0 && row.status == "Active"`},
			},
			want: []string{"Laptop A", "Server"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Rows(testRows(), tt.quick, tt.advanced)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestEvaluator_Field(t *testing.T) {
	e := NewEvaluator(testFields())

	f, ok := e.Field("cost")
	require.True(t, ok)
	assert.Equal(t, TypeNumber, f.Type)

	_, ok = e.Field("missing")
	assert.False(t, ok)
}

func TestEvaluator_Validate(t *testing.T) {
	e := NewEvaluator(testFields())

	tests := []struct {
		name      string
		quick     map[string]any
		advanced  []Condition
		wantField string
	}{
		{name: "valid", quick: map[string]any{"asset_name": "x"}, advanced: []Condition{{Field: "cost", Operator: OpLessEq, Value: 10}}},
		{name: "empty quick ignored", quick: map[string]any{"serial": ""}},
		{name: "incomplete advanced ignored", advanced: []Condition{{Field: "serial", Operator: OpEqual}}},
		{name: "unknown quick field", quick: map[string]any{"serial": "1"}, wantField: "serial"},
		{name: "unknown advanced field", advanced: []Condition{{Field: "serial", Operator: OpEqual, Value: "1"}}, wantField: "serial"},
		{name: "operator not valid for type", advanced: []Condition{{Field: "is_active", Operator: OpEqual, Value: true}}, wantField: "is_active"},
		{name: "not a number", advanced: []Condition{{Field: "cost", Operator: OpEqual, Value: "ten"}}, wantField: "cost"},
		{name: "not a boolean", advanced: []Condition{{Field: "is_active", Operator: OpIs, Value: "maybe"}}, wantField: "is_active"},
		{name: "bad date", quick: map[string]any{"purchase_date": DateRange{From: "yesterday"}}, wantField: "purchase_date"},
		{name: "bad before date", advanced: []Condition{{Field: "purchase_date", Operator: OpBefore, Value: "later"}}, wantField: "purchase_date"},
		{name: "unknown property", advanced: []Condition{{Field: "properties", Operator: OpHasAny, Value: PropertyValue{Property: "Size", Values: []string{"L"}}}}, wantField: "properties"},
		{name: "bad expression", advanced: []Condition{{Operator: OpExpression, Value: "row.cost >"}}, wantField: "advanced[0]"},
		{name: "non bool expression", advanced: []Condition{{Operator: OpExpression, Value: `"text"`}}, wantField: "advanced[0]"},
		{name: "expression over cost limit", advanced: []Condition{{Operator: OpExpression, Value: expensiveExpression}}, wantField: "advanced[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := e.Validate(tt.quick, tt.advanced)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeInvalidFilter, appErr.Code)
			assert.Equal(t, tt.wantField, appErr.Details["field"])
		})
	}
}
