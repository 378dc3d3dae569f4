// Package reports provides the report catalog and the preview/export pipeline.
package reports

import (
	"time"

	"assetdesk/internal/domain/filter"
)

// ColumnType drives sorting and cell formatting.
type ColumnType string

const (
	ColumnText    ColumnType = "text"
	ColumnNumber  ColumnType = "number"
	ColumnMoney   ColumnType = "money"
	ColumnDate    ColumnType = "date"
	ColumnBoolean ColumnType = "boolean"
	ColumnList    ColumnType = "list"
)

// Column is a display column of a report.
type Column struct {
	Key   string     `json:"key"`
	Label string     `json:"label"`
	Type  ColumnType `json:"type"`

	// Width is a relative weight used by fixed-layout exports.
	Width float64 `json:"width,omitempty"`
}

// ServerParam maps a quick filter to backend query parameters.
// For daterange filters Param receives the lower bound and ToParam the upper bound.
type ServerParam struct {
	Param   string `json:"param"`
	ToParam string `json:"toParam,omitempty"`
}

// DomainSpec says where a select/multiselect field gets its options.
// Without Lookup or Distinct the field's static domain is used.
type DomainSpec struct {
	// Lookup names a backend lookup endpoint (/api/lookups/<name>).
	Lookup string `json:"lookup,omitempty"`

	// ByName uses the lookup label as option value, for rows that carry names instead of ids.
	ByName bool `json:"byName,omitempty"`

	// Distinct collects the distinct values of the column from fetched rows.
	Distinct bool `json:"distinct,omitempty"`
}

// TransformFunc reshapes one backend record into a display row.
type TransformFunc func(rec map[string]any, now time.Time) filter.Row

// Definition is the static metadata of a report.
type Definition struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Category    string `json:"category"`
	Description string `json:"description"`

	// Source is the backend service the rows come from.
	Source string `json:"source"`

	Fields         []filter.Field         `json:"fields"`
	QuickFields    []string               `json:"quickFields"`
	Columns        []Column               `json:"columns"`
	DefaultColumns []string               `json:"defaultColumns"`
	ServerParams   map[string]ServerParam `json:"serverParams,omitempty"`
	Domains        map[string]DomainSpec  `json:"-"`

	// BranchKeys are the row keys holding branch ids. A branch-restricted
	// user sees a row only when one of them is an allowed branch.
	// Empty means "branch_id".
	BranchKeys []string `json:"-"`

	DefaultSort     string `json:"defaultSort,omitempty"`
	DefaultSortDesc bool   `json:"defaultSortDesc,omitempty"`

	Transform TransformFunc `json:"-"`
}

// branchKeys returns the row keys checked by branch restriction.
func (d Definition) branchKeys() []string {
	if len(d.BranchKeys) == 0 {
		return []string{"branch_id"}
	}
	return d.BranchKeys
}

// Column returns the column with key.
func (d Definition) Column(key string) (Column, bool) {
	for _, c := range d.Columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column{}, false
}

// Field returns the filter field with key.
func (d Definition) Field(key string) (filter.Field, bool) {
	for _, f := range d.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return filter.Field{}, false
}

// Summary is the catalog listing entry of a report.
type Summary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// Summary returns the catalog listing entry.
func (d Definition) Summary() Summary {
	return Summary{ID: d.ID, Title: d.Title, Category: d.Category, Description: d.Description}
}
