package dto

import (
	"assetdesk/internal/domain/filter"
	"assetdesk/internal/domain/reports"
)

// --- Catalog ---

// ReportSummaryResponse is one entry of GET /reports.
type ReportSummaryResponse struct {
	reports.Summary
	DefinitionURL string `json:"definitionUrl"`
}

// CatalogResponse lists the reports and the export formats.
type CatalogResponse struct {
	Reports []ReportSummaryResponse `json:"reports"`
	Formats []reports.Format        `json:"formats"`
}

// FromCatalog builds the GET /reports body.
func FromCatalog(defs []reports.Definition, formats []reports.Format) CatalogResponse {
	items := make([]ReportSummaryResponse, 0, len(defs))
	for _, def := range defs {
		items = append(items, ReportSummaryResponse{
			Summary:       def.Summary(),
			DefinitionURL: "/api/v1/reports/" + def.ID,
		})
	}
	if formats == nil {
		formats = []reports.Format{}
	}
	return CatalogResponse{Reports: items, Formats: formats}
}

// DefinitionResponse describes one report: its filter fields, the operators
// valid for each field type used, and its columns.
type DefinitionResponse struct {
	reports.Definition
	Operators map[filter.FieldType][]filter.Operator `json:"operators"`
	Formats   []reports.Format                       `json:"formats"`
}

// FromDefinition builds the GET /reports/:id body.
func FromDefinition(def reports.Definition, formats []reports.Format) DefinitionResponse {
	ops := make(map[filter.FieldType][]filter.Operator)
	for _, f := range def.Fields {
		if _, ok := ops[f.Type]; !ok {
			ops[f.Type] = filter.OperatorsFor(f.Type)
		}
	}
	if formats == nil {
		formats = []reports.Format{}
	}
	return DefinitionResponse{Definition: def, Operators: ops, Formats: formats}
}

// DomainsResponse carries the option lists keyed by field.
type DomainsResponse struct {
	ReportID string                     `json:"reportId"`
	Domains  map[string][]filter.Option `json:"domains"`
}

// --- Preview / export ---

// ReportQueryRequest is the body of preview and export.
type ReportQueryRequest struct {
	Quick    map[string]any     `json:"quick"`
	Advanced []filter.Condition `json:"advanced"`
	Columns  []string           `json:"columns"`
	Page     int                `json:"page" binding:"omitempty,min=1"`
	PageSize int                `json:"pageSize" binding:"omitempty,min=1,max=1000"`
	SortBy   string             `json:"sortBy"`
	SortDesc bool               `json:"sortDesc"`
}

// ToQuery converts the request to a report query.
func (r ReportQueryRequest) ToQuery() reports.Query {
	return reports.Query{
		Quick:    r.Quick,
		Advanced: r.Advanced,
		Columns:  r.Columns,
		Page:     r.Page,
		PageSize: r.PageSize,
		SortBy:   r.SortBy,
		SortDesc: r.SortDesc,
	}
}

// ExportRequest holds the query string of an export.
type ExportRequest struct {
	Format string `form:"format" binding:"required"`
}
