package dto

import (
	"time"

	"assetdesk/internal/domain/filter"
	"assetdesk/internal/domain/views"
)

// ViewRequest is the body of POST /views and PUT /views/:id.
type ViewRequest struct {
	ReportID  string             `json:"reportId"`
	Name      string             `json:"name"`
	Quick     map[string]any     `json:"quick"`
	Advanced  []filter.Condition `json:"advanced"`
	Columns   []string           `json:"columns"`
	SortBy    string             `json:"sortBy"`
	SortDesc  bool               `json:"sortDesc"`
	IsDefault bool               `json:"isDefault"`
}

// ToInput converts the request to the service input.
func (r ViewRequest) ToInput() views.Input {
	return views.Input{
		ReportID:  r.ReportID,
		Name:      r.Name,
		Quick:     r.Quick,
		Advanced:  r.Advanced,
		Columns:   r.Columns,
		SortBy:    r.SortBy,
		SortDesc:  r.SortDesc,
		IsDefault: r.IsDefault,
	}
}

// ViewListRequest filters GET /views.
type ViewListRequest struct {
	ReportID string `form:"reportId"`
}

// ViewResponse is a saved view.
type ViewResponse struct {
	ID        string             `json:"id"`
	ReportID  string             `json:"reportId"`
	Name      string             `json:"name"`
	Quick     map[string]any     `json:"quick"`
	Advanced  []filter.Condition `json:"advanced"`
	Columns   []string           `json:"columns"`
	SortBy    string             `json:"sortBy,omitempty"`
	SortDesc  bool               `json:"sortDesc"`
	IsDefault bool               `json:"isDefault"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// FromView converts a view.
func FromView(v *views.View) ViewResponse {
	return ViewResponse{
		ID:        v.ID.String(),
		ReportID:  v.ReportID,
		Name:      v.Name,
		Quick:     v.Quick,
		Advanced:  v.Advanced,
		Columns:   v.Columns,
		SortBy:    v.SortBy,
		SortDesc:  v.SortDesc,
		IsDefault: v.IsDefault,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}

// FromViews converts a list of views.
func FromViews(items []views.View) []ViewResponse {
	out := make([]ViewResponse, 0, len(items))
	for i := range items {
		out = append(out, FromView(&items[i]))
	}
	return out
}
