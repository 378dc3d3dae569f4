// Package views stores named filter and column selections per user and report.
package views

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"assetdesk/internal/core/apperror"
	"assetdesk/internal/core/id"
	"assetdesk/internal/domain/filter"
	"assetdesk/internal/domain/reports"
)

// MaxNameLength is the longest accepted view name, in characters.
const MaxNameLength = 100

// View is a saved report selection.
type View struct {
	ID        id.ID              `json:"id" db:"id"`
	UserID    string             `json:"userId" db:"user_id"`
	ReportID  string             `json:"reportId" db:"report_id"`
	Name      string             `json:"name" db:"name"`
	Quick     map[string]any     `json:"quick" db:"quick"`
	Advanced  []filter.Condition `json:"advanced" db:"advanced"`
	Columns   []string           `json:"columns" db:"columns"`
	SortBy    string             `json:"sortBy,omitempty" db:"sort_by"`
	SortDesc  bool               `json:"sortDesc" db:"sort_desc"`
	IsDefault bool               `json:"isDefault" db:"is_default"`
	CreatedAt time.Time          `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time          `json:"updatedAt" db:"updated_at"`
}

// Query returns the view as a report query for its first page.
func (v *View) Query() reports.Query {
	return reports.Query{
		Quick:    v.Quick,
		Advanced: v.Advanced,
		Columns:  v.Columns,
		SortBy:   v.SortBy,
		SortDesc: v.SortDesc,
	}
}

// Input carries the user-editable fields of a view.
type Input struct {
	ReportID  string             `json:"reportId"`
	Name      string             `json:"name"`
	Quick     map[string]any     `json:"quick"`
	Advanced  []filter.Condition `json:"advanced"`
	Columns   []string           `json:"columns"`
	SortBy    string             `json:"sortBy"`
	SortDesc  bool               `json:"sortDesc"`
	IsDefault bool               `json:"isDefault"`
}

// normalize trims the name and replaces nil collections with empty ones.
func (in *Input) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.ReportID = strings.TrimSpace(in.ReportID)
	if in.Quick == nil {
		in.Quick = map[string]any{}
	}
	if in.Advanced == nil {
		in.Advanced = []filter.Condition{}
	}
	if in.Columns == nil {
		in.Columns = []string{}
	}
}

func (in *Input) validateName() error {
	if in.Name == "" {
		return apperror.NewValidation("view name is required").WithDetail("field", "name")
	}
	if utf8.RuneCountInString(in.Name) > MaxNameLength {
		return apperror.NewValidation("view name is too long").
			WithDetail("field", "name").
			WithDetail("max", MaxNameLength)
	}
	return nil
}

func (in *Input) apply(v *View) {
	v.ReportID = in.ReportID
	v.Name = in.Name
	v.Quick = in.Quick
	v.Advanced = in.Advanced
	v.Columns = in.Columns
	v.SortBy = in.SortBy
	v.SortDesc = in.SortDesc
	v.IsDefault = in.IsDefault
}

// ListFilter narrows a user's views. An empty ReportID lists all reports.
type ListFilter struct {
	UserID   string
	ReportID string
}

// Repository persists views. Every method is scoped to the owning user.
type Repository interface {
	Create(ctx context.Context, v *View) error
	Update(ctx context.Context, v *View) error
	Delete(ctx context.Context, userID string, viewID id.ID) error
	GetByID(ctx context.Context, userID string, viewID id.ID) (*View, error)
	List(ctx context.Context, f ListFilter) ([]View, error)

	// ExistsByName reports whether the user already has a view with this name
	// on the report, ignoring the view with excludeID.
	ExistsByName(ctx context.Context, userID, reportID, name string, excludeID *id.ID) (bool, error)

	// ClearDefault unsets the default flag on the user's views of the report,
	// except the view with keepID.
	ClearDefault(ctx context.Context, userID, reportID string, keepID id.ID) error
}
