// Package audit records who ran, exported or changed which report.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"assetdesk/internal/core/id"
)

// Action is the audited operation.
type Action string

const (
	ActionPreview     Action = "preview"
	ActionExport      Action = "export"
	ActionViewCreate  Action = "view_create"
	ActionViewUpdate  Action = "view_update"
	ActionViewDelete  Action = "view_delete"
	ActionSetupSubmit Action = "setup_submit"
)

// Event is a single audit log entry.
type Event struct {
	ID        id.ID           `json:"id" db:"id"`
	UserID    string          `json:"userId" db:"user_id"`
	UserEmail string          `json:"userEmail,omitempty" db:"user_email"`
	ReportID  string          `json:"reportId,omitempty" db:"report_id"`
	Action    Action          `json:"action" db:"action"`
	Format    string          `json:"format,omitempty" db:"format"`
	RowCount  int             `json:"rowCount" db:"row_count"`
	Filters   json.RawMessage `json:"filters,omitempty" db:"filters"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
}

// ListFilter selects audit events. Empty fields do not filter.
type ListFilter struct {
	ReportID string
	UserID   string
	Action   Action
	From     *time.Time
	To       *time.Time

	Limit  int
	Offset int
}

// ListResult is one page of audit events, newest first.
type ListResult struct {
	Items      []Event `json:"items"`
	TotalCount int     `json:"totalCount"`
	Limit      int     `json:"limit"`
	Offset     int     `json:"offset"`
}

// Store persists audit events.
type Store interface {
	Insert(ctx context.Context, e Event) error
	List(ctx context.Context, f ListFilter) ([]Event, int, error)
}
