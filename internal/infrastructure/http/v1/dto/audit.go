package dto

import (
	"time"

	"assetdesk/internal/core/apperror"
	"assetdesk/internal/domain/audit"
)

// AuditListRequest is the query string of GET /reports/audit.
type AuditListRequest struct {
	ReportID string `form:"reportId"`
	UserID   string `form:"userId"`
	Action   string `form:"action"`
	From     string `form:"from"`
	To       string `form:"to"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset   int    `form:"offset" binding:"omitempty,min=0"`
}

// ToFilter converts the request. from and to accept RFC3339 or a date;
// a date-only to covers the whole day.
func (r AuditListRequest) ToFilter() (audit.ListFilter, error) {
	f := audit.ListFilter{
		ReportID: r.ReportID,
		UserID:   r.UserID,
		Action:   audit.Action(r.Action),
		Limit:    r.Limit,
		Offset:   r.Offset,
	}

	if r.From != "" {
		t, _, err := parseAuditTime(r.From)
		if err != nil {
			return f, apperror.NewValidation("invalid from").WithDetail("field", "from")
		}
		f.From = &t
	}
	if r.To != "" {
		t, dateOnly, err := parseAuditTime(r.To)
		if err != nil {
			return f, apperror.NewValidation("invalid to").WithDetail("field", "to")
		}
		if dateOnly {
			t = t.AddDate(0, 0, 1)
		}
		f.To = &t
	}
	return f, nil
}

func parseAuditTime(s string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, false, nil
	}
	t, err := time.Parse("2006-01-02", s)
	return t, true, err
}
