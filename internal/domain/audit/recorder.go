package audit

import (
	"context"
	"fmt"
	"time"

	"assetdesk/internal/core/apperror"
	"assetdesk/pkg/logger"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// Recorder writes audit events and serves the audit log.
type Recorder struct {
	store Store
	log   *logger.Logger
	now   func() time.Time
}

// NewRecorder creates a recorder over store. A nil log uses the default logger.
func NewRecorder(store Store, log *logger.Logger) *Recorder {
	if log == nil {
		log = logger.Default()
	}
	return &Recorder{store: store, log: log.WithComponent("audit"), now: time.Now}
}

// Record stores an event. Failures are logged and swallowed so that auditing
// never breaks the audited operation.
func (r *Recorder) Record(ctx context.Context, e Event) {
	Enrich(ctx, &e, r.now())

	if err := r.store.Insert(ctx, e); err != nil {
		r.log.WithContext(ctx).Warnw("audit event not recorded",
			"action", e.Action,
			"report_id", e.ReportID,
			"error", err,
		)
	}
}

// List returns audit events, newest first.
func (r *Recorder) List(ctx context.Context, f ListFilter) (*ListResult, error) {
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return nil, apperror.NewValidation("from must be before to")
	}

	items, total, err := r.store.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	if items == nil {
		items = []Event{}
	}

	return &ListResult{Items: items, TotalCount: total, Limit: f.Limit, Offset: f.Offset}, nil
}
