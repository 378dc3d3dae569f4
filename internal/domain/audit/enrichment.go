package audit

import (
	"context"
	"encoding/json"
	"time"

	appctx "assetdesk/internal/core/context"
	"assetdesk/internal/core/id"
)

// Enrich fills the event's identity and user fields from context.
// Fields already set are kept.
func Enrich(ctx context.Context, e *Event, now time.Time) {
	if id.IsNil(e.ID) {
		e.ID = id.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now.UTC()
	}

	user := appctx.GetUser(ctx)
	if user == nil {
		return
	}
	if e.UserID == "" {
		e.UserID = user.UserID
	}
	if e.UserEmail == "" {
		e.UserEmail = user.Email
	}
}

// Snapshot encodes a filter payload for an event. Encoding failures yield nil;
// an event without filters is still worth recording.
func Snapshot(v any) json.RawMessage {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}
