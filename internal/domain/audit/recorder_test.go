package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"assetdesk/internal/core/apperror"
	appctx "assetdesk/internal/core/context"
	"assetdesk/internal/core/id"
	"assetdesk/pkg/logger"
)

type memStore struct {
	mu       sync.Mutex
	events   []Event
	err      error
	lastList ListFilter
}

func (m *memStore) Insert(_ context.Context, e Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, e)
	return nil
}

func (m *memStore) List(_ context.Context, f ListFilter) ([]Event, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastList = f
	if m.err != nil {
		return nil, 0, m.err
	}
	return nil, len(m.events), nil
}

func TestRecorder_RecordEnrichesFromContext(t *testing.T) {
	store := &memStore{}
	r := NewRecorder(store, logger.Nop())
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))
	r.now = func() time.Time { return fixed }

	ctx := appctx.WithUser(context.Background(), &appctx.UserContext{UserID: "u-1", Email: "ops@example.com"})
	r.Record(ctx, Event{ReportID: "asset-register", Action: ActionExport, Format: "csv", RowCount: 12})

	require.Len(t, store.events, 1)
	e := store.events[0]
	assert.False(t, id.IsNil(e.ID))
	assert.Equal(t, "u-1", e.UserID)
	assert.Equal(t, "ops@example.com", e.UserEmail)
	assert.Equal(t, fixed.UTC(), e.CreatedAt)
	assert.Equal(t, 12, e.RowCount)
}

func TestRecorder_RecordKeepsExplicitUser(t *testing.T) {
	store := &memStore{}
	r := NewRecorder(store, logger.Nop())

	ctx := appctx.WithUser(context.Background(), &appctx.UserContext{UserID: "u-1"})
	r.Record(ctx, Event{UserID: "system", Action: ActionSetupSubmit})

	require.Len(t, store.events, 1)
	assert.Equal(t, "system", store.events[0].UserID)
}

func TestRecorder_RecordSwallowsStoreErrors(t *testing.T) {
	store := &memStore{err: errors.New("connection refused")}
	r := NewRecorder(store, logger.Nop())

	assert.NotPanics(t, func() {
		r.Record(context.Background(), Event{Action: ActionPreview})
	})
}

func TestRecorder_LogsFailuresAsAuditComponent(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	store := &memStore{err: errors.New("connection refused")}
	r := NewRecorder(store, &logger.Logger{SugaredLogger: zap.New(core).Sugar()})

	r.Record(context.Background(), Event{Action: ActionExport, ReportID: "asset-register"})

	entries := logs.FilterMessage("audit event not recorded").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "audit", fields["component"])
	assert.Equal(t, "asset-register", fields["report_id"])
}

func TestRecorder_ListClampsPagination(t *testing.T) {
	tests := []struct {
		name       string
		in         ListFilter
		wantLimit  int
		wantOffset int
	}{
		{"defaults", ListFilter{}, defaultListLimit, 0},
		{"max", ListFilter{Limit: 10000, Offset: 20}, maxListLimit, 20},
		{"negative offset", ListFilter{Limit: 5, Offset: -1}, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memStore{}
			res, err := NewRecorder(store, logger.Nop()).List(context.Background(), tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLimit, store.lastList.Limit)
			assert.Equal(t, tt.wantOffset, store.lastList.Offset)
			assert.NotNil(t, res.Items)
		})
	}
}

func TestRecorder_ListRejectsInvertedRange(t *testing.T) {
	from := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, -1)

	_, err := NewRecorder(&memStore{}, logger.Nop()).List(context.Background(), ListFilter{From: &from, To: &to})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestSnapshot(t *testing.T) {
	assert.Nil(t, Snapshot(nil))
	assert.JSONEq(t, `{"quick":{"branch_id":"b1"}}`, string(Snapshot(map[string]any{"quick": map[string]any{"branch_id": "b1"}})))
	assert.Nil(t, Snapshot(map[string]any{"bad": make(chan int)}))
}
