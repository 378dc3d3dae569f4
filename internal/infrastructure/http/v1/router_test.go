package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetdesk/internal/core/apperror"
	"assetdesk/internal/core/id"
	"assetdesk/internal/domain/audit"
	"assetdesk/internal/domain/auth"
	"assetdesk/internal/domain/reports"
	"assetdesk/internal/domain/setup"
	"assetdesk/internal/domain/views"
	"assetdesk/internal/infrastructure/export"
	"assetdesk/internal/infrastructure/http/v1/handlers"
	"assetdesk/internal/infrastructure/metrics"
	"assetdesk/pkg/logger"
)

type stubSource struct{}

func (stubSource) Fetch(_ context.Context, source string, _ url.Values) ([]map[string]any, error) {
	if source != reports.SourceAssetRegister {
		return nil, nil
	}
	return []map[string]any{
		{"id": "a1", "asset_code": "AST-001", "name": "Dell Latitude", "branch": map[string]any{"id": "b1", "name": "Head Office"},
			"status": "Active", "purchase_date": "2023-01-15", "purchase_cost": 1250},
		{"id": "a2", "asset_code": "AST-002", "name": "HP LaserJet", "branch": map[string]any{"id": "b2", "name": "Warehouse"},
			"status": "In Repair", "purchase_date": "2021-05-10", "purchase_cost": 420.5},
	}, nil
}

func (stubSource) Lookup(_ context.Context, name string) ([]map[string]any, error) {
	return []map[string]any{{"id": "b1", "name": "Head Office"}}, nil
}

type memViews struct {
	mu    sync.Mutex
	items map[id.ID]views.View
}

func (m *memViews) Create(_ context.Context, v *views.View) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[v.ID] = *v
	return nil
}

func (m *memViews) Update(_ context.Context, v *views.View) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[v.ID] = *v
	return nil
}

func (m *memViews) Delete(_ context.Context, userID string, viewID id.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.items[viewID]; !ok || v.UserID != userID {
		return apperror.NewNotFound("view", viewID.String())
	}
	delete(m.items, viewID)
	return nil
}

func (m *memViews) GetByID(_ context.Context, userID string, viewID id.ID) (*views.View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.items[viewID]
	if !ok || v.UserID != userID {
		return nil, apperror.NewNotFound("view", viewID.String())
	}
	return &v, nil
}

func (m *memViews) List(_ context.Context, f views.ListFilter) ([]views.View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []views.View
	for _, v := range m.items {
		if v.UserID == f.UserID && (f.ReportID == "" || v.ReportID == f.ReportID) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *memViews) ExistsByName(_ context.Context, userID, reportID, name string, excludeID *id.ID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.items {
		if excludeID != nil && v.ID == *excludeID {
			continue
		}
		if v.UserID == userID && v.ReportID == reportID && strings.EqualFold(v.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memViews) ClearDefault(context.Context, string, string, id.ID) error { return nil }

type noTx struct{}

func (noTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memAudit struct {
	mu     sync.Mutex
	events []audit.Event
}

func (m *memAudit) Insert(_ context.Context, e audit.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

func (m *memAudit) List(_ context.Context, f audit.ListFilter) ([]audit.Event, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []audit.Event
	for i := len(m.events) - 1; i >= 0; i-- {
		if f.ReportID == "" || m.events[i].ReportID == f.ReportID {
			out = append(out, m.events[i])
		}
	}
	return out, len(out), nil
}

type stubBackend struct{}

func (stubBackend) SubmitSetup(context.Context, any) (map[string]any, error) {
	return map[string]any{"organization_id": "org-1"}, nil
}

type testServer struct {
	router  http.Handler
	jwt     *auth.JWTService
	metrics *metrics.Metrics
	audit   *memAudit
}

func newTestServer(t *testing.T, checks map[string]handlers.Pinger) *testServer {
	t.Helper()

	store := &memAudit{}
	recorder := audit.NewRecorder(store, logger.Nop())
	reportSvc := reports.NewService(reports.DefaultRegistry(), stubSource{}, export.DefaultRegistry(),
		reports.WithAudit(recorder))
	m := metrics.New()
	jwtSvc := auth.NewJWTService(auth.DefaultJWTConfig("test-secret"))

	router := NewRouter(RouterConfig{
		Logger:         logger.Nop(),
		JWTValidator:   jwtSvc,
		Metrics:        m,
		MetricsHandler: m.Handler(),
		Health:         handlers.HealthConfig{Version: "test", Checks: checks},
		Reports:        reportSvc,
		Views: views.NewService(views.ServiceConfig{
			Repo:      &memViews{items: make(map[id.ID]views.View)},
			TxManager: noTx{},
			Reports:   reportSvc,
			Audit:     recorder,
		}),
		Setup: setup.NewService(stubBackend{}, recorder),
		Audit: recorder,
	})

	return &testServer{router: router, jwt: jwtSvc, metrics: m, audit: store}
}

func (s *testServer) token(t *testing.T, userID string, perms ...string) string {
	t.Helper()
	token, _, err := s.jwt.GenerateAccessToken(auth.Claims{UserID: userID, Email: userID + "@example.com", Permissions: perms})
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestRouter_Health(t *testing.T) {
	srv := newTestServer(t, map[string]handlers.Pinger{
		"database": handlers.PingFunc(func(context.Context) error { return nil }),
		"backend":  handlers.PingFunc(func(context.Context) error { return errors.New("connection refused") }),
	})

	rec := srv.do(t, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = srv.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decode(t, rec)
	checks := body["checks"].(map[string]any)
	assert.Equal(t, "healthy", checks["database"])
	assert.Contains(t, checks["backend"], "connection refused")

	rec = srv.do(t, http.MethodGet, "/health/info", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "assetdesk", decode(t, rec)["app"])
}

func TestRouter_RequiresToken(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"not bearer", "Basic abc"},
		{"invalid", "Bearer nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/reports", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			srv.router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, apperror.CodeUnauthorized, decode(t, rec)["code"])
		})
	}
}

func TestRouter_Catalog(t *testing.T) {
	srv := newTestServer(t, nil)
	token := srv.token(t, "u1")

	rec := srv.do(t, http.MethodGet, "/api/v1/reports", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Len(t, body["reports"], 7)
	assert.ElementsMatch(t, []any{"csv", "pdf", "xlsx", "json"}, body["formats"])

	rec = srv.do(t, http.MethodGet, "/api/v1/reports/asset-register", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.Equal(t, "asset-register", body["id"])
	ops := body["operators"].(map[string]any)
	assert.Equal(t, []any{"contains", "starts with", "ends with", "=", "!="}, ops["text"])

	rec = srv.do(t, http.MethodGet, "/api/v1/reports/unknown", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/v1/reports/asset-register/domains", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	domains := decode(t, rec)["domains"].(map[string]any)
	assert.Contains(t, domains, "branch_id")
}

func TestRouter_PreviewAndExport(t *testing.T) {
	srv := newTestServer(t, nil)
	token := srv.token(t, "u1")

	rec := srv.do(t, http.MethodPost, "/api/v1/reports/asset-register/preview", token, map[string]any{
		"quick":    map[string]any{"status": []string{"Active"}},
		"pageSize": 10,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.EqualValues(t, 1, body["total"])

	rec = srv.do(t, http.MethodPost, "/api/v1/reports/asset-register/preview", token, map[string]any{
		"advanced": []map[string]any{{"field": "nope", "operator": "=", "value": "x"}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/v1/reports/asset-register/export?format=csv", token, map[string]any{})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment; filename=\"asset-register_")
	assert.Equal(t, "2", rec.Header().Get("X-Row-Count"))
	assert.Contains(t, rec.Body.String(), "AST-001")

	rec = srv.do(t, http.MethodPost, "/api/v1/reports/asset-register/export?format=docx", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperror.CodeUnsupportedFormat, decode(t, rec)["code"])

	rec = srv.do(t, http.MethodPost, "/api/v1/reports/asset-register/export", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	srv.audit.mu.Lock()
	assert.Len(t, srv.audit.events, 2, "one preview and one export recorded")
	srv.audit.mu.Unlock()
}

func TestRouter_AuditPermission(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.do(t, http.MethodGet, "/api/v1/reports/audit", srv.token(t, "u1"), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	srv.do(t, http.MethodPost, "/api/v1/reports/asset-register/preview", srv.token(t, "u1"), map[string]any{})

	rec = srv.do(t, http.MethodGet, "/api/v1/reports/audit?reportId=asset-register", srv.token(t, "u2", auth.PermissionAuditRead), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.EqualValues(t, 1, body["totalCount"])
	item := body["items"].([]any)[0].(map[string]any)
	assert.Equal(t, "u1", item["userId"])
	assert.Equal(t, "preview", item["action"])

	rec = srv.do(t, http.MethodGet, "/api/v1/reports/audit?from=yesterday", srv.token(t, "u2", auth.PermissionAuditRead), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_Views(t *testing.T) {
	srv := newTestServer(t, nil)
	alice := srv.token(t, "alice")
	bob := srv.token(t, "bob")

	create := map[string]any{
		"reportId": "asset-register",
		"name":     "Active laptops",
		"quick":    map[string]any{"status": []string{"Active"}},
		"columns":  []string{"asset_code", "asset_name"},
	}
	rec := srv.do(t, http.MethodPost, "/api/v1/views", alice, create)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	viewID := decode(t, rec)["id"].(string)

	rec = srv.do(t, http.MethodPost, "/api/v1/views", alice, create)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/v1/views/"+viewID, bob, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "views are private to their owner")

	rec = srv.do(t, http.MethodGet, "/api/v1/views?reportId=asset-register", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode(t, rec)["totalCount"])

	create["name"] = "Renamed"
	rec = srv.do(t, http.MethodPut, "/api/v1/views/"+viewID, alice, create)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Renamed", decode(t, rec)["name"])

	rec = srv.do(t, http.MethodGet, "/api/v1/views/not-a-uuid", alice, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodDelete, "/api/v1/views/"+viewID, alice, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = srv.do(t, http.MethodDelete, "/api/v1/views/"+viewID, alice, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_Setup(t *testing.T) {
	srv := newTestServer(t, nil)
	token := srv.token(t, "u1")

	rec := srv.do(t, http.MethodGet, "/api/v1/setup/steps", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["steps"], 6)

	rec = srv.do(t, http.MethodPost, "/api/v1/setup/steps/regional/validate", token, map[string]any{
		"regional": map[string]any{"currency": "EURO", "timezone": "UTC", "dateFormat": "2006-01-02"},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	details := decode(t, rec)["details"].(map[string]any)
	assert.Equal(t, "regional.currency", details["field"])

	rec = srv.do(t, http.MethodPost, "/api/v1/setup/steps/organization/validate", token, map[string]any{
		"organization": map[string]any{"name": "Acme"},
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/v1/setup/submit", token, map[string]any{})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_MetricsAndNotFound(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.do(t, http.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	srv.do(t, http.MethodGet, "/health/live", "", nil)

	rec = srv.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `assetdesk_http_requests_total{method="GET",route="/health/live",status="200"} 1`)
	assert.Contains(t, rec.Body.String(), `route="unmatched",status="404"`)
}
