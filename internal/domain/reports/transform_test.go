package reports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetdesk/internal/domain/filter"
)

func TestPickAndReferences(t *testing.T) {
	rec := map[string]any{
		"asset": map[string]any{
			"code":   "AST-9",
			"branch": map[string]any{"id": 7.0, "name": "North"},
		},
		"assigned_to": map[string]any{"id": "u1", "full_name": "Dana Smith"},
		"vendor":      map[string]any{"value": "v9", "label": "Acme"},
	}

	assert.Equal(t, "AST-9", pick(rec, "asset.code"))
	assert.Nil(t, pick(rec, "asset.code.value"))
	assert.Nil(t, pick(rec, "missing.path"))

	assert.Equal(t, "North", text(rec, "branch", "asset.branch"))
	assert.Equal(t, "7", ident(rec, "asset.branch"))
	assert.Equal(t, "Dana Smith", text(rec, "assigned_to"))
	assert.Equal(t, "v9", ident(rec, "vendor"))
	assert.Equal(t, "Acme", text(rec, "vendor"))
	assert.Equal(t, "", text(rec, "nothing"))
}

func TestProperties(t *testing.T) {
	fromList := properties(map[string]any{"attributes": []any{
		map[string]any{"name": "Color", "value": "Red"},
		map[string]any{"property": "RAM", "values": []any{"16 GB"}},
		map[string]any{"value": "orphan"},
		"junk",
	}}, "properties", "attributes")
	assert.Equal(t, map[string]any{"Color": "Red", "RAM": []any{"16 GB"}}, fromList)

	fromMap := properties(map[string]any{"properties": map[string]any{"Color": "Blue"}}, "properties")
	assert.Equal(t, map[string]any{"Color": "Blue"}, fromMap)

	assert.Empty(t, properties(map[string]any{}, "properties"))
}

func TestHoursBetween(t *testing.T) {
	start := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	now := start.Add(10 * time.Hour)

	assert.Equal(t, 2.5, hoursBetween(start, start.Add(150*time.Minute), now))
	assert.Equal(t, 10.0, hoursBetween(start, nil, now))
	assert.Equal(t, 0.0, hoursBetween(start, start.Add(-time.Hour), now))
	assert.Nil(t, hoursBetween(nil, start, now))
}

func TestDistinctValues(t *testing.T) {
	rows := []filter.Row{
		{"status": "active"},
		{"status": "Retired"},
		{"status": "Active"},
		{"status": ""},
		{"status": nil},
		{"status": []any{"Idle", "active"}},
		{"status": "Retired"},
	}

	got := distinctValues(rows, "status")
	values := make([]string, 0, len(got))
	for _, o := range got {
		values = append(values, o.Value)
	}
	assert.Equal(t, []string{"Active", "active", "Idle", "Retired"}, values)
}

func TestTransformSLA(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	row := transformSLA(map[string]any{
		"ticket_no":    "T-1",
		"priority":     "High",
		"asset":        map[string]any{"name": "Chiller", "branch": map[string]any{"id": "b1", "name": "Plant"}},
		"reported_at":  "2024-06-08T08:00:00Z",
		"responded_at": "2024-06-08T14:00:00Z",
		"resolved_at":  nil,
	}, now)

	assert.Equal(t, "Chiller", row["asset_name"])
	assert.Equal(t, "b1", row["branch_id"])
	assert.Equal(t, 6.0, row["response_hours"])
	assert.Equal(t, 52.0, row["resolution_hours"])
	assert.Equal(t, 48.0, row["target_hours"])
	assert.Equal(t, true, row["response_met"])
	assert.Equal(t, true, row["breached"])
}

func TestTransformMaintenanceDowntime(t *testing.T) {
	row := transformMaintenance(map[string]any{
		"work_order":   "WO-12",
		"asset":        map[string]any{"code": "AST-1", "name": "Generator"},
		"started_at":   "2024-03-01 08:00:00",
		"completed_at": "2024-03-01 20:30:00",
		"cost":         "350.456",
	}, time.Now())

	assert.Equal(t, 12.5, row["downtime_hours"])
	assert.Equal(t, 350.46, row["cost"])
	assert.Equal(t, "Generator", row["asset_name"])
}

func TestTransformLifecycleAge(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	active := transformAssetLifecycle(map[string]any{"acquired_on": "2019-01-01"}, now)
	assert.Equal(t, 5.0, active["age_years"])

	disposed := transformAssetLifecycle(map[string]any{"acquired_on": "2019-01-01", "disposed_on": "2021-01-01"}, now)
	assert.Equal(t, 2.0, disposed["age_years"])

	unknown := transformAssetLifecycle(map[string]any{}, now)
	assert.Nil(t, unknown["age_years"])
}

func TestTransformValuation(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	row := transformValuation(map[string]any{
		"asset_code":          "AST-7",
		"purchase_cost":       "12000",
		"salvage_value":       2000,
		"useful_life_years":   5,
		"depreciation_method": "straight line",
		"purchase_date":       "2014-01-01",
	}, now)

	assert.Equal(t, "straight_line", row["depreciation_method"])
	assert.Equal(t, 10000.0, row["accumulated_depreciation"])
	assert.Equal(t, 2000.0, row["book_value"])
	assert.Equal(t, true, row["fully_depreciated"])
}

func TestCatalog(t *testing.T) {
	r := DefaultRegistry()
	ids := make([]string, 0)
	for _, d := range r.List() {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{
		"asset-register", "asset-lifecycle", "maintenance-history", "breakdown-history",
		"asset-valuation", "sla-compliance", "asset-workflow-history",
	}, ids)

	for _, d := range r.List() {
		t.Run(d.ID, func(t *testing.T) {
			require.NotNil(t, d.Transform)
			for _, k := range d.DefaultColumns {
				_, ok := d.Column(k)
				assert.True(t, ok, "default column %s", k)
			}
			for _, k := range d.QuickFields {
				_, ok := d.Field(k)
				assert.True(t, ok, "quick field %s", k)
			}
			for k := range d.ServerParams {
				_, ok := d.Field(k)
				assert.True(t, ok, "server param %s", k)
			}
			if d.DefaultSort != "" {
				_, ok := d.Column(d.DefaultSort)
				assert.True(t, ok, "default sort %s", d.DefaultSort)
			}
			for k := range d.Domains {
				f, ok := d.Field(k)
				require.True(t, ok, "domain field %s", k)
				assert.Contains(t, []filter.FieldType{filter.TypeSelect, filter.TypeMultiSelect}, f.Type)
			}
			for _, f := range d.Fields {
				_, ok := filter.DefaultOperator(f.Type)
				assert.True(t, ok, "field %s has type %s", f.Key, f.Type)
			}

			row := d.Transform(map[string]any{}, time.Now())
			for _, c := range d.Columns {
				assert.Contains(t, row, c.Key)
			}
		})
	}
}
