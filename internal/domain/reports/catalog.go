package reports

import (
	"time"

	"assetdesk/internal/core/types"
	"assetdesk/internal/domain/filter"
)

// Registry stores report definitions in registration order.
type Registry struct {
	defs  map[string]Definition
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]Definition)}
}

// Register adds or replaces a definition.
func (r *Registry) Register(def Definition) {
	if _, exists := r.defs[def.ID]; !exists {
		r.order = append(r.order, def.ID)
	}
	r.defs[def.ID] = def
}

// Get returns the definition with id.
func (r *Registry) Get(id string) (Definition, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// List returns all definitions in registration order.
func (r *Registry) List() []Definition {
	list := make([]Definition, 0, len(r.order))
	for _, id := range r.order {
		list = append(list, r.defs[id])
	}
	return list
}

// DefaultRegistry returns the built-in report catalog.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(assetRegisterReport())
	r.Register(assetLifecycleReport())
	r.Register(maintenanceHistoryReport())
	r.Register(breakdownHistoryReport())
	r.Register(assetValuationReport())
	r.Register(slaComplianceReport())
	r.Register(workflowHistoryReport())
	return r
}

const (
	categoryAssets      = "Assets"
	categoryMaintenance = "Maintenance"
	categoryFinance     = "Finance"
	categoryService     = "Service"
)

func dateRangeParams(from, to string) ServerParam {
	return ServerParam{Param: from, ToParam: to}
}

func options(values ...string) []filter.Option {
	out := make([]filter.Option, 0, len(values))
	for _, v := range values {
		out = append(out, filter.Option{Value: v, Label: v})
	}
	return out
}

func assetRegisterReport() Definition {
	return Definition{
		ID:          "asset-register",
		Title:       "Asset Register",
		Category:    categoryAssets,
		Description: "All assets with location, assignment, purchase and warranty details.",
		Source:      SourceAssetRegister,
		Fields: []filter.Field{
			{Key: "asset_name", Label: "Asset name", Type: filter.TypeText},
			{Key: "asset_code", Label: "Asset code", Type: filter.TypeText},
			{Key: "branch_id", Label: "Branch", Type: filter.TypeSelect},
			{Key: "department_id", Label: "Department", Type: filter.TypeSelect},
			{Key: "asset_type", Label: "Asset type", Type: filter.TypeMultiSelect},
			{Key: "category", Label: "Category", Type: filter.TypeMultiSelect},
			{Key: "status", Label: "Status", Type: filter.TypeMultiSelect},
			{Key: "vendor", Label: "Vendor", Type: filter.TypeSelect},
			{Key: "assigned_to", Label: "Assigned to", Type: filter.TypeText},
			{Key: "purchase_date", Label: "Purchase date", Type: filter.TypeDateRange},
			{Key: "purchase_cost", Label: "Purchase cost", Type: filter.TypeNumber},
			{Key: "under_warranty", Label: "Under warranty", Type: filter.TypeBoolean},
			{Key: "tags", Label: "Tags", Type: filter.TypeMultiSelect},
			{Key: "properties", Label: "Properties", Type: filter.TypePropertyValue,
				Properties: []string{"Make", "Model", "Serial number", "Color", "Capacity"}},
		},
		QuickFields: []string{"asset_name", "branch_id", "department_id", "category", "status", "purchase_date"},
		Columns: []Column{
			{Key: "asset_code", Label: "Code", Type: ColumnText, Width: 1},
			{Key: "asset_name", Label: "Asset", Type: ColumnText, Width: 2},
			{Key: "asset_type", Label: "Type", Type: ColumnText, Width: 1.2},
			{Key: "category", Label: "Category", Type: ColumnText, Width: 1.2},
			{Key: "branch", Label: "Branch", Type: ColumnText, Width: 1.2},
			{Key: "department", Label: "Department", Type: ColumnText, Width: 1.2},
			{Key: "assigned_to", Label: "Assigned to", Type: ColumnText, Width: 1.4},
			{Key: "status", Label: "Status", Type: ColumnText, Width: 1},
			{Key: "vendor", Label: "Vendor", Type: ColumnText, Width: 1.2},
			{Key: "purchase_date", Label: "Purchased", Type: ColumnDate, Width: 1},
			{Key: "purchase_cost", Label: "Cost", Type: ColumnMoney, Width: 1},
			{Key: "warranty_end", Label: "Warranty end", Type: ColumnDate, Width: 1},
			{Key: "under_warranty", Label: "Under warranty", Type: ColumnBoolean, Width: 0.8},
			{Key: "tags", Label: "Tags", Type: ColumnList, Width: 1.4},
		},
		DefaultColumns: []string{"asset_code", "asset_name", "category", "branch", "department", "assigned_to", "status", "purchase_date", "purchase_cost"},
		ServerParams: map[string]ServerParam{
			"branch_id":     {Param: "branch_id"},
			"department_id": {Param: "department_id"},
			"purchase_date": dateRangeParams("from_date", "to_date"),
		},
		Domains: map[string]DomainSpec{
			"branch_id":     {Lookup: LookupBranches},
			"department_id": {Lookup: LookupDepartments},
			"asset_type":    {Lookup: LookupAssetTypes, ByName: true},
			"category":      {Lookup: LookupCategories, ByName: true},
			"vendor":        {Lookup: LookupVendors, ByName: true},
			"status":        {Distinct: true},
			"tags":          {Distinct: true},
		},
		DefaultSort: "asset_code",
		Transform:   transformAssetRegister,
	}
}

func transformAssetRegister(rec map[string]any, now time.Time) filter.Row {
	warrantyEnd := date(rec, "warranty_end_date", "warranty.end_date", "warranty_expiry")
	underWarranty := false
	if t, ok := warrantyEnd.(time.Time); ok {
		underWarranty = !t.Before(now)
	}

	return filter.Row{
		"id":             ident(rec, "id"),
		"asset_code":     text(rec, "asset_code", "code", "tag_number"),
		"asset_name":     text(rec, "asset_name", "name"),
		"asset_type":     text(rec, "asset_type", "type"),
		"category":       text(rec, "category"),
		"branch_id":      ident(rec, "branch", "branch_id"),
		"branch":         text(rec, "branch", "branch_name"),
		"department_id":  ident(rec, "department", "department_id"),
		"department":     text(rec, "department", "department_name"),
		"assigned_to":    text(rec, "assigned_to", "custodian"),
		"status":         text(rec, "status"),
		"vendor":         text(rec, "vendor", "supplier"),
		"purchase_date":  date(rec, "purchase_date", "acquisition.date"),
		"purchase_cost":  money(rec, "purchase_cost", "acquisition.cost", "cost"),
		"warranty_end":   warrantyEnd,
		"under_warranty": underWarranty,
		"tags":           list(rec, "tags"),
		"properties":     properties(rec, "properties", "attributes"),
	}
}

var lifecycleStages = []string{"Requested", "Acquired", "In Service", "Under Maintenance", "Idle", "Retired", "Disposed"}

func assetLifecycleReport() Definition {
	return Definition{
		ID:          "asset-lifecycle",
		Title:       "Asset Lifecycle",
		Category:    categoryAssets,
		Description: "Lifecycle stage, key milestones and age of every asset.",
		Source:      SourceAssetLifecycle,
		Fields: []filter.Field{
			{Key: "asset_name", Label: "Asset name", Type: filter.TypeText},
			{Key: "branch_id", Label: "Branch", Type: filter.TypeSelect},
			{Key: "category", Label: "Category", Type: filter.TypeMultiSelect},
			{Key: "stage", Label: "Stage", Type: filter.TypeMultiSelect, Domain: options(lifecycleStages...)},
			{Key: "acquired_on", Label: "Acquired on", Type: filter.TypeDateRange},
			{Key: "retired_on", Label: "Retired on", Type: filter.TypeDateRange},
			{Key: "age_years", Label: "Age (years)", Type: filter.TypeNumber},
		},
		QuickFields: []string{"asset_name", "branch_id", "stage", "acquired_on"},
		Columns: []Column{
			{Key: "asset_code", Label: "Code", Type: ColumnText, Width: 1},
			{Key: "asset_name", Label: "Asset", Type: ColumnText, Width: 2},
			{Key: "category", Label: "Category", Type: ColumnText, Width: 1.2},
			{Key: "branch", Label: "Branch", Type: ColumnText, Width: 1.2},
			{Key: "stage", Label: "Stage", Type: ColumnText, Width: 1.2},
			{Key: "stage_since", Label: "Stage since", Type: ColumnDate, Width: 1},
			{Key: "acquired_on", Label: "Acquired", Type: ColumnDate, Width: 1},
			{Key: "in_service_on", Label: "In service", Type: ColumnDate, Width: 1},
			{Key: "retired_on", Label: "Retired", Type: ColumnDate, Width: 1},
			{Key: "disposed_on", Label: "Disposed", Type: ColumnDate, Width: 1},
			{Key: "age_years", Label: "Age (years)", Type: ColumnNumber, Width: 0.8},
		},
		DefaultColumns: []string{"asset_code", "asset_name", "branch", "stage", "stage_since", "acquired_on", "age_years"},
		ServerParams: map[string]ServerParam{
			"branch_id":   {Param: "branch_id"},
			"acquired_on": dateRangeParams("from_date", "to_date"),
		},
		Domains: map[string]DomainSpec{
			"branch_id": {Lookup: LookupBranches},
			"category":  {Lookup: LookupCategories, ByName: true},
		},
		DefaultSort: "asset_code",
		Transform:   transformAssetLifecycle,
	}
}

func transformAssetLifecycle(rec map[string]any, now time.Time) filter.Row {
	acquired := date(rec, "acquired_on", "acquisition_date", "milestones.acquired")
	disposed := date(rec, "disposed_on", "disposal_date", "milestones.disposed")

	var age any
	if a, ok := acquired.(time.Time); ok {
		end := now
		if d, ok := disposed.(time.Time); ok {
			end = d
		}
		age = yearsBetween(a, end)
	}

	return filter.Row{
		"id":            ident(rec, "id", "asset.id"),
		"asset_code":    text(rec, "asset_code", "asset.code"),
		"asset_name":    text(rec, "asset_name", "asset.name"),
		"category":      text(rec, "category", "asset.category"),
		"branch_id":     ident(rec, "branch", "asset.branch"),
		"branch":        text(rec, "branch", "asset.branch"),
		"stage":         text(rec, "stage", "current_stage", "status"),
		"stage_since":   date(rec, "stage_since", "stage_changed_at"),
		"acquired_on":   acquired,
		"in_service_on": date(rec, "in_service_on", "commissioned_on", "milestones.in_service"),
		"retired_on":    date(rec, "retired_on", "milestones.retired"),
		"disposed_on":   disposed,
		"age_years":     age,
	}
}

func maintenanceHistoryReport() Definition {
	return Definition{
		ID:          "maintenance-history",
		Title:       "Maintenance History",
		Category:    categoryMaintenance,
		Description: "Preventive and corrective work orders with cost and downtime.",
		Source:      SourceMaintenanceHistory,
		Fields: []filter.Field{
			{Key: "asset_name", Label: "Asset name", Type: filter.TypeText},
			{Key: "work_order", Label: "Work order", Type: filter.TypeText},
			{Key: "branch_id", Label: "Branch", Type: filter.TypeSelect},
			{Key: "maintenance_type", Label: "Maintenance type", Type: filter.TypeMultiSelect,
				Domain: options("Preventive", "Corrective", "Predictive", "Inspection", "Calibration")},
			{Key: "technician", Label: "Technician", Type: filter.TypeSelect},
			{Key: "vendor", Label: "Vendor", Type: filter.TypeSelect},
			{Key: "status", Label: "Status", Type: filter.TypeMultiSelect},
			{Key: "scheduled_date", Label: "Scheduled date", Type: filter.TypeDateRange},
			{Key: "completed_at", Label: "Completed", Type: filter.TypeDateRange},
			{Key: "cost", Label: "Cost", Type: filter.TypeNumber},
			{Key: "downtime_hours", Label: "Downtime (h)", Type: filter.TypeNumber},
		},
		QuickFields: []string{"asset_name", "branch_id", "maintenance_type", "status", "scheduled_date"},
		Columns: []Column{
			{Key: "work_order", Label: "Work order", Type: ColumnText, Width: 1},
			{Key: "asset_code", Label: "Code", Type: ColumnText, Width: 1},
			{Key: "asset_name", Label: "Asset", Type: ColumnText, Width: 1.8},
			{Key: "branch", Label: "Branch", Type: ColumnText, Width: 1.2},
			{Key: "maintenance_type", Label: "Type", Type: ColumnText, Width: 1},
			{Key: "technician", Label: "Technician", Type: ColumnText, Width: 1.2},
			{Key: "vendor", Label: "Vendor", Type: ColumnText, Width: 1.2},
			{Key: "scheduled_date", Label: "Scheduled", Type: ColumnDate, Width: 1},
			{Key: "started_at", Label: "Started", Type: ColumnDate, Width: 1},
			{Key: "completed_at", Label: "Completed", Type: ColumnDate, Width: 1},
			{Key: "downtime_hours", Label: "Downtime (h)", Type: ColumnNumber, Width: 0.8},
			{Key: "cost", Label: "Cost", Type: ColumnMoney, Width: 1},
			{Key: "status", Label: "Status", Type: ColumnText, Width: 1},
		},
		DefaultColumns: []string{"work_order", "asset_name", "branch", "maintenance_type", "scheduled_date", "completed_at", "downtime_hours", "cost", "status"},
		ServerParams: map[string]ServerParam{
			"branch_id":      {Param: "branch_id"},
			"scheduled_date": dateRangeParams("from_date", "to_date"),
		},
		Domains: map[string]DomainSpec{
			"branch_id":  {Lookup: LookupBranches},
			"technician": {Lookup: LookupUsers, ByName: true},
			"vendor":     {Lookup: LookupVendors, ByName: true},
			"status":     {Distinct: true},
		},
		DefaultSort:     "scheduled_date",
		DefaultSortDesc: true,
		Transform:       transformMaintenance,
	}
}

func transformMaintenance(rec map[string]any, now time.Time) filter.Row {
	started := date(rec, "started_at", "start_time")
	completed := date(rec, "completed_at", "end_time")

	return filter.Row{
		"id":               ident(rec, "id"),
		"work_order":       text(rec, "work_order", "work_order_no", "reference"),
		"asset_code":       text(rec, "asset.code", "asset_code"),
		"asset_name":       text(rec, "asset.name", "asset_name", "asset"),
		"branch_id":        ident(rec, "branch", "asset.branch"),
		"branch":           text(rec, "branch", "asset.branch"),
		"maintenance_type": text(rec, "maintenance_type", "type"),
		"technician":       text(rec, "technician", "assigned_to"),
		"vendor":           text(rec, "vendor", "service_provider"),
		"scheduled_date":   date(rec, "scheduled_date", "due_date"),
		"started_at":       started,
		"completed_at":     completed,
		"downtime_hours":   hoursBetween(started, completed, now),
		"cost":             money(rec, "cost", "total_cost"),
		"status":           text(rec, "status"),
	}
}

func breakdownHistoryReport() Definition {
	return Definition{
		ID:          "breakdown-history",
		Title:       "Breakdown History",
		Category:    categoryMaintenance,
		Description: "Reported breakdowns with cause, resolution and downtime.",
		Source:      SourceBreakdownHistory,
		Fields: []filter.Field{
			{Key: "asset_name", Label: "Asset name", Type: filter.TypeText},
			{Key: "ticket_no", Label: "Ticket", Type: filter.TypeText},
			{Key: "branch_id", Label: "Branch", Type: filter.TypeSelect},
			{Key: "severity", Label: "Severity", Type: filter.TypeMultiSelect, Domain: options("Critical", "High", "Medium", "Low")},
			{Key: "cause", Label: "Cause", Type: filter.TypeMultiSelect},
			{Key: "reported_by", Label: "Reported by", Type: filter.TypeSelect},
			{Key: "reported_at", Label: "Reported", Type: filter.TypeDateRange},
			{Key: "is_resolved", Label: "Resolved", Type: filter.TypeBoolean},
			{Key: "downtime_hours", Label: "Downtime (h)", Type: filter.TypeNumber},
			{Key: "repair_cost", Label: "Repair cost", Type: filter.TypeNumber},
		},
		QuickFields: []string{"asset_name", "branch_id", "severity", "reported_at", "is_resolved"},
		Columns: []Column{
			{Key: "ticket_no", Label: "Ticket", Type: ColumnText, Width: 1},
			{Key: "asset_code", Label: "Code", Type: ColumnText, Width: 1},
			{Key: "asset_name", Label: "Asset", Type: ColumnText, Width: 1.8},
			{Key: "branch", Label: "Branch", Type: ColumnText, Width: 1.2},
			{Key: "severity", Label: "Severity", Type: ColumnText, Width: 0.8},
			{Key: "cause", Label: "Cause", Type: ColumnText, Width: 1.4},
			{Key: "reported_by", Label: "Reported by", Type: ColumnText, Width: 1.2},
			{Key: "reported_at", Label: "Reported", Type: ColumnDate, Width: 1},
			{Key: "resolved_at", Label: "Resolved", Type: ColumnDate, Width: 1},
			{Key: "is_resolved", Label: "Closed", Type: ColumnBoolean, Width: 0.7},
			{Key: "downtime_hours", Label: "Downtime (h)", Type: ColumnNumber, Width: 0.8},
			{Key: "repair_cost", Label: "Repair cost", Type: ColumnMoney, Width: 1},
		},
		DefaultColumns: []string{"ticket_no", "asset_name", "branch", "severity", "cause", "reported_at", "resolved_at", "downtime_hours", "repair_cost"},
		ServerParams: map[string]ServerParam{
			"branch_id":   {Param: "branch_id"},
			"reported_at": dateRangeParams("from_date", "to_date"),
		},
		Domains: map[string]DomainSpec{
			"branch_id":   {Lookup: LookupBranches},
			"reported_by": {Lookup: LookupUsers, ByName: true},
			"cause":       {Distinct: true},
		},
		DefaultSort:     "reported_at",
		DefaultSortDesc: true,
		Transform:       transformBreakdown,
	}
}

func transformBreakdown(rec map[string]any, now time.Time) filter.Row {
	reported := date(rec, "reported_at", "created_at")
	resolved := date(rec, "resolved_at", "closed_at")
	_, isResolved := resolved.(time.Time)

	return filter.Row{
		"id":             ident(rec, "id"),
		"ticket_no":      text(rec, "ticket_no", "ticket_number", "reference"),
		"asset_code":     text(rec, "asset.code", "asset_code"),
		"asset_name":     text(rec, "asset.name", "asset_name", "asset"),
		"branch_id":      ident(rec, "branch", "asset.branch"),
		"branch":         text(rec, "branch", "asset.branch"),
		"severity":       text(rec, "severity", "priority"),
		"cause":          text(rec, "cause", "root_cause", "failure_type"),
		"reported_by":    text(rec, "reported_by", "created_by"),
		"reported_at":    reported,
		"resolved_at":    resolved,
		"is_resolved":    isResolved,
		"downtime_hours": hoursBetween(reported, resolved, now),
		"repair_cost":    money(rec, "repair_cost", "cost"),
	}
}

func assetValuationReport() Definition {
	return Definition{
		ID:          "asset-valuation",
		Title:       "Asset Valuation",
		Category:    categoryFinance,
		Description: "Accumulated depreciation and current book value per asset.",
		Source:      SourceAssetValuation,
		Fields: []filter.Field{
			{Key: "asset_name", Label: "Asset name", Type: filter.TypeText},
			{Key: "branch_id", Label: "Branch", Type: filter.TypeSelect},
			{Key: "category", Label: "Category", Type: filter.TypeMultiSelect},
			{Key: "depreciation_method", Label: "Method", Type: filter.TypeSelect,
				Domain: []filter.Option{
					{Value: string(StraightLine), Label: "Straight line"},
					{Value: string(WrittenDownValue), Label: "Written down value"},
				}},
			{Key: "purchase_date", Label: "Purchase date", Type: filter.TypeDateRange},
			{Key: "purchase_cost", Label: "Purchase cost", Type: filter.TypeNumber},
			{Key: "book_value", Label: "Book value", Type: filter.TypeNumber},
			{Key: "depreciation_pct", Label: "Depreciated (%)", Type: filter.TypeNumber},
			{Key: "fully_depreciated", Label: "Fully depreciated", Type: filter.TypeBoolean},
		},
		QuickFields: []string{"asset_name", "branch_id", "category", "depreciation_method", "purchase_date"},
		Columns: []Column{
			{Key: "asset_code", Label: "Code", Type: ColumnText, Width: 1},
			{Key: "asset_name", Label: "Asset", Type: ColumnText, Width: 1.8},
			{Key: "category", Label: "Category", Type: ColumnText, Width: 1.2},
			{Key: "branch", Label: "Branch", Type: ColumnText, Width: 1.2},
			{Key: "purchase_date", Label: "Purchased", Type: ColumnDate, Width: 1},
			{Key: "purchase_cost", Label: "Cost", Type: ColumnMoney, Width: 1},
			{Key: "salvage_value", Label: "Salvage", Type: ColumnMoney, Width: 1},
			{Key: "useful_life_years", Label: "Life (years)", Type: ColumnNumber, Width: 0.7},
			{Key: "depreciation_method", Label: "Method", Type: ColumnText, Width: 1.2},
			{Key: "elapsed_years", Label: "Elapsed (years)", Type: ColumnNumber, Width: 0.8},
			{Key: "accumulated_depreciation", Label: "Accumulated", Type: ColumnMoney, Width: 1},
			{Key: "book_value", Label: "Book value", Type: ColumnMoney, Width: 1},
			{Key: "depreciation_pct", Label: "Depreciated (%)", Type: ColumnNumber, Width: 0.8},
			{Key: "fully_depreciated", Label: "Fully depreciated", Type: ColumnBoolean, Width: 0.8},
		},
		DefaultColumns: []string{"asset_code", "asset_name", "category", "purchase_date", "purchase_cost", "depreciation_method", "accumulated_depreciation", "book_value", "depreciation_pct"},
		ServerParams: map[string]ServerParam{
			"branch_id":     {Param: "branch_id"},
			"purchase_date": dateRangeParams("from_date", "to_date"),
		},
		Domains: map[string]DomainSpec{
			"branch_id": {Lookup: LookupBranches},
			"category":  {Lookup: LookupCategories, ByName: true},
		},
		DefaultSort: "asset_code",
		Transform:   transformValuation,
	}
}

func transformValuation(rec map[string]any, now time.Time) filter.Row {
	cost, _ := moneyValue(rec, "purchase_cost", "cost")
	salvage, _ := moneyValue(rec, "salvage_value", "residual_value")
	life, _ := moneyValue(rec, "useful_life_years", "useful_life")
	purchased, _ := dateValue(rec, "purchase_date", "in_service_date")
	method := ParseDepreciationMethod(text(rec, "depreciation_method", "method"))

	a := Asset{Cost: cost, Salvage: salvage, LifeYears: life, Method: method, PurchaseDate: purchased}
	if rate, ok := moneyValue(rec, "depreciation_rate"); ok {
		a.Rate = &rate
	}
	v := Depreciate(a, now)

	var purchaseDate any
	if !purchased.IsZero() {
		purchaseDate = purchased
	}

	return filter.Row{
		"id":                       ident(rec, "id", "asset.id"),
		"asset_code":               text(rec, "asset_code", "asset.code"),
		"asset_name":               text(rec, "asset_name", "asset.name"),
		"category":                 text(rec, "category", "asset.category"),
		"branch_id":                ident(rec, "branch", "asset.branch"),
		"branch":                   text(rec, "branch", "asset.branch"),
		"purchase_date":            purchaseDate,
		"purchase_cost":            money(rec, "purchase_cost", "cost"),
		"salvage_value":            money(rec, "salvage_value", "residual_value"),
		"useful_life_years":        number(rec, "useful_life_years", "useful_life"),
		"depreciation_method":      string(method),
		"elapsed_years":            v.ElapsedYears.InexactFloat64(),
		"accumulated_depreciation": v.Accumulated.InexactFloat64(),
		"book_value":               v.BookValue.InexactFloat64(),
		"depreciation_pct":         v.Percent.InexactFloat64(),
		"fully_depreciated":        cost.IsPositive() && v.BookValue.LessThanOrEqual(types.RoundMoney(salvage)),
	}
}

func slaComplianceReport() Definition {
	return Definition{
		ID:          "sla-compliance",
		Title:       "SLA Compliance",
		Category:    categoryService,
		Description: "Response and resolution times of service tickets against priority targets.",
		Source:      SourceSLA,
		Fields: []filter.Field{
			{Key: "ticket_no", Label: "Ticket", Type: filter.TypeText},
			{Key: "asset_name", Label: "Asset name", Type: filter.TypeText},
			{Key: "branch_id", Label: "Branch", Type: filter.TypeSelect},
			{Key: "priority", Label: "Priority", Type: filter.TypeMultiSelect, Domain: options("Critical", "High", "Medium", "Low")},
			{Key: "assigned_to", Label: "Assigned to", Type: filter.TypeSelect},
			{Key: "status", Label: "Status", Type: filter.TypeMultiSelect},
			{Key: "reported_at", Label: "Reported", Type: filter.TypeDateRange},
			{Key: "response_hours", Label: "Response (h)", Type: filter.TypeNumber},
			{Key: "resolution_hours", Label: "Resolution (h)", Type: filter.TypeNumber},
			{Key: "response_met", Label: "Response met", Type: filter.TypeBoolean},
			{Key: "breached", Label: "Breached", Type: filter.TypeBoolean},
		},
		QuickFields: []string{"ticket_no", "branch_id", "priority", "reported_at", "breached"},
		Columns: []Column{
			{Key: "ticket_no", Label: "Ticket", Type: ColumnText, Width: 1},
			{Key: "asset_name", Label: "Asset", Type: ColumnText, Width: 1.6},
			{Key: "branch", Label: "Branch", Type: ColumnText, Width: 1.2},
			{Key: "priority", Label: "Priority", Type: ColumnText, Width: 0.8},
			{Key: "assigned_to", Label: "Assigned to", Type: ColumnText, Width: 1.2},
			{Key: "reported_at", Label: "Reported", Type: ColumnDate, Width: 1},
			{Key: "responded_at", Label: "Responded", Type: ColumnDate, Width: 1},
			{Key: "resolved_at", Label: "Resolved", Type: ColumnDate, Width: 1},
			{Key: "response_hours", Label: "Response (h)", Type: ColumnNumber, Width: 0.8},
			{Key: "resolution_hours", Label: "Resolution (h)", Type: ColumnNumber, Width: 0.8},
			{Key: "target_hours", Label: "Target (h)", Type: ColumnNumber, Width: 0.7},
			{Key: "response_met", Label: "Response met", Type: ColumnBoolean, Width: 0.7},
			{Key: "breached", Label: "Breached", Type: ColumnBoolean, Width: 0.7},
			{Key: "status", Label: "Status", Type: ColumnText, Width: 0.8},
		},
		DefaultColumns: []string{"ticket_no", "asset_name", "priority", "reported_at", "resolved_at", "resolution_hours", "target_hours", "breached", "status"},
		ServerParams: map[string]ServerParam{
			"branch_id":   {Param: "branch_id"},
			"reported_at": dateRangeParams("from_date", "to_date"),
		},
		Domains: map[string]DomainSpec{
			"branch_id":   {Lookup: LookupBranches},
			"assigned_to": {Lookup: LookupUsers, ByName: true},
			"status":      {Distinct: true},
		},
		DefaultSort:     "reported_at",
		DefaultSortDesc: true,
		Transform:       transformSLA,
	}
}

func transformSLA(rec map[string]any, now time.Time) filter.Row {
	priority := text(rec, "priority", "severity")
	reported := date(rec, "reported_at", "created_at")
	responded := date(rec, "responded_at", "first_response_at")
	resolved := date(rec, "resolved_at", "closed_at")
	sla := EvaluateSLA(priority, reported, responded, resolved, now)

	return filter.Row{
		"id":               ident(rec, "id"),
		"ticket_no":        text(rec, "ticket_no", "ticket_number", "reference"),
		"asset_name":       text(rec, "asset.name", "asset_name", "asset"),
		"branch_id":        ident(rec, "branch", "asset.branch"),
		"branch":           text(rec, "branch", "asset.branch"),
		"priority":         priority,
		"assigned_to":      text(rec, "assigned_to", "technician"),
		"status":           text(rec, "status"),
		"reported_at":      reported,
		"responded_at":     responded,
		"resolved_at":      resolved,
		"response_hours":   sla.ResponseHours,
		"resolution_hours": sla.ResolutionHours,
		"target_hours":     sla.Target.ResolutionHours,
		"response_met":     sla.ResponseMet,
		"breached":         sla.Breached,
	}
}

func workflowHistoryReport() Definition {
	return Definition{
		ID:          "asset-workflow-history",
		Title:       "Asset Workflow History",
		Category:    categoryAssets,
		Description: "Transfers, assignments and disposals with their approval trail.",
		Source:      SourceWorkflowHistory,
		Fields: []filter.Field{
			{Key: "asset_name", Label: "Asset name", Type: filter.TypeText},
			{Key: "workflow_type", Label: "Workflow", Type: filter.TypeMultiSelect,
				Domain: options("Transfer", "Assignment", "Return", "Disposal", "Maintenance Request", "Acquisition")},
			{Key: "status", Label: "Status", Type: filter.TypeMultiSelect},
			{Key: "from_branch_id", Label: "From branch", Type: filter.TypeSelect},
			{Key: "to_branch_id", Label: "To branch", Type: filter.TypeSelect},
			{Key: "requested_by", Label: "Requested by", Type: filter.TypeSelect},
			{Key: "requested_at", Label: "Requested", Type: filter.TypeDateRange},
			{Key: "completed_at", Label: "Completed", Type: filter.TypeDateRange},
			{Key: "turnaround_hours", Label: "Turnaround (h)", Type: filter.TypeNumber},
		},
		QuickFields: []string{"asset_name", "workflow_type", "status", "requested_at"},
		Columns: []Column{
			{Key: "workflow_id", Label: "Workflow", Type: ColumnText, Width: 1},
			{Key: "workflow_type", Label: "Type", Type: ColumnText, Width: 1.1},
			{Key: "asset_code", Label: "Code", Type: ColumnText, Width: 1},
			{Key: "asset_name", Label: "Asset", Type: ColumnText, Width: 1.6},
			{Key: "from_branch", Label: "From", Type: ColumnText, Width: 1.1},
			{Key: "to_branch", Label: "To", Type: ColumnText, Width: 1.1},
			{Key: "requested_by", Label: "Requested by", Type: ColumnText, Width: 1.2},
			{Key: "approved_by", Label: "Approved by", Type: ColumnText, Width: 1.2},
			{Key: "current_step", Label: "Step", Type: ColumnText, Width: 1},
			{Key: "status", Label: "Status", Type: ColumnText, Width: 0.9},
			{Key: "requested_at", Label: "Requested", Type: ColumnDate, Width: 1},
			{Key: "completed_at", Label: "Completed", Type: ColumnDate, Width: 1},
			{Key: "turnaround_hours", Label: "Turnaround (h)", Type: ColumnNumber, Width: 0.8},
		},
		DefaultColumns: []string{"workflow_id", "workflow_type", "asset_name", "from_branch", "to_branch", "requested_by", "status", "requested_at", "completed_at"},
		ServerParams: map[string]ServerParam{
			"requested_at": dateRangeParams("from_date", "to_date"),
		},
		Domains: map[string]DomainSpec{
			"from_branch_id": {Lookup: LookupBranches},
			"to_branch_id":   {Lookup: LookupBranches},
			"requested_by":   {Lookup: LookupUsers, ByName: true},
			"status":         {Distinct: true},
		},
		BranchKeys:      []string{"from_branch_id", "to_branch_id"},
		DefaultSort:     "requested_at",
		DefaultSortDesc: true,
		Transform:       transformWorkflow,
	}
}

func transformWorkflow(rec map[string]any, now time.Time) filter.Row {
	requested := date(rec, "requested_at", "created_at")
	completed := date(rec, "completed_at", "closed_at")

	var turnaround any
	if _, done := completed.(time.Time); done {
		turnaround = hoursBetween(requested, completed, now)
	}

	return filter.Row{
		"id":               ident(rec, "id"),
		"workflow_id":      text(rec, "workflow_id", "reference", "id"),
		"workflow_type":    text(rec, "workflow_type", "type"),
		"asset_code":       text(rec, "asset.code", "asset_code"),
		"asset_name":       text(rec, "asset.name", "asset_name", "asset"),
		"from_branch_id":   ident(rec, "from_branch", "source_branch"),
		"from_branch":      text(rec, "from_branch", "source_branch"),
		"to_branch_id":     ident(rec, "to_branch", "target_branch"),
		"to_branch":        text(rec, "to_branch", "target_branch"),
		"requested_by":     text(rec, "requested_by", "initiator"),
		"approved_by":      text(rec, "approved_by", "approver"),
		"current_step":     text(rec, "current_step", "step"),
		"status":           text(rec, "status"),
		"requested_at":     requested,
		"completed_at":     completed,
		"turnaround_hours": turnaround,
	}
}
