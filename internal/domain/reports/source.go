package reports

import (
	"context"
	"net/url"

	"assetdesk/internal/domain/filter"
)

// Backend source names. Each maps to one endpoint of the asset backend.
const (
	SourceAssetRegister      = "asset-register"
	SourceAssetLifecycle     = "asset-lifecycle"
	SourceMaintenanceHistory = "maintenance-history"
	SourceBreakdownHistory   = "breakdown-history"
	SourceAssetValuation     = "asset-valuation"
	SourceSLA                = "sla"
	SourceWorkflowHistory    = "workflow-history"
)

// Lookup names served by /api/lookups/<name>.
const (
	LookupBranches    = "branches"
	LookupDepartments = "departments"
	LookupAssetTypes  = "asset-types"
	LookupCategories  = "categories"
	LookupVendors     = "vendors"
	LookupUsers       = "users"
)

// Source fetches raw records from the asset backend.
type Source interface {
	// Fetch returns the records of source filtered by params.
	Fetch(ctx context.Context, source string, params url.Values) ([]map[string]any, error)

	// Lookup returns the entries of a lookup list.
	Lookup(ctx context.Context, name string) ([]map[string]any, error)
}

// DomainCache caches resolved filter domains.
type DomainCache interface {
	GetOptions(ctx context.Context, key string) ([]filter.Option, bool)
	SetOptions(ctx context.Context, key string, opts []filter.Option)
}

// noCache is used when no DomainCache is configured.
type noCache struct{}

func (noCache) GetOptions(context.Context, string) ([]filter.Option, bool) { return nil, false }
func (noCache) SetOptions(context.Context, string, []filter.Option) {}
