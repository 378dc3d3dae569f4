package backend

import (
	"net/url"

	"assetdesk/internal/domain/reports"
)

// SetupPath receives the onboarding configuration.
const SetupPath = "/api/setup/configuration"

// HealthPath is probed by readiness checks.
const HealthPath = "/api/health"

var sourcePaths = map[string]string{
	reports.SourceAssetRegister:      "/api/assets/register",
	reports.SourceAssetLifecycle:     "/api/assets/lifecycle",
	reports.SourceMaintenanceHistory: "/api/maintenance/history",
	reports.SourceBreakdownHistory:   "/api/breakdowns/history",
	reports.SourceAssetValuation:     "/api/assets/valuation",
	reports.SourceSLA:                "/api/sla/tickets",
	reports.SourceWorkflowHistory:    "/api/workflows/history",
}

// SourcePath returns the endpoint serving a report source.
func SourcePath(source string) (string, bool) {
	p, ok := sourcePaths[source]
	return p, ok
}

// LookupPath returns the endpoint of a lookup list.
func LookupPath(name string) string {
	return "/api/lookups/" + url.PathEscape(name)
}
