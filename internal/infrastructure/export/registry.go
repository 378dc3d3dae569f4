package export

import (
	"assetdesk/internal/domain/reports"
)

// Compile-time check.
var _ reports.Exporters = (*Registry)(nil)

// Registry holds the available exporters in registration order.
type Registry struct {
	byFormat map[reports.Format]reports.Exporter
	order    []reports.Format
}

// NewRegistry creates a registry with the given exporters.
func NewRegistry(exporters ...reports.Exporter) *Registry {
	r := &Registry{byFormat: make(map[reports.Format]reports.Exporter)}
	for _, e := range exporters {
		r.Register(e)
	}
	return r
}

// DefaultRegistry registers CSV, PDF, XLSX and JSON.
func DefaultRegistry() *Registry {
	return NewRegistry(CSV{}, PDF{}, XLSX{}, JSON{})
}

// Register adds or replaces the exporter for its format.
func (r *Registry) Register(e reports.Exporter) {
	if _, ok := r.byFormat[e.Format()]; !ok {
		r.order = append(r.order, e.Format())
	}
	r.byFormat[e.Format()] = e
}

func (r *Registry) Get(format reports.Format) (reports.Exporter, bool) {
	e, ok := r.byFormat[format]
	return e, ok
}

func (r *Registry) Formats() []reports.Format {
	return append([]reports.Format(nil), r.order...)
}
