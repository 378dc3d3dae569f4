package export

import (
	"encoding/json"
	"io"
	"time"

	"assetdesk/internal/domain/filter"
	"assetdesk/internal/domain/reports"
)

// JSON writes the table as a single document with typed values.
type JSON struct{}

type jsonDocument struct {
	Report      string           `json:"report"`
	Title       string           `json:"title"`
	GeneratedAt time.Time        `json:"generatedAt"`
	Filters     []string         `json:"filters"`
	Columns     []reports.Column `json:"columns"`
	Rows        []filter.Row     `json:"rows"`
}

func (JSON) Format() reports.Format { return reports.FormatJSON }
func (JSON) ContentType() string    { return "application/json" }
func (JSON) Extension() string      { return "json" }

func (JSON) Write(w io.Writer, t *reports.Table) error {
	doc := jsonDocument{
		Report:      t.ReportID,
		Title:       t.Title,
		GeneratedAt: t.GeneratedAt.UTC(),
		Filters:     t.FilterSummary,
		Columns:     t.Columns,
		Rows:        t.Rows,
	}
	if doc.Filters == nil {
		doc.Filters = []string{}
	}
	if doc.Rows == nil {
		doc.Rows = []filter.Row{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
