package reports

import (
	"fmt"
	"io"
	"time"

	"assetdesk/internal/domain/filter"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
)

// Table is the fully filtered, sorted and projected result handed to an exporter.
type Table struct {
	ReportID    string
	Title       string
	GeneratedAt time.Time
	Columns     []Column
	Rows        []filter.Row

	// FilterSummary lists the applied filters as "Label: value" lines.
	FilterSummary []string
}

// Exporter writes a table in one format.
type Exporter interface {
	Format() Format
	ContentType() string
	Extension() string
	Write(w io.Writer, t *Table) error
}

// Exporters resolves exporters by format.
type Exporters interface {
	Get(format Format) (Exporter, bool)
	Formats() []Format
}

// Filename builds the download name: <report-id>_<yyyymmdd-hhmmss>.<ext>.
func Filename(reportID string, at time.Time, ext string) string {
	return fmt.Sprintf("%s_%s.%s", reportID, at.Format("20060102-150405"), ext)
}
