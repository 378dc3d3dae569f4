package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"assetdesk/internal/domain/reports"
)

// utf8BOM makes spreadsheet applications detect UTF-8.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSV writes comma-separated values with a header row.
type CSV struct{}

func (CSV) Format() reports.Format { return reports.FormatCSV }
func (CSV) ContentType() string    { return "text/csv; charset=utf-8" }
func (CSV) Extension() string      { return "csv" }

func (CSV) Write(w io.Writer, t *reports.Table) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}

	cw := csv.NewWriter(w)
	header := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c.Label
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, c := range t.Columns {
			record[i] = SpreadsheetSafe(FormatCell(c, row[c.Key]))
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
