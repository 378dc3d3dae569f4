package export

import (
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"assetdesk/internal/domain/reports"
)

const (
	sheetName     = "Report"
	maxColWidth   = 60.0
	minColWidth   = 8.0
	dateNumFormat = "yyyy-mm-dd"
)

// XLSX writes an Excel workbook with a frozen, filterable header row.
type XLSX struct{}

func (XLSX) Format() reports.Format { return reports.FormatXLSX }
func (XLSX) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}
func (XLSX) Extension() string { return "xlsx" }

func (XLSX) Write(w io.Writer, t *reports.Table) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	styles, err := newSheetStyles(f)
	if err != nil {
		return err
	}

	sw := &sheetWriter{f: f}

	// Title block, then one blank row before the header.
	row := 1
	sw.value("A1", t.Title)
	sw.style("A1", "A1", styles.title)
	for _, line := range headerLines(t) {
		row++
		sw.value(sw.cell(1, row), line)
	}
	headerRow := row + 2

	widths := make([]float64, len(t.Columns))
	for i, c := range t.Columns {
		sw.value(sw.cell(i+1, headerRow), c.Label)
		widths[i] = textWidth(c.Label)
	}
	if len(t.Columns) > 0 {
		sw.style(sw.cell(1, headerRow), sw.cell(len(t.Columns), headerRow), styles.header)
	}

	for r, data := range t.Rows {
		rowNum := headerRow + 1 + r
		for i, c := range t.Columns {
			cell := sw.cell(i+1, rowNum)
			v := data[c.Key]
			text := FormatCell(c, v)

			switch {
			case c.Type == reports.ColumnDate && isTime(v):
				sw.value(cell, v.(time.Time))
				sw.style(cell, cell, styles.date)
			case c.Type == reports.ColumnMoney || c.Type == reports.ColumnNumber:
				if n, ok := numericCell(c, v); ok {
					sw.value(cell, n)
					if c.Type == reports.ColumnMoney {
						sw.style(cell, cell, styles.money)
					}
				} else {
					sw.text(cell, SpreadsheetSafe(text))
				}
			default:
				sw.text(cell, SpreadsheetSafe(text))
			}

			if tw := textWidth(text); tw > widths[i] {
				widths[i] = tw
			}
		}
		if sw.err != nil {
			return sw.err
		}
	}

	for i, width := range widths {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("column name: %w", err)
		}
		if err := f.SetColWidth(sheetName, name, name, width); err != nil {
			return fmt.Errorf("column width %s: %w", name, err)
		}
	}

	if len(t.Columns) > 0 {
		topLeft := sw.cell(1, headerRow+1)
		first := sw.cell(1, headerRow)
		last := sw.cell(len(t.Columns), headerRow+len(t.Rows))
		if sw.err != nil {
			return sw.err
		}
		if err := f.SetPanes(sheetName, &excelize.Panes{
			Freeze:      true,
			YSplit:      headerRow,
			TopLeftCell: topLeft,
			ActivePane:  "bottomLeft",
		}); err != nil {
			return fmt.Errorf("freeze header: %w", err)
		}
		if err := f.AutoFilter(sheetName, first+":"+last, nil); err != nil {
			return fmt.Errorf("auto filter: %w", err)
		}
	}
	if sw.err != nil {
		return sw.err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// sheetWriter writes cells to the report sheet and keeps the first error.
// Later calls are no-ops once a write failed.
type sheetWriter struct {
	f   *excelize.File
	err error
}

func (s *sheetWriter) cell(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil && s.err == nil {
		s.err = fmt.Errorf("cell name: %w", err)
	}
	return name
}

func (s *sheetWriter) value(cell string, v any) {
	if s.err != nil {
		return
	}
	if err := s.f.SetCellValue(sheetName, cell, v); err != nil {
		s.err = fmt.Errorf("write cell %s: %w", cell, err)
	}
}

func (s *sheetWriter) text(cell, v string) {
	if s.err != nil {
		return
	}
	if err := s.f.SetCellStr(sheetName, cell, v); err != nil {
		s.err = fmt.Errorf("write cell %s: %w", cell, err)
	}
}

func (s *sheetWriter) style(first, last string, id int) {
	if s.err != nil {
		return
	}
	if err := s.f.SetCellStyle(sheetName, first, last, id); err != nil {
		s.err = fmt.Errorf("style %s:%s: %w", first, last, err)
	}
}

type sheetStyles struct {
	title, header, money, date int
}

func newSheetStyles(f *excelize.File) (sheetStyles, error) {
	var s sheetStyles
	var err error

	if s.title, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}}); err != nil {
		return s, fmt.Errorf("title style: %w", err)
	}
	s.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E5E7EB"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "#9CA3AF", Style: 1},
		},
	})
	if err != nil {
		return s, fmt.Errorf("header style: %w", err)
	}
	// Built-in format 4 is "#,##0.00".
	if s.money, err = f.NewStyle(&excelize.Style{NumFmt: 4}); err != nil {
		return s, fmt.Errorf("money style: %w", err)
	}
	dateFmt := dateNumFormat
	if s.date, err = f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt}); err != nil {
		return s, fmt.Errorf("date style: %w", err)
	}
	return s, nil
}

func isTime(v any) bool {
	t, ok := v.(time.Time)
	return ok && !t.IsZero()
}

func textWidth(s string) float64 {
	w := float64(utf8.RuneCountInString(s)) + 2
	if w < minColWidth {
		return minColWidth
	}
	if w > maxColWidth {
		return maxColWidth
	}
	return w
}
