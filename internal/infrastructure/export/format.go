// Package export renders report tables as CSV, JSON, Excel and PDF files.
package export

import (
	"strconv"
	"strings"
	"time"

	"assetdesk/internal/domain/filter"
	"assetdesk/internal/domain/reports"
)

// DateLayout is the date format of every export.
const DateLayout = "2006-01-02"

// FormatCell renders a value for display according to its column type.
func FormatCell(col reports.Column, v any) string {
	if v == nil {
		return ""
	}

	switch col.Type {
	case reports.ColumnMoney:
		if n, ok := filter.Number(v); ok {
			return strconv.FormatFloat(n, 'f', 2, 64)
		}
	case reports.ColumnNumber:
		if n, ok := filter.Number(v); ok {
			return strconv.FormatFloat(n, 'f', -1, 64)
		}
	case reports.ColumnDate:
		if t, ok := v.(time.Time); ok {
			return t.Format(DateLayout)
		}
		if t, ok := filter.ParseTime(v); ok {
			return t.Format(DateLayout)
		}
	case reports.ColumnBoolean:
		if b, ok := v.(bool); ok {
			if b {
				return "Yes"
			}
			return "No"
		}
	case reports.ColumnList:
		switch v.(type) {
		case []any, []string:
			return strings.Join(filter.Values(v), ", ")
		}
	}
	return filter.Text(v)
}

// formulaLeaders are the first characters that make a spreadsheet
// application read a cell as a formula.
const formulaLeaders = "=+-@\t\r"

// SpreadsheetSafe prefixes text that a spreadsheet would evaluate as a
// formula with an apostrophe. Plain numbers such as "-12.5" are kept.
func SpreadsheetSafe(s string) string {
	if s == "" || strings.IndexByte(formulaLeaders, s[0]) < 0 {
		return s
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return s
	}
	return "'" + s
}

// numericCell returns the number to store for money and number columns.
func numericCell(col reports.Column, v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	switch col.Type {
	case reports.ColumnMoney, reports.ColumnNumber:
		if _, isBool := v.(bool); isBool {
			return 0, false
		}
		return filter.Number(v)
	}
	return 0, false
}

// headerLines returns the title block shared by the document formats.
func headerLines(t *reports.Table) []string {
	lines := []string{"Generated: " + t.GeneratedAt.Format("2006-01-02 15:04:05 MST")}
	if len(t.FilterSummary) > 0 {
		lines = append(lines, "Filters: "+strings.Join(t.FilterSummary, "; "))
	}
	return lines
}
