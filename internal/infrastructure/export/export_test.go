package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"assetdesk/internal/domain/filter"
	"assetdesk/internal/domain/reports"
)

func sampleTable() *reports.Table {
	purchased := time.Date(2023, 4, 5, 0, 0, 0, 0, time.UTC)
	return &reports.Table{
		ReportID:    "asset-register",
		Title:       "Asset Register",
		GeneratedAt: time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC),
		Columns: []reports.Column{
			{Key: "asset_code", Label: "Code", Type: reports.ColumnText, Width: 1},
			{Key: "asset_name", Label: "Asset", Type: reports.ColumnText, Width: 2},
			{Key: "purchase_date", Label: "Purchased", Type: reports.ColumnDate},
			{Key: "purchase_cost", Label: "Cost", Type: reports.ColumnMoney},
			{Key: "under_warranty", Label: "Under warranty", Type: reports.ColumnBoolean},
			{Key: "tags", Label: "Tags", Type: reports.ColumnList},
		},
		Rows: []filter.Row{
			{"asset_code": "A-1", "asset_name": "Ultrasound, portable", "purchase_date": purchased,
				"purchase_cost": 1250.5, "under_warranty": true, "tags": []any{"icu", "mobile"}},
			{"asset_code": "A-2", "asset_name": "Café chiller", "purchase_date": nil,
				"purchase_cost": nil, "under_warranty": false, "tags": []any{}},
		},
		FilterSummary: []string{"Branch: North", "Status: Active"},
	}
}

func TestFormatCell(t *testing.T) {
	tests := []struct {
		name string
		typ  reports.ColumnType
		v    any
		want string
	}{
		{"money rounds to cents", reports.ColumnMoney, 10.0, "10.00"},
		{"money from string", reports.ColumnMoney, "99.999", "100.00"},
		{"number", reports.ColumnNumber, 12.5, "12.5"},
		{"date", reports.ColumnDate, time.Date(2024, 2, 3, 15, 4, 0, 0, time.UTC), "2024-02-03"},
		{"date from string", reports.ColumnDate, "2024-02-03T10:00:00Z", "2024-02-03"},
		{"boolean yes", reports.ColumnBoolean, true, "Yes"},
		{"boolean no", reports.ColumnBoolean, false, "No"},
		{"list", reports.ColumnList, []any{"a", "b"}, "a, b"},
		{"text", reports.ColumnText, "x", "x"},
		{"nil", reports.ColumnMoney, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCell(reports.Column{Type: tt.typ}, tt.v))
		})
	}
}

func TestCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSV{}.Write(&buf, sampleTable()))

	data := buf.Bytes()
	require.True(t, bytes.HasPrefix(data, utf8BOM))

	records, err := csv.NewReader(bytes.NewReader(data[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Code", "Asset", "Purchased", "Cost", "Under warranty", "Tags"}, records[0])
	assert.Equal(t, []string{"A-1", "Ultrasound, portable", "2023-04-05", "1250.50", "Yes", "icu, mobile"}, records[1])
	assert.Equal(t, []string{"A-2", "Café chiller", "", "", "No", ""}, records[2])
}

func TestSpreadsheetSafe(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"Laptop", "Laptop"},
		{"=HYPERLINK(\"http://x\")", "'=HYPERLINK(\"http://x\")"},
		{"+1+cmd", "'+1+cmd"},
		{"-2+3", "'-2+3"},
		{"@SUM(A1)", "'@SUM(A1)"},
		{"\tindent", "'\tindent"},
		{"-12.50", "-12.50"},
		{"+7", "+7"},
		{"a=b", "a=b"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SpreadsheetSafe(tt.in))
		})
	}
}

func TestCSV_EscapesFormulas(t *testing.T) {
	table := sampleTable()
	table.Rows = []filter.Row{{"asset_code": "=1+1", "asset_name": "@cmd", "purchase_cost": -40.0}}

	var buf bytes.Buffer
	require.NoError(t, CSV{}.Write(&buf, table))

	records, err := csv.NewReader(bytes.NewReader(buf.Bytes()[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "'=1+1", records[1][0])
	assert.Equal(t, "'@cmd", records[1][1])
	assert.Equal(t, "-40.00", records[1][3])
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON{}.Write(&buf, sampleTable()))

	var doc struct {
		Report      string           `json:"report"`
		GeneratedAt time.Time        `json:"generatedAt"`
		Filters     []string         `json:"filters"`
		Columns     []reports.Column `json:"columns"`
		Rows        []map[string]any `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "asset-register", doc.Report)
	assert.Len(t, doc.Columns, 6)
	assert.Len(t, doc.Rows, 2)
	assert.Equal(t, 1250.5, doc.Rows[0]["purchase_cost"])
	assert.Equal(t, []string{"Branch: North", "Status: Active"}, doc.Filters)

	buf.Reset()
	empty := sampleTable()
	empty.Rows, empty.FilterSummary = nil, nil
	require.NoError(t, JSON{}.Write(&buf, empty))
	assert.Contains(t, buf.String(), `"rows": []`)
	assert.Contains(t, buf.String(), `"filters": []`)
}

func TestXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, XLSX{}.Write(&buf, sampleTable()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	title, err := f.GetCellValue(sheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Asset Register", title)

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)

	headerIdx := -1
	for i, r := range rows {
		if len(r) > 0 && r[0] == "Code" {
			headerIdx = i
			break
		}
	}
	require.NotEqual(t, -1, headerIdx, "header row not found")
	assert.Equal(t, "A-1", rows[headerIdx+1][0])

	costCell, _ := excelize.CoordinatesToCellName(4, headerIdx+2)
	raw, err := f.GetCellValue(sheetName, costCell, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "1250.5", raw, "money is stored as a number")

	cellType, err := f.GetCellType(sheetName, costCell)
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, cellType)

	panes, err := f.GetPanes(sheetName)
	require.NoError(t, err)
	assert.True(t, panes.Freeze)
	assert.Equal(t, headerIdx+1, panes.YSplit)
}

func TestXLSX_EscapesFormulas(t *testing.T) {
	table := sampleTable()
	table.Rows = []filter.Row{{"asset_code": "=1+1", "asset_name": "+SUM(A1:A9)"}}

	var buf bytes.Buffer
	require.NoError(t, XLSX{}.Write(&buf, table))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	last := rows[len(rows)-1]
	assert.Equal(t, "'=1+1", last[0])
	assert.Equal(t, "'+SUM(A1:A9)", last[1])
}

func TestSheetWriter_KeepsFirstError(t *testing.T) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	// The default workbook has no report sheet, so every write fails.
	sw := &sheetWriter{f: f}
	sw.value("B2", "x")
	require.Error(t, sw.err)
	first := sw.err

	sw.text("C3", "y")
	sw.style("A1", "A1", 0)
	assert.Equal(t, first, sw.err)
	assert.Contains(t, sw.err.Error(), "B2")
}

func TestPDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PDF{}.Write(&buf, sampleTable()))
	assert.True(t, strings.HasPrefix(buf.String(), "%PDF-"))

	many := sampleTable()
	for i := 0; i < 200; i++ {
		many.Rows = append(many.Rows, many.Rows[0])
	}
	buf.Reset()
	require.NoError(t, PDF{}.Write(&buf, many))
	assert.Greater(t, bytes.Count(buf.Bytes(), []byte("/Type /Page\n")), 1, "long tables span pages")

	empty := sampleTable()
	empty.Rows = nil
	buf.Reset()
	assert.NoError(t, PDF{}.Write(&buf, empty))
}

func TestColumnWidths(t *testing.T) {
	w := columnWidths([]reports.Column{{Width: 1}, {Width: 3}, {}}, 100)
	assert.InDelta(t, 20.0, w[0], 1e-9)
	assert.InDelta(t, 60.0, w[1], 1e-9)
	assert.InDelta(t, 20.0, w[2], 1e-9)
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []reports.Format{reports.FormatCSV, reports.FormatPDF, reports.FormatXLSX, reports.FormatJSON}, r.Formats())

	e, ok := r.Get(reports.FormatXLSX)
	require.True(t, ok)
	assert.Equal(t, "xlsx", e.Extension())

	_, ok = r.Get("docx")
	assert.False(t, ok)
}
