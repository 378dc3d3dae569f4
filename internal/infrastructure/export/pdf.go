package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"assetdesk/internal/domain/reports"
)

const (
	pdfMargin    = 10.0
	pdfRowHeight = 6.0
	pdfFontSize  = 8.0
)

// PDF writes a landscape A4 document with a repeated table header,
// zebra rows and page numbers.
type PDF struct{}

func (PDF) Format() reports.Format { return reports.FormatPDF }
func (PDF) ContentType() string    { return "application/pdf" }
func (PDF) Extension() string      { return "pdf" }

func (PDF) Write(w io.Writer, t *reports.Table) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.AliasNbPages("")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, pageH := pdf.GetPageSize()
	usable := pageW - 2*pdfMargin
	widths := columnWidths(t.Columns, usable)

	pdf.SetFooterFunc(func() {
		pdf.SetY(-pdfMargin)
		pdf.SetFont("Arial", "I", 7)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 5, tr(t.Title), "", 0, "L", false, 0, "")
		pdf.SetX(pdfMargin)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.SetTextColor(30, 41, 59)
	pdf.CellFormat(usable, 9, tr(t.Title), "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 8)
	pdf.SetTextColor(75, 85, 99)
	for _, line := range headerLines(t) {
		pdf.MultiCell(usable, 4.5, tr(line), "", "L", false)
	}
	pdf.Ln(3)

	drawHeader := func() {
		pdf.SetFont("Arial", "B", pdfFontSize)
		pdf.SetFillColor(226, 232, 240)
		pdf.SetTextColor(15, 23, 42)
		for i, c := range t.Columns {
			pdf.CellFormat(widths[i], pdfRowHeight+1, fit(pdf, tr(c.Label), widths[i]), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", pdfFontSize)
		pdf.SetTextColor(31, 41, 55)
	}

	drawHeader()
	bottom := pageH - pdfMargin - 6
	for r, row := range t.Rows {
		if pdf.GetY()+pdfRowHeight > bottom {
			pdf.AddPage()
			drawHeader()
		}
		if r%2 == 1 {
			pdf.SetFillColor(248, 250, 252)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		for i, c := range t.Columns {
			align := "L"
			if c.Type == reports.ColumnMoney || c.Type == reports.ColumnNumber {
				align = "R"
			}
			text := fit(pdf, tr(FormatCell(c, row[c.Key])), widths[i])
			pdf.CellFormat(widths[i], pdfRowHeight, text, "LR", 0, align, true, 0, "")
		}
		pdf.Ln(-1)
	}

	if len(t.Rows) == 0 {
		pdf.SetFont("Arial", "I", pdfFontSize)
		pdf.CellFormat(usable, pdfRowHeight, "No rows match the selected filters.", "1", 1, "C", false, 0, "")
	} else {
		pdf.CellFormat(usable, 0, "", "T", 1, "", false, 0, "")
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return pdf.Output(w)
}

// columnWidths splits the usable width by the columns' relative weights.
func columnWidths(cols []reports.Column, usable float64) []float64 {
	widths := make([]float64, len(cols))
	total := 0.0
	for _, c := range cols {
		total += weight(c)
	}
	for i, c := range cols {
		widths[i] = usable * weight(c) / total
	}
	return widths
}

func weight(c reports.Column) float64 {
	if c.Width > 0 {
		return c.Width
	}
	return 1
}

// fit shortens s with an ellipsis until it fits in width.
func fit(pdf *gofpdf.Fpdf, s string, width float64) string {
	limit := width - 2
	if pdf.GetStringWidth(s) <= limit {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...") > limit {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}
