package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageWidth    = 277.0 // A4 landscape minus margins
	headerHeight = 8.0
	rowHeight    = 7.0
)

// PDFExporter renders datasets as a landscape table, repeating the header row on each page.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render lays out the dataset. Text is transcoded to cp1252 so accented names survive.
func (e *PDFExporter) Render(data Dataset) ([]byte, error) {
	if err := data.validate("pdf"); err != nil {
		return nil, err
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(false, 12)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	widths := columnWidths(data)
	_, pageHeight := pdf.GetPageSize()

	header := func() {
		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(230, 230, 230)
		for i, h := range data.Headers {
			pdf.CellFormat(widths[i], headerHeight, tr(h), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
	}

	pdf.AddPage()
	if data.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(data.Title), "", 1, "L", false, 0, "")
		pdf.Ln(2)
	}
	header()
	for _, row := range data.Rows {
		if pdf.GetY()+rowHeight > pageHeight-12 {
			pdf.AddPage()
			header()
		}
		for i, cell := range row {
			pdf.CellFormat(widths[i], rowHeight, tr(cell), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}
	if data.Footer != "" {
		pdf.Ln(3)
		pdf.SetFont("Arial", "I", 9)
		pdf.CellFormat(0, rowHeight, tr(data.Footer), "", 1, "L", false, 0, "")
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func columnWidths(data Dataset) []float64 {
	widths := make([]float64, len(data.Headers))
	if len(data.Widths) != len(data.Headers) {
		for i := range widths {
			widths[i] = pageWidth / float64(len(widths))
		}
		return widths
	}
	total := 0.0
	for _, w := range data.Widths {
		total += w
	}
	for i, w := range data.Widths {
		widths[i] = pageWidth * w / total
	}
	return widths
}
