package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const pdfPageWidth = 190.0

// PDFExporter renders a Dataset as a single-table PDF document.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render draws the dataset title, a shaded header row and one bordered row
// per record. The first column gets double width; report tables lead with a
// label column that needs the room.
func (e *PDFExporter) Render(data Dataset) ([]byte, error) {
	if err := data.validate(); err != nil {
		return nil, err
	}

	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetMargins(10, 15, 10)
	doc.AddPage()

	if data.Title != "" {
		doc.SetFont("Helvetica", "B", 14)
		doc.CellFormat(0, 10, data.Title, "", 1, "L", false, 0, "")
		doc.Ln(4)
	}

	widths := columnWidths(len(data.Headers))

	doc.SetFont("Helvetica", "B", 10)
	doc.SetFillColor(230, 230, 230)
	for i, header := range data.Headers {
		doc.CellFormat(widths[i], 8, header, "1", 0, "L", true, 0, "")
	}
	doc.Ln(-1)

	doc.SetFont("Helvetica", "", 9)
	for _, row := range data.Rows {
		for i, cell := range row {
			doc.CellFormat(widths[i], 7, cell, "1", 0, "L", false, 0, "")
		}
		doc.Ln(-1)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func columnWidths(count int) []float64 {
	widths := make([]float64, count)
	if count == 1 {
		widths[0] = pdfPageWidth
		return widths
	}
	first := pdfPageWidth * 2 / float64(count+1)
	rest := (pdfPageWidth - first) / float64(count-1)
	widths[0] = first
	for i := 1; i < count; i++ {
		widths[i] = rest
	}
	return widths
}
