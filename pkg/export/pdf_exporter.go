package export

import (
	"bytes"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders a Dataset as a single-page-per-overflow PDF table.
type PDFExporter struct{}

const colWidth = 47.5

// Render draws a title, a header row, and one row per dataset entry.
func (PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, title, "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "B", 10)
	for _, h := range data.Headers {
		pdf.CellFormat(colWidth, 8, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, row := range data.Rows {
		for _, h := range data.Headers {
			pdf.CellFormat(colWidth, 8, row[h], "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
