package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders a Summary into a sectioned two-column PDF.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with the summary title and one table per section.
func (e *PDFExporter) Render(summary Summary) ([]byte, error) {
	if len(summary.Sections) == 0 {
		return nil, fmt.Errorf("pdf requires at least one section")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()
	// core fonts are cp1252; the translator keeps non-ASCII names legible
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if summary.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(strings.ToUpper(summary.Title)), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	const labelWidth, valueWidth = 60.0, 130.0
	for _, section := range summary.Sections {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 8, tr(section.Title), "", 1, "", false, 0, "")

		pdf.SetFont("Arial", "", 9)
		for _, row := range section.Rows {
			value := row.Value
			if value == "" {
				value = "-"
			}
			pdf.CellFormat(labelWidth, 7, tr(row.Label), "1", 0, "", false, 0, "")
			pdf.CellFormat(valueWidth, 7, tr(value), "1", 0, "", false, 0, "")
			pdf.Ln(-1)
		}
		pdf.Ln(4)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
