package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Row is a single labelled value within a summary section.
type Row struct {
	Label string
	Value string
}

// Section groups rows under a heading, e.g. one wizard step.
type Section struct {
	Title string
	Rows  []Row
}

// Summary defines the content of a review export.
type Summary struct {
	Title    string
	Sections []Section
}

// CSVExporter renders a Summary as section,field,value records.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the summary.
func (e *CSVExporter) Render(summary Summary) ([]byte, error) {
	if len(summary.Sections) == 0 {
		return nil, fmt.Errorf("csv requires at least one section")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write([]string{"section", "field", "value"}); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, section := range summary.Sections {
		for _, row := range section.Rows {
			if err := writer.Write([]string{section.Title, row.Label, row.Value}); err != nil {
				return nil, fmt.Errorf("write csv row: %w", err)
			}
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
