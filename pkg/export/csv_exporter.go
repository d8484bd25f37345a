package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// CSVExporter renders Dataset records into CSV bytes. Summary fields are
// written as leading "label,value" lines followed by a blank line.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

func (e *CSVExporter) ContentType() string { return "text/csv" }
func (e *CSVExporter) Extension() string   { return "csv" }

// Render produces CSV encoded bytes for the dataset.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if err := data.validate("csv"); err != nil {
		return nil, err
	}
	buf := &bytes.Buffer{}
	// Excel needs the BOM to detect UTF-8 in accented Spanish labels.
	buf.WriteString("\uFEFF")
	writer := csv.NewWriter(buf)
	for _, field := range data.Summary {
		if err := writer.Write([]string{field.Label, field.Value}); err != nil {
			return nil, fmt.Errorf("write csv summary: %w", err)
		}
	}
	if len(data.Summary) > 0 {
		writer.Flush()
		buf.WriteString("\n")
	}
	if err := writer.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range data.Rows {
		if err := writer.Write(data.record(row)); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
