package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	dataSheet    = "Historial"
	summarySheet = "Resumen"
)

// XLSXExporter renders datasets into a workbook with a data sheet and, when
// summary fields are present, a summary sheet.
type XLSXExporter struct{}

// NewXLSXExporter constructs an XLSX exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

func (e *XLSXExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}
func (e *XLSXExporter) Extension() string { return "xlsx" }

// Render writes the dataset into an in-memory workbook.
func (e *XLSXExporter) Render(data Dataset) ([]byte, error) {
	if err := data.validate("xlsx"); err != nil {
		return nil, err
	}
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	if err := f.SetSheetName(f.GetSheetName(0), dataSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create style: %w", err)
	}

	if err := writeRow(f, dataSheet, 1, data.Headers); err != nil {
		return nil, err
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(data.Headers), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(dataSheet, "A1", lastHeader, bold); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}
	for i, row := range data.Rows {
		if err := writeRow(f, dataSheet, i+2, data.record(row)); err != nil {
			return nil, err
		}
	}

	if len(data.Summary) > 0 {
		if _, err := f.NewSheet(summarySheet); err != nil {
			return nil, fmt.Errorf("create summary sheet: %w", err)
		}
		for i, field := range data.Summary {
			if err := writeRow(f, summarySheet, i+1, []string{field.Label, field.Value}); err != nil {
				return nil, err
			}
		}
		if err := f.SetColWidth(summarySheet, "A", "A", 28); err != nil {
			return nil, fmt.Errorf("size summary: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	return bytes.Clone(buf.Bytes()), nil
}

func writeRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}
