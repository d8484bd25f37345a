package export

import (
	"fmt"
	"strings"
)

// Format is an export file type.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

// SummaryField is a labelled value printed above the table.
type SummaryField struct {
	Label string
	Value string
}

// Dataset defines tabular export content.
type Dataset struct {
	Title   string
	Summary []SummaryField
	Headers []string
	Rows    []map[string]string
}

func (d Dataset) validate(kind string) error {
	if len(d.Headers) == 0 {
		return fmt.Errorf("%s requires at least one header", kind)
	}
	return nil
}

func (d Dataset) record(row map[string]string) []string {
	out := make([]string, len(d.Headers))
	for i, header := range d.Headers {
		out[i] = row[header]
	}
	return out
}

// Renderer turns a dataset into file bytes.
type Renderer interface {
	Render(data Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

// ParseFormat validates a user supplied format name.
func ParseFormat(raw string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(raw)))
	switch f {
	case FormatCSV, FormatPDF, FormatXLSX:
		return f, nil
	}
	return "", fmt.Errorf("unsupported export format %q", raw)
}

// RendererFor returns the renderer for f.
func RendererFor(f Format) (Renderer, error) {
	switch f {
	case FormatCSV:
		return NewCSVExporter(), nil
	case FormatPDF:
		return NewPDFExporter(), nil
	case FormatXLSX:
		return NewXLSXExporter(), nil
	}
	return nil, fmt.Errorf("unsupported export format %q", f)
}
