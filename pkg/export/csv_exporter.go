package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Dataset is a titled table. Rows are positional and must match Headers.
type Dataset struct {
	Title   string
	Headers []string
	Rows    [][]string
	// Widths are relative column weights for PDF layout; empty means equal.
	Widths []float64
	Footer string
}

func (d Dataset) validate(kind string) error {
	if len(d.Headers) == 0 {
		return fmt.Errorf("%s requires at least one header", kind)
	}
	for i, row := range d.Rows {
		if len(row) != len(d.Headers) {
			return fmt.Errorf("%s row %d has %d cells, want %d", kind, i, len(row), len(d.Headers))
		}
	}
	return nil
}

// CSVExporter renders datasets as CSV. Title and Footer are not emitted.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the dataset.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if err := data.validate("csv"); err != nil {
		return nil, err
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	if err := writer.WriteAll(data.Rows); err != nil {
		return nil, fmt.Errorf("write csv rows: %w", err)
	}
	return buf.Bytes(), nil
}
