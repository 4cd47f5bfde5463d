package io

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/transfocator/pkg/propagation"
	"github.com/matzehuels/transfocator/pkg/report"
)

// WriteJSON encodes a report as indented JSON and writes it to w.
// The output can be re-imported with [ReadJSON].
func WriteJSON(rep *report.Report, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a report to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(rep *report.Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(rep, f)
}

// WriteCSV writes the lens history as CSV with one header row. Cells use
// the same formatting as the terminal table.
func WriteCSV(w io.Writer, history []propagation.LensResult, cols []report.Column) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(report.Headers(cols)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range history {
		if err := cw.Write(report.Cells(cols, r)); err != nil {
			return fmt.Errorf("write lens %d: %w", r.Index, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
