package io

import (
	"bytes"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/transfocator/pkg/errors"
	"github.com/matzehuels/transfocator/pkg/optics"
	"github.com/matzehuels/transfocator/pkg/propagation"
	"github.com/matzehuels/transfocator/pkg/report"
)

func sampleReport() *report.Report {
	return &report.Report{
		Energy:        10300,
		Convention:    optics.FWHM,
		FinalPosition: 27.075,
		L2:            math.Inf(1),
		T:             0.96,
		G:             46.2,
		TBlocks:       []float64{0.96},
		GBlocks:       []float64{46.2},
		History: []propagation.LensResult{
			{Index: 1, TF: "TF1", InTF: 1, Position: 27.075, L1: 27.075, L2: math.Inf(1), F: 27.075, SFX: 1.5e-5, SFY: 2e-6, T: 0.96, M: 1},
		},
	}
}

func TestJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	if err := ExportJSON(sampleReport(), path); err != nil {
		t.Fatalf("ExportJSON() error = %v", err)
	}

	rep, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON() error = %v", err)
	}
	if !math.IsInf(rep.L2, 1) {
		t.Errorf("L2 = %v, want +Inf", rep.L2)
	}
	if rep.T != 0.96 {
		t.Errorf("T = %v, want 0.96", rep.T)
	}
	if len(rep.History) != 1 || rep.History[0].TF != "TF1" {
		t.Errorf("History = %+v", rep.History)
	}
}

func TestReadJSONErrors(t *testing.T) {
	if _, err := ReadJSON(strings.NewReader("{")); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("malformed JSON error = %v, want INVALID_FORMAT", err)
	}
	if _, err := ReadJSON(strings.NewReader(`{"energy": 10300, "full_history": []}`)); !errors.Is(err, errors.ErrCodeNoResults) {
		t.Errorf("empty history error = %v, want NO_RESULTS", err)
	}
	if _, err := ImportJSON(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestWriteCSV(t *testing.T) {
	cols, err := report.SelectColumns([]string{"tf_name", "position", "L2", "sfx"})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleReport().History, cols); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	want := "TF,Pos (m),\"L2, m\",\"Focus X, um\"\nTF1,27.0750,Inf,15.00\n"
	if buf.String() != want {
		t.Errorf("WriteCSV() = %q, want %q", buf.String(), want)
	}
}
