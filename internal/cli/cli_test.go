package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/transfocator/pkg/errors"
	tfio "github.com/matzehuels/transfocator/pkg/io"
	"github.com/matzehuels/transfocator/pkg/pipeline"
	"github.com/matzehuels/transfocator/pkg/store"
)

// sandbox points every user directory at a fresh temp dir.
func sandbox(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	for _, k := range []string{"TFCALC_CONVENTION", "TFCALC_CACHE_BACKEND", "TFCALC_STORE_BACKEND", "TFCALC_MATERIALS_URL", "TFCALC_MATERIALS_TABLE"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	return dir
}

type result struct {
	stdout, stderr string
	err            error
}

func execute(t *testing.T, args ...string) result {
	t.Helper()
	var stdout, stderr, logs bytes.Buffer
	c := New(&logs, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.ExecuteContext(context.Background())
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// writeBeamline runs `tfcalc init` into dir and returns the file path.
func writeBeamline(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "beamline.toml")
	if r := execute(t, "init", path); r.err != nil {
		t.Fatalf("init: %v", r.err)
	}
	return path
}

func TestInit(t *testing.T) {
	dir := sandbox(t)
	path := writeBeamline(t, dir)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"[source]", "[[tf]]", "TF1", "TF2"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("beamline file missing %q", want)
		}
	}

	if r := execute(t, "init", path); r.err == nil {
		t.Error("init over an existing file should fail without --force")
	}
	if r := execute(t, "init", path, "--force"); r.err != nil {
		t.Errorf("init --force: %v", r.err)
	}
}

func TestCalcJSON(t *testing.T) {
	dir := sandbox(t)
	path := writeBeamline(t, dir)

	r := execute(t, "calc", path, "-f", "json", "--symmetry")
	if r.err != nil {
		t.Fatalf("calc: %v", r.err)
	}
	rep, err := tfio.ReadJSON(strings.NewReader(r.stdout))
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if rep.Energy != 10300 {
		t.Errorf("Energy = %v, want 10300", rep.Energy)
	}
	if len(rep.History) != 4 {
		t.Errorf("len(History) = %d, want 4", len(rep.History))
	}
	if rep.Symmetry == nil {
		t.Error("Symmetry should be set with --symmetry")
	}
}

func TestCalcEnergyOverride(t *testing.T) {
	dir := sandbox(t)
	path := writeBeamline(t, dir)

	r := execute(t, "calc", path, "-f", "json", "--energy", "30900")
	if r.err != nil {
		t.Fatalf("calc: %v", r.err)
	}
	rep, err := tfio.ReadJSON(strings.NewReader(r.stdout))
	if err != nil {
		t.Fatal(err)
	}
	if rep.Energy != 30900 {
		t.Errorf("Energy = %v, want 30900", rep.Energy)
	}
}

func TestCalcPlain(t *testing.T) {
	dir := sandbox(t)
	path := writeBeamline(t, dir)

	r := execute(t, "calc", path, "-f", "plain")
	if r.err != nil {
		t.Fatalf("calc: %v", r.err)
	}
	for _, want := range []string{"TF1", "TF2", "Pos (m)", "Transmission:", "Gain:"} {
		if !strings.Contains(r.stdout, want) {
			t.Errorf("plain output missing %q:\n%s", want, r.stdout)
		}
	}
}

func TestCalcCSVToFile(t *testing.T) {
	dir := sandbox(t)
	path := writeBeamline(t, dir)
	out := filepath.Join(dir, "history.csv")

	r := execute(t, "calc", path, "-f", "csv", "--columns", "tf_name, position", "-o", out)
	if r.err != nil {
		t.Fatalf("calc: %v", r.err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if lines[0] != "TF,Pos (m)" {
		t.Errorf("header = %q, want %q", lines[0], "TF,Pos (m)")
	}
	if len(lines) != 5 {
		t.Errorf("got %d lines, want header + 4 lenses", len(lines))
	}
	// TF1 is centred at 27.075 m: start 26.9985 m, lens mid-housing 5 mm in.
	if !strings.HasPrefix(lines[1], "TF1,27.0035") {
		t.Errorf("first row = %q, want TF1,27.0035 prefix", lines[1])
	}
}

func TestCalcErrors(t *testing.T) {
	dir := sandbox(t)
	path := writeBeamline(t, dir)

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"unknown column", []string{"calc", path, "--columns", "bogus"}, errors.ErrCodeInvalidInput},
		{"unknown convention", []string{"calc", path, "--convention", "hwhm"}, errors.ErrCodeInvalidConvention},
		{"missing file", []string{"calc", filepath.Join(dir, "missing.toml")}, errors.ErrCodeFileNotFound},
		{"energy outside table", []string{"calc", path, "--energy", "5000"}, errors.ErrCodeLookupFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := execute(t, tt.args...)
			if r.err == nil {
				t.Fatal("expected an error")
			}
			if got := errors.GetCode(r.err); got != tt.code {
				t.Errorf("code = %q, want %q (%v)", got, tt.code, r.err)
			}
		})
	}

	if r := execute(t, "calc", path, "-f", "yaml"); r.err == nil {
		t.Error("unknown output format should fail")
	}
}

func TestCalcSaveAndRuns(t *testing.T) {
	dir := sandbox(t)
	path := writeBeamline(t, dir)

	if r := execute(t, "calc", path, "-f", "json", "--save", "reference"); r.err != nil {
		t.Fatalf("calc --save: %v", r.err)
	}

	r := execute(t, "runs", "list", "-f", "json")
	if r.err != nil {
		t.Fatalf("runs list: %v", r.err)
	}
	var runs []store.Run
	if err := json.Unmarshal([]byte(r.stdout), &runs); err != nil {
		t.Fatalf("decode runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("len(runs) = %d, want 1", len(runs))
	}
	if runs[0].Name != "reference" {
		t.Errorf("Name = %q, want reference", runs[0].Name)
	}

	r = execute(t, "runs", "show", runs[0].ID, "-f", "json")
	if r.err != nil {
		t.Fatalf("runs show: %v", r.err)
	}
	rep, err := tfio.ReadJSON(strings.NewReader(r.stdout))
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.History) != 4 {
		t.Errorf("len(History) = %d, want 4", len(rep.History))
	}

	if r := execute(t, "runs", "delete", runs[0].ID); r.err != nil {
		t.Fatalf("runs delete: %v", r.err)
	}
	r = execute(t, "runs", "show", runs[0].ID)
	if !errors.Is(r.err, errors.ErrCodeRunNotFound) {
		t.Errorf("show after delete: err = %v, want RUN_NOT_FOUND", r.err)
	}
}

func TestScan(t *testing.T) {
	dir := sandbox(t)
	path := writeBeamline(t, dir)

	r := execute(t, "scan", path, "--from", "10300", "--to", "30900", "--step", "20600", "-q", "-f", "json")
	if r.err != nil {
		t.Fatalf("scan: %v", r.err)
	}
	var points []pipeline.SweepPoint
	if err := json.Unmarshal([]byte(r.stdout), &points); err != nil {
		t.Fatalf("decode sweep: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("len(points) = %d, want 2", len(points))
	}
	if points[0].Energy != 10300 || points[1].Energy != 30900 {
		t.Errorf("energies = %v, %v", points[0].Energy, points[1].Energy)
	}
	for _, p := range points {
		if p.Report == nil || len(p.Report.History) != 4 {
			t.Errorf("point at %v eV has no full report", p.Energy)
		}
	}
}

func TestChain(t *testing.T) {
	dir := sandbox(t)
	path := writeBeamline(t, dir)

	r := execute(t, "chain", path, "-f", "json")
	if r.err != nil {
		t.Fatalf("chain: %v", r.err)
	}
	var chain struct {
		Units []struct {
			TF       string  `json:"tf"`
			Position float64 `json:"position"`
		} `json:"units"`
	}
	if err := json.Unmarshal([]byte(r.stdout), &chain); err != nil {
		t.Fatal(err)
	}
	if len(chain.Units) != 4 {
		t.Fatalf("len(Units) = %d, want 4", len(chain.Units))
	}
	if math.Abs(chain.Units[0].Position-27.0035) > 1e-9 {
		t.Errorf("first lens at %v, want 27.0035", chain.Units[0].Position)
	}

	r = execute(t, "chain", path, "-f", "plain")
	if r.err != nil {
		t.Fatalf("chain plain: %v", r.err)
	}
	if !strings.Contains(r.stdout, "R500") || !strings.Contains(r.stdout, "R50") {
		t.Errorf("plain chain should list presets:\n%s", r.stdout)
	}
}

func TestSchematicDOT(t *testing.T) {
	dir := sandbox(t)
	path := writeBeamline(t, dir)

	r := execute(t, "schematic", path, "-f", "dot")
	if r.err != nil {
		t.Fatalf("schematic: %v", r.err)
	}
	if !strings.Contains(r.stdout, "digraph beamline") {
		t.Errorf("DOT output missing graph header:\n%s", r.stdout)
	}

	r = execute(t, "schematic", path, "-f", "png")
	if !errors.Is(r.err, errors.ErrCodeInvalidFormat) {
		t.Errorf("png: err = %v, want INVALID_FORMAT", r.err)
	}
}

func TestConstants(t *testing.T) {
	sandbox(t)

	r := execute(t, "constants", "Be", "--energy", "10300", "--json")
	if r.err != nil {
		t.Fatalf("constants: %v", r.err)
	}
	var got struct {
		Density float64 `json:"density"`
		Delta   float64 `json:"delta"`
	}
	if err := json.Unmarshal([]byte(r.stdout), &got); err != nil {
		t.Fatal(err)
	}
	if got.Density != 1.848 {
		t.Errorf("Density = %v, want 1.848", got.Density)
	}
	if math.Abs(got.Delta-3.2067436008938e-06) > 1e-15 {
		t.Errorf("Delta = %v", got.Delta)
	}

	if r := execute(t, "constants", "be", "--energy", "10300"); r.err == nil {
		t.Error("lower-case symbol should be rejected")
	}
}

func TestPresets(t *testing.T) {
	sandbox(t)

	r := execute(t, "presets", "-f", "plain")
	if r.err != nil {
		t.Fatalf("presets: %v", r.err)
	}
	for _, want := range []string{"R50", "R100", "R200", "R500", "1400"} {
		if !strings.Contains(r.stdout, want) {
			t.Errorf("presets output missing %q", want)
		}
	}
}

func TestCachePathAndClear(t *testing.T) {
	dir := sandbox(t)
	path := writeBeamline(t, dir)

	r := execute(t, "cache", "path")
	if r.err != nil {
		t.Fatalf("cache path: %v", r.err)
	}
	cache := filepath.Join(dir, "cache", appName)
	if got := strings.TrimSpace(r.stdout); got != cache {
		t.Errorf("cache path = %q, want %q", got, cache)
	}

	if r := execute(t, "calc", path, "-f", "json"); r.err != nil {
		t.Fatal(r.err)
	}
	entries, _ := os.ReadDir(cache)
	if len(entries) == 0 {
		t.Fatal("calc should have written a cache entry")
	}

	if r := execute(t, "cache", "clear"); r.err != nil {
		t.Fatalf("cache clear: %v", r.err)
	}
	entries, _ = os.ReadDir(cache)
	if len(entries) != 0 {
		t.Errorf("cache has %d entries after clear", len(entries))
	}

	t.Setenv("TFCALC_CACHE_BACKEND", "none")
	if r := execute(t, "cache", "path"); !errors.Is(r.err, errors.ErrCodeUnsupported) {
		t.Errorf("cache path with no file cache: err = %v, want UNSUPPORTED", r.err)
	}
}

func TestVersion(t *testing.T) {
	sandbox(t)
	r := execute(t, "--version")
	if r.err != nil {
		t.Fatal(r.err)
	}
	if !strings.Contains(r.stdout, "tfcalc version") {
		t.Errorf("version output = %q", r.stdout)
	}
}
