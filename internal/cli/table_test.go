package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/transfocator/pkg/report"
)

func TestHistoryGridSections(t *testing.T) {
	g := historyGrid(testReport(), report.DefaultColumns())

	if len(g.rows) != 5 {
		t.Fatalf("len(rows) = %d, want 5", len(g.rows))
	}
	want := map[int]string{0: "TF1", 1: "TF2", 4: "TF3"}
	if len(g.sections) != len(want) {
		t.Errorf("sections = %v, want %v", g.sections, want)
	}
	for i, title := range want {
		if g.sections[i] != title {
			t.Errorf("section before row %d = %q, want %q", i, g.sections[i], title)
		}
	}

	rows, sectionRows := g.flatten()
	if len(rows) != 8 {
		t.Errorf("flattened rows = %d, want 8", len(rows))
	}
	if !sectionRows[0] || rows[0][0] != "TF1" {
		t.Errorf("first flattened row = %v, want TF1 section", rows[0])
	}
}

func TestRenderPlain(t *testing.T) {
	var buf bytes.Buffer
	renderPlain(&buf, grid{
		headers: []string{"Preset", "R, um"},
		rows:    [][]string{{"R50", "50"}, {"R500", "500"}},
	})
	out := buf.String()
	for _, want := range []string{"Preset", "R, um", "R500", "500"} {
		if !strings.Contains(out, want) {
			t.Errorf("plain table missing %q:\n%s", want, out)
		}
	}
}

func TestColumnsFromFlag(t *testing.T) {
	tests := []struct {
		flag    string
		want    int
		wantErr bool
	}{
		{"", len(report.DefaultColumns()), false},
		{"all", len(report.Columns()), false},
		{"tf_name,L2", 2, false},
		{" tf_name , L2 ", 2, false},
		{"nope", 0, true},
	}
	for _, tt := range tests {
		cols, err := columnsFromFlag(tt.flag)
		if (err != nil) != tt.wantErr {
			t.Errorf("columnsFromFlag(%q) error = %v, wantErr %v", tt.flag, err, tt.wantErr)
			continue
		}
		if len(cols) != tt.want {
			t.Errorf("columnsFromFlag(%q) = %d columns, want %d", tt.flag, len(cols), tt.want)
		}
	}
}

func TestValidateOutput(t *testing.T) {
	if err := validateOutput("json", outTable, outJSON); err != nil {
		t.Errorf("json should be accepted: %v", err)
	}
	if err := validateOutput("csv", outTable, outJSON); err == nil {
		t.Error("csv should be rejected")
	}
}
