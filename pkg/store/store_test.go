package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/matzehuels/transfocator/pkg/errors"
	"github.com/matzehuels/transfocator/pkg/optics"
	"github.com/matzehuels/transfocator/pkg/propagation"
	"github.com/matzehuels/transfocator/pkg/report"
)

func testReport(energy float64) *report.Report {
	return &report.Report{
		Energy:     energy,
		Convention: optics.Sigma,
		T:          0.5,
		History:    []propagation.LensResult{{Index: 1, TF: "TF1"}},
	}
}

func TestNewRun(t *testing.T) {
	run, err := NewRun("first", json.RawMessage(`{"tf":[]}`), "abc", testReport(10300))
	if err != nil {
		t.Fatal(err)
	}
	if err := ValidateID(run.ID); err != nil {
		t.Errorf("ID %q is not a UUID: %v", run.ID, err)
	}
	if run.Energy != 10300 || run.Convention != "sigma" {
		t.Errorf("run = %+v", run)
	}

	if _, err := NewRun("empty", nil, "", nil); !errors.Is(err, errors.ErrCodeNoResults) {
		t.Errorf("NewRun(nil report) error = %v, want NO_RESULTS", err)
	}
}

func TestValidateID(t *testing.T) {
	if err := ValidateID("../../etc/passwd"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("ValidateID() error = %v, want INVALID_INPUT", err)
	}
}

func testStores(t *testing.T) map[string]Store {
	t.Helper()
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   fs,
	}
}

func TestStores(t *testing.T) {
	ctx := context.Background()
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			defer s.Close()

			older, _ := NewRun("older", nil, "h1", testReport(10300))
			older.CreatedAt = time.Now().Add(-time.Hour).UTC()
			newer, _ := NewRun("newer", nil, "h2", testReport(20600))

			for _, r := range []*Run{older, newer} {
				if err := s.Put(ctx, r); err != nil {
					t.Fatalf("Put() error = %v", err)
				}
			}

			got, err := s.Get(ctx, newer.ID)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got.Name != "newer" || got.Report.T != 0.5 {
				t.Errorf("Get() = %+v", got)
			}

			runs, err := s.List(ctx, 0)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(runs) != 2 || runs[0].ID != newer.ID {
				t.Errorf("List() should return newest first, got %d runs", len(runs))
			}

			runs, _ = s.List(ctx, 1)
			if len(runs) != 1 {
				t.Errorf("List(1) returned %d runs", len(runs))
			}

			if err := s.Delete(ctx, newer.ID); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if _, err := s.Get(ctx, newer.ID); !errors.Is(err, errors.ErrCodeRunNotFound) {
				t.Errorf("Get() after Delete error = %v, want RUN_NOT_FOUND", err)
			}
			if err := s.Delete(ctx, newer.ID); err != nil {
				t.Errorf("Delete() of missing run error = %v", err)
			}
		})
	}
}

func TestFileStorePath(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if fs.Path() != dir {
		t.Errorf("Path() = %q, want %q", fs.Path(), dir)
	}
}
