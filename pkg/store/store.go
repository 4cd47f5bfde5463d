// Package store archives calculation runs.
//
// A [Run] couples a report with the beamline that produced it, so that a
// result can be looked up and reproduced later. Three backends implement
// [Store]:
//   - [MemoryStore]: in-process, for the API server without a database and for tests
//   - [FileStore]: JSON files under ~/.local/share/tfcalc/runs, used by the CLI
//   - [MongoStore]: MongoDB, for a shared archive behind the API server
//
// # Usage
//
//	run, err := store.NewRun("tf2-only", blJSON, result.BeamlineHash, result.Report)
//	if err != nil {
//	    return err
//	}
//	if err := s.Put(ctx, run); err != nil {
//	    return err
//	}
//	runs, err := s.List(ctx, 20)
package store

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/transfocator/pkg/errors"
	"github.com/matzehuels/transfocator/pkg/report"
)

// DefaultListLimit is the number of runs List returns for a limit <= 0.
const DefaultListLimit = 50

// Run is one archived calculation.
type Run struct {
	ID           string          `json:"id" bson:"_id"`
	Name         string          `json:"name,omitempty" bson:"name,omitempty"`
	CreatedAt    time.Time       `json:"created_at" bson:"created_at"`
	BeamlineHash string          `json:"beamline_hash" bson:"beamline_hash"`
	Energy       float64         `json:"energy" bson:"energy"`
	Convention   string          `json:"convention" bson:"convention"`
	Beamline     json.RawMessage `json:"beamline,omitempty" bson:"beamline,omitempty"`
	Report       *report.Report  `json:"report" bson:"report"`
}

// Store is the interface for run storage backends.
type Store interface {
	// Get retrieves a run by ID. A missing run is an error with code
	// RUN_NOT_FOUND.
	Get(ctx context.Context, id string) (*Run, error)

	// Put stores a run, replacing any run with the same ID.
	Put(ctx context.Context, run *Run) error

	// List returns up to limit runs, newest first.
	List(ctx context.Context, limit int) ([]*Run, error)

	// Delete removes a run. Deleting a missing run is not an error.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}

// NewRun creates a run with a fresh ID for rep.
func NewRun(name string, beamline json.RawMessage, beamlineHash string, rep *report.Report) (*Run, error) {
	if rep == nil {
		return nil, errors.New(errors.ErrCodeNoResults, "cannot archive a run without a report")
	}
	return &Run{
		ID:           uuid.New().String(),
		Name:         name,
		CreatedAt:    time.Now().UTC(),
		BeamlineHash: beamlineHash,
		Energy:       rep.Energy,
		Convention:   rep.Convention.String(),
		Beamline:     beamline,
		Report:       rep,
	}, nil
}

// ValidateID rejects IDs that are not UUIDs.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid run id %q", id)
	}
	return nil
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeRunNotFound, "run %s not found", id)
}

func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}

// newestFirst sorts runs by creation time, newest first, and truncates to
// limit.
func newestFirst(runs []*Run, limit int) []*Run {
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	if len(runs) > limit {
		runs = runs[:limit]
	}
	return runs
}
