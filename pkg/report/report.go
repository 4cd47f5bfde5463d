// Package report aggregates a propagation run into the system-level focus
// report and formats its per-lens history for display.
//
// [Aggregate] multiplies the per-transfocator transmissions and combines
// the per-transfocator gains in quadrature. The final position, image
// distance and focus sizes are those of the last lens. The full history is
// kept so that callers can tabulate it with [Columns] and [Sections].
package report

import (
	"math"
	"time"

	"github.com/matzehuels/transfocator/pkg/errors"
	"github.com/matzehuels/transfocator/pkg/optics"
	"github.com/matzehuels/transfocator/pkg/propagation"
)

// Report is the outcome of one calculation.
type Report struct {
	Energy        float64
	Wavelength    float64
	Convention    optics.Convention
	FinalPosition float64
	L2            float64
	MTotal        float64
	T             float64
	G             float64
	SizeX         float64
	SizeY         float64
	TBlocks       []float64
	GBlocks       []float64
	DOFX          optics.DOF
	DOFY          optics.DOF
	Symmetry      *Symmetry
	History       []propagation.LensResult
	GeneratedAt   time.Time
}

// Options controls optional parts of the report.
type Options struct {
	// Symmetry enables the search for the point where both focus sizes
	// are equal.
	Symmetry bool
}

// Aggregate builds the report for run. A run without lenses is an error
// with code NO_RESULTS.
func Aggregate(run *propagation.Run, opts Options) (*Report, error) {
	if run == nil || len(run.Results) == 0 {
		return nil, errors.New(errors.ErrCodeNoResults, "no lens results to report")
	}
	last := run.Results[len(run.Results)-1]

	r := &Report{
		Energy:        run.Source.Energy,
		Wavelength:    run.Source.Wavelength,
		Convention:    run.Convention,
		FinalPosition: run.Final.Z,
		L2:            last.L2,
		MTotal:        run.Final.MTotal,
		T:             Transmission(run.Final.TBlocks),
		G:             Gain(run.Final.GBlocks),
		SizeX:         last.SFX,
		SizeY:         last.SFY,
		TBlocks:       run.Final.TBlocks,
		GBlocks:       run.Final.GBlocks,
		DOFX:          last.DOFX,
		DOFY:          last.DOFY,
		History:       run.Results,
		GeneratedAt:   time.Now().UTC(),
	}
	if opts.Symmetry {
		s := FindSymmetry(last)
		r.Symmetry = &s
	}
	return r, nil
}

// Transmission is the product of the per-transfocator transmissions.
func Transmission(blocks []float64) float64 {
	t := 1.0
	for _, b := range blocks {
		t = optics.TransmissionCombine(t, b)
	}
	return t
}

// Gain folds the per-transfocator gains in quadrature.
func Gain(blocks []float64) float64 {
	g := 0.0
	for _, b := range blocks {
		g = optics.GainCombine(g, b)
	}
	return g
}

// Focused reports whether the beam converges after the last lens.
func (r *Report) Focused() bool {
	return r.L2 > 0 && !math.IsInf(r.L2, 0)
}

// FocusPosition is the absolute position of the final focus, or +Inf for a
// beam that does not converge.
func (r *Report) FocusPosition() float64 {
	if !r.Focused() {
		return math.Inf(1)
	}
	return r.FinalPosition + r.L2
}
