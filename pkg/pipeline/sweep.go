package pipeline

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/transfocator/pkg/errors"
	"github.com/matzehuels/transfocator/pkg/report"
)

// SweepPoint is the report at one photon energy.
type SweepPoint struct {
	Energy float64        `json:"energy"`
	Report *report.Report `json:"report"`
}

// Energies returns from, from+step, ... up to and including to (within
// half a step). It rejects empty, inverted or oversized ranges.
func Energies(from, to, step float64) ([]float64, error) {
	for _, f := range []struct {
		name string
		v    float64
	}{{"from", from}, {"to", to}, {"step", step}} {
		if err := errors.ValidatePositive(f.name, f.v); err != nil {
			return nil, err
		}
	}
	if to < from {
		return nil, errors.New(errors.ErrCodeInvalidInput, "energy range is inverted: %g > %g", from, to)
	}
	n := int(math.Floor((to-from)/step+0.5)) + 1
	if n > MaxSweepPoints {
		return nil, errors.New(errors.ErrCodeInvalidInput, "sweep has %d points, max %d", n, MaxSweepPoints)
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = from + float64(i)*step
	}
	return out, nil
}

// Sweep runs the pipeline once per energy, at most concurrency runs at a
// time, and returns the points in the order of energies. The first failure
// cancels the remaining runs.
func (r *Runner) Sweep(ctx context.Context, opts Options, energies []float64, concurrency int) ([]SweepPoint, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if concurrency <= 0 {
		concurrency = DefaultSweepConcurrency
	}

	points := make([]SweepPoint, len(energies))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, e := range energies {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			o := opts
			o.Energy = e
			res, err := r.Execute(ctx, o)
			if err != nil {
				code := errors.GetCode(err)
				if code == "" {
					code = errors.ErrCodeInternal
				}
				return errors.Wrap(code, err, "at %g eV", e)
			}
			points[i] = SweepPoint{Energy: e, Report: res.Report}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	r.Logger.Info("energy sweep complete", "points", len(points))
	return points, nil
}
