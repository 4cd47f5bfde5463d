package report

import (
	"math"

	"github.com/matzehuels/transfocator/pkg/propagation"
)

// Symmetry is the point downstream of the last lens where the horizontal
// and vertical beam sizes are equal.
//
// The beam is modelled as a cone from the limiting aperture of the last
// lens down to its focus, with the focus size added in quadrature:
//
//	size(z) = √((Al·|L2 − z|/L2)² + sf²)
//
// The search scans z over (0, L2) and refines the best bracket by
// golden-section minimisation of |sizeX(z) − sizeY(z)|. It is an estimate
// from this model, not a ray trace.
type Symmetry struct {
	Found    bool    `json:"found"`
	Z        float64 `json:"z"`        // from the last lens, m
	Position float64 `json:"position"` // absolute, m
	Size     float64 `json:"size"`
	Residual float64 `json:"residual"` // |sizeX − sizeY| at Z
}

const (
	symmetryScanSteps = 200
	goldenIterations  = 80
)

var invPhi = (math.Sqrt(5) - 1) / 2

// FindSymmetry searches for the symmetry point behind last. Found is false
// when the beam does not focus or the two sizes never cross; Z then holds
// the point of smallest difference.
func FindSymmetry(last propagation.LensResult) Symmetry {
	l2 := last.L2
	if !(l2 > 0) || math.IsInf(l2, 0) {
		return Symmetry{}
	}

	size := func(al, sf, z float64) float64 {
		return math.Hypot(al*math.Abs(l2-z)/l2, sf)
	}
	diff := func(z float64) float64 {
		return size(last.ALX, last.SFX, z) - size(last.ALY, last.SFY, z)
	}

	step := l2 / symmetryScanSteps
	best, bestZ := math.Inf(1), 0.0
	crossed := false
	lo, hi := 0.0, step
	prev := diff(step / 2)
	for i := 0; i < symmetryScanSteps; i++ {
		z := (float64(i) + 0.5) * step
		d := diff(z)
		if math.Abs(d) < best {
			best, bestZ = math.Abs(d), z
			lo, hi = math.Max(z-step, 0), math.Min(z+step, l2)
		}
		if i > 0 && (d == 0 || math.Signbit(d) != math.Signbit(prev)) {
			crossed = true
		}
		prev = d
	}

	z := golden(func(z float64) float64 { return math.Abs(diff(z)) }, lo, hi)
	if math.Abs(diff(z)) > best {
		z = bestZ
	}
	return Symmetry{
		Found:    crossed,
		Z:        z,
		Position: last.Position + z,
		Size:     size(last.ALX, last.SFX, z),
		Residual: math.Abs(diff(z)),
	}
}

// golden minimises f on [a, b], assuming a single minimum there.
func golden(f func(float64) float64, a, b float64) float64 {
	c := b - invPhi*(b-a)
	d := a + invPhi*(b-a)
	fc, fd := f(c), f(d)
	for i := 0; i < goldenIterations; i++ {
		if fc < fd {
			b, d, fd = d, c, fc
			c = b - invPhi*(b-a)
			fc = f(c)
		} else {
			a, c, fc = c, d, fd
			d = a + invPhi*(b-a)
			fd = f(d)
		}
	}
	return (a + b) / 2
}
