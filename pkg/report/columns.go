package report

import (
	"fmt"
	"math"
	"strconv"

	"github.com/matzehuels/transfocator/pkg/errors"
	"github.com/matzehuels/transfocator/pkg/propagation"
)

// Column describes one field of the lens history table.
type Column struct {
	Name    string
	Header  string
	Default bool
	Value   func(propagation.LensResult) string
}

func fixed(prec int, scale float64, get func(propagation.LensResult) float64) func(propagation.LensResult) string {
	return func(r propagation.LensResult) string {
		return FormatFloat(get(r)*scale, 'f', prec)
	}
}

func sci(get func(propagation.LensResult) float64) func(propagation.LensResult) string {
	return func(r propagation.LensResult) string {
		return FormatFloat(get(r), 'e', 3)
	}
}

// FormatFloat formats v with strconv, writing Inf, -Inf and NaN for
// non-finite values.
func FormatFloat(v float64, verb byte, prec int) string {
	switch {
	case math.IsInf(v, 1):
		return "Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	case math.IsNaN(v):
		return "NaN"
	}
	return strconv.FormatFloat(v, verb, prec, 64)
}

func itoa(get func(propagation.LensResult) int) func(propagation.LensResult) string {
	return func(r propagation.LensResult) string { return strconv.Itoa(get(r)) }
}

const (
	um  = 1e6
	pct = 100
)

var columns = []Column{
	{"tf_name", "TF", false, func(r propagation.LensResult) string { return r.TF }},
	{"block_index", "Block", false, itoa(func(r propagation.LensResult) int { return r.Block })},
	{"lens_index_in_tf", "Lens in TF", true, itoa(func(r propagation.LensResult) int { return r.InTF })},
	{"lens_index_in_block", "Lens number", false, itoa(func(r propagation.LensResult) int { return r.InBlock })},
	{"preset", "Preset", false, func(r propagation.LensResult) string { return r.Preset }},
	{"material", "Material", false, func(r propagation.LensResult) string { return r.Material }},
	{"position", "Pos (m)", true, fixed(4, 1, func(r propagation.LensResult) float64 { return r.Position })},
	{"distance", "Dist, m", false, fixed(4, 1, func(r propagation.LensResult) float64 { return r.Distance })},
	{"L1", "L1, m", true, fixed(4, 1, func(r propagation.LensResult) float64 { return r.L1 })},
	{"L2", "L2, m", true, fixed(4, 1, func(r propagation.LensResult) float64 { return r.L2 })},
	{"F", "F, m", true, fixed(4, 1, func(r propagation.LensResult) float64 { return r.F })},
	{"sx", "sx, um", false, fixed(2, um, func(r propagation.LensResult) float64 { return r.SX })},
	{"sy", "sy, um", false, fixed(2, um, func(r propagation.LensResult) float64 { return r.SY })},
	{"sfpx", "sfpx, um", false, fixed(2, um, func(r propagation.LensResult) float64 { return r.SFPX })},
	{"sfpy", "sfpy, um", false, fixed(2, um, func(r propagation.LensResult) float64 { return r.SFPY })},
	{"alx", "Alx, um", false, fixed(2, um, func(r propagation.LensResult) float64 { return r.ALX })},
	{"aly", "Aly, um", false, fixed(2, um, func(r propagation.LensResult) float64 { return r.ALY })},
	{"sfx", "Focus X, um", true, fixed(2, um, func(r propagation.LensResult) float64 { return r.SFX })},
	{"sfy", "Focus Y, um", true, fixed(2, um, func(r propagation.LensResult) float64 { return r.SFY })},
	{"T", "Trans., %", true, fixed(1, pct, func(r propagation.LensResult) float64 { return r.T })},
	{"T_block", "T block, %", false, fixed(1, pct, func(r propagation.LensResult) float64 { return r.TBlock })},
	{"M", "M", true, sci(func(r propagation.LensResult) float64 { return r.M })},
	{"M_total", "M_total", false, sci(func(r propagation.LensResult) float64 { return r.MTotal })},
	{"G", "G", false, sci(func(r propagation.LensResult) float64 { return r.G })},
	{"G_total", "G_total", false, sci(func(r propagation.LensResult) float64 { return r.GBlock })},
	{"aeff", "Aeff, um", false, fixed(2, um, func(r propagation.LensResult) float64 { return r.Aeff })},
	{"dof_x", "DOF X, m", false, fixed(4, 1, func(r propagation.LensResult) float64 { return r.DOFX.Total })},
	{"dof_y", "DOF Y, m", false, fixed(4, 1, func(r propagation.LensResult) float64 { return r.DOFY.Total })},
}

// Columns returns the full column catalog in display order.
func Columns() []Column {
	return append([]Column(nil), columns...)
}

// DefaultColumns returns the columns shown when none are selected.
func DefaultColumns() []Column {
	var out []Column
	for _, c := range columns {
		if c.Default {
			out = append(out, c)
		}
	}
	return out
}

// SelectColumns resolves column names in the order given. An empty list
// selects the defaults.
func SelectColumns(names []string) ([]Column, error) {
	if len(names) == 0 {
		return DefaultColumns(), nil
	}
	out := make([]Column, 0, len(names))
	for _, n := range names {
		c, ok := lookupColumn(n)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "unknown column %q", n)
		}
		out = append(out, c)
	}
	return out, nil
}

func lookupColumn(name string) (Column, bool) {
	for _, c := range columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Headers returns the header of each column.
func Headers(cols []Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Header
	}
	return out
}

// Cells formats r for the given columns.
func Cells(cols []Column, r propagation.LensResult) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Value(r)
	}
	return out
}

// Summary returns the headline lines of a report.
func (r *Report) Summary() []string {
	lines := []string{
		fmt.Sprintf("Energy: %g eV", r.Energy),
		fmt.Sprintf("Final position: %s m", FormatFloat(r.FinalPosition, 'f', 4)),
		fmt.Sprintf("Focal distance (L2) from last lens: %s m", FormatFloat(r.L2, 'f', 4)),
		fmt.Sprintf("Transmission: %s %%", FormatFloat(r.T*pct, 'f', 2)),
		fmt.Sprintf("Gain: %s", FormatFloat(r.G, 'e', 3)),
		fmt.Sprintf("Magnification: %s", FormatFloat(r.MTotal, 'e', 3)),
		fmt.Sprintf("Focus size X: %s um", FormatFloat(r.SizeX*um, 'f', 2)),
		fmt.Sprintf("Focus size Y: %s um", FormatFloat(r.SizeY*um, 'f', 2)),
	}
	if s := r.Symmetry; s != nil {
		if s.Found {
			lines = append(lines, fmt.Sprintf("Symmetry point: %s m (%s um)",
				FormatFloat(s.Position, 'f', 4), FormatFloat(s.Size*um, 'f', 2)))
		} else {
			lines = append(lines, "Symmetry point: none")
		}
	}
	return lines
}
