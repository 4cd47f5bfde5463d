package propagation

import (
	"math"

	"github.com/matzehuels/transfocator/pkg/optics"
)

// BeamState is the beam just downstream of the last lens processed.
type BeamState struct {
	Z  float64 `json:"z"`
	WX float64 `json:"wx"`
	WY float64 `json:"wy"`
	SX float64 `json:"sx"`
	SY float64 `json:"sy"`

	MTotal float64 `json:"m_total"`
	TBlock float64 `json:"t_block"`
	GBlock float64 `json:"g_block"`
	TTotal float64 `json:"t_total"`
	GTotal float64 `json:"g_total"`

	TBlocks []float64 `json:"t_blocks"`
	GBlocks []float64 `json:"g_blocks"`

	L2Prev   float64 `json:"l2_prev"`
	AlxPrev  float64 `json:"alx_prev"`
	AlyPrev  float64 `json:"aly_prev"`
	AeffPrev float64 `json:"aeff_prev"`
}

// Initial is the state at the source. Gains start at 0, the neutral
// element of quadrature; the combined effective aperture starts at +Inf.
func Initial(src optics.SourceParams) BeamState {
	return BeamState{
		WX:       src.WX,
		WY:       src.WY,
		SX:       src.SX,
		SY:       src.SY,
		MTotal:   1,
		TBlock:   1,
		TTotal:   1,
		AeffPrev: math.Inf(1),
	}
}

// atSource reports whether no image point has been established yet.
func (s BeamState) atSource() bool {
	return s.L2Prev == 0 && s.AlxPrev == 0
}

// appendCopy appends v to a copy of xs so that earlier states never share
// backing arrays with later ones.
func appendCopy(xs []float64, v float64) []float64 {
	out := make([]float64, len(xs), len(xs)+1)
	copy(out, xs)
	return append(out, v)
}
