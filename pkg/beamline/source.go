package beamline

import (
	"github.com/matzehuels/transfocator/pkg/optics"
)

// Source is the photon source as users write it: sizes in µm and
// divergences in µrad, both FWHM.
type Source struct {
	Energy   float64 `toml:"energy" json:"energy"` // eV
	SX       float64 `toml:"sx" json:"sx"`
	SY       float64 `toml:"sy" json:"sy"`
	WX       float64 `toml:"wx" json:"wx"`
	WY       float64 `toml:"wy" json:"wy"`
	Material string  `toml:"material,omitempty" json:"material,omitempty"` // default lens material
}

// DefaultSource is the undulator source of the reference beamline at
// 10.3 keV.
func DefaultSource() Source {
	return Source{
		Energy: 10300,
		SX:     32.9 * optics.FWHMPerSigma,
		SY:     5.9 * optics.FWHMPerSigma,
		WX:     9.4 * optics.FWHMPerSigma,
		WY:     11.0 * optics.FWHMPerSigma,
	}
}

// Params converts to SI units in the requested width convention.
func (s Source) Params(conv optics.Convention) optics.SourceParams {
	return optics.NewSourceParams(
		s.Energy,
		conv.FromFWHM(s.SX*1e-6),
		conv.FromFWHM(s.SY*1e-6),
		conv.FromFWHM(s.WX*1e-6),
		conv.FromFWHM(s.WY*1e-6),
	)
}
