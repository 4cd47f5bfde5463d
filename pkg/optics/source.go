package optics

// SourceParams is the photon source in SI units: sizes in metres and
// divergences in radians, already in the run's width convention.
type SourceParams struct {
	Energy     float64 `json:"energy"`     // eV
	Wavelength float64 `json:"wavelength"` // m
	SX         float64 `json:"sx"`
	SY         float64 `json:"sy"`
	WX         float64 `json:"wx"`
	WY         float64 `json:"wy"`
}

// NewSourceParams derives the wavelength from energy.
func NewSourceParams(energy, sx, sy, wx, wy float64) SourceParams {
	return SourceParams{
		Energy:     energy,
		Wavelength: Wavelength(energy),
		SX:         sx,
		SY:         sy,
		WX:         wx,
		WY:         wy,
	}
}
