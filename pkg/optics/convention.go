package optics

import (
	"fmt"
	"math"
	"strings"
)

// FWHMPerSigma converts an RMS width to a full width at half maximum.
const FWHMPerSigma = 2.35482

// Convention selects how Gaussian beam widths are expressed.
type Convention int

const (
	// FWHM expresses widths as full width at half maximum. It is the default.
	FWHM Convention = iota
	// Sigma expresses widths as RMS (one standard deviation).
	Sigma
)

// String returns the lowercase convention name.
func (c Convention) String() string {
	switch c {
	case Sigma:
		return "sigma"
	default:
		return "fwhm"
	}
}

// ParseConvention parses "fwhm" or "sigma" (case-insensitive).
// The empty string selects FWHM.
func ParseConvention(s string) (Convention, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fwhm":
		return FWHM, nil
	case "sigma", "rms":
		return Sigma, nil
	default:
		return FWHM, fmt.Errorf("unknown width convention %q (want fwhm or sigma)", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Convention) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Convention) UnmarshalText(b []byte) error {
	v, err := ParseConvention(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// FromFWHM converts a width given as FWHM into this convention.
func (c Convention) FromFWHM(w float64) float64 {
	if c == Sigma {
		return w / FWHMPerSigma
	}
	return w
}

// EffectiveAperture is the absorption-limited aperture of a lens with focal
// length f and optical constants delta and mu (1/m).
func (c Convention) EffectiveAperture(f, delta, mu float64) float64 {
	sigma := math.Sqrt(f * delta / mu)
	if c == Sigma {
		return sigma
	}
	return FWHMPerSigma * sigma
}

// erfScale is the constant that turns a width in this convention into the
// argument of erf for a hard-edged aperture.
func (c Convention) erfScale() float64 {
	if c == Sigma {
		return 1 / (2 * math.Sqrt2)
	}
	return math.Sqrt(math.Ln2)
}

// Transmission is the fraction of flux a single lens passes. a is the
// physical aperture, alx/aly the limiting apertures, sfpx/sfpy the beam sizes
// at the lens entrance, mu the attenuation coefficient and d the web
// thickness on axis.
func (c Convention) Transmission(a, alx, aly, sfpx, sfpy, mu, d float64) float64 {
	k := c.erfScale()
	absorption := math.Exp(-mu * d)
	geometric := (alx * aly) / (sfpx * sfpy)
	clip := (math.Erf(a*k/alx) * math.Erf(a*k/aly)) / (math.Erf(a*k/sfpx) * math.Erf(a*k/sfpy))
	return absorption * geometric * clip
}
