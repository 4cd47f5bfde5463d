package optics

import "math"

// hcEVAngstrom is h·c in eV·Å.
const hcEVAngstrom = 12398.4

// Wavelength returns the photon wavelength in metres for an energy in eV.
func Wavelength(energy float64) float64 {
	return hcEVAngstrom / energy * 1e-10
}

// FocalLength of a single parabolic lens with apex radius r, refractive
// decrement delta and pitch p. The p/6 term is the thick-lens correction.
func FocalLength(r, delta, p float64) float64 {
	return r/(2*delta) + p/6
}

// ImageDistance solves the thin-lens equation for the image distance.
// It returns +Inf when l1 == f or the reciprocal sum degenerates.
func ImageDistance(f, l1 float64) float64 {
	if l1 == f {
		return math.Inf(1)
	}
	den := 1/f - 1/l1
	if den == 0 || math.IsNaN(den) {
		return math.Inf(1)
	}
	return 1 / den
}

// Magnification is |l2/l1|.
func Magnification(l1, l2 float64) float64 {
	return math.Abs(l2 / l1)
}

// CombinedEffectiveAperture adds two effective apertures in inverse
// quadrature. A previous aperture of +Inf leaves curr unchanged.
func CombinedEffectiveAperture(prev, curr float64) float64 {
	return math.Sqrt(1 / (1/(prev*prev) + 1/(curr*curr)))
}

// blendFactor interpolates between the geometric-aperture regime and the
// absorption-limited regime of a lens with physical aperture a.
func blendFactor(a, aeff float64) float64 {
	sigma := aeff / FWHMPerSigma
	a0 := 6 * sigma
	w := 1 / (1 + math.Pow(a/a0, 6))
	x := aeff / a
	return x + math.Exp(-x)*w/6 + 0.442*(1-w)
}

// DiffractionLimit is the diffraction blur at image distance l2 for a lens
// with physical aperture a and effective aperture aeff at wavelength lambda.
func DiffractionLimit(l2, a, aeff, lambda float64) float64 {
	k := blendFactor(a, aeff)
	return math.Abs(k * lambda * l2 / aeff)
}

// FocusSize combines the magnified source size m·s with the diffraction
// blur in quadrature.
func FocusSize(m, s, diffLimit float64) float64 {
	return math.Hypot(m*s, diffLimit)
}

// EntranceSizeFirstLens is the beam size at the first lens, a distance l1
// from a source of size s and divergence w.
func EntranceSizeFirstLens(l1, w, s float64) float64 {
	return math.Hypot(l1*w, s)
}

// EntranceSizeNextLens is the beam size at a lens placed dist after the
// previous lens, which imaged onto l2Prev through a limiting aperture alPrev.
// It returns +Inf when l2Prev is 0.
func EntranceSizeNextLens(l2Prev, alPrev, dist float64) float64 {
	if l2Prev == 0 {
		return math.Inf(1)
	}
	return alPrev * math.Abs(dist-l2Prev) / l2Prev
}

// LimitingAperture is the effective beam-defining size at a lens. When the
// physical aperture a is wider than the beam, the beam and the absorption
// aperture combine in inverse quadrature; otherwise a is a hard stop.
func LimitingAperture(a, entrance, aeff float64) float64 {
	if a > entrance {
		return math.Sqrt(1 / (1/(entrance*entrance) + 1/(aeff*aeff)))
	}
	return a
}

// StraightBeam is the size a beam of size s and divergence w would have
// after travelling l with no lens in its path.
func StraightBeam(l, s, w float64) float64 {
	return math.Hypot(l*w, s)
}

// Gain is the flux-density ratio between the focused spot and the
// unfocused beam at the same distance.
func Gain(t, straightX, straightY, sfx, sfy float64) float64 {
	return t * straightX * straightY / (sfx * sfy)
}

// GainCombine adds gains in quadrature.
func GainCombine(g1, g2 float64) float64 {
	return math.Sqrt(g1*g1 + g2*g2)
}

// TransmissionCombine multiplies transmissions.
func TransmissionCombine(t1, t2 float64) float64 {
	return t1 * t2
}

// DOF holds the depth of field and its two contributions, in metres.
type DOF struct {
	Total       float64 `json:"total"`
	Diffractive float64 `json:"diffractive"`
	Geometric   float64 `json:"geometric"`
}

// DepthOfField estimates the axial range over which the focus stays near
// its minimum size sf.
func DepthOfField(l2, sf, al, lambda, f, aeff float64) DOF {
	if f == 0 {
		return DOF{}
	}
	na := aeff / (2 * f)
	if na == 0 {
		return DOF{Total: math.Inf(1)}
	}
	diffractive := lambda / (na * na)
	geometric := math.Inf(1)
	if al != 0 {
		geometric = 2 * l2 * sf / al
	}
	return DOF{
		Total:       math.Sqrt(diffractive*diffractive + geometric*geometric),
		Diffractive: diffractive,
		Geometric:   geometric,
	}
}
