package optics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	beDelta10keV = 3.2067436e-6
	beAtlen10keV = 8756.72906865e-6
)

func TestFocalLength(t *testing.T) {
	f := FocalLength(500e-6, beDelta10keV, 1e-3)
	assert.InDelta(t, 500e-6/(2*beDelta10keV)+1e-3/6, f, 1e-12)
	assert.InDelta(t, 77.9609, f, 1e-3)
}

func TestImageDistance(t *testing.T) {
	f := FocalLength(500e-6, beDelta10keV, 1e-3)

	t.Run("thin lens equation", func(t *testing.T) {
		l2 := ImageDistance(f, 27.075)
		assert.InDelta(t, 1/(1/f-1/27.075), l2, 1e-9)
		assert.Less(t, l2, 0.0, "object inside focal length gives a virtual image")
	})

	t.Run("object at focal point", func(t *testing.T) {
		assert.True(t, math.IsInf(ImageDistance(f, f), 1))
		assert.True(t, math.IsInf(Magnification(f, ImageDistance(f, f)), 1))
	})

	t.Run("object at infinity", func(t *testing.T) {
		assert.InDelta(t, f, ImageDistance(f, math.Inf(1)), 1e-9)
	})
}

func TestMagnification(t *testing.T) {
	assert.InDelta(t, 0.5, Magnification(-20, 10), 1e-12)
	assert.InDelta(t, 2.0, Magnification(10, -20), 1e-12)
}

func TestEffectiveAperture(t *testing.T) {
	f, mu := 78.0, 1/beAtlen10keV
	sigma := math.Sqrt(f * beDelta10keV / mu)

	assert.InDelta(t, FWHMPerSigma*sigma, FWHM.EffectiveAperture(f, beDelta10keV, mu), 1e-15)
	assert.InDelta(t, sigma, Sigma.EffectiveAperture(f, beDelta10keV, mu), 1e-15)
}

func TestCombinedEffectiveAperture(t *testing.T) {
	assert.InDelta(t, 2e-3, CombinedEffectiveAperture(math.Inf(1), 2e-3), 1e-15)
	assert.InDelta(t, 1e-3/math.Sqrt2, CombinedEffectiveAperture(1e-3, 1e-3), 1e-15)
	assert.InDelta(t,
		CombinedEffectiveAperture(1e-3, 3e-3),
		CombinedEffectiveAperture(3e-3, 1e-3), 1e-15)
}

func TestDiffractionLimit(t *testing.T) {
	a, aeff, lambda, l2 := 1400e-6, 3.48e-3, Wavelength(10300), 40.0

	sigma := aeff / FWHMPerSigma
	w := 1 / (1 + math.Pow(a/(6*sigma), 6))
	x := aeff / a
	k := x + math.Exp(-x)*w/6 + 0.442*(1-w)

	assert.InDelta(t, k*lambda*l2/aeff, DiffractionLimit(l2, a, aeff, lambda), 1e-15)
	assert.Equal(t, DiffractionLimit(l2, a, aeff, lambda), DiffractionLimit(-l2, a, aeff, lambda),
		"diffraction limit is an absolute size")
}

func TestFocusSize(t *testing.T) {
	assert.InDelta(t, 5.0, FocusSize(1, 3, 4), 1e-12)
	assert.InDelta(t, 4.0, FocusSize(0, 3, 4), 1e-12)
}

func TestEntranceSizes(t *testing.T) {
	assert.InDelta(t, math.Hypot(27*22e-6, 77e-6), EntranceSizeFirstLens(27, 22e-6, 77e-6), 1e-15)
	assert.InDelta(t, 1e-3*0.5, EntranceSizeNextLens(2, 1e-3, 1), 1e-15)
	assert.InDelta(t, 1e-3*0.5, EntranceSizeNextLens(2, 1e-3, 3), 1e-15)
	assert.True(t, math.IsInf(EntranceSizeNextLens(0, 1e-3, 1), 1))
}

func TestLimitingAperture(t *testing.T) {
	t.Run("beam narrower than aperture", func(t *testing.T) {
		got := LimitingAperture(1e-3, 3e-4, 4e-4)
		assert.InDelta(t, 1/math.Sqrt(1/(3e-4*3e-4)+1/(4e-4*4e-4)), got, 1e-15)
		assert.Less(t, got, 3e-4)
	})

	t.Run("hard stop", func(t *testing.T) {
		assert.Equal(t, 1e-4, LimitingAperture(1e-4, 3e-4, 4e-4))
	})

	t.Run("infinite entrance", func(t *testing.T) {
		assert.Equal(t, 1e-4, LimitingAperture(1e-4, math.Inf(1), 4e-4))
	})
}

func TestTransmissionBounds(t *testing.T) {
	mu := 1 / beAtlen10keV
	cases := []struct {
		name string
		a    float64
		sfp  float64
		aeff float64
	}{
		{"large aperture", 1400e-6, 100e-6, 3.5e-3},
		{"beam wider than aperture", 440e-6, 2e-3, 1e-3},
		{"matched", 800e-6, 800e-6, 1e-3},
		{"absorption limited", 1400e-6, 1e-3, 2e-4},
	}

	for _, conv := range []Convention{FWHM, Sigma} {
		for _, tc := range cases {
			t.Run(conv.String()+"/"+tc.name, func(t *testing.T) {
				al := LimitingAperture(tc.a, tc.sfp, tc.aeff)
				got := conv.Transmission(tc.a, al, al, tc.sfp, tc.sfp, mu, 30e-6)
				assert.GreaterOrEqual(t, got, 0.0)
				assert.LessOrEqual(t, got, 1.0)
			})
		}
	}
}

func TestTransmissionAbsorptionOnly(t *testing.T) {
	// Identical limiting and entrance sizes leave only the web absorption.
	mu, d := 1/beAtlen10keV, 30e-6
	got := FWHM.Transmission(1e-3, 2e-4, 3e-4, 2e-4, 3e-4, mu, d)
	assert.InDelta(t, math.Exp(-mu*d), got, 1e-12)
}

func TestGain(t *testing.T) {
	assert.InDelta(t, 0.5*4*6/(2*3), Gain(0.5, 4, 6, 2, 3), 1e-12)
}

func TestGainCombine(t *testing.T) {
	values := []float64{0, 0.3, 1, 2.5, 17}
	for _, g1 := range values {
		for _, g2 := range values {
			assert.Equal(t, GainCombine(g1, g2), GainCombine(g2, g1))
		}
		assert.InDelta(t, g1, GainCombine(g1, 0), 1e-12)
	}
	assert.InDelta(t, 5.0, GainCombine(3, 4), 1e-12)
}

func TestTransmissionCombine(t *testing.T) {
	a, b, c := 0.9, 0.7, 0.35
	assert.InDelta(t, TransmissionCombine(a, b), TransmissionCombine(b, a), 1e-15)
	assert.InDelta(t,
		TransmissionCombine(TransmissionCombine(a, b), c),
		TransmissionCombine(a, TransmissionCombine(b, c)), 1e-15)
	assert.Equal(t, a, TransmissionCombine(a, 1))
}

func TestDepthOfField(t *testing.T) {
	lambda := Wavelength(10300)

	t.Run("regular", func(t *testing.T) {
		l2, sf, al, f, aeff := 30.0, 5e-6, 4e-4, 20.0, 1e-3
		dof := DepthOfField(l2, sf, al, lambda, f, aeff)

		na := aeff / (2 * f)
		assert.InDelta(t, lambda/(na*na), dof.Diffractive, 1e-12)
		assert.InDelta(t, 2*l2*sf/al, dof.Geometric, 1e-12)
		assert.InDelta(t, math.Hypot(dof.Diffractive, dof.Geometric), dof.Total, 1e-12)
	})

	t.Run("zero focal length", func(t *testing.T) {
		assert.Equal(t, DOF{}, DepthOfField(30, 5e-6, 4e-4, lambda, 0, 1e-3))
	})

	t.Run("zero limiting aperture", func(t *testing.T) {
		dof := DepthOfField(30, 5e-6, 0, lambda, 20, 1e-3)
		assert.True(t, math.IsInf(dof.Geometric, 1))
		assert.True(t, math.IsInf(dof.Total, 1))
	})

	t.Run("zero numerical aperture", func(t *testing.T) {
		dof := DepthOfField(30, 5e-6, 4e-4, lambda, 20, 0)
		assert.True(t, math.IsInf(dof.Total, 1))
		assert.Zero(t, dof.Diffractive)
		assert.Zero(t, dof.Geometric)
	})
}

func TestWavelength(t *testing.T) {
	assert.InDelta(t, 1.2037e-10, Wavelength(10300), 1e-14)
}

func TestParseConvention(t *testing.T) {
	tests := []struct {
		in      string
		want    Convention
		wantErr bool
	}{
		{"", FWHM, false},
		{"fwhm", FWHM, false},
		{"FWHM", FWHM, false},
		{"sigma", Sigma, false},
		{"rms", Sigma, false},
		{"gauss", FWHM, true},
	}
	for _, tt := range tests {
		got, err := ParseConvention(tt.in)
		if tt.wantErr {
			require.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestConventionText(t *testing.T) {
	var c Convention
	require.NoError(t, c.UnmarshalText([]byte("sigma")))
	assert.Equal(t, Sigma, c)

	b, err := c.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "sigma", string(b))

	assert.InDelta(t, 1.0, Sigma.FromFWHM(FWHMPerSigma), 1e-12)
	assert.Equal(t, 3.0, FWHM.FromFWHM(3))
}
