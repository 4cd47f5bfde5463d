// Package materials resolves the optical constants of lens materials.
//
// The propagation engine needs, for every lens, the refractive-index
// decrement δ, the absorption index β and the attenuation length of the lens
// material at the run's photon energy. This package defines the [Provider]
// contract for that lookup and ships three implementations:
//
//   - [Table]: tabulated points with log-log interpolation, built in for
//     beryllium and extendable from a TOML file
//   - [Remote]: a client for an HTTP constants service
//   - [Cached]: a decorator that stores lookups in a [cache.Cache]
//
// A failed lookup is always an error with code LOOKUP_FAILED. Zero
// constants would describe a lens that neither focuses nor absorbs, so no
// provider ever substitutes them.
//
// [cache.Cache]: github.com/matzehuels/transfocator/pkg/cache.Cache
package materials

import (
	"context"
	"fmt"
	"math"

	"github.com/matzehuels/transfocator/pkg/errors"
)

// DefaultMaterial is the lens material used when none is given.
const DefaultMaterial = "Be"

// Constants are the optical constants of one material at one energy.
type Constants struct {
	Delta             float64 `json:"delta" toml:"delta" bson:"delta"`
	Beta              float64 `json:"beta" toml:"beta" bson:"beta"`
	AttenuationLength float64 `json:"attenuation_length" toml:"attenuation_length" bson:"attenuation_length"` // metres
}

// Mu is the linear attenuation coefficient in 1/m.
func (c Constants) Mu() float64 {
	return 1 / c.AttenuationLength
}

// Validate rejects constants that cannot describe a real lens.
func (c Constants) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"delta", c.Delta},
		{"beta", c.Beta},
		{"attenuation_length", c.AttenuationLength},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v <= 0 {
			return errors.New(errors.ErrCodeLookupFailed, "%s must be positive and finite, got %g", f.name, f.v)
		}
	}
	return nil
}

// Provider looks up optical constants.
// Implementations must be safe for concurrent use.
type Provider interface {
	Lookup(ctx context.Context, material string, density, energy float64) (Constants, error)
}

// Fingerprinter is implemented by providers that can name the data they
// serve. Two providers with equal fingerprints return equal constants.
type Fingerprinter interface {
	Fingerprint() string
}

// FingerprintOf identifies the constants p serves, for use in cache keys.
// Providers without a fingerprint are identified by their type only.
func FingerprintOf(p Provider) string {
	if p == nil {
		return ""
	}
	if f, ok := p.(Fingerprinter); ok {
		return f.Fingerprint()
	}
	return fmt.Sprintf("%T", p)
}

// Densities is implemented by providers that also know material densities.
type Densities interface {
	Density(ctx context.Context, material string) (float64, error)
}

// fallbackDensities in g/cm³.
var fallbackDensities = map[string]float64{
	"Be": 1.848,
	"Al": 2.7,
	"Si": 2.33,
	"Ni": 8.9,
}

// FallbackDensity returns the built-in density of a common lens material.
func FallbackDensity(material string) (float64, bool) {
	d, ok := fallbackDensities[material]
	return d, ok
}

// DensityOf asks p for the density of material and falls back to the
// built-in table when p does not know it.
func DensityOf(ctx context.Context, p Provider, material string) (float64, error) {
	if ds, ok := p.(Densities); ok {
		if d, err := ds.Density(ctx, material); err == nil && d > 0 {
			return d, nil
		}
	}
	if d, ok := FallbackDensity(material); ok {
		return d, nil
	}
	return 0, errors.New(errors.ErrCodeLookupFailed, "no density known for %q", material)
}
