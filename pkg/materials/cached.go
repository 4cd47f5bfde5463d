package materials

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/transfocator/pkg/cache"
	"github.com/matzehuels/transfocator/pkg/observability"
)

// Cached stores successful lookups of an inner provider in a cache.
// Failures are never cached.
type Cached struct {
	inner Provider
	cache cache.Cache
	keyer cache.Keyer
	ttl   time.Duration
}

// NewCached wraps inner. Nil cache or keyer fall back to a null cache and
// the default keyer; a ttl <= 0 uses [cache.ConstantsTTL]. Keys are scoped
// by the inner provider's fingerprint, so providers serving different data
// can share one cache.
func NewCached(inner Provider, c cache.Cache, keyer cache.Keyer, ttl time.Duration) *Cached {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if ttl <= 0 {
		ttl = cache.ConstantsTTL
	}
	keyer = cache.NewScopedKeyer(keyer, FingerprintOf(inner)+":")
	return &Cached{inner: inner, cache: c, keyer: keyer, ttl: ttl}
}

// Lookup serves from cache when possible.
func (c *Cached) Lookup(ctx context.Context, material string, density, energy float64) (Constants, error) {
	key := c.keyer.ConstantsKey(material, density, energy)
	hooks := observability.Cache()

	if data, ok, err := c.cache.Get(ctx, key); err == nil && ok {
		var out Constants
		if json.Unmarshal(data, &out) == nil && out.Validate() == nil {
			hooks.OnCacheHit(ctx, "constants")
			return out, nil
		}
	}
	hooks.OnCacheMiss(ctx, "constants")

	out, err := c.inner.Lookup(ctx, material, density, energy)
	if err != nil {
		return Constants{}, err
	}
	if data, err := json.Marshal(out); err == nil {
		if c.cache.Set(ctx, key, data, c.ttl) == nil {
			hooks.OnCacheSet(ctx, "constants", len(data))
		}
	}
	return out, nil
}

// Fingerprint is the inner provider's fingerprint.
func (c *Cached) Fingerprint() string {
	return FingerprintOf(c.inner)
}

// Density forwards to the inner provider when it knows densities.
func (c *Cached) Density(ctx context.Context, material string) (float64, error) {
	return DensityOf(ctx, c.inner, material)
}

var (
	_ Provider  = (*Cached)(nil)
	_ Densities     = (*Cached)(nil)
	_ Fingerprinter = (*Cached)(nil)
	_ Fingerprinter = (*Table)(nil)
	_ Fingerprinter = (*Remote)(nil)
)
