// Package cache provides the storage layer shared by the optical-constants
// providers and the calculation pipeline.
//
// # Backends
//
//   - [FileCache]: JSON entries under ~/.cache/tfcalc, used by the CLI
//   - [RedisCache]: shared cache for the API server
//   - [NullCache]: disables caching (--no-cache)
//
// All backends store opaque bytes with an optional TTL. Callers decide
// what to serialize.
//
// # Keys
//
// Keys are produced by a [Keyer] so that every component uses the same
// namespacing:
//
//	keyer := cache.NewDefaultKeyer()
//	key := keyer.ConstantsKey("Be", 1.848, 10300)
//	data, ok, err := c.Get(ctx, key)
//
// A [ScopedKeyer] prefixes every key, which separates tenants or
// deployments that share one Redis instance.
package cache

import (
	"context"
	"time"
)

// Default TTLs.
const (
	// ConstantsTTL is how long looked-up optical constants stay valid.
	ConstantsTTL = 30 * 24 * time.Hour

	// ReportTTL is how long a computed report stays valid.
	ReportTTL = 7 * 24 * time.Hour
)

// Cache stores opaque values by key.
type Cache interface {
	// Get returns the value for key. The bool reports a hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// ReportKeyOpts are the run options that change a report for an
// otherwise identical beamline.
type ReportKeyOpts struct {
	Convention string  `json:"convention"`
	Energy     float64 `json:"energy,omitempty"`
	Symmetry   bool    `json:"symmetry,omitempty"`
	Settings   string  `json:"settings,omitempty"` // hash of geometry settings
	Provider   string  `json:"provider,omitempty"` // optical-constants provider fingerprint
}

// Keyer generates cache keys.
type Keyer interface {
	// HTTPKey is the key for a cached remote response.
	HTTPKey(namespace, key string) string

	// ConstantsKey is the key for optical constants of one material at one energy.
	ConstantsKey(material string, density, energy float64) string

	// ReportKey is the key for a report of the beamline with the given hash.
	ReportKey(beamlineHash string, opts ReportKeyOpts) string
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// ConstantsKey hashes material, density and energy.
func (DefaultKeyer) ConstantsKey(material string, density, energy float64) string {
	return hashKey("constants", material, density, energy)
}

// ReportKey hashes the beamline hash together with the run options.
func (DefaultKeyer) ReportKey(beamlineHash string, opts ReportKeyOpts) string {
	return hashKey("report", beamlineHash, opts)
}

var _ Keyer = DefaultKeyer{}
