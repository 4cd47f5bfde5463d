package cache

// ScopedKeyer wraps a Keyer with a prefix so that several deployments can
// share one backend without colliding.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// HTTPKey generates a prefixed key for remote response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// ConstantsKey generates a prefixed key for optical constants.
func (k *ScopedKeyer) ConstantsKey(material string, density, energy float64) string {
	return k.prefix + k.inner.ConstantsKey(material, density, energy)
}

// ReportKey generates a prefixed key for a computed report.
func (k *ScopedKeyer) ReportKey(beamlineHash string, opts ReportKeyOpts) string {
	return k.prefix + k.inner.ReportKey(beamlineHash, opts)
}
