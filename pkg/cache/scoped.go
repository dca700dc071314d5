package cache

// ScopedKeyer wraps a Keyer with a prefix, giving each tenant of a shared
// backend its own namespace.
//
// Example usage:
//
//	// Per-workspace keys on a shared Redis
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "workspace:atelier:")
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

// InstanceKey generates a prefixed key for pattern instances.
func (k *ScopedKeyer) InstanceKey(templateHash string, opts InstanceKeyOpts) string {
	return k.prefix + k.inner.InstanceKey(templateHash, opts)
}

// ArtifactKey generates a prefixed key for rendered artifacts.
func (k *ScopedKeyer) ArtifactKey(instanceHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(instanceHash, opts)
}
