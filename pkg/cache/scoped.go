package cache

// ScopedKeyer wraps a Keyer with a prefix so that several maps can share one
// backend. The server scopes keys by the name of the map it serves.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "map:calculus:")
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

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(sourceHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(sourceHash, opts)
}

// UserKey generates a prefixed user-state key.
func (k *ScopedKeyer) UserKey(userID string) string {
	return k.prefix + k.inner.UserKey(userID)
}
