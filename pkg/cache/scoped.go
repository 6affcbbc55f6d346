package cache

// ScopedKeyer wraps a Keyer with a prefix for per-user isolation.
// This is useful when several people share one Redis backend and must not
// see each other's canvases.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "user:alice:")
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

// PositionsKey generates a prefixed key for the position cache.
func (k *ScopedKeyer) PositionsKey(graphID string, opts PositionsKeyOpts) string {
	return k.prefix + k.inner.PositionsKey(graphID, opts)
}

// CollapseKey generates a prefixed key for the collapsed set.
func (k *ScopedKeyer) CollapseKey(graphID string) string {
	return k.prefix + k.inner.CollapseKey(graphID)
}
