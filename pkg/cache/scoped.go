package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation. On a
// shared Redis instance, different clusters or experiments can keep
// separate table caches without coordinating key formats.
//
// Example usage:
//
//	// Keys for one experiment's tables
//	keyer := cache.NewScopedKeyer(nil, "exp42:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to every key.
// A nil inner keyer falls back to the DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// TableKey generates a prefixed key for a reachability table.
func (k *ScopedKeyer) TableKey(width, depth int) string {
	return k.prefix + k.inner.TableKey(width, depth)
}
