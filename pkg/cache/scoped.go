package cache

// ScopedKeyer prefixes every key of another [Keyer]. Runs against
// different registries share one Redis instance by giving each its own
// prefix, since the same digest may be listed with different archives.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer returns a keyer that prepends prefix to the keys of
// inner. A nil inner selects [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = DefaultKeyer{}
	}
	return ScopedKeyer{inner: inner, prefix: prefix}
}

func (k ScopedKeyer) LanguagesKey(digest string) string {
	return k.prefix + k.inner.LanguagesKey(digest)
}
