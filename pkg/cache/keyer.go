package cache

// Keyer builds cache keys.
type Keyer interface {
	// LanguagesKey is the key of the language set detected in the archive
	// with the given content digest.
	LanguagesKey(digest string) string
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LanguagesKey returns "langs:<digest>".
func (DefaultKeyer) LanguagesKey(digest string) string {
	return KeyTypeLanguages + ":" + digest
}

// KeyTypeLanguages is the key namespace reported to cache hooks.
const KeyTypeLanguages = "langs"
