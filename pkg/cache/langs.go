package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/langpatch/pkg/langs"
	"github.com/matzehuels/langpatch/pkg/observability"
)

// LanguageStore persists detected language sets by archive digest.
type LanguageStore struct {
	Cache Cache
	Keyer Keyer
	TTL   time.Duration
}

// Get returns the cached set for digest. A corrupt entry is a miss.
func (s *LanguageStore) Get(ctx context.Context, digest string) (langs.Set, bool, error) {
	data, ok, err := s.Cache.Get(ctx, s.keyer().LanguagesKey(digest))
	if err != nil {
		return 0, false, err
	}
	var set langs.Set
	if !ok || json.Unmarshal(data, &set) != nil || set.Empty() {
		observability.Cache().OnCacheMiss(ctx, KeyTypeLanguages)
		return 0, false, nil
	}
	observability.Cache().OnCacheHit(ctx, KeyTypeLanguages)
	return set, true, nil
}

// Put stores set for digest. Empty sets carry no information and are not
// stored.
func (s *LanguageStore) Put(ctx context.Context, digest string, set langs.Set) error {
	if set.Empty() {
		return nil
	}
	data, err := json.Marshal(set)
	if err != nil {
		return err
	}
	if err := s.Cache.Set(ctx, s.keyer().LanguagesKey(digest), data, s.TTL); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, KeyTypeLanguages, len(data))
	return nil
}

func (s *LanguageStore) keyer() Keyer {
	if s.Keyer == nil {
		return DefaultKeyer{}
	}
	return s.Keyer
}
