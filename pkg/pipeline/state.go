package pipeline

import "github.com/matzehuels/langpatch/pkg/langs"

// State is the run-scoped digest bookkeeping. Both maps are written once
// per key and only grow. Passing a State to several runs shares what they
// learned.
type State struct {
	// Downloaded holds digests that were requested from the network or
	// resolved from the result cache.
	Downloaded map[string]bool
	// Languages maps a digest to its non-empty language set.
	Languages map[string]langs.Set
}

// NewState returns an empty State.
func NewState() *State {
	return &State{
		Downloaded: make(map[string]bool),
		Languages:  make(map[string]langs.Set),
	}
}

// Seen reports whether digest needs no further download.
func (s *State) Seen(digest string) bool {
	return s.Downloaded[digest]
}

// MarkDownloaded records that digest has been taken care of.
func (s *State) MarkDownloaded(digest string) {
	s.Downloaded[digest] = true
}

// Record stores the language set of digest. Empty sets and digests that
// already have a set are ignored.
func (s *State) Record(digest string, set langs.Set) bool {
	if set.Empty() {
		return false
	}
	if _, ok := s.Languages[digest]; ok {
		return false
	}
	s.Languages[digest] = set
	return true
}

// Lookup returns the language set recorded for digest.
func (s *State) Lookup(digest string) (langs.Set, bool) {
	set, ok := s.Languages[digest]
	return set, ok
}
