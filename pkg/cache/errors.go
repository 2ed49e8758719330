package cache

import "errors"

// ErrUnsupportedURL is returned by [New] for cache URLs with an unknown scheme.
var ErrUnsupportedURL = errors.New("unsupported cache URL (want redis:// or rediss://)")
