package httputil

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// ErrExpired is returned by [Cache.Get] when an entry exists but is older
// than the cache TTL. The entry stays on disk until the next [Cache.Set].
var ErrExpired = errors.New("cache entry expired")

// Cache keeps JSON documents fetched over HTTP, such as remote registry
// indexes, in flat files named by the SHA-256 of their key. Freshness is
// judged by file modification time; a zero TTL never expires.
//
// A Cache is not safe for concurrent writes to the same key.
type Cache struct {
	dir    string
	ttl    time.Duration
	prefix string
}

// DefaultDir returns $XDG_CACHE_HOME/langpatch/http, falling back to
// ~/.cache/langpatch/http.
func DefaultDir() (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, "langpatch", "http"), nil
}

// NewCache opens a cache in dir, creating it when missing. An empty dir
// selects [DefaultDir].
func NewCache(dir string, ttl time.Duration) (*Cache, error) {
	if dir == "" {
		var err error
		if dir, err = DefaultDir(); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir, ttl: ttl}, nil
}

func (c *Cache) Dir() string        { return c.dir }
func (c *Cache) TTL() time.Duration { return c.ttl }

// Namespace returns a view whose keys are prefixed with prefix. Views
// share the directory and TTL and can be nested.
func (c *Cache) Namespace(prefix string) *Cache {
	ns := *c
	ns.prefix += prefix
	return &ns
}

// Get decodes the entry for key into v and reports whether there was one.
// A stale entry yields ErrExpired and leaves v untouched.
func (c *Cache) Get(key string, v any) (bool, error) {
	p := c.keyPath(key)
	fi, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if c.ttl > 0 && time.Since(fi.ModTime()) > c.ttl {
		return false, ErrExpired
	}

	data, err := os.ReadFile(p)
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, err
	}
	return true, nil
}

// Set encodes v under key and restarts its TTL.
func (c *Cache) Set(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(c.keyPath(key), data, 0o644)
}

// Delete removes key. A missing key is not an error.
func (c *Cache) Delete(key string) error {
	if err := os.Remove(c.keyPath(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// keyPath maps key, after the namespace prefix is applied, to its file.
func (c *Cache) keyPath(key string) string {
	sum := sha256.Sum256([]byte(c.prefix + key))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:]))
}
