package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	errs "github.com/matzehuels/langpatch/pkg/errors"
)

// DigestAlgorithms lists the checksum keys consulted by [Version.Digest],
// in priority order.
var DigestAlgorithms = []string{"md5", "sha1", "sha224", "sha256", "sha384", "sha512", "checksum"}

// Version is one entry of a package's version table.
type Version struct {
	Version    string            `json:"version"`
	URL        string            `json:"url,omitempty"`
	Preferred  bool              `json:"preferred,omitempty"`
	Deprecated bool              `json:"deprecated,omitempty"`
	Checksums  map[string]string `json:"checksums,omitempty"`
}

// Digest returns the first checksum present in [DigestAlgorithms] order.
func (v Version) Digest() (string, bool) {
	for _, alg := range DigestAlgorithms {
		if d, ok := v.Checksums[alg]; ok && d != "" {
			return d, true
		}
	}
	return "", false
}

// Package describes one package of the index.
type Package struct {
	Name string `json:"name"`
	// Class is the definition's class name. Empty means derived from Name.
	Class string `json:"class,omitempty"`
	// File is the definition path relative to the repository root. Empty
	// means packages/<name>/package.py.
	File string `json:"file,omitempty"`
	// Bundle packages have no source code of their own.
	Bundle   bool      `json:"bundle,omitempty"`
	Versions []Version `json:"versions,omitempty"`
}

// HasCode reports whether the package has source archives to inspect.
func (p *Package) HasCode() bool {
	return !p.Bundle && len(p.Versions) > 0
}

// ClassName returns the definition class name.
func (p *Package) ClassName() string {
	if p.Class != "" {
		return p.Class
	}
	return ClassName(p.Name)
}

// DefinitionPath resolves the definition file under the repository root.
func (p *Package) DefinitionPath(repo string) string {
	if p.File != "" {
		return filepath.Join(repo, filepath.FromSlash(p.File))
	}
	return filepath.Join(repo, "packages", p.Name, "package.py")
}

// PreferredVersion returns the version a build would pick by default.
func (p *Package) PreferredVersion() (Version, bool) {
	if len(p.Versions) == 0 {
		return Version{}, false
	}
	best := p.Versions[0]
	for _, v := range p.Versions[1:] {
		if preferenceCompare(v, best) > 0 {
			best = v
		}
	}
	return best, true
}

// Source returns the download URL and content digest of the preferred
// version.
func (p *Package) Source() (Version, string, error) {
	v, ok := p.PreferredVersion()
	if !ok {
		return Version{}, "", errs.New(errs.ErrCodeNoVersions, "%s has no versions", p.Name)
	}
	if err := errs.ValidateFetchURL(v.URL); err != nil {
		return v, "", err
	}
	digest, ok := v.Digest()
	if !ok {
		return v, "", errs.New(errs.ErrCodeNoUsableDigest, "%s@%s has no checksum", p.Name, v.Version)
	}
	if err := errs.ValidateDigest(digest); err != nil {
		return v, "", err
	}
	return v, digest, nil
}

var wordBreak = regexp.MustCompile(`[-_]`)

// ClassName converts a package name to its definition class name:
// "py-numpy" becomes "PyNumpy" and "3proxy" becomes "_3proxy".
func ClassName(name string) string {
	var b strings.Builder
	for _, part := range wordBreak.Split(name, -1) {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(strings.ToLower(part[1:]))
	}
	cls := b.String()
	if cls == "" || !isClassStart(cls[0]) {
		cls = "_" + cls
	}
	return cls
}

func isClassStart(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// Index is the decoded package index.
type Index struct {
	Packages []Package `json:"packages"`
}

// Parse decodes and validates an index document. Packages are sorted by
// name; duplicate or unsafe names are rejected.
func Parse(data []byte) (*Index, error) {
	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidIndex, err, "decode index")
	}
	if err := idx.validate(); err != nil {
		return nil, err
	}
	return &idx, nil
}

func (ix *Index) validate() error {
	seen := make(map[string]bool, len(ix.Packages))
	for i := range ix.Packages {
		p := &ix.Packages[i]
		if err := errs.ValidatePackageName(p.Name); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidIndex, err, "package #%d", i)
		}
		if seen[p.Name] {
			return errs.New(errs.ErrCodeInvalidIndex, "duplicate package %q", p.Name)
		}
		seen[p.Name] = true
		if p.File != "" {
			if err := errs.ValidatePath(p.File); err != nil {
				return errs.Wrap(errs.ErrCodeInvalidIndex, err, "package %s", p.Name)
			}
		}
	}
	slices.SortFunc(ix.Packages, func(a, b Package) int { return strings.Compare(a.Name, b.Name) })
	return nil
}

// Lookup returns the package named name.
func (ix *Index) Lookup(name string) (*Package, bool) {
	i, ok := slices.BinarySearchFunc(ix.Packages, name, func(p Package, n string) int {
		return strings.Compare(p.Name, n)
	})
	if !ok {
		return nil, false
	}
	return &ix.Packages[i], true
}

// LoadOptions configures [Load].
type LoadOptions struct {
	// Client fetches remote indexes. Nil selects a client without cache.
	Client *Client
	// Refresh bypasses the client cache.
	Refresh bool
}

// Load reads an index from a local path or an http(s) URL.
func Load(ctx context.Context, src string, opts LoadOptions) (*Index, error) {
	if u, err := url.Parse(src); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		client := opts.Client
		if client == nil {
			client = NewClient(nil, nil, nil)
		}
		var raw json.RawMessage
		err := client.Cached(ctx, "index:"+src, opts.Refresh, &raw, func() error {
			return client.Get(ctx, src, &raw)
		})
		if err != nil {
			return nil, fmt.Errorf("fetch index %s: %w", src, err)
		}
		return Parse(raw)
	}

	data, err := os.ReadFile(src)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "index %s", src)
		}
		return nil, fmt.Errorf("read index: %w", err)
	}
	return Parse(data)
}
