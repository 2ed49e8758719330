package errors

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

const (
	maxPackageName = 256
	maxDefinition  = 500
	maxDigest      = 256
)

// hasControl reports whether s holds a control character, NUL included.
func hasControl(s string) bool {
	return strings.IndexFunc(s, unicode.IsControl) >= 0
}

// ValidatePackageName checks a registry package name. Names become a
// directory under the repository's packages/ tree, so anything that could
// leave that directory is rejected.
func ValidatePackageName(name string) error {
	switch {
	case name == "":
		return New(ErrCodeInvalidPackage, "package name cannot be empty")
	case len(name) > maxPackageName:
		return New(ErrCodeInvalidPackage, "package name too long (max %d characters)", maxPackageName)
	case hasControl(name):
		return New(ErrCodeInvalidPackage, "package name contains control characters")
	}
	for _, bad := range []string{"..", "/", "\\"} {
		if strings.Contains(name, bad) {
			return New(ErrCodeInvalidPackage, "package name contains %q", bad)
		}
	}
	return nil
}

// ValidatePath checks an explicit definition file path from the index. It
// must be relative to the repository root and stay inside it.
func ValidatePath(path string) error {
	switch {
	case path == "":
		return New(ErrCodeInvalidPath, "path cannot be empty")
	case len(path) > maxDefinition:
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxDefinition)
	case hasControl(path):
		return New(ErrCodeInvalidPath, "path contains control characters")
	case strings.HasPrefix(path, "/"):
		return New(ErrCodeInvalidPath, "path must be relative: %s", path)
	case strings.Contains(path, ".."):
		return New(ErrCodeInvalidPath, "path leaves the repository: %s", path)
	case strings.Contains(path, "\\"):
		return New(ErrCodeInvalidPath, "path uses backslashes: %s", path)
	}
	return nil
}

// ValidateFetchURL checks that a version URL can be downloaded. Only http
// and https qualify.
func ValidateFetchURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeNoUsableURL, "no url")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeNoUsableURL, err, "malformed url")
	}
	switch u.Scheme {
	case "http", "https":
		return nil
	case "file":
		return New(ErrCodeNoUsableURL, "file url")
	default:
		return New(ErrCodeNoUsableURL, "unsupported url scheme: %s", rawURL)
	}
}

var digestToken = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._+=-]*$`)

// ValidateDigest checks a content digest. Downloads are named after their
// digest, so it must be a plain file name token.
func ValidateDigest(digest string) error {
	switch {
	case digest == "":
		return New(ErrCodeNoUsableDigest, "no digest")
	case len(digest) > maxDigest, !digestToken.MatchString(digest):
		return New(ErrCodeNoUsableDigest, "digest is not a plain token: %q", digest)
	}
	return nil
}
