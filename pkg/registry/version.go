package registry

import (
	"cmp"
	"strings"

	"pault.ag/go/debian/version"
)

// developNames are version names that track a branch rather than a release.
var developNames = map[string]bool{
	"develop": true, "main": true, "master": true, "head": true,
	"trunk": true, "stable": true, "nightly": true,
}

// IsDevelop reports whether v names a development branch.
func (v Version) IsDevelop() bool {
	return developNames[strings.ToLower(v.Version)]
}

// preferenceCompare orders versions by (preferred, not deprecated,
// not develop, version).
func preferenceCompare(a, b Version) int {
	if c := compareBool(a.Preferred, b.Preferred); c != 0 {
		return c
	}
	if c := compareBool(!a.Deprecated, !b.Deprecated); c != 0 {
		return c
	}
	if c := compareBool(!a.IsDevelop(), !b.IsDevelop()); c != 0 {
		return c
	}
	return CompareVersions(a.Version, b.Version)
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return 1
	default:
		return -1
	}
}

// CompareVersions orders version strings with Debian version semantics
// ("1.10" > "1.9", "1.0~rc1" < "1.0"). Strings that do not parse as
// versions sort below those that do and are compared lexically.
func CompareVersions(a, b string) int {
	va, errA := version.Parse(a)
	vb, errB := version.Parse(b)
	switch {
	case errA == nil && errB == nil:
		return version.Compare(va, vb)
	case errA == nil:
		return 1
	case errB == nil:
		return -1
	default:
		return cmp.Compare(a, b)
	}
}
