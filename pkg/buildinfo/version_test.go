package buildinfo

import (
	"strings"
	"testing"
)

func stamp(t *testing.T, version, commit, date string) {
	t.Helper()
	Version, Commit, Date = version, commit, date
	t.Cleanup(func() { Version, Commit, Date = "dev", "none", "unknown" })
}

func TestTemplate(t *testing.T) {
	stamp(t, "v0.3.0", "abc123", "2026-01-02T03:04:05Z")

	want := "{{.Name}} version: v0.3.0\ncommit: abc123\nbuilt: 2026-01-02T03:04:05Z\n"
	if got := Template(); got != want {
		t.Errorf("Template() = %q, want %q", got, want)
	}
	if !strings.HasPrefix(String(), "version: v0.3.0\n") {
		t.Errorf("String() = %q", String())
	}
}

func TestUserAgent(t *testing.T) {
	if got := UserAgent(); !strings.HasPrefix(got, "langpatch/dev ") {
		t.Errorf("UserAgent() = %q, want langpatch/dev prefix", got)
	}

	stamp(t, "v1.0.0", "", "")
	if got := UserAgent(); !strings.HasPrefix(got, "langpatch/v1.0.0 ") {
		t.Errorf("stamped UserAgent() = %q", got)
	}
}
