// Package buildinfo carries the version stamped into a release binary.
//
// Release builds set the variables with the linker:
//
//	go build -ldflags "\
//	  -X github.com/matzehuels/langpatch/pkg/buildinfo.Version=v0.3.0 \
//	  -X github.com/matzehuels/langpatch/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	  -X github.com/matzehuels/langpatch/pkg/buildinfo.Date=$(date -u +%FT%TZ)" \
//	  ./cmd/langpatch
//
// A plain go build leaves the development defaults in place.
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String describes the build on three lines.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template is the cobra version template: the command name followed by
// [String].
func Template() string {
	return "{{.Name}} " + String() + "\n"
}

// UserAgent identifies langpatch to archive hosts and registry mirrors.
func UserAgent() string {
	return "langpatch/" + Version + " (+https://github.com/matzehuels/langpatch)"
}
