// Package pipeline drives a patching run over a package index.
//
// A run walks the index in batches. For each batch it:
//
//  1. resolves every package's preferred version to a download URL and digest
//  2. drops digests that were already downloaded or classified (this run,
//     or a previous run through the result cache)
//  3. downloads the remaining archives, named by digest
//  4. lists each archive's members and classifies them into a language set
//  5. patches the definition of every package whose digest has a non-empty
//     language set, inserting one generated depends_on line per language
//
// Failures are local: a package that cannot be resolved, downloaded,
// classified or anchored is reported with a [Status] and the run continues.
// Only an out-of-range insertion line aborts the run, since it means the
// anchor locator and the patch writer disagree about the text.
//
// # Usage
//
//	runner := pipeline.NewRunner(fetcher, resultCache, nil, logger)
//	report, err := runner.Run(ctx, index.Packages, pipeline.Options{
//	    Repo:        "/path/to/repo",
//	    DownloadDir: "downloads",
//	})
package pipeline

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/langpatch/pkg/langs"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultBatchSize is the number of packages downloaded together.
	DefaultBatchSize = 100

	// DefaultDownloadDir holds the archives of the current batch.
	DefaultDownloadDir = "downloads"

	// DefaultCacheTTL is how long a digest's language set stays cached.
	DefaultCacheTTL = 30 * 24 * time.Hour
)

// =============================================================================
// Options
// =============================================================================

// Options configures a run.
type Options struct {
	// Repo is the repository root that definition paths are relative to.
	Repo string
	// BatchSize is the number of packages per download batch.
	BatchSize int
	// DownloadDir receives the archives of the current batch, each named by
	// its digest. Archives from earlier batches are removed when a batch
	// starts; other files in the directory are never touched.
	DownloadDir string
	// StartAt skips packages before the one with this name.
	StartAt string
	// DryRun computes patches without writing definitions.
	DryRun bool
	// Refresh ignores cached language sets (they are still written).
	Refresh bool
	// KeepDownloads leaves the downloaded archives in place after the run.
	// Otherwise they are removed, and so is DownloadDir if the run created
	// it.
	KeepDownloads bool
	// CacheTTL is the lifetime of cached language sets.
	CacheTTL time.Duration

	Logger *log.Logger
}

// ValidateAndSetDefaults checks required fields and applies defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Repo == "" {
		return fmt.Errorf("repo is required")
	}
	if o.BatchSize < 0 {
		return fmt.Errorf("batch size must be positive, got %d", o.BatchSize)
	}
	if o.BatchSize == 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.DownloadDir == "" {
		o.DownloadDir = DefaultDownloadDir
	}
	if o.CacheTTL == 0 {
		o.CacheTTL = DefaultCacheTTL
	}
	return nil
}

// =============================================================================
// Results
// =============================================================================

// Status is the final state of one package in a run.
type Status string

const (
	StatusPatched        Status = "patched"
	StatusAlreadyPatched Status = "already-patched"
	StatusNoURL          Status = "no-url"
	StatusNoDigest       Status = "no-digest"
	StatusNoLanguages    Status = "no-languages"
	StatusNoDefinition   Status = "no-definition"
	StatusNoAnchor       Status = "no-anchor"
	StatusSyntaxError    Status = "syntax-error"
	StatusError          Status = "error"
)

// Statuses lists every status in display order.
var Statuses = []Status{
	StatusPatched, StatusAlreadyPatched,
	StatusNoURL, StatusNoDigest, StatusNoLanguages,
	StatusNoDefinition, StatusNoAnchor, StatusSyntaxError, StatusError,
}

// Skipped reports whether s leaves the definition untouched.
func (s Status) Skipped() bool {
	return s != StatusPatched && s != StatusAlreadyPatched
}

// Outcome is the result for one package.
type Outcome struct {
	Package   string    `json:"package"`
	Version   string    `json:"version,omitempty"`
	Digest    string    `json:"digest,omitempty"`
	Status    Status    `json:"status"`
	Languages langs.Set `json:"languages"`
	// Added lists the languages inserted by this run.
	Added  langs.Set `json:"added"`
	File   string    `json:"file,omitempty"`
	Line   int       `json:"line,omitempty"`
	Reason string    `json:"reason,omitempty"`
}

// Stats summarises a run.
type Stats struct {
	Packages    int            `json:"packages"`
	Batches     int            `json:"batches"`
	Downloads   int            `json:"downloads"`
	Partial     int            `json:"partial"`
	FetchFailed int            `json:"fetch_failed"`
	CacheHits   int            `json:"cache_hits"`
	Archives    int            `json:"archives"`
	ByStatus    map[Status]int `json:"by_status"`
	Duration    time.Duration  `json:"duration"`
}

// Report is the result of [Runner.Run].
type Report struct {
	RunID    string    `json:"run_id"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
	DryRun   bool      `json:"dry_run"`
	Outcomes []Outcome `json:"outcomes"`
	Stats    Stats     `json:"stats"`
}

func (r *Report) add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	r.Stats.ByStatus[o.Status]++
}
