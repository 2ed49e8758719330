package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/langpatch/pkg/anchor"
	"github.com/matzehuels/langpatch/pkg/archive"
	"github.com/matzehuels/langpatch/pkg/cache"
	errs "github.com/matzehuels/langpatch/pkg/errors"
	"github.com/matzehuels/langpatch/pkg/fetch"
	"github.com/matzehuels/langpatch/pkg/observability"
	"github.com/matzehuels/langpatch/pkg/patch"
	"github.com/matzehuels/langpatch/pkg/registry"
)

// Fetcher downloads a batch of archives. [fetch.Fetcher] implements it.
type Fetcher interface {
	Fetch(ctx context.Context, reqs []fetch.Request) []fetch.Result
}

// Runner executes patching runs.
//
// The Runner holds no per-run data except through State, which callers may
// replace to share digest knowledge between runs.
type Runner struct {
	Fetcher Fetcher
	Cache   cache.Cache
	Keyer   cache.Keyer
	Logger  *log.Logger
	State   *State
}

// NewRunner creates a runner.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(f Fetcher, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Fetcher: f,
		Cache:   c,
		Keyer:   keyer,
		Logger:  logger,
		State:   NewState(),
	}
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// Run processes pkgs in batches and returns a report of every package that
// has code. The returned error is non-nil only for cancellation, download
// directory failures, or an out-of-range insertion; the report then covers
// the packages processed so far.
func (r *Runner) Run(ctx context.Context, pkgs []registry.Package, opts Options) (*Report, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)
	if r.State == nil {
		r.State = NewState()
	}

	report := &Report{
		RunID:   uuid.NewString(),
		Started: time.Now(),
		DryRun:  opts.DryRun,
		Stats:   Stats{ByStatus: make(map[Status]int)},
	}
	logger := opts.Logger.With("run", report.RunID[:8])

	work := selectPackages(pkgs, opts.StartAt)
	report.Stats.Packages = len(work)
	logger.Info("starting run", "packages", len(work), "batch_size", opts.BatchSize, "dry_run", opts.DryRun)

	_, statErr := os.Stat(opts.DownloadDir)
	created := errors.Is(statErr, fs.ErrNotExist)
	if err := os.MkdirAll(opts.DownloadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create download dir: %w", err)
	}
	if !opts.KeepDownloads {
		defer func() {
			if err := r.removeDownloads(opts.DownloadDir); err != nil {
				logger.Warn("removing downloads failed", "dir", opts.DownloadDir, "err", err)
			}
			if created {
				// Fails, and keeps the directory, if anything else landed in it.
				_ = os.Remove(opts.DownloadDir)
			}
		}()
	}

	var runErr error
	batch := 0
	for chunk := range slices.Chunk(work, opts.BatchSize) {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		batch++
		report.Stats.Batches++
		if err := r.runBatch(ctx, batch, chunk, opts, logger, report); err != nil {
			runErr = err
			break
		}
	}

	report.Finished = time.Now()
	report.Stats.Duration = report.Finished.Sub(report.Started)
	logger.Info("run finished",
		"patched", report.Stats.ByStatus[StatusPatched],
		"already_patched", report.Stats.ByStatus[StatusAlreadyPatched],
		"duration", report.Stats.Duration.Round(time.Millisecond))
	return report, runErr
}

// selectPackages drops packages before startAt and packages without code.
func selectPackages(pkgs []registry.Package, startAt string) []registry.Package {
	if startAt != "" {
		i := slices.IndexFunc(pkgs, func(p registry.Package) bool { return p.Name == startAt })
		if i < 0 {
			return nil
		}
		pkgs = pkgs[i:]
	}
	out := make([]registry.Package, 0, len(pkgs))
	for _, p := range pkgs {
		if p.HasCode() {
			out = append(out, p)
		}
	}
	return out
}

// pending is a package that resolved to a digest.
type pending struct {
	pkg     *registry.Package
	version string
	digest  string
}

func (r *Runner) runBatch(ctx context.Context, batch int, pkgs []registry.Package, opts Options, logger *log.Logger, report *Report) (err error) {
	hooks := observability.Pipeline()
	hooks.OnBatchStart(ctx, batch, len(pkgs))
	start := time.Now()
	defer func() { hooks.OnBatchComplete(ctx, batch, time.Since(start), err) }()

	logger = logger.With("batch", batch)
	if err := r.removeDownloads(opts.DownloadDir); err != nil {
		return fmt.Errorf("clean download dir: %w", err)
	}

	store := &cache.LanguageStore{Cache: r.Cache, Keyer: r.Keyer, TTL: opts.CacheTTL}

	// Resolve sources and collect the digests that still need a download.
	var resolved []pending
	var reqs []fetch.Request
	for i := range pkgs {
		p := &pkgs[i]
		v, digest, err := p.Source()
		if err != nil {
			o := Outcome{Package: p.Name, Version: v.Version, Status: sourceStatus(err), Reason: errs.UserMessage(err)}
			logger.Warn("skipping", "package", p.Name, "reason", o.Reason)
			report.add(o)
			continue
		}
		resolved = append(resolved, pending{pkg: p, version: v.Version, digest: digest})

		if r.State.Seen(digest) {
			continue
		}
		r.State.MarkDownloaded(digest)

		if !opts.Refresh {
			set, hit, err := store.Get(ctx, digest)
			if err != nil {
				logger.Warn("result cache read failed", "digest", digest, "err", err)
			}
			if hit {
				r.State.Record(digest, set)
				report.Stats.CacheHits++
				continue
			}
		}
		reqs = append(reqs, fetch.Request{URL: v.URL, Dest: filepath.Join(opts.DownloadDir, digest)})
	}

	if len(reqs) > 0 {
		r.download(ctx, batch, reqs, store, logger, report)
	}

	for _, pd := range resolved {
		o, err := r.patchPackage(ctx, pd, opts, logger)
		report.add(o)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) download(ctx context.Context, batch int, reqs []fetch.Request, store *cache.LanguageStore, logger *log.Logger, report *Report) {
	hooks := observability.Pipeline()
	hooks.OnFetchStart(ctx, batch, len(reqs))
	start := time.Now()
	results := r.Fetcher.Fetch(ctx, reqs)

	failed := 0
	for _, res := range results {
		switch {
		case res.OK():
			report.Stats.Downloads++
		case res.Usable():
			report.Stats.Partial++
		default:
			failed++
		}
	}
	report.Stats.FetchFailed += failed
	hooks.OnFetchComplete(ctx, batch, len(results)-failed, failed, time.Since(start))
	logger.Info("downloaded archives", "requested", len(reqs), "failed", failed, "took", time.Since(start).Round(time.Millisecond))

	for _, res := range results {
		if !res.Usable() {
			continue
		}
		digest := filepath.Base(res.Dest)
		set, members, err := ClassifyFile(res.Dest, logger)
		hooks.OnArchiveClassified(ctx, digest, set.Tags(), err)
		if err != nil {
			if errors.Is(err, archive.ErrNotContainer) {
				logger.Info("not an archive", "digest", digest, "url", res.URL)
			} else {
				logger.Warn("cannot read archive", "digest", digest, "err", err)
			}
			continue
		}
		report.Stats.Archives++
		if set.Empty() {
			logger.Debug("no compiled languages", "digest", digest, "members", members)
			continue
		}
		r.State.Record(digest, set)
		logger.Info("classified archive", "digest", digest, "languages", set, "members", members, "partial", res.Partial)
		if err := store.Put(ctx, digest, set); err != nil {
			logger.Warn("result cache write failed", "digest", digest, "err", err)
		}
	}
}

// patchPackage applies the recorded language set of pd's digest to its
// definition. The returned error is fatal to the run.
func (r *Runner) patchPackage(ctx context.Context, pd pending, opts Options, logger *log.Logger) (Outcome, error) {
	p := pd.pkg
	o := Outcome{Package: p.Name, Version: pd.version, Digest: pd.digest}

	set, ok := r.State.Lookup(pd.digest)
	if !ok {
		o.Status, o.Reason = StatusNoLanguages, "no language information for digest"
		logger.Info("skipping", "package", p.Name, "reason", o.Reason)
		return o, nil
	}
	o.Languages = set

	path := p.DefinitionPath(opts.Repo)
	o.File = path
	info, err := os.Stat(path)
	if err != nil {
		o.Status, o.Reason = StatusNoDefinition, err.Error()
		logger.Warn("skipping", "package", p.Name, "reason", o.Reason)
		return o, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		o.Status, o.Reason = StatusError, err.Error()
		logger.Error("read definition", "package", p.Name, "err", err)
		return o, nil
	}
	src := string(data)

	missing := set.Without(patch.Declared(src))
	if missing.Empty() {
		o.Status = StatusAlreadyPatched
		logger.Debug("already patched", "package", p.Name, "languages", set)
		return o, nil
	}

	line, err := anchor.Locate(data, p.ClassName())
	if err != nil {
		o.Status, o.Reason = anchorStatus(err), errs.UserMessage(err)
		observability.Pipeline().OnDefinitionPatched(ctx, p.Name, nil, err)
		logger.Warn("skipping", "package", p.Name, "file", path, "reason", o.Reason)
		return o, nil
	}
	o.Line = line

	out, err := patch.Insert(src, line, patch.Declarations(missing))
	if err != nil {
		o.Status, o.Reason = StatusError, err.Error()
		return o, fmt.Errorf("patch %s: %w", path, err)
	}

	if !opts.DryRun {
		if err := os.WriteFile(path, []byte(out), info.Mode().Perm()); err != nil {
			o.Status, o.Reason = StatusError, err.Error()
			logger.Error("write definition", "package", p.Name, "err", err)
			return o, nil
		}
	}

	o.Status, o.Added = StatusPatched, missing
	observability.Pipeline().OnDefinitionPatched(ctx, p.Name, missing.Tags(), nil)
	logger.Info("patched", "package", p.Name, "file", path, "line", line, "languages", missing, "dry_run", opts.DryRun)
	return o, nil
}

func sourceStatus(err error) Status {
	switch errs.GetCode(err) {
	case errs.ErrCodeNoUsableURL:
		return StatusNoURL
	case errs.ErrCodeNoUsableDigest:
		return StatusNoDigest
	case errs.ErrCodeNoVersions:
		return StatusNoLanguages
	default:
		return StatusError
	}
}

func anchorStatus(err error) Status {
	switch errs.GetCode(err) {
	case errs.ErrCodeDefinitionNotFound:
		return StatusNoDefinition
	case errs.ErrCodeAnchorNotFound:
		return StatusNoAnchor
	case errs.ErrCodeSyntax:
		return StatusSyntaxError
	default:
		return StatusError
	}
}

// removeDownloads deletes the archives this runner fetched into dir: the
// regular files named after a digest it requested. Everything else in dir
// is left alone, since the directory is user supplied.
func (r *Runner) removeDownloads(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if !e.Type().IsRegular() || !r.State.Seen(e.Name()) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
