package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/matzehuels/langpatch/pkg/cache"
	"github.com/matzehuels/langpatch/pkg/fetch"
	"github.com/matzehuels/langpatch/pkg/httputil"
	"github.com/matzehuels/langpatch/pkg/observability"
	"github.com/matzehuels/langpatch/pkg/pipeline"
	"github.com/matzehuels/langpatch/pkg/registry"
)

// runOpts holds the run flags that have no config file equivalent.
type runOpts struct {
	config        string // config file path (default location if empty)
	startAt       string // first package to process
	report        string // JSON report output path
	noCache       bool   // disable the result and index caches
	refresh       bool   // ignore cached entries, still write them
	dryRun        bool   // compute patches without writing
	keepDownloads bool   // leave the download dir in place
}

// runCommand creates the run command that executes the full pipeline.
func (c *CLI) runCommand() *cobra.Command {
	var opts runOpts
	flags := defaultConfig()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Patch package definitions with detected build languages",
		Long: `Patch package definitions with detected build languages.

The run command loads a registry index (local file or http(s) URL), downloads
the preferred version's archive of every package in batches, lists the
archive members, and inserts one generated depends_on line per detected
compiled language after the last version() call of each definition.

Settings are read from ~/.config/langpatch/config.toml when present; flags
set on the command line take precedence. Language sets are cached per
archive digest so that re-runs skip archives already classified.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			cfg, err := loadConfig(opts.config, logger)
			if err != nil {
				return err
			}
			cfg.override(cmd.Flags(), flags)
			if err := cfg.validate(); err != nil {
				return err
			}
			return c.runPipeline(cmd.Context(), cmd.OutOrStdout(), cfg, opts)
		},
	}

	cmd.Flags().StringVar(&opts.config, "config", "", "config file (default: ~/.config/langpatch/config.toml)")
	cmd.Flags().StringVarP(&flags.Index, "index", "i", "", "registry index file or http(s) URL")
	cmd.Flags().StringVarP(&flags.Repo, "repo", "r", flags.Repo, "repository root containing package definitions")
	cmd.Flags().IntVarP(&flags.BatchSize, "batch-size", "b", flags.BatchSize, "packages downloaded per batch")
	cmd.Flags().StringVar(&flags.DownloadDir, "download-dir", flags.DownloadDir, "directory receiving the archives of a batch")
	cmd.Flags().DurationVar(&flags.MaxTime, "max-time", flags.MaxTime, "time budget per transfer")
	cmd.Flags().IntVarP(&flags.Parallel, "parallel", "p", flags.Parallel, "concurrent transfers")
	cmd.Flags().IntVar(&flags.Attempts, "attempts", flags.Attempts, "attempts per transfer")
	cmd.Flags().BoolVarP(&flags.Insecure, "insecure", "k", false, "skip TLS certificate verification")
	cmd.Flags().StringVar(&flags.CacheURL, "cache-url", "", "shared result cache (redis://host:port/db)")
	cmd.Flags().DurationVar(&flags.CacheTTL, "cache-ttl", flags.CacheTTL, "lifetime of cached language sets")
	cmd.Flags().StringVar(&flags.CachePrefix, "cache-prefix", "", "prefix for result cache keys, to share one backend between registries")
	cmd.Flags().DurationVar(&flags.IndexTTL, "index-ttl", flags.IndexTTL, "lifetime of a cached remote index")
	cmd.Flags().StringVar(&flags.UserAgent, "user-agent", flags.UserAgent, "User-Agent header for downloads")

	cmd.Flags().StringVar(&opts.startAt, "start-at", "", "skip packages before this one")
	cmd.Flags().StringVar(&opts.report, "report", "", "write a JSON run report to this file")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached results")
	cmd.Flags().BoolVarP(&opts.dryRun, "dry-run", "n", false, "compute patches without writing files")
	cmd.Flags().BoolVar(&opts.keepDownloads, "keep-downloads", false, "keep the download directory after the run")
	_ = cmd.RegisterFlagCompletionFunc("index", completeIndexFiles)
	_ = cmd.MarkFlagFilename("config", "toml")

	return cmd
}

// runPipeline loads the index, runs the pipeline, and reports the outcome.
func (c *CLI) runPipeline(ctx context.Context, out io.Writer, cfg Config, opts runOpts) error {
	logger := loggerFromContext(ctx)

	prog := newProgress(logger)
	client := registry.NewClient(
		httputil.NewClient(httputil.ClientOptions{Insecure: cfg.Insecure, UserAgent: cfg.UserAgent}),
		indexCache(cfg, opts.noCache),
		nil,
	)
	index, err := registry.Load(ctx, cfg.Index, registry.LoadOptions{Client: client, Refresh: opts.refresh})
	if err != nil {
		return fmt.Errorf("load index: %w", err)
	}
	prog.done(fmt.Sprintf("Loaded %d packages", len(index.Packages)))

	if opts.startAt != "" {
		if _, ok := index.Lookup(opts.startAt); !ok {
			return fmt.Errorf("start-at: package %q not in index", opts.startAt)
		}
	}

	results, err := newResultCache(ctx, cfg, opts.noCache)
	if err != nil {
		return fmt.Errorf("open result cache: %w", err)
	}

	fetcher := fetch.New(fetch.Options{
		Parallel:  cfg.Parallel,
		MaxTime:   cfg.MaxTime,
		Attempts:  cfg.Attempts,
		Insecure:  cfg.Insecure,
		UserAgent: cfg.UserAgent,
		Logger:    logger,
	})
	var keyer cache.Keyer
	if cfg.CachePrefix != "" {
		keyer = cache.NewScopedKeyer(nil, cfg.CachePrefix)
	}
	runner := pipeline.NewRunner(fetcher, results, keyer, logger)
	defer runner.Close()

	if f, ok := out.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		hooks := newProgressHooks(ctx, f)
		prev := observability.SetPipelineHooks(hooks)
		defer func() {
			hooks.stop()
			observability.SetPipelineHooks(prev)
		}()
	}

	report, runErr := runner.Run(ctx, index.Packages, pipeline.Options{
		Repo:          cfg.Repo,
		BatchSize:     cfg.BatchSize,
		DownloadDir:   cfg.DownloadDir,
		StartAt:       opts.startAt,
		DryRun:        opts.dryRun,
		Refresh:       opts.refresh,
		KeepDownloads: opts.keepDownloads,
		CacheTTL:      cfg.CacheTTL,
		Logger:        logger,
	})
	if report == nil {
		return runErr
	}

	if opts.report != "" {
		if err := writeReport(opts.report, report); err != nil {
			return err
		}
	}

	fmt.Fprintln(out)
	printSummary(out, report)
	if opts.report != "" {
		printFile(out, opts.report)
	}
	if opts.dryRun && report.Stats.ByStatus[pipeline.StatusPatched] > 0 {
		fmt.Fprintln(out)
		printNextStep(out, "Write the patches", "langpatch run without --dry-run")
	}
	return runErr
}

// indexCache returns the namespaced response cache for registry indexes.
func indexCache(cfg Config, noCache bool) *httputil.Cache {
	hc := newHTTPCache(cfg, noCache)
	if hc == nil {
		return nil
	}
	return hc.Namespace("registry:")
}

// writeReport writes r as indented JSON.
func writeReport(path string, r *pipeline.Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}
