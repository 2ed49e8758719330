// Package cli implements the langpatch command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/langpatch/pkg/buildinfo"
	"github.com/matzehuels/langpatch/pkg/cache"
	"github.com/matzehuels/langpatch/pkg/httputil"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "langpatch"

	// resultsSubdir holds cached digest language sets.
	resultsSubdir = "results"

	// httpSubdir holds cached HTTP responses (remote registry indexes).
	httpSubdir = "http"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
	LogWarn  = log.WarnLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Langpatch declares compiled-language build dependencies in package definitions",
		Long: `Langpatch downloads the source archive of every package in a registry index,
detects which compiled languages (C, C++, Fortran) the archive contains, and
inserts matching build dependency declarations into the package's definition
file, right after its version table.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.runCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.locateCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Cache Factories
// =============================================================================

// newResultCache opens the digest→languages store selected by cfg.
func newResultCache(ctx context.Context, cfg Config, noCache bool) (cache.Cache, error) {
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.New(ctx, cache.Options{
		Disabled: noCache,
		URL:      cfg.CacheURL,
		Dir:      filepath.Join(dir, resultsSubdir),
	})
}

// newHTTPCache opens the response cache used for remote indexes.
// A nil cache disables response caching.
func newHTTPCache(cfg Config, noCache bool) *httputil.Cache {
	if noCache {
		return nil
	}
	dir, err := cacheDir()
	if err != nil {
		return nil
	}
	hc, err := httputil.NewCache(filepath.Join(dir, httpSubdir), cfg.IndexTTL)
	if err != nil {
		return nil
	}
	return hc
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns $XDG_CACHE_HOME/langpatch, or ~/.cache/langpatch.
func cacheDir() (string, error) { return xdgDir("XDG_CACHE_HOME", ".cache") }

// configDir returns $XDG_CONFIG_HOME/langpatch, or ~/.config/langpatch.
func configDir() (string, error) { return xdgDir("XDG_CONFIG_HOME", ".config") }

func xdgDir(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, appName), nil
}
