package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/matzehuels/langpatch/pkg/buildinfo"
	"github.com/matzehuels/langpatch/pkg/fetch"
	"github.com/matzehuels/langpatch/pkg/pipeline"
)

// configFile is the name of the config file inside configDir.
const configFile = "config.toml"

// defaultIndexTTL is how long a remote registry index stays cached.
const defaultIndexTTL = 24 * time.Hour

// Config holds the settings shared by the config file and the run flags.
//
// Example config.toml:
//
//	index = "https://example.org/index.json"
//	repo = "/src/packages"
//	batch_size = 50
//	max_time = "2m"
//	cache_url = "redis://localhost:6379/0"
//	cache_prefix = "builtin:"
type Config struct {
	Index       string        `toml:"index"`
	Repo        string        `toml:"repo"`
	BatchSize   int           `toml:"batch_size"`
	DownloadDir string        `toml:"download_dir"`
	MaxTime     time.Duration `toml:"max_time"`
	Parallel    int           `toml:"parallel"`
	Attempts    int           `toml:"attempts"`
	Insecure    bool          `toml:"insecure"`
	CacheURL    string        `toml:"cache_url"`
	CacheTTL    time.Duration `toml:"cache_ttl"`
	CachePrefix string        `toml:"cache_prefix"`
	IndexTTL    time.Duration `toml:"index_ttl"`
	UserAgent   string        `toml:"user_agent"`
}

// defaultConfig returns the built-in settings.
func defaultConfig() Config {
	return Config{
		Repo:        ".",
		BatchSize:   pipeline.DefaultBatchSize,
		DownloadDir: pipeline.DefaultDownloadDir,
		MaxTime:     fetch.DefaultMaxTime,
		Parallel:    fetch.DefaultParallel,
		Attempts:    fetch.DefaultAttempts,
		CacheTTL:    pipeline.DefaultCacheTTL,
		IndexTTL:    defaultIndexTTL,
		UserAgent:   buildinfo.UserAgent(),
	}
}

// defaultConfigPath returns ~/.config/langpatch/config.toml.
func defaultConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// loadConfig reads path over the defaults. An empty path selects
// defaultConfigPath, which may be absent; an explicit path must exist.
func loadConfig(path string, logger *log.Logger) (Config, error) {
	if logger == nil {
		logger = log.Default()
	}
	cfg := defaultConfig()

	explicit := path != ""
	if !explicit {
		p, err := defaultConfigPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return defaultConfig(), nil
		}
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		logger.Warn("unknown config keys", "file", path, "keys", strings.Join(keys, ", "))
	}
	logger.Debug("loaded config", "file", path)
	return cfg, nil
}

// override copies every flag the user set explicitly from flags into cfg.
func (cfg *Config) override(changed *pflag.FlagSet, flags Config) {
	set := func(name string, apply func()) {
		if changed.Changed(name) {
			apply()
		}
	}
	set("index", func() { cfg.Index = flags.Index })
	set("repo", func() { cfg.Repo = flags.Repo })
	set("batch-size", func() { cfg.BatchSize = flags.BatchSize })
	set("download-dir", func() { cfg.DownloadDir = flags.DownloadDir })
	set("max-time", func() { cfg.MaxTime = flags.MaxTime })
	set("parallel", func() { cfg.Parallel = flags.Parallel })
	set("attempts", func() { cfg.Attempts = flags.Attempts })
	set("insecure", func() { cfg.Insecure = flags.Insecure })
	set("cache-url", func() { cfg.CacheURL = flags.CacheURL })
	set("cache-ttl", func() { cfg.CacheTTL = flags.CacheTTL })
	set("cache-prefix", func() { cfg.CachePrefix = flags.CachePrefix })
	set("index-ttl", func() { cfg.IndexTTL = flags.IndexTTL })
	set("user-agent", func() { cfg.UserAgent = flags.UserAgent })
}

// validate rejects settings the pipeline cannot run with.
func (cfg Config) validate() error {
	if cfg.Index == "" {
		return fmt.Errorf("no registry index: pass --index or set index in %s", configFile)
	}
	if cfg.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", cfg.BatchSize)
	}
	if cfg.Parallel <= 0 {
		return fmt.Errorf("parallel must be positive, got %d", cfg.Parallel)
	}
	if cfg.Attempts <= 0 {
		return fmt.Errorf("attempts must be positive, got %d", cfg.Attempts)
	}
	if cfg.MaxTime <= 0 {
		return fmt.Errorf("max time must be positive, got %s", cfg.MaxTime)
	}
	return nil
}
