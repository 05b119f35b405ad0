// Package toml loads the crawler configuration file.
package toml

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/lexcrawl/lexcrawl"
)

// Config is the on-disk configuration. Zero values fall back to defaults,
// and command-line flags override loaded values.
type Config struct {
	// BatchSize bounds sources pulled per run.
	BatchSize int `toml:"batch_size"`

	// FetchWorkers sizes the fetch stage worker pool.
	FetchWorkers int `toml:"fetch_workers"`

	// MaxRetries bounds fetch retries per source.
	MaxRetries int `toml:"max_retries"`

	// UserAgent identifies the crawler in requests and robots.txt checks.
	UserAgent string `toml:"user_agent"`

	// RequestsPerSecond is the default per-domain rate for domains without
	// a robots.txt crawl-delay.
	RequestsPerSecond float64 `toml:"requests_per_second"`

	// CacheDir holds the robots.txt cache.
	CacheDir string `toml:"cache_dir"`

	// RulesPath is the learned rule set file.
	RulesPath string `toml:"rules_path"`

	// DBPath is the SQLite database file.
	DBPath string `toml:"db_path"`

	// Proxies are optional proxy URLs rotated across requests.
	Proxies []string `toml:"proxies"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		BatchSize:         50,
		FetchWorkers:      4,
		MaxRetries:        3,
		UserAgent:         "lexcrawl/1.0",
		RequestsPerSecond: 1,
		CacheDir:          ".lexcrawl/robots",
		RulesPath:         ".lexcrawl/rules.json",
		DBPath:            ".lexcrawl/lexcrawl.db",
	}
}

// Load reads the file at path over the defaults. A missing file fails with
// ENOTFOUND; unknown keys fail with EINVALID so typos surface instead of
// silently using defaults.
func Load(path string) (Config, error) {
	config := DefaultConfig()

	meta, err := toml.DecodeFile(path, &config)
	if os.IsNotExist(err) {
		return config, lexcrawl.Errorf(lexcrawl.ENOTFOUND, "config file not found: %s", path)
	}
	if err != nil {
		return config, lexcrawl.Errorf(lexcrawl.EINVALID, "parsing config %s: %s", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return config, lexcrawl.Errorf(lexcrawl.EINVALID, "unknown config key %q in %s", undecoded[0].String(), path)
	}
	return config, nil
}
