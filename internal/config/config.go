// Package config loads shelf settings from defaults, an optional YAML file and
// SHELF_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the data directory.
const FileName = "config.yaml"

// Config holds application configuration.
type Config struct {
	BaseURL string        `yaml:"base_url" env:"BASE_URL"`
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`

	NoticeTTL    time.Duration `yaml:"notice_ttl" env:"NOTICE_TTL"`
	NoticeFade   time.Duration `yaml:"notice_fade" env:"NOTICE_FADE"`
	DislikeDelay time.Duration `yaml:"dislike_delay" env:"DISLIKE_DELAY"`

	DataDir  string `yaml:"data_dir" env:"DATA_DIR"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`
	LogFile  string `yaml:"log_file" env:"LOG_FILE"`

	Breaker BreakerConfig `yaml:"breaker" envPrefix:"BREAKER_"`
	Serve   ServeConfig   `yaml:"serve" envPrefix:"SERVE_"`
}

// BreakerConfig configures the circuit breaker in front of the remote authority.
type BreakerConfig struct {
	Enabled      bool          `yaml:"enabled" env:"ENABLED"`
	FailureRatio float64       `yaml:"failure_ratio" env:"FAILURE_RATIO"`
	MinRequests  uint32        `yaml:"min_requests" env:"MIN_REQUESTS"`
	OpenTimeout  time.Duration `yaml:"open_timeout" env:"OPEN_TIMEOUT"`
}

// ServeConfig configures the demo authority started by "shelf serve".
type ServeConfig struct {
	Addr        string `yaml:"addr" env:"ADDR"`
	DBPath      string `yaml:"db_path" env:"DB_PATH"`
	CatalogPath string `yaml:"catalog_path" env:"CATALOG_PATH"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		BaseURL:      "http://localhost:5000",
		Timeout:      10 * time.Second,
		NoticeTTL:    3 * time.Second,
		NoticeFade:   300 * time.Millisecond,
		DislikeDelay: 500 * time.Millisecond,
		DataDir:      "~/.shelf",
		LogLevel:     "info",
		LogFile:      "shelf.log",
		Breaker: BreakerConfig{
			Enabled:      true,
			FailureRatio: 0.5,
			MinRequests:  5,
			OpenTimeout:  15 * time.Second,
		},
		Serve: ServeConfig{
			Addr:   ":5000",
			DBPath: "authority.db",
		},
	}
}

// Load builds the configuration. An empty path looks for config.yaml in the
// default data directory and tolerates its absence; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = filepath.Join(ExpandHome(cfg.DataDir), FileName)
	}

	if err := cfg.mergeFile(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "SHELF_"}); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	cfg.DataDir = ExpandHome(cfg.DataDir)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(content, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate checks the configuration for values the client cannot work with.
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("base_url must be an absolute http(s) URL, got %q", c.BaseURL)
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if c.NoticeTTL <= 0 || c.NoticeFade < 0 {
		return errors.New("notice_ttl must be positive and notice_fade non-negative")
	}
	if c.DislikeDelay < 0 {
		return errors.New("dislike_delay cannot be negative")
	}
	if c.Breaker.Enabled && (c.Breaker.FailureRatio <= 0 || c.Breaker.FailureRatio > 1) {
		return fmt.Errorf("breaker.failure_ratio must be in (0, 1], got %v", c.Breaker.FailureRatio)
	}
	return nil
}

// LogPath returns the log file location, relative paths resolved against the
// data directory. An empty LogFile disables file logging.
func (c Config) LogPath() string {
	if c.LogFile == "" {
		return ""
	}
	if filepath.IsAbs(c.LogFile) {
		return c.LogFile
	}
	return filepath.Join(ExpandHome(c.DataDir), c.LogFile)
}

// DBPath returns the authority database location resolved like LogPath.
func (c Config) DBPath() string {
	p := c.Serve.DBPath
	if p == "" || p == ":memory:" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(ExpandHome(c.DataDir), p)
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
