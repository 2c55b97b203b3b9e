package pubstatic

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is read by LoadConfig when no path is given.
const DefaultConfigPath = "site.yaml"

// SiteConfig holds all configuration for a pubstatic site.
type SiteConfig struct {
	Name        string `yaml:"name"`        // Site name (default "Blog")
	URL         string `yaml:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `yaml:"description"` // Site description for RSS and meta tags
	Author      string `yaml:"author"`      // Author name for JSON-LD

	ContentDir   string   `yaml:"contentDir"`   // Source documents (default "content")
	OutputDir    string   `yaml:"outputDir"`    // Rendered site (default "public")
	DatabasePath string   `yaml:"databasePath"` // Node store (default "data/nodes.db")
	Ignore       []string `yaml:"ignore"`       // doublestar globs relative to ContentDir

	LatestPosts   int `yaml:"latestPosts"`   // Posts on the home page (default 3)
	ExcerptLength int `yaml:"excerptLength"` // Excerpt runes (default 200)

	Addr     string `yaml:"addr"`     // Listen address for serve (default ":3000")
	LogLevel string `yaml:"logLevel"` // debug, info, warn or error (default "info")
	// RateLimit caps requests per client IP per minute on serve; 0 disables it.
	RateLimit int `yaml:"rateLimit"`

	QueryCacheTTL time.Duration `yaml:"queryCacheTTL"` // default 5min
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	c.URL = strings.TrimSuffix(c.URL, "/")
	if c.ContentDir == "" {
		c.ContentDir = "content"
	}
	if c.OutputDir == "" {
		c.OutputDir = "public"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/nodes.db"
	}
	if c.LatestPosts == 0 {
		c.LatestPosts = 3
	}
	if c.ExcerptLength == 0 {
		c.ExcerptLength = 200
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.QueryCacheTTL == 0 {
		c.QueryCacheTTL = 5 * time.Minute
	}
}

// LoadConfig reads a YAML config file and applies environment overrides and
// defaults. A missing file is only an error when path was given explicitly.
func LoadConfig(path string) (SiteConfig, error) {
	var cfg SiteConfig
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return SiteConfig{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return SiteConfig{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg.ApplyEnv()
	cfg.setDefaults()
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables when they are set.
func (c *SiteConfig) ApplyEnv() {
	c.Name = EnvOr("SITE_NAME", c.Name)
	c.URL = EnvOr("SITE_URL", c.URL)
	c.Description = EnvOr("SITE_DESCRIPTION", c.Description)
	c.Author = EnvOr("SITE_AUTHOR", c.Author)
	c.ContentDir = EnvOr("CONTENT_DIR", c.ContentDir)
	c.OutputDir = EnvOr("OUTPUT_DIR", c.OutputDir)
	c.DatabasePath = EnvOr("DATABASE_PATH", c.DatabasePath)
	c.Addr = EnvOr("ADDR", c.Addr)
	c.LogLevel = EnvOr("LOG_LEVEL", c.LogLevel)
	if v, err := strconv.Atoi(os.Getenv("LATEST_POSTS")); err == nil {
		c.LatestPosts = v
	}
	if v, err := strconv.Atoi(os.Getenv("RATE_LIMIT")); err == nil {
		c.RateLimit = v
	}
}

// SlogLevel maps LogLevel onto a slog.Level, defaulting to info.
func (c SiteConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Option configures additional App behavior.
type Option func(*App)

// WithLogger sets the logger used for build and server output.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		a.logger = l
	}
}

// WithViews replaces the components used to render pages.
func WithViews(v ViewFuncs) Option {
	return func(a *App) {
		a.Views = v
	}
}

// WithMetrics records build and request metrics on m.
func WithMetrics(m *Metrics) Option {
	return func(a *App) {
		a.metrics = m
	}
}

// WithStaticDir sets a directory of assets copied verbatim into the output
// (default "static"). A missing directory is skipped.
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}
