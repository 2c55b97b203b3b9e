package pubstatic

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "Blog", cfg.Name)
	assert.Equal(t, "http://localhost:3000", cfg.URL)
	assert.Equal(t, "content", cfg.ContentDir)
	assert.Equal(t, "public", cfg.OutputDir)
	assert.Equal(t, "data/nodes.db", cfg.DatabasePath)
	assert.Equal(t, 3, cfg.LatestPosts)
	assert.Equal(t, 200, cfg.ExcerptLength)
	assert.Equal(t, ":3000", cfg.Addr)
	assert.Equal(t, 5*time.Minute, cfg.QueryCacheTTL)
	assert.Zero(t, cfg.RateLimit)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: My Blog
url: https://example.com/
contentDir: posts
ignore:
  - "**/drafts/**"
latestPosts: 5
queryCacheTTL: 30s
rateLimit: 120
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "My Blog", cfg.Name)
	assert.Equal(t, "https://example.com", cfg.URL)
	assert.Equal(t, "posts", cfg.ContentDir)
	assert.Equal(t, []string{"**/drafts/**"}, cfg.Ignore)
	assert.Equal(t, 5, cfg.LatestPosts)
	assert.Equal(t, 30*time.Second, cfg.QueryCacheTTL)
	assert.Equal(t, 120, cfg.RateLimit)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: From File\n"), 0o644))
	t.Setenv("SITE_NAME", "From Env")
	t.Setenv("OUTPUT_DIR", "dist")
	t.Setenv("LATEST_POSTS", "7")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "From Env", cfg.Name)
	assert.Equal(t, "dist", cfg.OutputDir)
	assert.Equal(t, 7, cfg.LatestPosts)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err, "explicit missing file")

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: [oops"), 0o644))
	_, err = LoadConfig(path)
	assert.Error(t, err)
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, SiteConfig{LogLevel: in}.SlogLevel(), in)
	}
}

func TestEnvOr(t *testing.T) {
	t.Setenv("PUBSTATIC_TEST_VAR", "set")
	assert.Equal(t, "set", EnvOr("PUBSTATIC_TEST_VAR", "fallback"))
	assert.Equal(t, "fallback", EnvOr("PUBSTATIC_TEST_UNSET", "fallback"))
}
