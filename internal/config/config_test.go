package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Upstream.PollInterval)
	assert.Empty(t, cfg.Upstream.BaseURL, "polling disabled by default")
	assert.Equal(t, 12, cfg.Dashboard.MonthsBack)
	assert.Equal(t, 7, cfg.Dashboard.MaxTrendPoints)
	assert.True(t, cfg.Security.RateLimit.Enabled)
	assert.NoError(t, cfg.validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero port", func(c *Config) { c.Server.Port = 0 }, "invalid server port"},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, "invalid server port"},
		{"zero read timeout", func(c *Config) { c.Server.ReadTimeout = 0 }, "read timeout"},
		{"no origins", func(c *Config) { c.Security.AllowedOrigins = nil }, "allowed origin"},
		{"zero poll interval", func(c *Config) { c.Upstream.PollInterval = 0 }, "poll interval"},
		{"negative months back", func(c *Config) { c.Dashboard.MonthsBack = -1 }, "months back"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("bad logging values coerced", func(t *testing.T) {
		cfg := Default()
		cfg.Logging.Format = "text"
		cfg.Logging.Output = "syslog"
		require.NoError(t, cfg.validate())
		assert.Equal(t, "json", cfg.Logging.Format)
		assert.Equal(t, "both", cfg.Logging.Output)
	})
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	t.Setenv("BIZPULSE_SERVER_PORT", "9090")
	t.Setenv("BIZPULSE_UPSTREAM_BASE_URL", "http://upstream:3000/api/records")
	t.Setenv("BIZPULSE_DASHBOARD_MONTHS_BACK", "6")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "http://upstream:3000/api/records", cfg.Upstream.BaseURL)
	assert.Equal(t, 6, cfg.Dashboard.MonthsBack)

	// EnsureDirectories ran.
	assert.DirExists(t, filepath.Join(dir, "data"))
	assert.DirExists(t, filepath.Join(dir, "logs"))
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	yaml := []byte("server:\n  port: 9191\ndashboard:\n  months_back: 3\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Dashboard.MonthsBack)

	t.Run("env wins over file", func(t *testing.T) {
		t.Setenv("BIZPULSE_SERVER_PORT", "9393")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 9393, cfg.Server.Port)
		assert.Equal(t, 3, cfg.Dashboard.MonthsBack)
	})
}

func TestSeedFilePath(t *testing.T) {
	cfg := Default()

	t.Run("relative resolved against cwd", func(t *testing.T) {
		path := cfg.SeedFilePath()
		assert.True(t, filepath.IsAbs(path))
		assert.Equal(t, "records.json", filepath.Base(path))
	})

	t.Run("absolute passed through", func(t *testing.T) {
		cfg.Paths.SeedFile = "/srv/data/records.json"
		assert.Equal(t, "/srv/data/records.json", cfg.SeedFilePath())
	})
}
