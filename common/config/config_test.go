package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BASE_URL", "")
	path := filepath.Join(t.TempDir(), "missing.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3000", cfg.BaseURL)
	assert.Equal(t, "http://localhost:3000/events", cfg.Stream.URL)
	assert.True(t, cfg.Refresh.AutoRefresh)
	assert.Equal(t, 10, cfg.Refresh.Interval)
	assert.Equal(t, 5*time.Second, cfg.Polling.OverviewInterval)
	assert.Equal(t, 10*time.Second, cfg.Polling.AnomaliesInterval)
	assert.Equal(t, 10*time.Second, cfg.Polling.TimelineInterval)
	assert.Equal(t, 50, cfg.History.MaxEvents)
	assert.Equal(t, "24h", cfg.Volume.TimeRange)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, path, cfg.Path())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
base_url: http://backend:9000/
refresh:
  auto_refresh: false
  interval: 30
history:
  max_events: 20
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("OPSBOARD_SERVER_PORT", "7070")
	t.Setenv("BASE_URL", "")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://backend:9000", cfg.BaseURL)
	assert.Equal(t, "http://backend:9000/events", cfg.Stream.URL)
	assert.False(t, cfg.Refresh.AutoRefresh)
	assert.Equal(t, 30, cfg.Refresh.Interval)
	assert.Equal(t, 20, cfg.History.MaxEvents)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestLoad_BaseURLEnv(t *testing.T) {
	t.Setenv("BASE_URL", "http://env-backend:3000")

	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://env-backend:3000", cfg.BaseURL)
	assert.Equal(t, "http://env-backend:3000/events", cfg.Stream.URL)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("refresh: [unterminated"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad refresh interval", func(c *Config) { c.Refresh.Interval = 7 }},
		{"zero history", func(c *Config) { c.History.MaxEvents = 0 }},
		{"unknown range", func(c *Config) { c.Volume.TimeRange = "48h" }},
		{"zero poll interval", func(c *Config) { c.Polling.OverviewInterval = 0 }},
		{"bad timezone", func(c *Config) { c.Dashboard.Timezone = "Mars/Olympus" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("BASE_URL", "")
			cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
			require.NoError(t, err)

			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLocation(t *testing.T) {
	cfg := &Config{Dashboard: DashboardConfig{Timezone: "UTC"}}
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC.String(), loc.String())

	cfg.Dashboard.Timezone = "Local"
	loc, err = cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}

func TestWriteDefaults(t *testing.T) {
	t.Setenv("BASE_URL", "")
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, WriteDefaults(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.History.MaxEvents)
	assert.Equal(t, 5*time.Second, cfg.Polling.OverviewInterval)
	assert.NoError(t, cfg.Validate())
}
