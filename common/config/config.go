// Package config provides centralized configuration management for opsboard.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/telhawk-systems/opsboard/internal/models"
)

// EnvPrefix prefixes every environment override (OPSBOARD_BASE_URL, ...).
const EnvPrefix = "OPSBOARD"

// Config is the master configuration struct.
type Config struct {
	BaseURL   string          `mapstructure:"base_url"`
	Stream    StreamConfig    `mapstructure:"stream"`
	Refresh   RefreshConfig   `mapstructure:"refresh"`
	Polling   PollingConfig   `mapstructure:"polling"`
	History   HistoryConfig   `mapstructure:"history"`
	Volume    VolumeConfig    `mapstructure:"volume"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Mock      MockConfig      `mapstructure:"mock"`

	path string
}

// StreamConfig holds the live event stream endpoint.
// The scheme selects the transport: http(s), ws(s), nats or redis.
type StreamConfig struct {
	URL string `mapstructure:"url"`
}

// RefreshConfig holds the initial auto-refresh control state.
type RefreshConfig struct {
	AutoRefresh bool `mapstructure:"auto_refresh"`
	Interval    int  `mapstructure:"interval"`
}

// Model converts to the user-facing refresh control.
func (r RefreshConfig) Model() models.RefreshConfig {
	return models.RefreshConfig{AutoRefresh: r.AutoRefresh, Interval: r.Interval}
}

// PollingConfig holds per-endpoint default poll intervals.
type PollingConfig struct {
	OverviewInterval  time.Duration `mapstructure:"overview_interval"`
	AnomaliesInterval time.Duration `mapstructure:"anomalies_interval"`
	TimelineInterval  time.Duration `mapstructure:"timeline_interval"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
}

// HistoryConfig bounds the recent event history.
type HistoryConfig struct {
	MaxEvents int `mapstructure:"max_events"`
}

// VolumeConfig holds the initial volume time range.
type VolumeConfig struct {
	TimeRange string `mapstructure:"time_range"`
}

// DashboardConfig holds presentation settings.
type DashboardConfig struct {
	// Timezone used to bucket events by hour of day. "Local" or an IANA name.
	Timezone string `mapstructure:"timezone"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MockConfig holds settings for the development backend.
type MockConfig struct {
	Port          int           `mapstructure:"port"`
	EventInterval time.Duration `mapstructure:"event_interval"`
	// NATSURL and RedisURL optionally fan generated events out to a broker.
	NATSURL  string `mapstructure:"nats_url"`
	RedisURL string `mapstructure:"redis_url"`
}

// Path returns the config file the configuration was loaded from.
func (c *Config) Path() string {
	return c.path
}

// Location resolves Dashboard.Timezone.
func (c *Config) Location() (*time.Location, error) {
	tz := c.Dashboard.Timezone
	if tz == "" || strings.EqualFold(tz, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid dashboard.timezone %q: %w", tz, err)
	}
	return loc, nil
}

// Validate checks values that would otherwise fail later at runtime.
func (c *Config) Validate() error {
	var errs []error
	if c.BaseURL == "" {
		errs = append(errs, errors.New("base_url is required"))
	}
	if err := c.Refresh.Model().Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.History.MaxEvents <= 0 {
		errs = append(errs, fmt.Errorf("history.max_events must be positive, got %d", c.History.MaxEvents))
	}
	if !models.TimeRange(c.Volume.TimeRange).Valid() {
		errs = append(errs, fmt.Errorf("invalid volume.time_range %q", c.Volume.TimeRange))
	}
	for name, d := range map[string]time.Duration{
		"polling.overview_interval":  c.Polling.OverviewInterval,
		"polling.anomalies_interval": c.Polling.AnomaliesInterval,
		"polling.timeline_interval":  c.Polling.TimelineInterval,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", name))
		}
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// DefaultPath returns $OPSBOARD_CONFIG_DIR/config.yaml, falling back to
// $HOME/.opsboard/config.yaml.
func DefaultPath() string {
	configDir := os.Getenv(EnvPrefix + "_CONFIG_DIR")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		configDir = filepath.Join(home, ".opsboard")
	}
	return filepath.Join(configDir, "config.yaml")
}

// Load reads configuration from path (DefaultPath when empty) and environment variables.
// A missing file is not an error; defaults and environment apply.
func Load(path string) (*Config, error) {
	v := newViper()

	if path == "" {
		path = DefaultPath()
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Read config file - don't fail if file doesn't exist
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.path = path

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Stream.URL == "" {
		cfg.Stream.URL = cfg.BaseURL + "/events"
	}

	return &cfg, nil
}

// WriteDefaults writes the default configuration as YAML to path.
func WriteDefaults(path string) error {
	v := viper.New()
	setDefaults(v)

	data, err := yaml.Marshal(v.AllSettings())
	if err != nil {
		return fmt.Errorf("marshal defaults: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// BASE_URL is honored without the prefix as well.
	_ = v.BindEnv("base_url", EnvPrefix+"_BASE_URL", "BASE_URL")

	return v
}

// setDefaults sets all default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("base_url", "http://localhost:3000")
	v.SetDefault("stream.url", "")

	v.SetDefault("refresh.auto_refresh", models.DefaultRefreshConfig.AutoRefresh)
	v.SetDefault("refresh.interval", models.DefaultRefreshConfig.Interval)

	v.SetDefault("polling.overview_interval", "5s")
	v.SetDefault("polling.anomalies_interval", "10s")
	v.SetDefault("polling.timeline_interval", "10s")
	v.SetDefault("polling.request_timeout", "10s")

	v.SetDefault("history.max_events", 50)
	v.SetDefault("volume.time_range", string(models.TimeRange24h))
	v.SetDefault("dashboard.timezone", "Local")

	// Server defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Mock backend defaults
	v.SetDefault("mock.port", 3000)
	v.SetDefault("mock.event_interval", "2s")
	v.SetDefault("mock.nats_url", "")
	v.SetDefault("mock.redis_url", "")
}
