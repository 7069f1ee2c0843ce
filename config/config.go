package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every key when reading the environment, e.g.
// DESKDUP_RETRY_COUNT for retry_count.
const EnvPrefix = "DESKDUP"

// Config holds runtime configuration for the capture tools. Fields may be
// loaded from a JSON or YAML file, the environment and command-line flags.
type Config struct {
	Debug    bool   `json:"debug" mapstructure:"debug"`
	LogLevel string `json:"log_level" mapstructure:"log_level"`

	// Capture source
	Driver           string `json:"driver" mapstructure:"driver"`
	Screen           int    `json:"screen" mapstructure:"screen"`
	CaptureTimeoutMs int    `json:"capture_timeout_ms" mapstructure:"capture_timeout_ms"`
	OnlyChanged      bool   `json:"only_changed" mapstructure:"only_changed"`
	PollIntervalMs   int    `json:"poll_interval_ms" mapstructure:"poll_interval_ms"`

	// One-shot capture
	RetryCount int `json:"retry_count" mapstructure:"retry_count"`

	// Auto capture
	DelayMs              int  `json:"delay_ms" mapstructure:"delay_ms"`
	AllowSkips           bool `json:"allow_skips" mapstructure:"allow_skips"`
	ClearBacklog         bool `json:"clear_backlog" mapstructure:"clear_backlog"`
	StatsIntervalSeconds int  `json:"stats_interval_seconds" mapstructure:"stats_interval_seconds"`
}

var (
	knownDrivers   = []string{"display", "primary", "gdi"}
	knownLogLevels = []string{"debug", "info", "warn", "error"}
)

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:                false,
		LogLevel:             "info",
		Driver:               "display",
		Screen:               0,
		CaptureTimeoutMs:     1000,
		OnlyChanged:          false,
		PollIntervalMs:       16,
		RetryCount:           5,
		DelayMs:              100,
		AllowSkips:           true,
		ClearBacklog:         true,
		StatsIntervalSeconds: 5,
	}
}

// Validate clamps/normalizes values to safe ranges. It fails only for a
// driver name no build knows about.
func (c *Config) Validate() error {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if !slices.Contains(knownLogLevels, c.LogLevel) {
		c.LogLevel = "info"
	}
	c.Driver = strings.ToLower(strings.TrimSpace(c.Driver))
	if c.Driver == "" {
		c.Driver = "display"
	}
	if c.Screen < 0 {
		c.Screen = 0
	}
	if c.CaptureTimeoutMs <= 0 {
		c.CaptureTimeoutMs = 1000
	}
	if c.PollIntervalMs <= 0 {
		c.PollIntervalMs = 16
	}
	if c.RetryCount < 0 {
		c.RetryCount = 0
	}
	if c.DelayMs <= 0 {
		c.DelayMs = 100
	}
	if c.StatsIntervalSeconds < 0 {
		c.StatsIntervalSeconds = 0
	}
	if !slices.Contains(knownDrivers, c.Driver) {
		return fmt.Errorf("config: unknown driver %q (want one of %s)", c.Driver, strings.Join(knownDrivers, ", "))
	}
	return nil
}

func (c *Config) CaptureTimeout() time.Duration {
	return time.Duration(c.CaptureTimeoutMs) * time.Millisecond
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

func (c *Config) Delay() time.Duration {
	return time.Duration(c.DelayMs) * time.Millisecond
}

// StatsInterval is zero when periodic stats logging is disabled.
func (c *Config) StatsInterval() time.Duration {
	return time.Duration(c.StatsIntervalSeconds) * time.Second
}

// SetDefaults registers every key with its default on v so that environment
// variables are picked up for keys absent from the config file.
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("debug", d.Debug)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("driver", d.Driver)
	v.SetDefault("screen", d.Screen)
	v.SetDefault("capture_timeout_ms", d.CaptureTimeoutMs)
	v.SetDefault("only_changed", d.OnlyChanged)
	v.SetDefault("poll_interval_ms", d.PollIntervalMs)
	v.SetDefault("retry_count", d.RetryCount)
	v.SetDefault("delay_ms", d.DelayMs)
	v.SetDefault("allow_skips", d.AllowSkips)
	v.SetDefault("clear_backlog", d.ClearBacklog)
	v.SetDefault("stats_interval_seconds", d.StatsIntervalSeconds)
}

// NewViper returns a viper instance with defaults and environment binding.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// FromViper decodes and validates the configuration held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ReadFile points v at path and reads it. A missing file is not an error.
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	return nil
}

// Load reads configuration from path (JSON or YAML by extension) layered over
// defaults and the environment. If the file does not exist it returns the
// defaults.
func Load(path string) (*Config, error) {
	v := NewViper()
	if err := ReadFile(v, path); err != nil {
		return DefaultConfig(), err
	}
	return FromViper(v)
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return c.Encode(f)
}

// Encode writes the configuration to w as indented JSON, the format Save
// uses.
func (c *Config) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
