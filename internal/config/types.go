// Package config handles dnskeeper configuration loading, saving, and validation.
package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the main configuration structure.
type Config struct {
	Version   int     `yaml:"version"`
	LogLevel  string  `yaml:"log_level"`
	StorePath string  `yaml:"store_path"`
	API       API     `yaml:"api"`
	Monitor   Monitor `yaml:"monitor"`
	Probe     Probe   `yaml:"probe"`
	Tray      Tray    `yaml:"tray"`
}

// API configures the local command surface.
type API struct {
	Listen         string  `yaml:"listen"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`   // 0 disables limiting
	RateLimitBurst int     `yaml:"rate_limit_burst"`
}

// Monitor configures the reconciliation loop.
type Monitor struct {
	PollInterval Duration `yaml:"poll_interval"`
	ErrorBackoff Duration `yaml:"error_backoff"`
	RestoreDelay Duration `yaml:"restore_delay"`
	FlushCache   bool     `yaml:"flush_cache"`
}

// Probe configures DNS reachability probes of task targets.
type Probe struct {
	Name    string   `yaml:"name"`
	Timeout Duration `yaml:"timeout"`
}

// Tray configures the system tray shell.
type Tray struct {
	Enabled bool `yaml:"enabled"`
}

// Duration is a time.Duration stored as a Go duration string ("500ms").
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	return &Config{
		Version:   1,
		LogLevel:  "info",
		StorePath: "tasks.yaml",
		API: API{
			Listen:         "127.0.0.1:5380",
			RateLimitRPS:   20,
			RateLimitBurst: 40,
		},
		Monitor: Monitor{
			PollInterval: Duration(500 * time.Millisecond),
			ErrorBackoff: Duration(500 * time.Millisecond),
			RestoreDelay: Duration(100 * time.Millisecond),
			FlushCache:   true,
		},
		Probe: Probe{
			Name:    "example.com",
			Timeout: Duration(2 * time.Second),
		},
		Tray: Tray{
			Enabled: false,
		},
	}
}
