package config

import (
	"fmt"
	"net"

	"github.com/sirupsen/logrus"
)

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Version < 1 {
		return fmt.Errorf("invalid config version")
	}

	if c.LogLevel != "" {
		if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("log_level: %w", err)
		}
	}

	if c.StorePath == "" {
		return fmt.Errorf("store_path is required")
	}

	if err := c.API.Validate(); err != nil {
		return fmt.Errorf("api config: %w", err)
	}

	if err := c.Monitor.Validate(); err != nil {
		return fmt.Errorf("monitor config: %w", err)
	}

	if err := c.Probe.Validate(); err != nil {
		return fmt.Errorf("probe config: %w", err)
	}

	return nil
}

// Validate validates the API configuration.
func (a *API) Validate() error {
	if a.Listen == "" {
		return fmt.Errorf("listen is required")
	}
	if _, _, err := net.SplitHostPort(a.Listen); err != nil {
		return fmt.Errorf("invalid listen address %q: %w", a.Listen, err)
	}
	if a.RateLimitRPS < 0 {
		return fmt.Errorf("rate_limit_rps cannot be negative")
	}
	if a.RateLimitRPS > 0 && a.RateLimitBurst < 1 {
		return fmt.Errorf("rate_limit_burst must be at least 1 when rate limiting is enabled")
	}
	return nil
}

// Validate validates the monitor configuration.
func (m *Monitor) Validate() error {
	if m.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive")
	}
	if m.ErrorBackoff <= 0 {
		return fmt.Errorf("error_backoff must be positive")
	}
	if m.RestoreDelay < 0 {
		return fmt.Errorf("restore_delay cannot be negative")
	}
	return nil
}

// Validate validates the probe configuration.
func (p *Probe) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}
