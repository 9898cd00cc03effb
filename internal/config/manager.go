package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Manager loads, holds and saves the configuration file.
type Manager struct {
	mu         sync.RWMutex
	config     *Config
	configPath string
}

// NewManager creates a manager for the file at configPath.
func NewManager(configPath string) *Manager {
	return &Manager{configPath: configPath}
}

// Path returns the file the manager reads and writes.
func (m *Manager) Path() string {
	return m.configPath
}

// Load reads the file, writing defaults first when it does not exist yet.
// Environment overrides are applied on top and never written back.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.configPath)
	switch {
	case os.IsNotExist(err):
		if err := writeConfig(m.configPath, DefaultConfig()); err != nil {
			return err
		}
		data = nil
	case err != nil:
		return fmt.Errorf("failed to read config: %w", err)
	}

	cfg, err := parse(data)
	if err != nil {
		return err
	}
	m.config = cfg
	return nil
}

// parse decodes data over the defaults, applies the environment and
// validates the result.
func parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}
	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Get returns the current configuration. Callers must not modify it; use
// Update instead.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// Update applies fn to a copy of the current configuration, validates the
// result, saves it and makes it current.
func (m *Manager) Update(fn func(*Config)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.config == nil {
		return fmt.Errorf("configuration not loaded")
	}
	next := *m.config
	fn(&next)
	if err := next.Validate(); err != nil {
		return err
	}
	if err := writeConfig(m.configPath, &next); err != nil {
		return err
	}
	m.config = &next
	return nil
}

// writeConfig stores cfg through a temporary file so a crash never leaves
// a truncated config behind.
func writeConfig(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	overrides := map[string]*string{
		"DNSKEEPER_STORE":     &cfg.StorePath,
		"DNSKEEPER_LISTEN":    &cfg.API.Listen,
		"DNSKEEPER_LOG_LEVEL": &cfg.LogLevel,
	}
	for env, field := range overrides {
		if v := os.Getenv(env); v != "" {
			*field = v
		}
	}
}
