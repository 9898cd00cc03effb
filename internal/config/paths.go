package config

import (
	"os"
	"path/filepath"
)

// GetConfigPath returns the configuration path next to the executable.
// DNSKEEPER_CONFIG overrides it.
func GetConfigPath() string {
	if p := os.Getenv("DNSKEEPER_CONFIG"); p != "" {
		return p
	}
	exe, err := os.Executable()
	if err != nil {
		return "config.yaml" // fallback: current directory
	}
	return filepath.Join(filepath.Dir(exe), "config.yaml")
}

// ResolveStorePath returns the store path, relative paths being resolved
// against the directory holding the config file.
func ResolveStorePath(cfg *Config, configPath string) string {
	if filepath.IsAbs(cfg.StorePath) {
		return cfg.StorePath
	}
	return filepath.Join(filepath.Dir(configPath), cfg.StorePath)
}
