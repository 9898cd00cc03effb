//go:build linux

package logger

import (
	"os"
	"path/filepath"
)

// getLogDir returns $XDG_STATE_HOME/dnskeeper, falling back to
// ~/.local/state/dnskeeper and finally to the executable's directory.
func getLogDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "dnskeeper")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "state", "dnskeeper")
	}
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}
