//go:build darwin

package logger

import (
	"os"
	"path/filepath"
)

// getLogDir returns the log directory.
// Uses ~/Library/Logs/dnskeeper so logs stay writable when the binary
// lives inside a signed .app bundle.
func getLogDir() string {
	home, err := os.UserHomeDir()
	if err == nil {
		return filepath.Join(home, "Library", "Logs", "dnskeeper")
	}

	// Fallback: next to executable
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}
