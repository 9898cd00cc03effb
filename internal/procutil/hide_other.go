//go:build !windows

// Package procutil adjusts external commands for the host platform.
package procutil

import "os/exec"

// HideWindow is a no-op on non-Windows platforms.
func HideWindow(cmd *exec.Cmd) *exec.Cmd {
	return cmd
}
