//go:build !linux && !darwin && !windows

package ui

func openLogFile() {
	log.Warn("Opening the log file is not supported on this platform")
}
