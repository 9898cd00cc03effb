//go:build darwin

package ui

import (
	"os/exec"

	"github.com/user/dnskeeper/internal/logger"
)

func openLogFile() {
	if err := exec.Command("open", "-a", "Console", logger.GetLogPath()).Start(); err != nil {
		log.WithError(err).Warn("Failed to open log file")
	}
}
