//go:build windows

package ui

import (
	"os/exec"

	"github.com/user/dnskeeper/internal/logger"
	"github.com/user/dnskeeper/internal/procutil"
)

func openLogFile() {
	cmd := procutil.HideWindow(exec.Command("notepad.exe", logger.GetLogPath()))
	if err := cmd.Start(); err != nil {
		log.WithError(err).Warn("Failed to open log file")
	}
}
