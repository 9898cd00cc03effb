//go:build windows

package elevate

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

// IsAdmin returns true if the process token is elevated.
func IsAdmin() bool {
	return windows.GetCurrentProcessToken().IsElevated()
}

// RunAsAdmin re-launches the current executable through the UAC prompt and
// exits the current process once the elevated copy has started.
func RunAsAdmin() error {
	exe, err := os.Executable()
	if err != nil {
		return errors.Wrap(err, "failed to get executable path")
	}

	verb, _ := windows.UTF16PtrFromString("runas")
	file, _ := windows.UTF16PtrFromString(exe)
	params, _ := windows.UTF16PtrFromString(strings.Join(os.Args[1:], " "))

	if err := windows.ShellExecute(0, verb, file, params, nil, windows.SW_NORMAL); err != nil {
		return errors.Wrap(err, "UAC elevation failed or was cancelled")
	}
	os.Exit(0)
	return nil
}
