//go:build windows

package logger

import (
	"os"

	"golang.org/x/sys/windows"
)

// redirectStderr redirects stderr to the log file so panics are captured.
func redirectStderr(f *os.File) {
	if err := windows.SetStdHandle(windows.STD_ERROR_HANDLE, windows.Handle(f.Fd())); err != nil {
		return
	}
	os.Stderr = f
}
