//go:build !linux && !darwin && !windows

package elevate

import "github.com/pkg/errors"

// IsAdmin reports false on platforms without a privilege check.
func IsAdmin() bool {
	return false
}

// RunAsAdmin is not supported on this platform.
func RunAsAdmin() error {
	return errors.New("elevation is not supported on this platform")
}
