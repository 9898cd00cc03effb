// Package elevate checks for and requests the privileges needed to change
// adapter DNS settings.
package elevate

import "github.com/pkg/errors"

// ErrNotAdmin is returned by Require when the process lacks privileges.
var ErrNotAdmin = errors.New("administrator privileges are required to change DNS settings")

// Require returns ErrNotAdmin unless the process is privileged.
func Require() error {
	if !IsAdmin() {
		return ErrNotAdmin
	}
	return nil
}
