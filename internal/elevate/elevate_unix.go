//go:build linux || darwin

package elevate

import (
	"os"
	"os/exec"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// IsAdmin returns true if the current process is running as root.
func IsAdmin() bool {
	return unix.Geteuid() == 0
}

// RunAsAdmin replaces the current process with a root copy of itself via
// pkexec, falling back to sudo. It only returns on failure.
func RunAsAdmin() error {
	exe, err := os.Executable()
	if err != nil {
		return errors.Wrap(err, "failed to get executable path")
	}
	args := append([]string{exe}, os.Args[1:]...)

	for _, helper := range []string{"pkexec", "sudo"} {
		path, err := exec.LookPath(helper)
		if err != nil {
			continue
		}
		return unix.Exec(path, append([]string{helper}, args...), os.Environ())
	}
	return errors.New("neither pkexec nor sudo found; please run as root")
}
