//go:build darwin

package dns

import (
	"os/exec"

	"github.com/pkg/errors"
)

// apply sets the DNS servers of a network service with networksetup.
func (m *Manager) apply(adapter string, servers []string) error {
	args := append([]string{"-setdnsservers", adapter}, servers...)
	if out, err := exec.Command("networksetup", args...).CombinedOutput(); err != nil {
		return errors.Wrapf(err, "networksetup failed: %s", out)
	}
	return nil
}

// flush clears the directory service cache and restarts mDNSResponder.
func (m *Manager) flush() error {
	if out, err := exec.Command("dscacheutil", "-flushcache").CombinedOutput(); err != nil {
		return errors.Wrapf(err, "dscacheutil failed: %s", out)
	}
	if out, err := exec.Command("killall", "-HUP", "mDNSResponder").CombinedOutput(); err != nil {
		return errors.Wrapf(err, "killall mDNSResponder failed: %s", out)
	}
	return nil
}
