//go:build linux

package dns

import (
	"os"
	"os/exec"

	"github.com/pkg/errors"
)

// apply rewrites the nameserver lines of resolv.conf. Linux resolves through
// one global list, so the adapter name only scopes the task match.
func (m *Manager) apply(_ string, servers []string) error {
	data, err := os.ReadFile(m.resolvConf)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to read resolv.conf")
	}

	content := rewriteResolvConf(string(data), servers)
	if err := os.WriteFile(m.resolvConf, []byte(content), 0644); err != nil {
		return errors.Wrap(err, "failed to write resolv.conf")
	}
	return nil
}

// flush drops the systemd-resolved cache when resolvectl is available.
func (m *Manager) flush() error {
	path, err := exec.LookPath("resolvectl")
	if err != nil {
		return nil
	}
	if out, err := exec.Command(path, "flush-caches").CombinedOutput(); err != nil {
		return errors.Wrapf(err, "resolvectl flush-caches: %s", out)
	}
	return nil
}
