//go:build windows

package dns

import (
	"fmt"
	"os/exec"

	"github.com/pkg/errors"

	"github.com/user/dnskeeper/internal/procutil"
)

// apply sets the primary server with netsh and adds the rest in order.
func (m *Manager) apply(adapter string, servers []string) error {
	cmd := procutil.HideWindow(exec.Command("netsh", "interface", "ipv4", "set", "dnsservers",
		fmt.Sprintf("name=%s", adapter),
		"source=static",
		fmt.Sprintf("address=%s", servers[0]),
		"validate=no",
	))
	if out, err := cmd.CombinedOutput(); err != nil {
		return errors.Wrapf(err, "failed to set primary DNS: %s", out)
	}

	for i := 1; i < len(servers); i++ {
		cmd = procutil.HideWindow(exec.Command("netsh", "interface", "ipv4", "add", "dnsservers",
			fmt.Sprintf("name=%s", adapter),
			fmt.Sprintf("address=%s", servers[i]),
			fmt.Sprintf("index=%d", i+1),
			"validate=no",
		))
		if out, err := cmd.CombinedOutput(); err != nil {
			return errors.Wrapf(err, "failed to add DNS %s: %s", servers[i], out)
		}
	}

	return nil
}

// flush runs ipconfig /flushdns.
func (m *Manager) flush() error {
	cmd := procutil.HideWindow(exec.Command("ipconfig", "/flushdns"))
	if out, err := cmd.CombinedOutput(); err != nil {
		return errors.Wrapf(err, "ipconfig /flushdns failed: %s", out)
	}
	return nil
}
