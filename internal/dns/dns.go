// Package dns applies DNS server lists to network adapters and flushes the
// resolver cache on the host.
package dns

import (
	"net"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// Manager applies DNS configuration through the platform's tooling.
type Manager struct {
	mu sync.Mutex

	// resolvConf is the resolver file rewritten on Linux.
	resolvConf string
}

// NewManager creates a new DNS manager.
func NewManager() *Manager {
	return &Manager{resolvConf: "/etc/resolv.conf"}
}

// ApplyDNS sets servers as the DNS servers of the named adapter.
func (m *Manager) ApplyDNS(adapter string, servers []string) error {
	if err := validateServers(servers); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.apply(adapter, servers)
}

// FlushCache clears the operating system's resolver cache.
func (m *Manager) FlushCache() error {
	return m.flush()
}

func validateServers(servers []string) error {
	if len(servers) == 0 {
		return errors.New("DNS servers list is empty")
	}
	for _, s := range servers {
		if net.ParseIP(s) == nil {
			return errors.Errorf("invalid DNS server address %q", s)
		}
	}
	return nil
}

// rewriteResolvConf replaces every nameserver line of content with servers,
// keeping the other directives. New lines go where the first nameserver
// used to be, or at the end when there was none.
func rewriteResolvConf(content string, servers []string) string {
	var out []string
	inserted := false
	insert := func() {
		for _, s := range servers {
			out = append(out, "nameserver "+s)
		}
		inserted = true
	}

	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) > 0 && fields[0] == "nameserver" {
			if !inserted {
				insert()
			}
			continue
		}
		if line == "" && len(lines) == 1 {
			continue
		}
		out = append(out, line)
	}
	if !inserted {
		insert()
	}
	return strings.Join(out, "\n") + "\n"
}
