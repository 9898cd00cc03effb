//go:build windows

package netinfo

import (
	"net"
	"os/exec"

	"github.com/pkg/errors"
	psnet "github.com/shirou/gopsutil/net"

	"github.com/user/dnskeeper/internal/procutil"
)

const dnsQuery = `Get-DnsClientServerAddress -AddressFamily IPv4 | ForEach-Object { $_.InterfaceAlias + "|" + ($_.ServerAddresses -join ",") }`

// listInterfaces reads adapters through gopsutil and per-adapter IPv4 DNS
// servers through a single PowerShell query.
func listInterfaces() ([]Interface, error) {
	stats, err := psnet.Interfaces()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list interfaces")
	}

	cmd := procutil.HideWindow(exec.Command("powershell", "-NoProfile", "-NonInteractive", "-Command", dnsQuery))
	out, err := cmd.Output()
	if err != nil {
		return nil, errors.Wrap(err, "failed to query DNS servers")
	}
	byAlias := parseAliasServers(string(out))

	var ifaces []Interface
	for _, st := range stats {
		if hasFlag(st.Flags, "loopback") {
			continue
		}
		iface := Interface{
			Name:       st.Name,
			MACAddress: st.HardwareAddr,
			Enabled:    hasFlag(st.Flags, "up"),
			DNSServers: append([]string(nil), byAlias[st.Name]...),
		}
		for _, a := range st.Addrs {
			ip := net.ParseIP(splitCIDR(a.Addr))
			if ip == nil {
				continue
			}
			if ip.To4() != nil {
				iface.IPv4 = append(iface.IPv4, ip.String())
			} else if !ip.IsLoopback() {
				iface.IPv6 = append(iface.IPv6, ip.String())
			}
		}
		ifaces = append(ifaces, iface)
	}
	return ifaces, nil
}

func hasFlag(flags []string, want string) bool {
	for _, f := range flags {
		if f == want {
			return true
		}
	}
	return false
}
