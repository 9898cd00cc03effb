//go:build darwin

package netinfo

import (
	"net"
	"os/exec"

	"github.com/pkg/errors"
	psnet "github.com/shirou/gopsutil/net"
)

// listInterfaces reads adapters through gopsutil and the resolver
// configuration through scutil, which is global on macOS.
func listInterfaces() ([]Interface, error) {
	stats, err := psnet.Interfaces()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list interfaces")
	}

	var servers []string
	if out, err := exec.Command("scutil", "--dns").Output(); err == nil {
		servers = parseScutilDNS(string(out))
	}

	var ifaces []Interface
	for _, st := range stats {
		if hasFlag(st.Flags, "loopback") {
			continue
		}
		ifaces = append(ifaces, fromStat(st, servers))
	}
	return ifaces, nil
}

func fromStat(st psnet.InterfaceStat, servers []string) Interface {
	iface := Interface{
		Name:       st.Name,
		MACAddress: st.HardwareAddr,
		Enabled:    hasFlag(st.Flags, "up"),
		DNSServers: append([]string(nil), servers...),
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
	return iface
}

func hasFlag(flags []string, want string) bool {
	for _, f := range flags {
		if f == want {
			return true
		}
	}
	return false
}
