//go:build linux

package netinfo

import (
	"net"
	"os"

	"github.com/pkg/errors"
	"github.com/vishvananda/netlink"
)

const resolvConfPath = "/etc/resolv.conf"

// listInterfaces reads links and addresses over netlink. Linux has no
// per-adapter resolver list in resolv.conf, so every adapter reports the
// global nameservers.
func listInterfaces() ([]Interface, error) {
	links, err := netlink.LinkList()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list links")
	}

	var servers []string
	if f, err := os.Open(resolvConfPath); err == nil {
		servers = parseResolvConf(f)
		f.Close()
	}

	var ifaces []Interface
	for _, link := range links {
		attrs := link.Attrs()
		if attrs.Flags&net.FlagLoopback != 0 {
			continue
		}

		iface := Interface{
			Name:       attrs.Name,
			Type:       link.Type(),
			Enabled:    attrs.Flags&net.FlagUp != 0,
			DNSServers: append([]string(nil), servers...),
		}
		if attrs.Alias != "" {
			iface.Description = attrs.Alias
		}
		if len(attrs.HardwareAddr) > 0 {
			iface.MACAddress = attrs.HardwareAddr.String()
		}

		addrs, err := netlink.AddrList(link, netlink.FAMILY_ALL)
		if err == nil {
			for _, addr := range addrs {
				if addr.IPNet == nil {
					continue
				}
				if addr.IP.To4() != nil {
					iface.IPv4 = append(iface.IPv4, addr.IP.String())
				} else if !addr.IP.IsLoopback() {
					iface.IPv6 = append(iface.IPv6, addr.IP.String())
				}
			}
		}

		ifaces = append(ifaces, iface)
	}

	return ifaces, nil
}
