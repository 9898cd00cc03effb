// Package netinfo enumerates network adapters and the DNS servers the
// operating system reports for them.
package netinfo

import "sort"

// Interface is a read-only snapshot of one network adapter.
type Interface struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	MACAddress  string   `json:"mac_address,omitempty" yaml:"mac_address,omitempty"`
	IPv4        []string `json:"ipv4,omitempty" yaml:"ipv4,omitempty"`
	IPv6        []string `json:"ipv6,omitempty" yaml:"ipv6,omitempty"`
	DNSServers  []string `json:"dns_servers,omitempty" yaml:"dns_servers,omitempty"`
	Enabled     bool     `json:"enabled" yaml:"enabled"`
	Type        string   `json:"if_type,omitempty" yaml:"if_type,omitempty"`
}

// Lister reads adapters from the running system.
type Lister struct{}

// NewLister creates a new adapter lister.
func NewLister() *Lister {
	return &Lister{}
}

// ListAdapters returns every non-loopback adapter. Each call builds fresh
// slices, so results are never shared between callers.
func (l *Lister) ListAdapters() ([]Interface, error) {
	ifaces, err := listInterfaces()
	if err != nil {
		return nil, err
	}
	for i := range ifaces {
		sort.Strings(ifaces[i].IPv4)
		sort.Strings(ifaces[i].IPv6)
	}
	return ifaces, nil
}

// appendUnique appends s unless it is already present, keeping order.
func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
