package netinfo

import (
	"bufio"
	"io"
	"strings"
)

// parseResolvConf returns the nameserver entries of a resolv.conf file in
// file order.
func parseResolvConf(r io.Reader) []string {
	var servers []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 || fields[0] != "nameserver" {
			continue
		}
		servers = appendUnique(servers, fields[1])
	}
	return servers
}

// parseScutilDNS extracts nameservers from `scutil --dns` output. The same
// resolver is usually listed several times, duplicates are dropped.
func parseScutilDNS(out string) []string {
	var servers []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "nameserver[") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) >= 3 {
			servers = appendUnique(servers, parts[2])
		}
	}
	return servers
}

// parseAliasServers parses "alias|dns1,dns2" lines into a map keyed by
// adapter alias.
func parseAliasServers(out string) map[string][]string {
	result := make(map[string][]string)
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		alias, list, ok := strings.Cut(line, "|")
		if !ok || alias == "" {
			continue
		}
		var servers []string
		for _, s := range strings.Split(list, ",") {
			if s = strings.TrimSpace(s); s != "" {
				servers = appendUnique(servers, s)
			}
		}
		result[alias] = append(result[alias], servers...)
	}
	return result
}

// splitCIDR drops the prefix length of an address in CIDR notation.
func splitCIDR(addr string) string {
	if i := strings.IndexByte(addr, '/'); i >= 0 {
		return addr[:i]
	}
	return addr
}
