package dnstask

import "strings"

// Match reports whether name matches pattern. A '*' matches any run of
// characters, including none; everything else compares exactly and is
// case-sensitive.
func Match(name, pattern string) bool {
	if pattern == "*" {
		return true
	}
	if !strings.Contains(pattern, "*") {
		return name == pattern
	}

	parts := strings.Split(pattern, "*")
	first, last := parts[0], parts[len(parts)-1]
	if !strings.HasPrefix(name, first) {
		return false
	}
	pos := len(first)

	for _, part := range parts[1 : len(parts)-1] {
		if part == "" {
			continue
		}
		idx := strings.Index(name[pos:], part)
		if idx < 0 {
			return false
		}
		pos += idx + len(part)
	}

	// The suffix is checked against the whole name and may overlap the
	// segments matched before it.
	return strings.HasSuffix(name, last)
}
