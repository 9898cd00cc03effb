//go:build darwin

package main

import (
	"os"
	"strings"
)

func init() {
	// launchd jobs may start with an empty or trimmed PATH, while
	// networksetup, scutil and dscacheutil live in the system sbin dirs.
	required := []string{"/usr/sbin", "/sbin", "/usr/bin", "/bin"}

	current := os.Getenv("PATH")
	existing := make(map[string]bool)
	for _, p := range strings.Split(current, ":") {
		existing[p] = true
	}

	var toAdd []string
	for _, p := range required {
		if !existing[p] {
			toAdd = append(toAdd, p)
		}
	}
	if len(toAdd) == 0 {
		return
	}
	if current == "" {
		os.Setenv("PATH", strings.Join(toAdd, ":"))
		return
	}
	os.Setenv("PATH", current+":"+strings.Join(toAdd, ":"))
}
