//go:build linux

package dns

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_ApplyRewritesResolvConf(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resolv.conf")
	require.NoError(t, os.WriteFile(path, []byte("nameserver 8.8.8.8\noptions rotate\n"), 0644))

	m := &Manager{resolvConf: path}
	require.NoError(t, m.ApplyDNS("eth0", []string{"1.1.1.1"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "nameserver 1.1.1.1\noptions rotate\n", string(data))
}
