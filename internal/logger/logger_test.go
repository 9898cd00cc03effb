package logger

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func captureOutput(t *testing.T) *syncBuffer {
	t.Helper()
	buf := &syncBuffer{}
	prevOut, prevLevel := base.Out, base.GetLevel()
	base.SetOutput(buf)
	t.Cleanup(func() {
		base.SetOutput(prevOut)
		base.SetLevel(prevLevel)
	})
	return buf
}

func TestFor_TagsComponent(t *testing.T) {
	buf := captureOutput(t)

	For("dnstask").Info("cycle done")
	Task("t1", "applied %s", "1.1.1.1")

	out := buf.String()
	assert.Contains(t, out, "component=dnstask")
	assert.Contains(t, out, `msg="cycle done"`)
	assert.Contains(t, out, "task=t1")
	assert.Contains(t, out, "applied 1.1.1.1")
}

func TestSetLevel(t *testing.T) {
	buf := captureOutput(t)

	require.NoError(t, SetLevel("warning"))
	For("test").Info("hidden")
	For("test").Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	require.NoError(t, SetLevel(""))
	assert.Error(t, SetLevel("chatty"))
}

func TestSafeGo_RecoversPanic(t *testing.T) {
	buf := captureOutput(t)

	done := make(chan struct{})
	SafeGo("worker", func() {
		defer close(done)
		panic("boom")
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("goroutine did not finish")
	}
	assert.Eventually(t, func() bool {
		return strings.Contains(buf.String(), "PANIC: boom")
	}, time.Second, 5*time.Millisecond)
}
