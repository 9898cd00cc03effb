package dnstask

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/dnskeeper/internal/netinfo"
)

func eth0(dns ...string) netinfo.Interface {
	return netinfo.Interface{Name: "eth0", Enabled: true, DNSServers: dns}
}

func newTestMonitor(t *testing.T, lister *fakeLister, applier *fakeApplier, clock *stepClock) (*Monitor, *Registry) {
	t.Helper()
	reg := NewRegistry(&memStore{})
	opts := Options{
		PollInterval: 5 * time.Millisecond,
		ErrorBackoff: 5 * time.Millisecond,
	}
	if clock != nil {
		opts.Clock = clock.Now
	}
	return NewMonitor(reg, lister, applier, opts), reg
}

func TestCycle_AppliesThenWaits(t *testing.T) {
	clock := newStepClock()
	applier := &fakeApplier{}
	mon, reg := newTestMonitor(t, &fakeLister{adapters: []netinfo.Interface{eth0("8.8.8.8")}}, applier, clock)
	require.NoError(t, reg.Add(sampleTask("t1")))

	throttle := map[string]time.Time{}
	wait := mon.cycle(throttle)
	assert.Equal(t, 5*time.Millisecond, wait)

	statuses := reg.Statuses()
	require.Len(t, statuses, 1)
	assert.Equal(t, StateApplied, statuses[0].Status)
	assert.Equal(t, "DNS auto-configured", statuses[0].Message)
	assert.Equal(t, []string{"8.8.8.8"}, statuses[0].CurrentDNS)
	assert.Equal(t, []string{"1.1.1.1"}, statuses[0].TargetDNS)
	assert.Equal(t, "eth0", statuses[0].InterfaceName)
	assert.Equal(t, "2024-05-01 12:00:00", statuses[0].LastCheck)

	logs := reg.Logs()
	require.Len(t, logs, 1)
	assert.Equal(t, "t1", logs[0].TaskID)
	assert.Equal(t, "DNS set: eth0 -> [1.1.1.1]", logs[0].Message)

	// Same second: throttled.
	mon.cycle(throttle)
	statuses = reg.Statuses()
	require.Len(t, statuses, 1)
	assert.Equal(t, StateRunning, statuses[0].Status)
	assert.Equal(t, "waiting for next check", statuses[0].Message)
	assert.Equal(t, 1, applier.count())
	assert.Len(t, reg.Logs(), 1)
}

func TestCycle_ThrottleHonoursInterval(t *testing.T) {
	clock := newStepClock()
	applier := &fakeApplier{err: errors.New("access denied")}
	mon, reg := newTestMonitor(t, &fakeLister{adapters: []netinfo.Interface{eth0("8.8.8.8")}}, applier, clock)
	task := sampleTask("t1")
	task.Interval = 5
	require.NoError(t, reg.Add(task))

	throttle := map[string]time.Time{}
	mon.cycle(throttle)
	st := reg.Statuses()[0]
	assert.Equal(t, StateDNSMismatch, st.Status)
	assert.Equal(t, "apply failed: access denied", st.Message)
	require.Len(t, reg.Logs(), 1)
	assert.Equal(t, "failed to set DNS: access denied", reg.Logs()[0].Message)

	clock.Advance(4 * time.Second)
	mon.cycle(throttle)
	assert.Equal(t, StateRunning, reg.Statuses()[0].Status)
	assert.Equal(t, 1, applier.count())

	clock.Advance(time.Second)
	mon.cycle(throttle)
	assert.Equal(t, StateDNSMismatch, reg.Statuses()[0].Status)
	assert.Equal(t, 2, applier.count())
}

func TestCycle_MatchedAndUnmatchedAdapters(t *testing.T) {
	lister := &fakeLister{adapters: []netinfo.Interface{
		eth0("1.1.1.1"),
		{Name: "eth1", Enabled: false, DNSServers: []string{"8.8.8.8"}},
		{Name: "wlan0", Enabled: true, DNSServers: []string{"8.8.8.8"}},
	}}
	applier := &fakeApplier{}
	mon, reg := newTestMonitor(t, lister, applier, newStepClock())
	require.NoError(t, reg.Add(sampleTask("t1")))

	mon.cycle(map[string]time.Time{})

	statuses := reg.Statuses()
	require.Len(t, statuses, 1, "disabled and non-matching adapters are skipped")
	assert.Equal(t, StateMatched, statuses[0].Status)
	assert.Equal(t, "DNS configuration correct", statuses[0].Message)
	assert.Zero(t, applier.count())
}

func TestCycle_DisabledTask(t *testing.T) {
	applier := &fakeApplier{}
	mon, reg := newTestMonitor(t, &fakeLister{adapters: []netinfo.Interface{eth0("8.8.8.8")}}, applier, newStepClock())
	task := sampleTask("t1")
	task.Enabled = false
	require.NoError(t, reg.Add(task))

	mon.cycle(map[string]time.Time{})

	statuses := reg.Statuses()
	require.Len(t, statuses, 1)
	assert.Equal(t, StateStopped, statuses[0].Status)
	assert.Equal(t, "task disabled", statuses[0].Message)
	assert.Equal(t, "eth*", statuses[0].InterfaceName)
	assert.Equal(t, "-", statuses[0].LastCheck)
	assert.Zero(t, applier.count())
}

func TestCycle_ApplyPanicIsContained(t *testing.T) {
	applier := &fakeApplier{panicMsg: "driver crashed"}
	mon, reg := newTestMonitor(t, &fakeLister{adapters: []netinfo.Interface{eth0("8.8.8.8")}}, applier, newStepClock())
	require.NoError(t, reg.Add(sampleTask("t1")))

	require.NotPanics(t, func() { mon.cycle(map[string]time.Time{}) })

	st := reg.Statuses()[0]
	assert.Equal(t, StateDNSMismatch, st.Status)
	assert.Equal(t, "error while applying DNS", st.Message)
	assert.Empty(t, reg.Logs(), "a panic leaves no log entry")
}

func TestCycle_EnumerationFailureKeepsStatuses(t *testing.T) {
	lister := &fakeLister{adapters: []netinfo.Interface{eth0("1.1.1.1")}}
	mon, reg := newTestMonitor(t, lister, &fakeApplier{}, newStepClock())
	mon.opts.ErrorBackoff = 42 * time.Millisecond
	require.NoError(t, reg.Add(sampleTask("t1")))

	mon.cycle(map[string]time.Time{})
	require.Len(t, reg.Statuses(), 1)

	lister.mu.Lock()
	lister.err = errors.New("wmi unavailable")
	lister.mu.Unlock()
	assert.Equal(t, 42*time.Millisecond, mon.cycle(map[string]time.Time{}))
	assert.Len(t, reg.Statuses(), 1)

	lister.mu.Lock()
	lister.err = nil
	lister.panicMsg = "nil adapter"
	lister.mu.Unlock()
	var wait time.Duration
	require.NotPanics(t, func() { wait = mon.cycle(map[string]time.Time{}) })
	assert.Equal(t, 42*time.Millisecond, wait)
	assert.Equal(t, StateMatched, reg.Statuses()[0].Status)
}

func TestCycle_FlushesAfterApply(t *testing.T) {
	flusher := &fakeFlusher{}
	reg := NewRegistry(nil)
	mon := NewMonitor(reg, &fakeLister{adapters: []netinfo.Interface{eth0("8.8.8.8")}}, &fakeApplier{}, Options{Flusher: flusher})
	require.NoError(t, reg.Add(sampleTask("t1")))

	mon.cycle(map[string]time.Time{})
	assert.Equal(t, int32(1), atomic.LoadInt32(&flusher.calls))
}

func TestMonitor_StartTwice(t *testing.T) {
	lister := &fakeLister{adapters: []netinfo.Interface{eth0("1.1.1.1")}, delay: 2 * time.Millisecond}
	mon, reg := newTestMonitor(t, lister, &fakeApplier{}, nil)
	require.NoError(t, reg.Add(sampleTask("t1")))

	require.NoError(t, mon.Start())
	assert.ErrorIs(t, mon.Start(), ErrAlreadyRunning)
	assert.True(t, mon.Running())

	require.Eventually(t, func() bool { return atomic.LoadInt32(&lister.calls) >= 5 }, 2*time.Second, time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&lister.maxSeen), "only one loop may enumerate at a time")
	assert.Len(t, reg.Statuses(), 1)

	mon.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, mon.Wait(ctx))
	assert.False(t, mon.Running())
}

func TestMonitor_StopPersistsAndCloseDoesNot(t *testing.T) {
	store := &memStore{}
	reg := NewRegistry(store)
	mon := NewMonitor(reg, &fakeLister{}, &fakeApplier{}, Options{PollInterval: time.Millisecond})

	require.NoError(t, mon.Start())
	mon.Stop()
	assert.Equal(t, []bool{true, false}, store.savedFlags())

	require.NoError(t, mon.Start())
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, mon.Close(ctx))
	assert.False(t, mon.Running())
	assert.Equal(t, []bool{true, false, true}, store.savedFlags())
	assert.True(t, reg.Monitoring())
}

func TestMonitor_InitRestoresRunningState(t *testing.T) {
	store := &memStore{monitoring: true, tasks: []Task{sampleTask("t1")}}
	reg := NewRegistry(nil)
	mon := NewMonitor(reg, &fakeLister{adapters: []netinfo.Interface{eth0("1.1.1.1")}}, &fakeApplier{}, Options{
		PollInterval: time.Millisecond,
		RestoreDelay: time.Millisecond,
	})

	mon.Init(func() (Store, error) { return store, nil })
	require.True(t, mon.Running())
	require.Eventually(t, func() bool { return len(reg.Statuses()) == 1 }, 2*time.Second, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, mon.Close(ctx))
}

func TestMonitor_RestoreStaysStopped(t *testing.T) {
	reg := NewRegistry(nil)
	mon := NewMonitor(reg, &fakeLister{}, &fakeApplier{}, Options{})
	mon.Restore()
	assert.False(t, mon.Running())
	require.NoError(t, mon.Wait(context.Background()))
}

func TestMonitor_LoopPanicClearsRunning(t *testing.T) {
	rec := &panicRecorder{}
	reg := NewRegistry(&memStore{})
	mon := NewMonitor(reg, &fakeLister{}, &fakeApplier{}, Options{
		PollInterval: time.Millisecond,
		Recorder:     rec,
	})

	require.NoError(t, mon.Start())
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, mon.Wait(ctx))

	assert.False(t, mon.Running())
	assert.Equal(t, int32(0), atomic.LoadInt32(&rec.running))
	assert.True(t, reg.Monitoring(), "the persisted flag survives so a restart resumes")

	require.NoError(t, mon.Start(), "a new loop can start after the old one died")
	assert.True(t, mon.Running())
	require.Eventually(t, func() bool { return atomic.LoadInt32(&rec.cycles) >= 2 }, 2*time.Second, time.Millisecond)

	mon.Stop()
	require.NoError(t, mon.Wait(ctx))
	assert.False(t, mon.Running())
}

func TestMonitor_StopDuringStartPersistsStopped(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	store := &memStore{}
	var once sync.Once
	store.beforeSave = func(enabled bool) {
		if enabled {
			once.Do(func() { close(entered) })
			<-release
		}
	}
	reg := NewRegistry(store)
	mon := NewMonitor(reg, &fakeLister{}, &fakeApplier{}, Options{PollInterval: time.Millisecond})

	startErr := make(chan error, 1)
	go func() { startErr <- mon.Start() }()
	<-entered

	stopped := make(chan struct{})
	go func() {
		mon.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop finished while Start was still persisting")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.NoError(t, <-startErr)
	<-stopped

	assert.Equal(t, []bool{true, false}, store.savedFlags())
	assert.False(t, reg.Monitoring())
	assert.False(t, mon.Running())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, mon.Wait(ctx))
}
