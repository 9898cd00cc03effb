package dnstask

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/user/dnskeeper/internal/netinfo"
)

type memStore struct {
	mu         sync.Mutex
	tasks      []Task
	monitoring bool
	failWrites bool
	loadErr    error
	saves      []bool
	// beforeSave, when set, runs ahead of every SaveMonitoring.
	beforeSave func(enabled bool)
}

func (s *memStore) LoadTasks() ([]Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return append([]Task(nil), s.tasks...), nil
}

func (s *memStore) SaveTask(task Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites {
		return errors.New("disk full")
	}
	s.tasks = append(s.tasks, task)
	return nil
}

func (s *memStore) DeleteTask(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites {
		return errors.New("disk full")
	}
	for i, t := range s.tasks {
		if t.ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			break
		}
	}
	return nil
}

func (s *memStore) UpdateTask(task Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites {
		return errors.New("disk full")
	}
	for i, t := range s.tasks {
		if t.ID == task.ID {
			s.tasks[i] = task
		}
	}
	return nil
}

func (s *memStore) LoadMonitoring() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.monitoring, s.loadErr
}

func (s *memStore) SaveMonitoring(enabled bool) error {
	if s.beforeSave != nil {
		s.beforeSave(enabled)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves = append(s.saves, enabled)
	if s.failWrites {
		return errors.New("disk full")
	}
	s.monitoring = enabled
	return nil
}

func (s *memStore) savedFlags() []bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]bool(nil), s.saves...)
}

type fakeLister struct {
	mu       sync.Mutex
	adapters []netinfo.Interface
	err      error
	panicMsg string
	calls    int32
	inFlight int32
	maxSeen  int32
	delay    time.Duration
}

func (f *fakeLister) ListAdapters() ([]netinfo.Interface, error) {
	atomic.AddInt32(&f.calls, 1)
	n := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	for {
		cur := atomic.LoadInt32(&f.maxSeen)
		if n <= cur || atomic.CompareAndSwapInt32(&f.maxSeen, cur, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.err != nil {
		return nil, f.err
	}
	out := make([]netinfo.Interface, len(f.adapters))
	for i, a := range f.adapters {
		a.DNSServers = append([]string(nil), a.DNSServers...)
		out[i] = a
	}
	return out, nil
}

type applyCall struct {
	adapter string
	servers []string
}

type fakeApplier struct {
	mu       sync.Mutex
	calls    []applyCall
	err      error
	panicMsg string
}

func (f *fakeApplier) ApplyDNS(adapter string, servers []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, applyCall{adapter, append([]string(nil), servers...)})
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	return f.err
}

func (f *fakeApplier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeFlusher struct {
	calls int32
}

func (f *fakeFlusher) FlushCache() error {
	atomic.AddInt32(&f.calls, 1)
	return nil
}

// stepClock is a settable clock for driving cycles by hand.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStepClock() *stepClock {
	return &stepClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// panicRecorder panics on the first cycle it observes.
type panicRecorder struct {
	nopRecorder
	cycles  int32
	running int32
}

func (r *panicRecorder) ObserveCycle(time.Duration) {
	if atomic.AddInt32(&r.cycles, 1) == 1 {
		panic("recorder failed")
	}
}

func (r *panicRecorder) SetRunning(running bool) {
	var v int32
	if running {
		v = 1
	}
	atomic.StoreInt32(&r.running, v)
}
