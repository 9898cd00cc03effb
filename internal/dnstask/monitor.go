package dnstask

import (
	"context"
	"sync"
	"time"

	"github.com/user/dnskeeper/internal/logger"
)

// Options tunes a Monitor. Zero values fall back to the defaults.
type Options struct {
	// PollInterval is the pause between reconciliation cycles.
	PollInterval time.Duration
	// ErrorBackoff is the pause after a failed adapter enumeration.
	ErrorBackoff time.Duration
	// RestoreDelay precedes the monitoring flag check in Restore.
	RestoreDelay time.Duration
	Clock        func() time.Time
	Recorder     Recorder
	// Flusher, when set, runs after every successful apply.
	Flusher CacheFlusher
}

func (o *Options) setDefaults() {
	if o.PollInterval <= 0 {
		o.PollInterval = 500 * time.Millisecond
	}
	if o.ErrorBackoff <= 0 {
		o.ErrorBackoff = 500 * time.Millisecond
	}
	if o.RestoreDelay < 0 {
		o.RestoreDelay = 0
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	if o.Recorder == nil {
		o.Recorder = nopRecorder{}
	}
}

// Monitor starts and stops the reconciliation loop. At most one loop runs
// at a time.
type Monitor struct {
	reg     *Registry
	adapter AdapterLister
	applier DNSApplier
	opts    Options

	// ctl serializes Start and Stop so the persisted flag always follows
	// the last of them.
	ctl sync.Mutex

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	done    chan struct{}
}

// NewMonitor creates a stopped monitor.
func NewMonitor(reg *Registry, adapters AdapterLister, applier DNSApplier, opts Options) *Monitor {
	opts.setDefaults()
	return &Monitor{
		reg:     reg,
		adapter: adapters,
		applier: applier,
		opts:    opts,
	}
}

// Registry returns the registry the monitor reconciles.
func (m *Monitor) Registry() *Registry {
	return m.reg
}

// Init loads the registry from open and restores the monitoring state.
func (m *Monitor) Init(open OpenFunc) {
	m.reg.Load(open)
	m.Restore()
}

// Start spawns the loop. It returns ErrAlreadyRunning if one is active.
func (m *Monitor) Start() error {
	m.ctl.Lock()
	defer m.ctl.Unlock()

	if err := m.spawn(); err != nil {
		return err
	}
	m.reg.SetMonitoring(true)
	log.Info("DNS monitoring started")
	return nil
}

func (m *Monitor) spawn() error {
	var err error
	if lerr := withLock(&m.mu, func() {
		if m.running {
			err = ErrAlreadyRunning
			return
		}
		m.running = true
		m.stopCh = make(chan struct{})
		m.done = make(chan struct{})

		stop, done := m.stopCh, m.done
		m.opts.Recorder.SetRunning(true)
		go func() {
			defer close(done)
			defer m.exited(stop)
			defer logger.Recover("dns-monitor")
			m.loop(stop)
		}()
	}); lerr != nil {
		return lerr
	}
	return err
}

// exited clears the running state when the loop owning stop returns on its
// own, which only happens after a panic escaped a cycle.
func (m *Monitor) exited(stop chan struct{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running || m.stopCh != stop {
		return
	}
	m.running = false
	m.opts.Recorder.SetRunning(false)
	log.Error("DNS monitoring loop exited unexpectedly")
}

// Stop asks the loop to exit and persists monitoring as disabled. It does
// not wait; use Wait for that.
func (m *Monitor) Stop() {
	m.ctl.Lock()
	defer m.ctl.Unlock()

	if m.halt() {
		log.Info("DNS monitoring stopped")
	}
	m.reg.SetMonitoring(false)
}

// Close stops the loop without touching the persisted flag, so the next
// process start restores the same state, then waits for the loop to exit.
func (m *Monitor) Close(ctx context.Context) error {
	m.halt()
	return m.Wait(ctx)
}

func (m *Monitor) halt() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return false
	}
	m.running = false
	close(m.stopCh)
	m.opts.Recorder.SetRunning(false)
	return true
}

// Wait blocks until the most recently started loop has exited or ctx is
// done.
func (m *Monitor) Wait(ctx context.Context) error {
	m.mu.Lock()
	done := m.done
	m.mu.Unlock()
	if done == nil {
		return nil
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Running reports whether the loop is supposed to be running.
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Restore starts the loop if monitoring was enabled when the process last
// exited.
func (m *Monitor) Restore() {
	if m.opts.RestoreDelay > 0 {
		time.Sleep(m.opts.RestoreDelay)
	}
	if !m.reg.Monitoring() {
		return
	}
	if err := m.Start(); err != nil && err != ErrAlreadyRunning {
		log.WithError(err).Error("Failed to restore DNS monitoring")
		return
	}
	log.Info("DNS monitoring restored")
}
