package dnstask

import (
	"time"

	"github.com/user/dnskeeper/internal/netinfo"
)

// AdapterLister enumerates the host's network adapters.
type AdapterLister interface {
	ListAdapters() ([]netinfo.Interface, error)
}

// DNSApplier sets the DNS servers of one adapter.
type DNSApplier interface {
	ApplyDNS(adapter string, servers []string) error
}

// CacheFlusher clears the resolver cache after a successful apply.
type CacheFlusher interface {
	FlushCache() error
}

// Store is the durable mirror of the task list and the monitoring flag.
type Store interface {
	LoadTasks() ([]Task, error)
	SaveTask(task Task) error
	DeleteTask(id string) error
	UpdateTask(task Task) error
	LoadMonitoring() (bool, error)
	SaveMonitoring(enabled bool) error
}

// OpenFunc opens the durable store.
type OpenFunc func() (Store, error)

// Recorder observes the loop. Metrics collectors implement it.
type Recorder interface {
	ObserveCycle(d time.Duration)
	EnumerationFailed()
	ApplyResult(state State)
	SetRunning(running bool)
}

type nopRecorder struct{}

func (nopRecorder) ObserveCycle(time.Duration) {}
func (nopRecorder) EnumerationFailed()         {}
func (nopRecorder) ApplyResult(State)          {}
func (nopRecorder) SetRunning(bool)            {}
