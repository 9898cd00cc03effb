package dnstask

import (
	"sync"

	"github.com/user/dnskeeper/internal/logger"
)

var log = logger.For("dnstask")

// Registry owns the in-memory tasks, statuses and log buffer. Each
// container has its own lock and no lock is held across a store call
// together with another one.
type Registry struct {
	tasksMu sync.Mutex
	tasks   []Task

	statusMu sync.Mutex
	statuses []TaskStatus

	logsMu sync.Mutex
	logs   []LogEntry

	storeMu sync.Mutex
	store   Store

	monitorMu  sync.Mutex
	monitoring bool
}

// NewRegistry creates an empty registry backed by store. A nil store keeps
// everything in memory.
func NewRegistry(store Store) *Registry {
	return &Registry{store: store}
}

// Load replaces the registry's contents with what open returns. A store
// that cannot be opened leaves the registry empty with monitoring off; the
// failure is logged and not returned.
func (r *Registry) Load(open OpenFunc) {
	store, err := open()
	if err != nil {
		log.WithError(err).Error("Failed to open task store, continuing without persistence")
		return
	}

	tasks, err := store.LoadTasks()
	if err != nil {
		log.WithError(err).Error("Failed to load tasks")
		tasks = nil
	}
	for i := range tasks {
		if tasks[i].Interval < 1 {
			tasks[i].Interval = 1
		}
	}

	monitoring, err := store.LoadMonitoring()
	if err != nil {
		log.WithError(err).Error("Failed to load monitoring state")
		monitoring = false
	}

	r.storeMu.Lock()
	r.store = store
	r.storeMu.Unlock()

	r.tasksMu.Lock()
	r.tasks = tasks
	r.tasksMu.Unlock()

	r.monitorMu.Lock()
	r.monitoring = monitoring
	r.monitorMu.Unlock()

	log.WithField("tasks", len(tasks)).WithField("monitoring", monitoring).Info("Task store loaded")
}

// withStore runs fn against the current store, if any.
func (r *Registry) withStore(fn func(Store) error) error {
	var err error
	if lerr := withLock(&r.storeMu, func() {
		if r.store != nil {
			err = fn(r.store)
		}
	}); lerr != nil {
		return lerr
	}
	return err
}

// Add registers task. A duplicate id is rejected before anything is written.
// When the durable write fails the task is still added and an error
// wrapping ErrPersistence is returned.
func (r *Registry) Add(task Task) error {
	task = task.clone()

	var dup bool
	if err := withLock(&r.tasksMu, func() {
		for _, t := range r.tasks {
			if t.ID == task.ID {
				dup = true
				return
			}
		}
	}); err != nil {
		return err
	}
	if dup {
		return ErrDuplicateTask
	}

	perr := persistErr("save task", r.withStore(func(s Store) error { return s.SaveTask(task) }))

	if err := withLock(&r.tasksMu, func() {
		for _, t := range r.tasks {
			if t.ID == task.ID {
				dup = true
				return
			}
		}
		r.tasks = append(r.tasks, task)
	}); err != nil {
		return err
	}
	if dup {
		return ErrDuplicateTask
	}
	return perr
}

// Remove deletes the task with id. Removing an unknown id is a no-op.
func (r *Registry) Remove(id string) error {
	perr := persistErr("delete task", r.withStore(func(s Store) error { return s.DeleteTask(id) }))

	if err := withLock(&r.tasksMu, func() {
		kept := r.tasks[:0:0]
		for _, t := range r.tasks {
			if t.ID != id {
				kept = append(kept, t)
			}
		}
		r.tasks = kept
	}); err != nil {
		return err
	}
	return perr
}

// Update replaces the task with the same id. ErrNotFound is returned when
// no such task is registered.
func (r *Registry) Update(task Task) error {
	task = task.clone()
	perr := persistErr("update task", r.withStore(func(s Store) error { return s.UpdateTask(task) }))

	found := false
	if err := withLock(&r.tasksMu, func() {
		for i := range r.tasks {
			if r.tasks[i].ID == task.ID {
				r.tasks[i] = task
				found = true
				return
			}
		}
	}); err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	return perr
}

// Get returns the task with id.
func (r *Registry) Get(id string) (Task, error) {
	var (
		task  Task
		found bool
	)
	if err := withLock(&r.tasksMu, func() {
		for _, t := range r.tasks {
			if t.ID == id {
				task, found = t.clone(), true
				return
			}
		}
	}); err != nil {
		return Task{}, err
	}
	if !found {
		return Task{}, ErrNotFound
	}
	return task, nil
}

// List returns a copy of the registered tasks in insertion order.
func (r *Registry) List() []Task {
	r.tasksMu.Lock()
	defer r.tasksMu.Unlock()

	out := make([]Task, len(r.tasks))
	for i, t := range r.tasks {
		out[i] = t.clone()
	}
	return out
}

// Statuses returns a copy of the statuses computed by the last cycle.
func (r *Registry) Statuses() []TaskStatus {
	r.statusMu.Lock()
	defer r.statusMu.Unlock()

	out := make([]TaskStatus, len(r.statuses))
	copy(out, r.statuses)
	return out
}

func (r *Registry) setStatuses(statuses []TaskStatus) error {
	return withLock(&r.statusMu, func() {
		r.statuses = statuses
	})
}

// AppendLog puts entry at the front of the log buffer, dropping the oldest
// entries beyond MaxLogEntries.
func (r *Registry) AppendLog(entry LogEntry) error {
	return withLock(&r.logsMu, func() {
		r.logs = append(r.logs, LogEntry{})
		copy(r.logs[1:], r.logs)
		r.logs[0] = entry
		if len(r.logs) > MaxLogEntries {
			r.logs = r.logs[:MaxLogEntries]
		}
	})
}

// Logs returns the log buffer, newest first.
func (r *Registry) Logs() []LogEntry {
	r.logsMu.Lock()
	defer r.logsMu.Unlock()

	out := make([]LogEntry, len(r.logs))
	copy(out, r.logs)
	return out
}

// ClearLogs empties the log buffer.
func (r *Registry) ClearLogs() error {
	return withLock(&r.logsMu, func() {
		r.logs = nil
	})
}

// Monitoring returns the persisted "monitoring enabled" flag.
func (r *Registry) Monitoring() bool {
	r.monitorMu.Lock()
	defer r.monitorMu.Unlock()
	return r.monitoring
}

// SetMonitoring records the flag and writes it through to the store.
// Store failures are logged only.
func (r *Registry) SetMonitoring(enabled bool) {
	r.monitorMu.Lock()
	r.monitoring = enabled
	r.monitorMu.Unlock()

	if err := r.withStore(func(s Store) error { return s.SaveMonitoring(enabled) }); err != nil {
		log.WithError(err).Warn("Failed to persist monitoring state")
	}
}
