package dnstask

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
)

var (
	// ErrLockFailure is returned when a guarded container panicked while
	// held. The operation fails; the process keeps running.
	ErrLockFailure = errors.New("internal lock failure")
	// ErrNotFound is returned by Update for an unknown task id.
	ErrNotFound = errors.New("task not found")
	// ErrAlreadyRunning is returned by Start while the loop is active.
	ErrAlreadyRunning = errors.New("monitoring is already running")
	// ErrDuplicateTask is returned by Add when the id is already registered.
	ErrDuplicateTask = errors.New("task id already exists")
	// ErrPersistence marks a failed durable write. The in-memory change
	// still took effect.
	ErrPersistence = errors.New("persistence failed")
)

// CollaboratorError wraps a failure raised by adapter enumeration or DNS
// application. Panic is set when the collaborator panicked instead of
// returning an error.
type CollaboratorError struct {
	Op    string
	Err   error
	Panic bool
}

func (e *CollaboratorError) Error() string {
	if e.Panic {
		return fmt.Sprintf("%s panicked: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

// persistError ties a store failure to ErrPersistence while keeping the
// underlying cause in the message.
type persistError struct {
	op  string
	err error
}

func (e *persistError) Error() string {
	return fmt.Sprintf("%s: %v: %v", ErrPersistence, e.op, e.err)
}

func (e *persistError) Unwrap() error { return e.err }

func (e *persistError) Is(target error) bool { return target == ErrPersistence }

func persistErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &persistError{op: op, err: err}
}

// guard runs fn, turning a returned error or a panic into a
// *CollaboratorError.
func guard(op string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &CollaboratorError{Op: op, Err: fmt.Errorf("%v", r), Panic: true}
		}
	}()
	if ferr := fn(); ferr != nil {
		return &CollaboratorError{Op: op, Err: ferr}
	}
	return nil
}

// withLock runs fn while holding mu. A panic inside fn releases the lock and
// is reported as ErrLockFailure so the container stays usable.
func withLock(mu sync.Locker, fn func()) (err error) {
	mu.Lock()
	defer mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrapf(ErrLockFailure, "%v", r)
		}
	}()
	fn()
	return nil
}
