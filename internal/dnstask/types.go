// Package dnstask keeps network adapters aligned with declared DNS policies.
//
// A Registry owns the tasks, the statuses computed for them and a bounded
// log of enforcement attempts. A Monitor drives the background loop that
// enumerates adapters, compares their DNS servers with each task's target
// list and applies the target when they differ.
package dnstask

import "time"

// State is the evaluated state of one task against one adapter.
type State string

const (
	StateStopped     State = "stopped"
	StateRunning     State = "running"
	StateMatched     State = "matched"
	StateDNSMismatch State = "dns_mismatch"
	StateApplied     State = "applied"
)

// TimeLayout formats LogEntry.Time and TaskStatus.LastCheck.
const TimeLayout = "2006-01-02 15:04:05"

// MaxLogEntries caps the in-memory log buffer.
const MaxLogEntries = 100

// Task binds an adapter name pattern to a target DNS server list.
type Task struct {
	ID               string   `json:"id" yaml:"id"`
	Name             string   `json:"name" yaml:"name"`
	InterfacePattern string   `json:"interface_pattern" yaml:"interface_pattern"`
	TargetDNS        []string `json:"target_dns" yaml:"target_dns"`
	Enabled          bool     `json:"enabled" yaml:"enabled"`
	CreatedAt        int64    `json:"created_at" yaml:"created_at"`
	// Interval is the minimum number of seconds between enforcement
	// attempts. Zero is treated as one.
	Interval uint64 `json:"interval" yaml:"interval"`
}

// Every returns the task's throttle interval, never less than one second.
func (t Task) Every() time.Duration {
	if t.Interval < 1 {
		return time.Second
	}
	return time.Duration(t.Interval) * time.Second
}

func (t Task) clone() Task {
	t.TargetDNS = append([]string(nil), t.TargetDNS...)
	return t
}

// TaskStatus is the latest evaluation of a task against a matched adapter.
type TaskStatus struct {
	TaskID        string   `json:"task_id" yaml:"task_id"`
	TaskName      string   `json:"task_name" yaml:"task_name"`
	InterfaceName string   `json:"interface_name" yaml:"interface_name"`
	CurrentDNS    []string `json:"current_dns" yaml:"current_dns"`
	TargetDNS     []string `json:"target_dns" yaml:"target_dns"`
	Status        State    `json:"status" yaml:"status"`
	LastCheck     string   `json:"last_check" yaml:"last_check"`
	Message       string   `json:"message" yaml:"message"`
}

// LogEntry records one enforcement attempt.
type LogEntry struct {
	Time     string `json:"time" yaml:"time"`
	TaskID   string `json:"task_id" yaml:"task_id"`
	TaskName string `json:"task_name" yaml:"task_name"`
	Message  string `json:"message" yaml:"message"`
}
