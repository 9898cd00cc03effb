package dnstask

import (
	"fmt"
	"time"

	"github.com/user/dnskeeper/internal/logger"
	"github.com/user/dnskeeper/internal/netinfo"
)

const (
	msgDisabled   = "task disabled"
	msgWaiting    = "waiting for next check"
	msgMatched    = "DNS configuration correct"
	msgApplied    = "DNS auto-configured"
	msgApplyPanic = "error while applying DNS"
)

// loop runs reconciliation cycles until stop is closed. lastAttempt is the
// per-task throttle and lives only as long as this loop.
func (m *Monitor) loop(stop <-chan struct{}) {
	lastAttempt := make(map[string]time.Time)

	for {
		select {
		case <-stop:
			return
		default:
		}

		wait := m.cycle(lastAttempt)

		select {
		case <-stop:
			return
		case <-time.After(wait):
		}
	}
}

// cycle evaluates every task once and returns how long to sleep before the
// next one.
func (m *Monitor) cycle(lastAttempt map[string]time.Time) time.Duration {
	started := time.Now()

	var adapters []netinfo.Interface
	err := guard("list adapters", func() error {
		var err error
		adapters, err = m.adapter.ListAdapters()
		return err
	})
	if err != nil {
		log.WithError(err).Warn("Adapter enumeration failed")
		m.opts.Recorder.EnumerationFailed()
		return m.opts.ErrorBackoff
	}

	tasks := m.reg.List()
	now := m.opts.Clock()
	checked := now.Format(TimeLayout)

	var statuses []TaskStatus
	for _, task := range tasks {
		if !task.Enabled {
			statuses = append(statuses, TaskStatus{
				TaskID:        task.ID,
				TaskName:      task.Name,
				InterfaceName: task.InterfacePattern,
				CurrentDNS:    []string{},
				TargetDNS:     task.TargetDNS,
				Status:        StateStopped,
				LastCheck:     "-",
				Message:       msgDisabled,
			})
			continue
		}

		last, seen := lastAttempt[task.ID]
		due := !seen || now.Sub(last) >= task.Every()

		for _, iface := range adapters {
			if !iface.Enabled || !Match(iface.Name, task.InterfacePattern) {
				continue
			}

			st := TaskStatus{
				TaskID:        task.ID,
				TaskName:      task.Name,
				InterfaceName: iface.Name,
				CurrentDNS:    append([]string{}, iface.DNSServers...),
				TargetDNS:     task.TargetDNS,
				LastCheck:     checked,
			}

			switch {
			case !due:
				st.Status, st.Message = StateRunning, msgWaiting
			case DNSEqual(iface.DNSServers, task.TargetDNS):
				st.Status, st.Message = StateMatched, msgMatched
			default:
				lastAttempt[task.ID] = now
				st.Status, st.Message = m.enforce(task, iface.Name, now)
				m.opts.Recorder.ApplyResult(st.Status)
			}
			statuses = append(statuses, st)
		}
	}

	if err := m.reg.setStatuses(statuses); err != nil {
		log.WithError(err).Error("Failed to publish statuses")
	}
	m.opts.Recorder.ObserveCycle(time.Since(started))
	return m.opts.PollInterval
}

// enforce applies task's target DNS to adapter and returns the resulting
// state and message.
func (m *Monitor) enforce(task Task, adapter string, now time.Time) (State, string) {
	err := guard("apply DNS", func() error {
		return m.applier.ApplyDNS(adapter, task.TargetDNS)
	})

	if err == nil {
		m.appendLog(task, now, fmt.Sprintf("DNS set: %s -> %v", adapter, task.TargetDNS))
		logger.Task(task.ID, "Applied DNS %v to %s", task.TargetDNS, adapter)
		if m.opts.Flusher != nil {
			if ferr := guard("flush cache", m.opts.Flusher.FlushCache); ferr != nil {
				log.WithError(ferr).Warn("Failed to flush DNS cache")
			}
		}
		return StateApplied, msgApplied
	}

	cerr := err.(*CollaboratorError)
	if cerr.Panic {
		log.WithError(err).WithField("task", task.ID).Error("DNS apply panicked")
		return StateDNSMismatch, msgApplyPanic
	}

	cause := cerr.Err
	m.appendLog(task, now, fmt.Sprintf("failed to set DNS: %v", cause))
	logger.Task(task.ID, "Failed to apply DNS to %s: %v", adapter, cause)
	return StateDNSMismatch, fmt.Sprintf("apply failed: %v", cause)
}

func (m *Monitor) appendLog(task Task, now time.Time, msg string) {
	entry := LogEntry{
		Time:     now.Format(TimeLayout),
		TaskID:   task.ID,
		TaskName: task.Name,
		Message:  msg,
	}
	if err := m.reg.AppendLog(entry); err != nil {
		log.WithError(err).Error("Failed to append task log")
	}
}
