package api

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/user/dnskeeper/internal/dnstask"
	"github.com/user/dnskeeper/internal/netinfo"
	"github.com/user/dnskeeper/internal/probe"
)

var apiRoutes = []route{
	{"listTasks", "GET", "/tasks", listTasks},
	{"createTask", "POST", "/tasks", createTask},
	{"getTask", "GET", "/tasks/{id}", getTask},
	{"updateTask", "PUT", "/tasks/{id}", updateTask},
	{"removeTask", "DELETE", "/tasks/{id}", removeTask},
	{"probeTask", "POST", "/tasks/{id}/probe", probeTask},
	{"getStatuses", "GET", "/statuses", getStatuses},
	{"getLogs", "GET", "/logs", getLogs},
	{"clearLogs", "DELETE", "/logs", clearLogs},
	{"getMonitor", "GET", "/monitor", getMonitor},
	{"startMonitor", "POST", "/monitor", startMonitor},
	{"stopMonitor", "DELETE", "/monitor", stopMonitor},
	{"getInterfaces", "GET", "/interfaces", getInterfaces},
}

// TaskRequest is the body of create and update calls. On update, a nil
// Enabled and a zero Interval keep the stored values.
type TaskRequest struct {
	Name             string   `json:"name" validate:"required,max=128"`
	InterfacePattern string   `json:"interface_pattern" validate:"required"`
	TargetDNS        []string `json:"target_dns" validate:"required,min=1,dive,ip"`
	Enabled          *bool    `json:"enabled,omitempty"`
	Interval         uint64   `json:"interval,omitempty" validate:"omitempty,max=86400"`
}

// TaskResponse carries a task and, when the durable write failed, a warning.
type TaskResponse struct {
	dnstask.Task
	Warning string `json:"warning,omitempty"`
}

// MonitorState reports whether the loop runs.
type MonitorState struct {
	Running bool `json:"running"`
}

// ProbeResponse holds one probe result per target server.
type ProbeResponse struct {
	TaskID  string         `json:"task_id"`
	Name    string         `json:"name"`
	Results []probe.Result `json:"results"`
}

func newTaskID() string {
	return uuid.NewString()
}

func writeErr(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, dnstask.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, dnstask.ErrAlreadyRunning), errors.Is(err, dnstask.ErrDuplicateTask):
		status = http.StatusConflict
	default:
		log.WithError(err).Error("Request failed")
	}
	rend.JSON(w, status, httperr{Error: err.Error()})
}

// persisted splits an error into a warning when only the durable write
// failed.
func persisted(err error) (warning string, fatal error) {
	if err != nil && errors.Is(err, dnstask.ErrPersistence) {
		log.WithError(err).Warn("Task change not persisted")
		return err.Error(), nil
	}
	return "", err
}

func (ha handlerAccess) decode(r *http.Request) (TaskRequest, error) {
	var req TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, errors.Wrap(err, "invalid JSON body")
	}
	if err := ha.validate.Struct(req); err != nil {
		return req, errors.Wrap(err, "invalid task")
	}
	return req, nil
}

func listTasks(ha handlerAccess) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rend.JSON(w, http.StatusOK, ha.reg.List())
	})
}

func createTask(ha handlerAccess) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := ha.decode(r)
		if err != nil {
			rend.JSON(w, http.StatusBadRequest, httperr{Error: err.Error()})
			return
		}

		task := dnstask.Task{
			ID:               ha.newID(),
			Name:             req.Name,
			InterfacePattern: req.InterfacePattern,
			TargetDNS:        req.TargetDNS,
			Enabled:          true,
			CreatedAt:        ha.now().Unix(),
			Interval:         req.Interval,
		}
		if req.Enabled != nil {
			task.Enabled = *req.Enabled
		}
		if task.Interval < 1 {
			task.Interval = 1
		}

		warning, err := persisted(ha.reg.Add(task))
		if err != nil {
			writeErr(w, err)
			return
		}
		log.WithField("task", task.ID).Infof("Task %q added for %s", task.Name, task.InterfacePattern)
		rend.JSON(w, http.StatusCreated, TaskResponse{Task: task, Warning: warning})
	})
}

func getTask(ha handlerAccess) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		task, err := ha.reg.Get(mux.Vars(r)["id"])
		if err != nil {
			writeErr(w, err)
			return
		}
		rend.JSON(w, http.StatusOK, task)
	})
}

func updateTask(ha handlerAccess) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		existing, err := ha.reg.Get(mux.Vars(r)["id"])
		if err != nil {
			writeErr(w, err)
			return
		}
		req, err := ha.decode(r)
		if err != nil {
			rend.JSON(w, http.StatusBadRequest, httperr{Error: err.Error()})
			return
		}

		task := existing
		task.Name = req.Name
		task.InterfacePattern = req.InterfacePattern
		task.TargetDNS = req.TargetDNS
		if req.Enabled != nil {
			task.Enabled = *req.Enabled
		}
		if req.Interval > 0 {
			task.Interval = req.Interval
		}

		warning, err := persisted(ha.reg.Update(task))
		if err != nil {
			writeErr(w, err)
			return
		}
		rend.JSON(w, http.StatusOK, TaskResponse{Task: task, Warning: warning})
	})
}

func removeTask(ha handlerAccess) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		if _, err := ha.reg.Get(id); err != nil {
			writeErr(w, err)
			return
		}
		warning, err := persisted(ha.reg.Remove(id))
		if err != nil {
			writeErr(w, err)
			return
		}
		if warning != "" {
			rend.JSON(w, http.StatusOK, map[string]string{"warning": warning})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func probeTask(ha handlerAccess) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ha.prober == nil {
			rend.JSON(w, http.StatusNotImplemented, httperr{Error: "probing is not configured"})
			return
		}
		task, err := ha.reg.Get(mux.Vars(r)["id"])
		if err != nil {
			writeErr(w, err)
			return
		}
		rend.JSON(w, http.StatusOK, ProbeResponse{
			TaskID:  task.ID,
			Name:    ha.prober.Name,
			Results: ha.prober.Probe(r.Context(), task.TargetDNS),
		})
	})
}

func getStatuses(ha handlerAccess) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rend.JSON(w, http.StatusOK, ha.reg.Statuses())
	})
}

func getLogs(ha handlerAccess) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rend.JSON(w, http.StatusOK, ha.reg.Logs())
	})
}

func clearLogs(ha handlerAccess) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := ha.reg.ClearLogs(); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func getMonitor(ha handlerAccess) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rend.JSON(w, http.StatusOK, MonitorState{Running: ha.mon.Running()})
	})
}

func startMonitor(ha handlerAccess) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := ha.mon.Start(); err != nil {
			writeErr(w, err)
			return
		}
		rend.JSON(w, http.StatusOK, MonitorState{Running: true})
	})
}

func stopMonitor(ha handlerAccess) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ha.mon.Stop()
		rend.JSON(w, http.StatusOK, MonitorState{Running: false})
	})
}

func getInterfaces(ha handlerAccess) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ifaces, err := ha.adapters.ListAdapters()
		if err != nil {
			writeErr(w, errors.Wrap(err, "failed to list adapters"))
			return
		}
		if ifaces == nil {
			ifaces = []netinfo.Interface{}
		}
		rend.JSON(w, http.StatusOK, ifaces)
	})
}
