package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/user/dnskeeper/internal/dnstask"
	"github.com/user/dnskeeper/internal/netinfo"
)

// Client talks to a running daemon.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the daemon listening on addr
// ("127.0.0.1:5380" or a full http:// URL).
func NewClient(addr string) *Client {
	base := strings.TrimRight(addr, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	return &Client{
		baseURL: base + Prefix,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is a non-2xx reply from the daemon.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "failed to encode request")
		}
		rdr = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "daemon unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var he httperr
		if err := json.NewDecoder(resp.Body).Decode(&he); err != nil || he.Error == "" {
			he.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: he.Error}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "failed to decode response")
	}
	return nil
}

// ListTasks returns every registered task.
func (c *Client) ListTasks(ctx context.Context) ([]dnstask.Task, error) {
	var tasks []dnstask.Task
	err := c.do(ctx, http.MethodGet, "/tasks", nil, &tasks)
	return tasks, err
}

// CreateTask registers a new task.
func (c *Client) CreateTask(ctx context.Context, req TaskRequest) (TaskResponse, error) {
	var resp TaskResponse
	err := c.do(ctx, http.MethodPost, "/tasks", req, &resp)
	return resp, err
}

// GetTask returns one task.
func (c *Client) GetTask(ctx context.Context, id string) (dnstask.Task, error) {
	var task dnstask.Task
	err := c.do(ctx, http.MethodGet, "/tasks/"+id, nil, &task)
	return task, err
}

// UpdateTask replaces a task's settings.
func (c *Client) UpdateTask(ctx context.Context, id string, req TaskRequest) (TaskResponse, error) {
	var resp TaskResponse
	err := c.do(ctx, http.MethodPut, "/tasks/"+id, req, &resp)
	return resp, err
}

// RemoveTask deletes a task. The returned warning is set when the daemon
// could not persist the removal.
func (c *Client) RemoveTask(ctx context.Context, id string) (string, error) {
	var resp struct {
		Warning string `json:"warning"`
	}
	err := c.do(ctx, http.MethodDelete, "/tasks/"+id, nil, &resp)
	return resp.Warning, err
}

// ProbeTask queries each target server of a task.
func (c *Client) ProbeTask(ctx context.Context, id string) (ProbeResponse, error) {
	var resp ProbeResponse
	err := c.do(ctx, http.MethodPost, "/tasks/"+id+"/probe", nil, &resp)
	return resp, err
}

// Statuses returns the statuses of the last reconciliation cycle.
func (c *Client) Statuses(ctx context.Context) ([]dnstask.TaskStatus, error) {
	var statuses []dnstask.TaskStatus
	err := c.do(ctx, http.MethodGet, "/statuses", nil, &statuses)
	return statuses, err
}

// Logs returns the enforcement log, newest first.
func (c *Client) Logs(ctx context.Context) ([]dnstask.LogEntry, error) {
	var logs []dnstask.LogEntry
	err := c.do(ctx, http.MethodGet, "/logs", nil, &logs)
	return logs, err
}

// ClearLogs empties the enforcement log.
func (c *Client) ClearLogs(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/logs", nil, nil)
}

// Monitor reports whether monitoring runs.
func (c *Client) Monitor(ctx context.Context) (MonitorState, error) {
	var st MonitorState
	err := c.do(ctx, http.MethodGet, "/monitor", nil, &st)
	return st, err
}

// StartMonitor starts monitoring.
func (c *Client) StartMonitor(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/monitor", nil, nil)
}

// StopMonitor stops monitoring.
func (c *Client) StopMonitor(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/monitor", nil, nil)
}

// Interfaces lists the host's adapters as the daemon sees them.
func (c *Client) Interfaces(ctx context.Context) ([]netinfo.Interface, error) {
	var ifaces []netinfo.Interface
	err := c.do(ctx, http.MethodGet, "/interfaces", nil, &ifaces)
	return ifaces, err
}
