package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/dnskeeper/internal/dnstask"
	"github.com/user/dnskeeper/internal/netinfo"
)

type staticAdapters []netinfo.Interface

func (s staticAdapters) ListAdapters() ([]netinfo.Interface, error) {
	return append([]netinfo.Interface(nil), s...), nil
}

type okApplier struct{}

func (okApplier) ApplyDNS(string, []string) error { return nil }

type brokenStore struct{}

func (brokenStore) LoadTasks() ([]dnstask.Task, error) { return nil, nil }
func (brokenStore) SaveTask(dnstask.Task) error        { return errors.New("read-only filesystem") }
func (brokenStore) DeleteTask(string) error            { return errors.New("read-only filesystem") }
func (brokenStore) UpdateTask(dnstask.Task) error      { return errors.New("read-only filesystem") }
func (brokenStore) LoadMonitoring() (bool, error)      { return false, nil }
func (brokenStore) SaveMonitoring(bool) error          { return errors.New("read-only filesystem") }

func newTestServer(t *testing.T, store dnstask.Store, extra func(*Deps)) (*httptest.Server, *Client, *dnstask.Monitor) {
	t.Helper()

	reg := dnstask.NewRegistry(store)
	adapters := staticAdapters{{Name: "eth0", Enabled: true, DNSServers: []string{"8.8.8.8"}}}
	mon := dnstask.NewMonitor(reg, adapters, okApplier{}, dnstask.Options{PollInterval: time.Millisecond})

	var ids int32
	d := Deps{
		Monitor:  mon,
		Adapters: adapters,
		Now:      func() time.Time { return time.Unix(1714564800, 0) },
		NewID: func() string {
			return fmt.Sprintf("task-%d", atomic.AddInt32(&ids, 1))
		},
	}
	if extra != nil {
		extra(&d)
	}

	srv := httptest.NewServer(NewHandler(d))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = mon.Close(ctx)
		srv.Close()
	})
	return srv, NewClient(srv.URL), mon
}

func TestAPI_TaskLifecycle(t *testing.T) {
	_, c, _ := newTestServer(t, nil, nil)
	ctx := context.Background()

	created, err := c.CreateTask(ctx, TaskRequest{
		Name:             "office",
		InterfacePattern: "eth*",
		TargetDNS:        []string{"1.1.1.1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "task-1", created.ID)
	assert.True(t, created.Enabled)
	assert.Equal(t, uint64(1), created.Interval)
	assert.Equal(t, int64(1714564800), created.CreatedAt)
	assert.Empty(t, created.Warning)

	disabled := false
	updated, err := c.UpdateTask(ctx, created.ID, TaskRequest{
		Name:             "office",
		InterfacePattern: "eth0",
		TargetDNS:        []string{"9.9.9.9", "149.112.112.112"},
		Enabled:          &disabled,
		Interval:         30,
	})
	require.NoError(t, err)
	assert.False(t, updated.Enabled)
	assert.Equal(t, uint64(30), updated.Interval)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	tasks, err := c.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "eth0", tasks[0].InterfacePattern)

	warning, err := c.RemoveTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, warning)

	_, err = c.GetTask(ctx, created.ID)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestAPI_CreateValidation(t *testing.T) {
	srv, c, _ := newTestServer(t, nil, nil)

	_, err := c.CreateTask(context.Background(), TaskRequest{
		Name:             "bad",
		InterfacePattern: "eth*",
		TargetDNS:        []string{"dns.google"},
	})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)

	resp, err := http.Post(srv.URL+Prefix+"/tasks", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_CreateWarnsWhenNotPersisted(t *testing.T) {
	_, c, _ := newTestServer(t, brokenStore{}, nil)
	ctx := context.Background()

	created, err := c.CreateTask(ctx, TaskRequest{
		Name:             "office",
		InterfacePattern: "eth*",
		TargetDNS:        []string{"1.1.1.1"},
	})
	require.NoError(t, err)
	assert.Contains(t, created.Warning, "read-only filesystem")

	tasks, err := c.ListTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)

	warning, err := c.RemoveTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Contains(t, warning, "read-only filesystem")
}

func TestAPI_MonitorAndStatuses(t *testing.T) {
	_, c, _ := newTestServer(t, nil, nil)
	ctx := context.Background()

	_, err := c.CreateTask(ctx, TaskRequest{Name: "office", InterfacePattern: "eth*", TargetDNS: []string{"1.1.1.1"}})
	require.NoError(t, err)

	require.NoError(t, c.StartMonitor(ctx))
	err = c.StartMonitor(ctx)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.Status)

	st, err := c.Monitor(ctx)
	require.NoError(t, err)
	assert.True(t, st.Running)

	require.Eventually(t, func() bool {
		logs, err := c.Logs(ctx)
		return err == nil && len(logs) > 0
	}, 2*time.Second, 5*time.Millisecond)

	logs, err := c.Logs(ctx)
	require.NoError(t, err)
	assert.Equal(t, "DNS set: eth0 -> [1.1.1.1]", logs[len(logs)-1].Message)

	require.Eventually(t, func() bool {
		statuses, err := c.Statuses(ctx)
		return err == nil && len(statuses) == 1 && statuses[0].InterfaceName == "eth0"
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, c.ClearLogs(ctx))
	require.NoError(t, c.StopMonitor(ctx))
	st, err = c.Monitor(ctx)
	require.NoError(t, err)
	assert.False(t, st.Running)
}

func TestAPI_Interfaces(t *testing.T) {
	_, c, _ := newTestServer(t, nil, nil)
	ifaces, err := c.Interfaces(context.Background())
	require.NoError(t, err)
	require.Len(t, ifaces, 1)
	assert.Equal(t, "eth0", ifaces[0].Name)
}

func TestAPI_ProbeWithoutProber(t *testing.T) {
	_, c, _ := newTestServer(t, nil, nil)
	ctx := context.Background()
	created, err := c.CreateTask(ctx, TaskRequest{Name: "x", InterfacePattern: "*", TargetDNS: []string{"127.0.0.1"}})
	require.NoError(t, err)

	_, err = c.ProbeTask(ctx, created.ID)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotImplemented, apiErr.Status)
}

func TestAPI_RateLimitAndMetrics(t *testing.T) {
	srv, _, _ := newTestServer(t, nil, func(d *Deps) {
		d.RateLimitRPS = 0.001
		d.RateLimitBurst = 1
		d.Gatherer = prometheus.NewRegistry()
	})

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + Prefix + "/tasks")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}
