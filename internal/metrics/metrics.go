// Package metrics exposes the DNS monitor's counters to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/user/dnskeeper/internal/dnstask"
)

const namespace = "dnskeeper"

// Collector records loop activity. It satisfies dnstask.Recorder.
type Collector struct {
	cycles        prometheus.Counter
	enumFailures  prometheus.Counter
	applyResults  *prometheus.CounterVec
	cycleDuration prometheus.Histogram
	running       prometheus.Gauge
}

// New registers the collectors on reg. tasks reports the current number of
// registered tasks.
func New(reg prometheus.Registerer, tasks func() int) *Collector {
	f := promauto.With(reg)
	c := &Collector{
		cycles: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_cycles_total",
			Help:      "Reconciliation cycles completed.",
		}),
		enumFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "adapter_enumeration_failures_total",
			Help:      "Adapter enumerations that failed or panicked.",
		}),
		applyResults: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dns_apply_total",
			Help:      "DNS apply attempts by resulting status.",
		}, []string{"status"}),
		cycleDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reconcile_cycle_seconds",
			Help:      "Duration of one reconciliation cycle.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		running: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "monitor_running",
			Help:      "1 while the reconciliation loop is running.",
		}),
	}

	f.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "tasks",
		Help:      "Registered DNS tasks.",
	}, func() float64 { return float64(tasks()) })

	return c
}

// ObserveCycle implements dnstask.Recorder.
func (c *Collector) ObserveCycle(d time.Duration) {
	c.cycles.Inc()
	c.cycleDuration.Observe(d.Seconds())
}

// EnumerationFailed implements dnstask.Recorder.
func (c *Collector) EnumerationFailed() {
	c.enumFailures.Inc()
}

// ApplyResult implements dnstask.Recorder.
func (c *Collector) ApplyResult(state dnstask.State) {
	c.applyResults.WithLabelValues(string(state)).Inc()
}

// SetRunning implements dnstask.Recorder.
func (c *Collector) SetRunning(running bool) {
	if running {
		c.running.Set(1)
		return
	}
	c.running.Set(0)
}
