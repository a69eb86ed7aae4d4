// Package metrics exports Prometheus metrics for the conceptmap server.
//
// A [Metrics] value implements every hook interface in
// pkg/observability, so installing it once wires graph, cache and HTTP
// events into a single registry.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/conceptmap/pkg/observability"
)

const namespace = "conceptmap"

// Metrics holds the collectors and the registry they are registered with.
type Metrics struct {
	registry *prometheus.Registry

	RequestDuration *prometheus.HistogramVec
	RequestsTotal   *prometheus.CounterVec
	CacheOps        *prometheus.CounterVec
	CacheBytes      *prometheus.CounterVec
	ClosureDuration prometheus.Histogram
	ClosureSize     prometheus.Histogram
	CyclesTotal     prometheus.Counter
	DanglingTotal   prometheus.Counter
	NodeCount       prometheus.Gauge
}

var (
	_ observability.GraphHooks = (*Metrics)(nil)
	_ observability.CacheHooks = (*Metrics)(nil)
	_ observability.HTTPHooks  = (*Metrics)(nil)
)

// New creates the collectors on a private registry, so tests and
// multiple servers in one process never collide on registration.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		CacheOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_operations_total",
				Help:      "Cache operations by key type and result",
			},
			[]string{"key_type", "result"},
		),
		CacheBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_written_bytes_total",
				Help:      "Bytes written to the cache by key type",
			},
			[]string{"key_type"},
		),
		ClosureDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "closure_duration_seconds",
			Help:      "Time spent computing uncached ancestor closures",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		ClosureSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "closure_size",
			Help:      "Number of ancestors in computed closures",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		CyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_detected_total",
			Help:      "Dependency cycles met during traversal",
		}),
		DanglingTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dangling_references_total",
			Help:      "Dependencies naming unknown nodes met during traversal",
		}),
		NodeCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "nodes",
			Help:      "Nodes in the served concept map",
		}),
	}
	m.registry.MustRegister(
		m.RequestDuration, m.RequestsTotal,
		m.CacheOps, m.CacheBytes,
		m.ClosureDuration, m.ClosureSize,
		m.CyclesTotal, m.DanglingTotal,
		m.NodeCount,
	)
	return m
}

// Install registers m as the process-wide observability hooks.
func (m *Metrics) Install() {
	observability.SetGraphHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) OnCycleDetected(string, []string) { m.CyclesTotal.Inc() }

func (m *Metrics) OnDanglingReference(string, string) { m.DanglingTotal.Inc() }

func (m *Metrics) OnClosureComputed(_ string, size int, d time.Duration) {
	m.ClosureDuration.Observe(d.Seconds())
	m.ClosureSize.Observe(float64(size))
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.CacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.CacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.CacheOps.WithLabelValues(keyType, "set").Inc()
	m.CacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (m *Metrics) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	code := strconv.Itoa(status)
	m.RequestDuration.WithLabelValues(method, route, code).Observe(d.Seconds())
	m.RequestsTotal.WithLabelValues(method, route, code).Inc()
}
