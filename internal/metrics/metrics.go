// Package metrics holds the Prometheus collectors of the booking engine.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Auto-block outcomes.
const (
	AutoBlockCreated = "created"
	AutoBlockSkipped = "skipped"
	AutoBlockFailed  = "failed"
)

type Metrics struct {
	registry *prometheus.Registry

	availabilityChecks *prometheus.CounterVec
	autoBlocks         *prometheus.CounterVec
	transitions        *prometheus.CounterVec
	releasedBlocks     prometheus.Counter
	rpcDuration        *prometheus.HistogramVec
	jobRuns            *prometheus.CounterVec
}

func New(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		availabilityChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "availability_checks_total",
			Help:      "Availability checks by result.",
		}, []string{"result"}),
		autoBlocks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auto_block_days_total",
			Help:      "Per-day auto-block outcomes after approval.",
		}, []string{"outcome"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rental_request_transitions_total",
			Help:      "Rental request status transitions.",
		}, []string{"from", "to"}),
		releasedBlocks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "released_blocks_total",
			Help:      "Rented blocks released by cancellation or date changes.",
		}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "grpc_request_duration_seconds",
			Help:      "Unary gRPC handling time.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "code"}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_runs_total",
			Help:      "Scheduled job runs by result.",
		}, []string{"job", "result"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.availabilityChecks,
		m.autoBlocks,
		m.transitions,
		m.releasedBlocks,
		m.rpcDuration,
		m.jobRuns,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) AvailabilityChecked(available bool) {
	if m == nil {
		return
	}
	result := "unavailable"
	if available {
		result = "available"
	}
	m.availabilityChecks.WithLabelValues(result).Inc()
}

func (m *Metrics) AutoBlock(outcome string) {
	if m == nil {
		return
	}
	m.autoBlocks.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Transition(from, to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) BlocksReleased(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.releasedBlocks.Add(float64(n))
}

func (m *Metrics) ObserveRPC(method, code string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.rpcDuration.WithLabelValues(method, code).Observe(elapsed.Seconds())
}

func (m *Metrics) JobRun(job string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.jobRuns.WithLabelValues(job, result).Inc()
}
