// Package metrics exposes Prometheus counters for authentication outcomes.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Operation labels.
const (
	OpRegister = "register"
	OpLogin    = "login"
	OpRefresh  = "refresh"
	OpLogout   = "logout"
	OpMe       = "me"
)

// Outcome labels.
const (
	OutcomeSuccess      = "success"
	OutcomeUnauthorized = "unauthorized"
	OutcomeForbidden    = "forbidden"
	OutcomeConflict     = "conflict"
	OutcomeInvalid      = "invalid"
	OutcomeBotRejected  = "bot_rejected"
	OutcomeError        = "error"
)

// Recorder receives auth events. A nil *Metrics is a valid no-op Recorder.
type Recorder interface {
	Operation(op, outcome string)
	SessionsSwept(n int64)
}

type Metrics struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	swept      prometheus.Counter
}

// New builds the collectors on a private registry together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_operations_total",
			Help: "Authentication operations by outcome.",
		}, []string{"operation", "outcome"}),
		swept: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auth_sessions_swept_total",
			Help: "Expired sessions removed by housekeeping.",
		}),
	}

	m.registry.MustRegister(
		m.operations,
		m.swept,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Operation(op, outcome string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) SessionsSwept(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.swept.Add(float64(n))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// OperationsCounter returns the labelled counter for tests and diagnostics.
func (m *Metrics) OperationsCounter() *prometheus.CounterVec { return m.operations }

// SweptCounter returns the housekeeping counter.
func (m *Metrics) SweptCounter() prometheus.Counter { return m.swept }

// Nop discards every event.
type Nop struct{}

func (Nop) Operation(string, string) {}
func (Nop) SessionsSwept(int64)      {}
