// Package metrics defines the engine's process-local Prometheus
// instrumentation. No exporter is wired here — a caller who wants these
// exposed registers Registry into their own HTTP handler.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the counters and histogram every engine operation updates.
type Metrics struct {
	Registry *prometheus.Registry

	Operations *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
}

// New constructs a fresh, unregistered-elsewhere Metrics with its own
// Registry so multiple Engine instances in the same process (e.g. tests)
// never collide on global metric registration.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	ops := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ram_engine_operations_total",
		Help: "Count of engine operations by outcome.",
	}, []string{"op", "outcome"})

	dur := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ram_engine_operation_duration_seconds",
		Help:    "Engine operation latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})

	reg.MustRegister(ops, dur)

	return &Metrics{Registry: reg, Operations: ops, Duration: dur}
}

// Observe records one operation's outcome ("ok" or "error") and duration.
func (m *Metrics) Observe(op, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(op, outcome).Inc()
	m.Duration.WithLabelValues(op).Observe(seconds)
}
