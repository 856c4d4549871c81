package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "apprun"

// Invocation outcomes.
const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
	OutcomeError  = "error"
	OutcomeHalted = "halted"
)

// Config load results.
const (
	LoadLoaded   = "loaded"
	LoadNotFound = "not_found"
	LoadFailed   = "failed"
)

// Registry holds all application metrics.
type Registry struct {
	registry *prometheus.Registry

	InvocationsTotal   *prometheus.CounterVec
	InvocationDuration *prometheus.HistogramVec
	ConfigLoadsTotal   *prometheus.CounterVec
}

// NewRegistry creates a registry with every metric registered under
// namespace (DefaultNamespace when empty).
func NewRegistry(namespace string) *Registry {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	r := &Registry{
		registry: prometheus.NewRegistry(),
		InvocationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invocations_total",
			Help:      "Application invocations by command and outcome.",
		}, []string{"command", "outcome"}),
		InvocationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "invocation_duration_seconds",
			Help:      "Wall time spent in the wrapped application.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"command"}),
		ConfigLoadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "config_loads_total",
			Help:      "Configuration file loads by result.",
		}, []string{"result"}),
	}

	r.registry.MustRegister(r.InvocationsTotal, r.InvocationDuration, r.ConfigLoadsTotal)
	return r
}

// Register adds an extra collector, such as the one from NewCollector.
func (r *Registry) Register(c prometheus.Collector) error {
	return r.registry.Register(c)
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// ObserveInvocation records one dispatched invocation.
func (r *Registry) ObserveInvocation(command, outcome string, d time.Duration) {
	if command == "" {
		command = "-"
	}
	r.InvocationsTotal.WithLabelValues(command, outcome).Inc()
	r.InvocationDuration.WithLabelValues(command).Observe(d.Seconds())
}

// RecordConfigLoad records the result of one config load attempt.
func (r *Registry) RecordConfigLoad(result string) {
	r.ConfigLoadsTotal.WithLabelValues(result).Inc()
}

// WriteTextfile writes the registry in text exposition format, atomically
// replacing path, for the node-exporter textfile collector.
func (r *Registry) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
