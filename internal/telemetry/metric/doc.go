// Package metric provides Prometheus metrics for wrapped applications.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: registry with invocation and config-load metrics
//   - collector.go: collector reporting application identity and lifecycle state
//
// Metrics include:
//
//   - Invocation counters by command and outcome
//   - Invocation latency histograms
//   - Config load counters by result
//
// Command-line tools are short-lived, so metrics are exported by writing the
// registry to a node-exporter textfile rather than serving /metrics.
package metric
