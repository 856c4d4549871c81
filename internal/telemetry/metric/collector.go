package metric

import "github.com/prometheus/client_golang/prometheus"

// StateFunc reports the current lifecycle state as a number and its name.
type StateFunc func() (value int, name string)

// Collector reports the wrapped application's identity and lifecycle state
// at scrape time.
type Collector struct {
	name    string
	version string
	state   StateFunc

	infoDesc  *prometheus.Desc
	stateDesc *prometheus.Desc
}

// NewCollector creates a collector for one application.
func NewCollector(namespace, name, version string, state StateFunc) *Collector {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &Collector{
		name:    name,
		version: version,
		state:   state,
		infoDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "app_info"),
			"Wrapped application name and version.",
			[]string{"name", "version"}, nil,
		),
		stateDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "lifecycle_state"),
			"Lifecycle state of the application wrapper.",
			[]string{"state"}, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.infoDesc
	ch <- c.stateDesc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.infoDesc, prometheus.GaugeValue, 1, c.name, c.version)

	if c.state != nil {
		value, name := c.state()
		ch <- prometheus.MustNewConstMetric(c.stateDesc, prometheus.GaugeValue, float64(value), name)
	}
}
