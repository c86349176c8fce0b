// Package metrics exposes a connection manager's state to Prometheus.
//
// The collector reads a snapshot on every scrape, so counters always match
// the manager's own counts and nothing has to be updated on the signal path.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/connkit/pkg/lifecycle"
)

const namespace = "connkit"

// Source is the read side of a connection manager.
type Source interface {
	Status() lifecycle.Status
	IsConnected() bool
	Counts() map[lifecycle.Signal]uint64
}

var statuses = []lifecycle.Status{
	lifecycle.StatusDisconnected,
	lifecycle.StatusConnecting,
	lifecycle.StatusConnected,
	lifecycle.StatusReconnecting,
	lifecycle.StatusClosed,
}

// Collector implements prometheus.Collector for one connection.
type Collector struct {
	src     Source
	up      *prometheus.Desc
	status  *prometheus.Desc
	signals *prometheus.Desc
}

// NewCollector describes src. constLabels, typically the transport name,
// are attached to every series.
func NewCollector(src Source, constLabels prometheus.Labels) *Collector {
	return &Collector{
		src: src,
		up: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "connection", "up"),
			"Whether the connection is currently connected.",
			nil, constLabels,
		),
		status: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "connection", "status"),
			"Current connection status; the series for the active status is 1.",
			[]string{"status"}, constLabels,
		),
		signals: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "connection", "signals_total"),
			"Lifecycle signals processed, by signal.",
			[]string{"signal"}, constLabels,
		),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.up
	ch <- c.status
	ch <- c.signals
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	up := 0.0
	if c.src.IsConnected() {
		up = 1
	}
	ch <- prometheus.MustNewConstMetric(c.up, prometheus.GaugeValue, up)

	current := c.src.Status()
	for _, s := range statuses {
		v := 0.0
		if s == current {
			v = 1
		}
		ch <- prometheus.MustNewConstMetric(c.status, prometheus.GaugeValue, v, string(s))
	}

	counts := c.src.Counts()
	for _, sig := range lifecycle.Signals() {
		ch <- prometheus.MustNewConstMetric(c.signals, prometheus.CounterValue, float64(counts[sig]), string(sig))
	}
}
