// Package metrics exports bramble's engine counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/phanxgames/bramble"
)

const namespace = "bramble"

// Collector is a prometheus.Collector reading bramble.ReadStats on every
// scrape.
type Collector struct {
	read func() bramble.Stats

	subscriptions    *prometheus.Desc
	openSources      *prometheus.Desc
	mounted          *prometheus.Desc
	frameHandlers    *prometheus.Desc
	propagations     *prometheus.Desc
	listenerFailures *prometheus.Desc
	cleanupFailures  *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates a Collector over the process-wide engine counters.
func NewCollector() *Collector {
	return newCollector(bramble.ReadStats)
}

func newCollector(read func() bramble.Stats) *Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, nil, nil)
	}
	return &Collector{
		read:             read,
		subscriptions:    desc("subscriptions", "Number of live listener subscriptions."),
		openSources:      desc("open_sources", "Number of observables with an open update source."),
		mounted:          desc("mounted_instances", "Number of currently mounted virtual instances."),
		frameHandlers:    desc("frame_handlers", "Number of registered frame handlers."),
		propagations:     desc("propagations_total", "Total settled propagation rounds."),
		listenerFailures: desc("listener_failures_total", "Total recovered listener panics."),
		cleanupFailures:  desc("cleanup_failures_total", "Total recovered cleanup panics."),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.subscriptions
	ch <- c.openSources
	ch <- c.mounted
	ch <- c.frameHandlers
	ch <- c.propagations
	ch <- c.listenerFailures
	ch <- c.cleanupFailures
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.read()
	gauge := func(d *prometheus.Desc, v int64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, float64(v))
	}
	counter := func(d *prometheus.Desc, v int64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v))
	}
	gauge(c.subscriptions, s.Subscriptions)
	gauge(c.openSources, s.OpenSources)
	gauge(c.mounted, s.Mounted)
	gauge(c.frameHandlers, s.FrameHandlers)
	counter(c.propagations, s.Propagations)
	counter(c.listenerFailures, s.ListenerFailures)
	counter(c.cleanupFailures, s.CleanupFailures)
}
