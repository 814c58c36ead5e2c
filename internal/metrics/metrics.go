// Package metrics registers the service's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's collectors on a private registry so tests can
// create isolated instances.
type Metrics struct {
	registry *prometheus.Registry

	// RequestDuration observes HTTP handler latency by route, method and
	// status class.
	RequestDuration *prometheus.HistogramVec

	// GroupsSwept counts documents removed by the retention sweeper.
	GroupsSwept prometheus.Counter

	// SweepFailures counts sweep runs that errored.
	SweepFailures prometheus.Counter
}

// New creates a Metrics instance with its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gifting_http_request_duration_seconds",
			Help:    "HTTP request latency by route, method and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
		GroupsSwept: factory.NewCounter(prometheus.CounterOpts{
			Name: "gifting_groups_swept_total",
			Help: "Group documents removed by the retention sweeper.",
		}),
		SweepFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "gifting_sweep_failures_total",
			Help: "Retention sweep runs that failed.",
		}),
	}
}

// Handler returns the scrape endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
