// Package metrics exposes lookup and report counters for the dashboard.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Lookup outcomes, one per record sentinel class
const (
	OutcomeFound        = "found"
	OutcomeNotFound     = "not_found"
	OutcomeRequestError = "request_error"
)

// Metrics holds the collectors on a private registry so tests can build many
type Metrics struct {
	registry       *prometheus.Registry
	lookups        *prometheus.CounterVec
	lookupDuration prometheus.Histogram
	reportBuilds   prometheus.Counter
}

// New registers all collectors on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ecolens",
			Name:      "lookups_total",
			Help:      "Open Food Facts product lookups by outcome.",
		}, []string{"outcome"}),
		lookupDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ecolens",
			Name:      "lookup_duration_seconds",
			Help:      "Duration of Open Food Facts product lookups.",
			Buckets:   prometheus.DefBuckets,
		}),
		reportBuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ecolens",
			Name:      "report_builds_total",
			Help:      "Dashboard reports built from fresh lookups.",
		}),
	}

	m.registry.MustRegister(m.lookups, m.lookupDuration, m.reportBuilds)
	for _, outcome := range []string{OutcomeFound, OutcomeNotFound, OutcomeRequestError} {
		m.lookups.WithLabelValues(outcome)
	}

	return m
}

// ObserveLookup records one finished lookup
func (m *Metrics) ObserveLookup(outcome string, elapsed time.Duration) {
	m.lookups.WithLabelValues(outcome).Inc()
	m.lookupDuration.Observe(elapsed.Seconds())
}

// ObserveReportBuild records one report rebuild
func (m *Metrics) ObserveReportBuild() {
	m.reportBuilds.Inc()
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
