// Package metrics exposes the client's operational counters through a
// Prometheus registry. Every metric lives on a private registry so tests
// can build as many instances as they want without collisions.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the instruments the pipeline records into.
type Metrics struct {
	registry *prometheus.Registry

	Detections     *prometheus.CounterVec
	ProbePositives *prometheus.CounterVec
	QuotaDenials   prometheus.Counter
	Generations    *prometheus.CounterVec
	BypassGrants   prometheus.Counter
}

// New builds a Metrics instance backed by its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		Detections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "privacy_detections_total",
			Help: "Detection cycles by verdict.",
		}, []string{"verdict"}),
		ProbePositives: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "privacy_probe_positives_total",
			Help: "Individual probe positives by probe name.",
		}, []string{"probe"}),
		QuotaDenials: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quota_denials_total",
			Help: "Generation attempts refused by the request allowance.",
		}),
		Generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "caption_generations_total",
			Help: "Caption webhook calls by outcome.",
		}, []string{"outcome"}),
		BypassGrants: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "security_bypass_grants_total",
			Help: "Gate entries granted through the device bypass.",
		}),
	}

	reg.MustRegister(
		m.Detections,
		m.ProbePositives,
		m.QuotaDenials,
		m.Generations,
		m.BypassGrants,
	)
	return m
}

// ObserveDetection records a completed detection cycle.
func (m *Metrics) ObserveDetection(isPrivate bool, positives []string) {
	verdict := "standard"
	if isPrivate {
		verdict = "private"
	}
	m.Detections.WithLabelValues(verdict).Inc()
	for _, probe := range positives {
		m.ProbePositives.WithLabelValues(probe).Inc()
	}
}

// ObserveBypass records a gate entry granted through the device bypass.
func (m *Metrics) ObserveBypass() {
	m.BypassGrants.Inc()
}

// Handler returns the scrape endpoint for this instance's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
