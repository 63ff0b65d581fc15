// Package metrics exposes Prometheus instrumentation for a crawl run.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors the orchestrator updates while crawling.
type Metrics struct {
	ProfilesExamined prometheus.Counter
	ProfilesAccepted prometheus.Counter
	FetchErrors      prometheus.Counter
	CrawlDepth       prometheus.Gauge
}

// New registers the crawl collectors on the registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ProfilesExamined: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scout_profiles_examined_total",
			Help: "Profiles fetched and evaluated, including rejections.",
		}),
		ProfilesAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scout_profiles_accepted_total",
			Help: "Profiles that passed every qualification stage.",
		}),
		FetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scout_fetch_errors_total",
			Help: "Transient fetch failures recorded against the session.",
		}),
		CrawlDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scout_crawl_depth",
			Help: "Expansion depth currently being processed.",
		}),
	}
	reg.MustRegister(m.ProfilesExamined, m.ProfilesAccepted, m.FetchErrors, m.CrawlDepth)
	return m
}

// NewNop returns unregistered collectors for tests and disabled setups.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
