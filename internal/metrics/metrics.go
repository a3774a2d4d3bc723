package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus counters.
type Metrics struct {
	registry *prometheus.Registry

	EventsAccepted         prometheus.Counter
	EventsRejected         prometheus.Counter
	EventsPersisted        prometheus.Counter
	DefinitionsAutoCreated prometheus.Counter
	CacheHits              prometheus.Counter
	CacheMisses            prometheus.Counter
}

// New creates and registers all counters on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		EventsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sdk_platform_events_accepted_total",
			Help: "Events accepted by the ingestion endpoint",
		}),
		EventsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sdk_platform_events_rejected_total",
			Help: "Events rejected for missing required fields",
		}),
		EventsPersisted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sdk_platform_events_persisted_total",
			Help: "Events written to the event log",
		}),
		DefinitionsAutoCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sdk_platform_definitions_autocreated_total",
			Help: "Event definitions auto-registered on first sight",
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sdk_platform_definition_cache_hits_total",
			Help: "Definition cache hits",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sdk_platform_definition_cache_misses_total",
			Help: "Definition cache misses",
		}),
	}

	registry.MustRegister(
		m.EventsAccepted,
		m.EventsRejected,
		m.EventsPersisted,
		m.DefinitionsAutoCreated,
		m.CacheHits,
		m.CacheMisses,
	)

	return m
}

// Handler exposes the registry for GET /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
