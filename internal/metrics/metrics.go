// Package metrics exposes Prometheus metrics for the workspace service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Marga-Ghale/ora-casework/internal/workspace"
)

// Metrics holds every collector of the service on a private registry.
type Metrics struct {
	IntentsTotal    *prometheus.CounterVec
	IntentDuration  *prometheus.HistogramVec
	EventsTotal     *prometheus.CounterVec
	Workspaces      prometheus.Gauge
	SocketClients   prometheus.Gauge
	SinkDropsTotal  *prometheus.CounterVec
	PresenceExpired prometheus.Counter

	registry *prometheus.Registry
}

// New creates and registers all metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		IntentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "casework_intents_total",
				Help: "Workspace intents by name and result.",
			},
			[]string{"intent", "result"},
		),
		IntentDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "casework_intent_duration_seconds",
				Help:    "Time spent applying an intent, lock wait included.",
				Buckets: prometheus.ExponentialBuckets(0.00005, 4, 8),
			},
			[]string{"intent"},
		),
		EventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "casework_events_total",
				Help: "Committed workspace events by type.",
			},
			[]string{"type"},
		),
		Workspaces: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "casework_workspaces",
				Help: "Workspaces held in memory.",
			},
		),
		SocketClients: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "casework_socket_clients",
				Help: "Connected WebSocket clients.",
			},
		),
		SinkDropsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "casework_sink_drops_total",
				Help: "Events dropped because a sink queue was full.",
			},
			[]string{"sink"},
		),
		PresenceExpired: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "casework_presence_expired_total",
				Help: "Members marked offline by the idle sweep.",
			},
		),
		registry: reg,
	}

	reg.MustRegister(m.IntentsTotal)
	reg.MustRegister(m.IntentDuration)
	reg.MustRegister(m.EventsTotal)
	reg.MustRegister(m.Workspaces)
	reg.MustRegister(m.SocketClients)
	reg.MustRegister(m.SinkDropsTotal)
	reg.MustRegister(m.PresenceExpired)

	return m
}

// Handler returns an http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordIntent implements workspace.IntentRecorder.
func (m *Metrics) RecordIntent(intent, result string, d time.Duration) {
	m.IntentsTotal.WithLabelValues(intent, result).Inc()
	m.IntentDuration.WithLabelValues(intent).Observe(d.Seconds())
}

// Publish implements workspace.Sink.
func (m *Metrics) Publish(ev workspace.Event) {
	m.EventsTotal.WithLabelValues(string(ev.Type)).Inc()
	if ev.Type == workspace.EventWorkspaceCreated {
		m.Workspaces.Inc()
	}
}

// RecordDrop counts n events a sink lost.
func (m *Metrics) RecordDrop(sink string, n int) {
	m.SinkDropsTotal.WithLabelValues(sink).Add(float64(n))
}

// RecordExpired counts members taken offline by the sweep.
func (m *Metrics) RecordExpired(n int) {
	m.PresenceExpired.Add(float64(n))
}

// SetSocketClients sets the connected client count.
func (m *Metrics) SetSocketClients(n int) {
	m.SocketClients.Set(float64(n))
}
