// Package telemetry exposes the realtime session's operational counters as
// Prometheus metrics.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PromMetrics implements the realtime.Metrics interface using Prometheus.
type PromMetrics struct {
	connects        prometheus.Counter
	disconnects     prometheus.Counter
	reconnects      prometheus.Counter
	connStatus      prometheus.Gauge
	frames          prometheus.Counter
	parseErrors     prometheus.Counter
	eventsDelivered prometheus.Counter
	handlerErrors   prometheus.Counter
}

// NewMetrics creates and registers the standard realtime metrics.
// If registry is nil, it uses the global default registry.
func NewMetrics(registry prometheus.Registerer, constLabels map[string]string) *PromMetrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	m := &PromMetrics{
		connects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "realtime",
			Name:        "connects_total",
			Help:        "Total number of successful stream connections established.",
			ConstLabels: constLabels,
		}),
		disconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "realtime",
			Name:        "disconnects_total",
			Help:        "Total number of stream disconnects, intentional or not.",
			ConstLabels: constLabels,
		}),
		reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "realtime",
			Name:        "reconnects_total",
			Help:        "Total number of reconnect attempts fired by policy or staleness.",
			ConstLabels: constLabels,
		}),
		connStatus: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "realtime",
			Name:        "connection_status",
			Help:        "Current status of the connection (1 = connected, 0 = disconnected).",
			ConstLabels: constLabels,
		}),
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "realtime",
			Name:        "frames_total",
			Help:        "Total number of inbound frames received.",
			ConstLabels: constLabels,
		}),
		parseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "realtime",
			Name:        "frame_parse_errors_total",
			Help:        "Total number of inbound frames dropped as malformed.",
			ConstLabels: constLabels,
		}),
		eventsDelivered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "realtime",
			Name:        "events_delivered_total",
			Help:        "Total number of event deliveries to subscribers.",
			ConstLabels: constLabels,
		}),
		handlerErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "realtime",
			Name:        "handler_errors_total",
			Help:        "Total number of subscriber handlers that panicked during dispatch.",
			ConstLabels: constLabels,
		}),
	}

	registry.MustRegister(
		m.connects,
		m.disconnects,
		m.reconnects,
		m.connStatus,
		m.frames,
		m.parseErrors,
		m.eventsDelivered,
		m.handlerErrors,
	)

	return m
}

func (m *PromMetrics) IncConnects() {
	m.connects.Inc()
}

func (m *PromMetrics) IncDisconnects() {
	m.disconnects.Inc()
}

func (m *PromMetrics) IncReconnects() {
	m.reconnects.Inc()
}

func (m *PromMetrics) SetConnectionStatus(status float64) {
	m.connStatus.Set(status)
}

func (m *PromMetrics) IncFrames() {
	m.frames.Inc()
}

func (m *PromMetrics) IncParseErrors() {
	m.parseErrors.Inc()
}

func (m *PromMetrics) IncEventsDelivered() {
	m.eventsDelivered.Inc()
}

func (m *PromMetrics) IncHandlerErrors() {
	m.handlerErrors.Inc()
}
