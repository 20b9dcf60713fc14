package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mcoot/crimeguessr/internal/model"
)

// Namespace prefixes every metric name
const Namespace = "crimeguessr"

// Metrics holds the game server's Prometheus collectors. Each instance owns
// its own registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	ActiveRooms      prometheus.Gauge
	ConnectedClients prometheus.Gauge
	EventsReceived   *prometheus.CounterVec
	EventErrors      *prometheus.CounterVec
	EventDuration    *prometheus.HistogramVec
	RoundsCompleted  prometheus.Counter
	GamesCompleted   prometheus.Counter
	DroppedMessages  prometheus.Counter
}

// New creates and registers all collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ActiveRooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "active_rooms",
			Help:      "Number of live rooms",
		}),
		ConnectedClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "connected_clients",
			Help:      "Number of open websocket connections",
		}),
		EventsReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "events_received_total",
			Help:      "Inbound client events by type",
		}, []string{"event"}),
		EventErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "event_errors_total",
			Help:      "Inbound events rejected, by error code",
		}, []string{"code"}),
		EventDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "event_duration_seconds",
			Help:      "Time spent handling an inbound event",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}, []string{"event"}),
		RoundsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "rounds_completed_total",
			Help:      "Rounds resolved after every player guessed",
		}),
		GamesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "games_completed_total",
			Help:      "Games that reached final standings",
		}),
		DroppedMessages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "dropped_messages_total",
			Help:      "Outbound messages dropped because a client buffer was full",
		}),
	}

	m.registry.MustRegister(
		m.ActiveRooms,
		m.ConnectedClients,
		m.EventsReceived,
		m.EventErrors,
		m.EventDuration,
		m.RoundsCompleted,
		m.GamesCompleted,
		m.DroppedMessages,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveEvent records one handled inbound event
func (m *Metrics) ObserveEvent(event model.EventType, started time.Time) {
	m.EventsReceived.WithLabelValues(string(event)).Inc()
	m.EventDuration.WithLabelValues(string(event)).Observe(time.Since(started).Seconds())
}

// ObserveError records a rejected inbound event
func (m *Metrics) ObserveError(code string) {
	m.EventErrors.WithLabelValues(code).Inc()
}
