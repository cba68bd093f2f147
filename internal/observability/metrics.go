package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors exposed on /metrics.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errorsTotal     *prometheus.CounterVec

	eventsPublished *prometheus.CounterVec
	eventsDelivered *prometheus.CounterVec
	eventsDropped   *prometheus.CounterVec
}

// NewMetrics registers all collectors on reg and returns the handle.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eats",
			Name:      "http_requests_total",
			Help:      "HTTP requests by path, method and status.",
		}, []string{"path", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "eats",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path", "method"}),
		errorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eats",
			Name:      "http_errors_total",
			Help:      "Request errors by path, method and error code.",
		}, []string{"path", "method", "code"}),
		eventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eats",
			Name:      "events_published_total",
			Help:      "Events published to the in-process bus, by topic.",
		}, []string{"topic"}),
		eventsDelivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eats",
			Name:      "events_delivered_total",
			Help:      "Events handed to a subscriber channel, by topic.",
		}, []string{"topic"}),
		eventsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eats",
			Name:      "events_dropped_total",
			Help:      "Events dropped because a subscriber was full or gone.",
		}, []string{"topic"}),
	}

	reg.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.errorsTotal,
		m.eventsPublished,
		m.eventsDelivered,
		m.eventsDropped,
	)
	return m
}

// RecordRequest increments counters for a completed request.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errorsTotal.WithLabelValues(path, method, code).Inc()
}

// RecordPublish counts a publish on the event bus.
func (m *Metrics) RecordPublish(topic string) {
	if m == nil {
		return
	}
	m.eventsPublished.WithLabelValues(topic).Inc()
}

// RecordDelivery counts a successful hand-off to a subscriber.
func (m *Metrics) RecordDelivery(topic string) {
	if m == nil {
		return
	}
	m.eventsDelivered.WithLabelValues(topic).Inc()
}

// RecordDrop counts a dropped delivery.
func (m *Metrics) RecordDrop(topic string) {
	if m == nil {
		return
	}
	m.eventsDropped.WithLabelValues(topic).Inc()
}
