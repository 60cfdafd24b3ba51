package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/m5cents/call-screening-backend/internal/domain/call"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	callOutcomes   *prometheus.CounterVec
	routingLatency *prometheus.HistogramVec
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	wsClients      prometheus.GaugeFunc
}

// New creates and registers the service collectors. clientCount reports the
// current number of connected dashboard sockets; it may be nil.
func New(clientCount func() int) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	m := &Metrics{registry: registry}

	m.callOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "callscreen",
		Name:      "call_outcomes_total",
		Help:      "Routing outcomes by label.",
	}, []string{"outcome"})

	m.routingLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "callscreen",
		Name:      "routing_duration_seconds",
		Help:      "Time spent inside each routing entry point.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"entry_point"})

	m.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "callscreen",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route and status code.",
	}, []string{"route", "method", "status"})

	m.httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "callscreen",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	registry.MustRegister(m.callOutcomes, m.routingLatency, m.httpRequests, m.httpDuration)

	if clientCount != nil {
		m.wsClients = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "callscreen",
			Name:      "websocket_clients",
			Help:      "Connected dashboard clients.",
		}, func() float64 { return float64(clientCount()) })
		registry.MustRegister(m.wsClients)
	}

	return m
}

// RecordOutcome counts one routing outcome.
func (m *Metrics) RecordOutcome(outcome call.Outcome) {
	m.callOutcomes.WithLabelValues(outcome.String()).Inc()
}

// RecordRoutingLatency observes the duration of one engine entry point.
func (m *Metrics) RecordRoutingLatency(entryPoint string, latency time.Duration) {
	m.routingLatency.WithLabelValues(entryPoint).Observe(latency.Seconds())
}

// RecordHTTPRequest counts one handled HTTP request.
func (m *Metrics) RecordHTTPRequest(route, method string, status int, duration time.Duration) {
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
