package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the application's Prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	Requests        *prometheus.CounterVec
	LatencyMS       *prometheus.HistogramVec
	OrdersCompleted prometheus.Counter
	CartRejections  *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates the collectors on a dedicated registry, together with the Go
// runtime and process collectors
func New(namespace string) *Metrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"route", "method", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"route"})
	orders := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_completed_total",
		Help:      "Total number of completed checkouts.",
	})
	rejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_rejections_total",
		Help:      "Cart operations rejected by stock or quantity rules.",
	}, []string{"reason"})

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		requests,
		latency,
		orders,
		rejections,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Metrics{
		Requests:        requests,
		LatencyMS:       latency,
		OrdersCompleted: orders,
		CartRejections:  rejections,
		registry:        registry,
	}
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one served HTTP request
func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unknown"
	}
	m.Requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.LatencyMS.WithLabelValues(route).Observe(float64(elapsed.Microseconds()) / 1000)
}

// OrderCompleted counts one successful checkout
func (m *Metrics) OrderCompleted() {
	if m == nil {
		return
	}
	m.OrdersCompleted.Inc()
}

// CartRejected counts one rejected cart operation
func (m *Metrics) CartRejected(reason string) {
	if m == nil {
		return
	}
	m.CartRejections.WithLabelValues(reason).Inc()
}
