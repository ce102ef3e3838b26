package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

// Metrics owns the service collectors and the registry they are exposed from.
type Metrics struct {
	registry *prometheus.Registry

	httpInFlight        prometheus.Gauge
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	checkoutTotal          *prometheus.CounterVec
	gatewayRequestDuration *prometheus.HistogramVec
	inconsistencyTotal     prometheus.Counter
	attemptsSweptTotal     *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests processed.",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latencies in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		checkoutTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_total",
			Help:      "Checkout attempts by outcome.",
		}, []string{"outcome"}),
		gatewayRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gateway_request_duration_seconds",
			Help:      "Payment gateway call latencies in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15, 30},
		}, []string{"operation", "outcome"}),
		inconsistencyTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "post_payment_inconsistency_total",
			Help:      "Charges that succeeded without a stored order.",
		}),
		attemptsSweptTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "abandoned_checkout_total",
			Help:      "Abandoned checkout attempts settled by the sweeper, by resulting state.",
		}, []string{"state"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpInFlight,
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.checkoutTotal,
		m.gatewayRequestDuration,
		m.inconsistencyTotal,
		m.attemptsSweptTotal,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) RequestStarted() {
	m.httpInFlight.Inc()
}

func (m *Metrics) RequestFinished(method, route string, status int, elapsed time.Duration) {
	m.httpInFlight.Dec()
	if route == "" {
		route = "unknown"
	}
	labels := prometheus.Labels{"method": method, "route": route, "status": strconv.Itoa(status)}
	m.httpRequestsTotal.With(labels).Inc()
	m.httpRequestDuration.With(labels).Observe(elapsed.Seconds())
}

func (m *Metrics) CheckoutOutcome(outcome string) {
	m.checkoutTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) PostPaymentInconsistency() {
	m.inconsistencyTotal.Inc()
}

func (m *Metrics) ObserveGateway(operation, outcome string, elapsed time.Duration) {
	m.gatewayRequestDuration.WithLabelValues(operation, outcome).Observe(elapsed.Seconds())
}

// AttemptSwept counts an abandoned checkout attempt settled into state.
func (m *Metrics) AttemptSwept(state string) {
	m.attemptsSweptTotal.WithLabelValues(state).Inc()
}
