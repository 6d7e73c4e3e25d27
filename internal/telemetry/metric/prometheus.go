package metric

import (
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "unionhub_cli"

// Request outcomes.
const (
	OutcomeSuccess     = "success"
	OutcomeServerError = "server_error"
	OutcomeNoResponse  = "no_response"
	OutcomeSetup       = "request_setup"
)

// ClientMetrics holds the HTTP client metrics.
type ClientMetrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	InFlight        prometheus.Gauge
}

// NewClientMetrics creates the client metrics on a private registry.
func NewClientMetrics() *ClientMetrics {
	reg := prometheus.NewRegistry()

	m := &ClientMetrics{
		registry: reg,

		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total API requests by method, route and outcome",
			},
			[]string{"method", "route", "outcome"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "API request latency in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"method", "route"},
		),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "requests_in_flight",
			Help:      "API requests currently waiting for a response",
		}),
	}

	reg.MustRegister(m.RequestsTotal, m.RequestDuration, m.InFlight)
	return m
}

// Observe records one completed request.
func (m *ClientMetrics) Observe(method, path, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	route := RouteLabel(path)
	m.RequestsTotal.WithLabelValues(method, route, outcome).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Start marks a request as in flight and returns the function ending it.
func (m *ClientMetrics) Start() func() {
	if m == nil {
		return func() {}
	}
	m.InFlight.Inc()
	return m.InFlight.Dec
}

// Registry returns the underlying registry.
func (m *ClientMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the registry to path in the textfile collector
// format. The file is replaced atomically.
func (m *ClientMetrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

// RouteLabel collapses a request path into a bounded label value: the query
// is dropped and numeric segments become ":id", so /unions/42?x=1 and
// /unions/7 share the route "/unions/:id". Player names are collapsed to
// ":name" the same way.
func RouteLabel(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}

	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if seg == "" {
			continue
		}
		if _, err := strconv.ParseInt(seg, 10, 64); err == nil {
			segments[i] = ":id"
			continue
		}
		if i == 2 && segments[1] == "players" {
			segments[i] = ":name"
		}
	}
	return strings.Join(segments, "/")
}
