package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	registry      *prometheus.Registry
	RunsTotal     *prometheus.CounterVec
	RunDuration   prometheus.Histogram
	ProductsTotal *prometheus.CounterVec
	FieldFaults   *prometheus.CounterVec
	HTTPRequests  *prometheus.CounterVec
}

// NewMetrics registers every collector on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crawler_runs_total",
			Help: "Scrape runs by final status.",
		}, []string{"status"}), // success, failure
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "crawler_run_duration_seconds",
			Help:    "Wall time of a scrape run.",
			Buckets: []float64{5, 10, 20, 30, 60, 120, 300},
		}),
		ProductsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crawler_products_total",
			Help: "Product visits by outcome.",
		}, []string{"outcome"}), // captured, skipped
		FieldFaults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crawler_field_faults_total",
			Help: "Fields that degraded to their empty value after an extraction fault.",
		}, []string{"field"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crawler_http_requests_total",
			Help: "HTTP requests served.",
		}, []string{"method", "path", "status"}),
	}
	reg.MustRegister(m.RunsTotal, m.RunDuration, m.ProductsTotal, m.FieldFaults, m.HTTPRequests)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRun(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(status).Inc()
	m.RunDuration.Observe(d.Seconds())
}

func (m *Metrics) IncProduct(outcome string) {
	if m == nil {
		return
	}
	m.ProductsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncFieldFault(field string) {
	if m == nil {
		return
	}
	m.FieldFaults.WithLabelValues(field).Inc()
}

func (m *Metrics) IncHTTPRequest(method, path, status string) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, path, status).Inc()
}
