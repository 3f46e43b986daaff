// Package metrics provides Prometheus metrics for the access engine.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ArticleGate/internal/domain"
	"ArticleGate/internal/ports"
)

const namespace = "articlegate"

// Recorder owns a registry and the engine's collectors.
type Recorder struct {
	registry *prometheus.Registry

	accessTotal     *prometheus.CounterVec
	catalogSize     *prometheus.HistogramVec
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

var _ ports.EligibilityMetrics = (*Recorder)(nil)

// NewRecorder registers collectors on a fresh registry, plus the Go and process collectors.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		accessTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "access_decisions_total",
				Help:      "Article access decisions by outcome",
			},
			[]string{"outcome"},
		),
		catalogSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "catalog_size",
				Help:      "Number of articles returned per catalog query",
				Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
			},
			[]string{"mode"},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route and status",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// ObserveAccess counts a canAccess decision.
func (r *Recorder) ObserveAccess(allowed bool) {
	outcome := "denied"
	if allowed {
		outcome = "allowed"
	}
	r.accessTotal.WithLabelValues(outcome).Inc()
}

// ObserveCatalog records how many articles a catalog query returned.
func (r *Recorder) ObserveCatalog(mode domain.CatalogMode, size int) {
	r.catalogSize.WithLabelValues(string(mode)).Observe(float64(size))
}

// ObserveRequest records one served HTTP request.
func (r *Recorder) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	r.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler exposes the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
