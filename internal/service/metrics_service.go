package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the calculator API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	calculations    *prometheus.CounterVec
	fieldErrors     *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	cacheLatency    prometheus.Histogram
	exports         *prometheus.CounterVec
}

// NewMetricsService registers the collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	calculations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "grade_calculations_total",
		Help: "Completed full calculations by resulting grade point equivalent",
	}, []string{"gpe"})

	fieldErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "grade_field_errors_total",
		Help: "Rejected form fields by error kind",
	}, []string{"kind"})

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "result_cache_lookups_total",
		Help: "Result cache lookups by outcome",
	}, []string{"outcome"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "result_cache_latency_seconds",
		Help:    "Latency for result cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	exports := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "grade_exports_total",
		Help: "Rendered grade sheets by format",
	}, []string{"format"})

	registry.MustRegister(requestDuration, requestTotal, calculations, fieldErrors, cacheLookups, cacheLatency, exports)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		calculations:    calculations,
		fieldErrors:     fieldErrors,
		cacheLookups:    cacheLookups,
		cacheLatency:    cacheLatency,
		exports:         exports,
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCalculation counts a completed calculation.
func (m *MetricsService) RecordCalculation(gpe string) {
	if m == nil {
		return
	}
	m.calculations.WithLabelValues(gpe).Inc()
}

// RecordFieldError counts a rejected form field.
func (m *MetricsService) RecordFieldError(kind string) {
	if m == nil {
		return
	}
	m.fieldErrors.WithLabelValues(kind).Inc()
}

// RecordCacheOperation records a cache lookup outcome (hit, miss or error) and its latency.
func (m *MetricsService) RecordCacheOperation(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(outcome).Inc()
	m.cacheLatency.Observe(duration.Seconds())
}

// RecordExport counts a rendered grade sheet.
func (m *MetricsService) RecordExport(format string) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(format).Inc()
}
