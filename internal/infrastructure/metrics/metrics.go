// Package metrics exposes Prometheus metrics for HTTP traffic, report
// generation, backend failures, caches and the database pool.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"assetdesk/internal/domain/reports"
	"assetdesk/internal/infrastructure/backend"
	"assetdesk/internal/infrastructure/cache"
	"assetdesk/internal/infrastructure/storage/postgres"
)

const namespace = "assetdesk"

// Compile-time checks.
var (
	_ reports.Observer      = (*Metrics)(nil)
	_ backend.ErrorObserver = (*Metrics)(nil)
	_ cache.HitObserver     = (*Metrics)(nil)
)

// Metrics holds every collector of the service.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPInFlight        prometheus.Gauge

	ReportsGenerated *prometheus.CounterVec
	ReportDuration   *prometheus.HistogramVec
	ReportRows       *prometheus.HistogramVec
	UpstreamErrors   *prometheus.CounterVec
	CacheLookups     *prometheus.CounterVec
}

// New creates the collectors on a fresh registry that also carries the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),

		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests being served",
		}),

		ReportsGenerated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_generated_total",
			Help:      "Reports previewed or exported, by report and kind",
		}, []string{"report", "kind"}),

		ReportDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "report_generation_duration_seconds",
			Help:      "Time to fetch, filter and render a report",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"report", "kind"}),

		ReportRows: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "report_rows",
			Help:      "Rows returned by a report after filtering",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"report"}),

		UpstreamErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_errors_total",
			Help:      "Failed backend calls by endpoint and reason",
		}, []string{"endpoint", "reason"}),

		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by namespace and result",
		}, []string{"namespace", "result"}),
	}
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ReportGenerated implements reports.Observer.
func (m *Metrics) ReportGenerated(reportID, kind string, rows int, elapsed time.Duration) {
	m.ReportsGenerated.WithLabelValues(reportID, kind).Inc()
	m.ReportDuration.WithLabelValues(reportID, kind).Observe(elapsed.Seconds())
	m.ReportRows.WithLabelValues(reportID).Observe(float64(rows))
}

// UpstreamError implements backend.ErrorObserver.
func (m *Metrics) UpstreamError(endpoint, reason string) {
	m.UpstreamErrors.WithLabelValues(endpoint, reason).Inc()
}

// CacheResult implements cache.HitObserver.
func (m *Metrics) CacheResult(ns string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(ns, result).Inc()
}

// RegisterPool exposes connection pool statistics as gauges read on scrape.
func (m *Metrics) RegisterPool(stats func() postgres.PoolStats) {
	gauge := func(name, help string, value func(postgres.PoolStats) float64) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "db_pool",
			Name:      name,
			Help:      help,
		}, func() float64 { return value(stats()) })
	}

	m.registry.MustRegister(
		gauge("total_connections", "Open connections", func(s postgres.PoolStats) float64 { return float64(s.TotalConns) }),
		gauge("acquired_connections", "Connections in use", func(s postgres.PoolStats) float64 { return float64(s.AcquiredConns) }),
		gauge("idle_connections", "Idle connections", func(s postgres.PoolStats) float64 { return float64(s.IdleConns) }),
		gauge("max_connections", "Pool size limit", func(s postgres.PoolStats) float64 { return float64(s.MaxConns) }),
	)
}
