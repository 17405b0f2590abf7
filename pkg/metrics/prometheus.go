// Package metrics provides Prometheus metrics for the courtview dashboard service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Data source
	queryExecutions *prometheus.CounterVec
	queryErrors     *prometheus.CounterVec
	queryLatency    *prometheus.HistogramVec
	rowsLoaded      *prometheus.GaugeVec
	rowsDropped     *prometheus.CounterVec

	// Result cache
	cacheHits          *prometheus.CounterVec
	cacheMisses        *prometheus.CounterVec
	cacheShared        *prometheus.CounterVec
	cacheInvalidations prometheus.Counter
	cacheStoreErrors   *prometheus.CounterVec
	cacheEntries       prometheus.Gauge

	// Presentation
	emptyResults    *prometheus.CounterVec
	searches        *prometheus.CounterVec
	cacheRefreshes  *prometheus.CounterVec
	dashboardBuilds prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec
	errorRateByType     *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// customRegistry keeps the default Go collectors out of /healthz.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "courtview",
		subsystem:        "dashboard",
		histogramBuckets: prometheus.DefBuckets,
		refreshInterval:  defaultRefreshInterval,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	counterVec := func(name, help string, labelNames ...string) *prometheus.CounterVec {
		return auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      name,
			Help:      help,
		}, labelNames)
	}

	m.queryExecutions = counterVec("query_executions_total", "Number of SQL statements sent to the data source", "query")
	m.queryErrors = counterVec("query_errors_total", "Number of failed data source executions by kind", "query", "kind")
	m.queryLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "query_latency_milliseconds",
		Help:      "Data source execution latency in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"query"})
	m.rowsLoaded = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rows_loaded",
		Help:      "Rows materialized by the last execution of a query",
	}, []string{"query"})
	m.rowsDropped = counterVec("rows_dropped_total", "Rows discarded while decoding records", "table")

	m.cacheHits = counterVec("cache_hits_total", "Result cache hits", "query")
	m.cacheMisses = counterVec("cache_misses_total", "Result cache misses", "query")
	m.cacheShared = counterVec("cache_shared_total", "Loads that joined an in-flight execution", "query")
	m.cacheStoreErrors = counterVec("cache_store_errors_total", "Result cache backend failures", "op")
	m.cacheInvalidations = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_invalidations_total",
		Help:      "Explicit result cache invalidations",
	})
	m.cacheEntries = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_entries",
		Help:      "Entries currently held by the result cache",
	})
	m.cacheRefreshes = counterVec("cache_refreshes_total", "Scheduled cache refresh runs by outcome", "outcome")

	m.emptyResults = counterVec("empty_results_total", "Dashboard sections rendered without data", "section")
	m.searches = counterVec("searches_total", "Competitor searches by outcome", "outcome")
	m.dashboardBuilds = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dashboard_builds_total",
		Help:      "Full dashboard snapshots produced",
	})

	m.httpRequests = counterVec("http_requests_total", "HTTP requests by endpoint, method and status", "endpoint", "method", "status_code")
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
	m.errorRateByEndpoint = counterVec("errors_by_endpoint_total", "HTTP errors by endpoint", "endpoint", "method", "error_type")
	m.errorRateByType = counterVec("errors_by_type_total", "HTTP errors by type and severity", "error_type", "severity")

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "memory_usage_bytes",
		Help:      "Allocated heap bytes",
	})
	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "goroutines",
		Help:      "Number of goroutines",
	})
	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "gc_pause_milliseconds",
		Help:      "Average GC pause in milliseconds",
		Buckets:   m.histogramBuckets,
	})
}

// Data source.

// RecordQueryExecution counts one execution and observes its latency.
func RecordQueryExecution(query string, latencyMs float64) {
	globalManager.queryExecutions.WithLabelValues(query).Inc()
	globalManager.queryLatency.WithLabelValues(query).Observe(latencyMs)
}

// RecordQueryError counts a failed execution.
func RecordQueryError(query, kind string) {
	globalManager.queryErrors.WithLabelValues(query, kind).Inc()
}

// UpdateRowsLoaded sets the row count of the last materialized result.
func UpdateRowsLoaded(query string, rows int) {
	globalManager.rowsLoaded.WithLabelValues(query).Set(float64(rows))
}

// RecordRowsDropped counts rows discarded during decoding.
func RecordRowsDropped(table string, n int) {
	if n <= 0 {
		return
	}
	globalManager.rowsDropped.WithLabelValues(table).Add(float64(n))
}

// Result cache.

// RecordCacheHit counts a cache hit.
func RecordCacheHit(query string) {
	globalManager.cacheHits.WithLabelValues(query).Inc()
}

// RecordCacheMiss counts a cache miss.
func RecordCacheMiss(query string) {
	globalManager.cacheMisses.WithLabelValues(query).Inc()
}

// RecordCacheShared counts a load served by another caller's execution.
func RecordCacheShared(query string) {
	globalManager.cacheShared.WithLabelValues(query).Inc()
}

// RecordCacheStoreError counts a backend failure for op (get, set, delete, purge).
func RecordCacheStoreError(op string) {
	globalManager.cacheStoreErrors.WithLabelValues(op).Inc()
}

// RecordCacheInvalidation counts an explicit invalidation.
func RecordCacheInvalidation() {
	globalManager.cacheInvalidations.Inc()
}

// UpdateCacheEntries sets the number of cached results.
func UpdateCacheEntries(n int) {
	globalManager.cacheEntries.Set(float64(n))
}

// RecordCacheRefresh counts a refresh run with outcome "ok", "error" or "store_error".
func RecordCacheRefresh(outcome string) {
	globalManager.cacheRefreshes.WithLabelValues(outcome).Inc()
}

// Presentation.

// RecordEmptyResult counts a section rendered with a "no data" warning.
func RecordEmptyResult(section string) {
	globalManager.emptyResults.WithLabelValues(section).Inc()
}

// RecordSearch counts a search; outcome is "found", "not_found" or "skipped".
func RecordSearch(outcome string) {
	globalManager.searches.WithLabelValues(outcome).Inc()
}

// RecordDashboardBuild counts a full dashboard snapshot.
func RecordDashboardBuild() {
	globalManager.dashboardBuilds.Inc()
}

// HTTP.

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// System.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// RefreshInterval is how often gauges fed by background updaters should refresh.
func RefreshInterval() time.Duration {
	return globalManager.refreshInterval
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
