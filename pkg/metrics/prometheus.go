// Package metrics provides Prometheus metrics for the uncertainty map service.
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          atomic.Bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Dataset metrics
	recordsLoaded prometheus.Gauge
	countries     prometheus.Gauge
	months        prometheus.Gauge
	framesBuilt   prometheus.Gauge
	buildLatency  *prometheus.HistogramVec

	// Export metrics
	exportsTotal *prometheus.CounterVec
	exportBytes  prometheus.Histogram

	// Animation session metrics
	sessionsActive      prometheus.Gauge
	sessionsCreated     prometheus.Counter
	sessionsExpired     prometheus.Counter
	controllerTransits  *prometheus.CounterVec
	controllerFrameSeen *prometheus.CounterVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // avoids default Go collectors

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "wui",
		subsystem:        "dashboard",
		histogramBuckets: prometheus.DefBuckets,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.NewRegistry(),
	}
	m.enabled.Store(true)
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.recordsLoaded = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "records_loaded",
		Help: "Number of long-form records in the loaded dataset",
	})
	m.countries = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "countries",
		Help: "Number of country columns in the loaded dataset",
	})
	m.months = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "months",
		Help: "Number of distinct months in the loaded dataset",
	})
	m.framesBuilt = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "frames_built",
		Help: "Number of animation frames held in memory",
	})
	m.buildLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    "pipeline_stage_latency_milliseconds",
		Help:    "Latency of pipeline stages (load, reshape, frames, figure) in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"stage"})

	m.exportsTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "exports_total",
		Help: "Total number of rendered documents by target",
	}, []string{"target"})
	m.exportBytes = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    "export_size_bytes",
		Help:    "Size of rendered HTML documents in bytes",
		Buckets: prometheus.ExponentialBuckets(1<<10, 4, 10),
	})

	m.sessionsActive = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "sessions_active",
		Help: "Number of live animation sessions",
	})
	m.sessionsCreated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "sessions_created_total",
		Help: "Total number of animation sessions created",
	})
	m.sessionsExpired = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "sessions_expired_total",
		Help: "Total number of animation sessions evicted for inactivity",
	})
	m.controllerTransits = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "controller_transitions_total",
		Help: "Total number of controller transitions by action",
	}, []string{"action"})
	m.controllerFrameSeen = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "frames_served_total",
		Help: "Total number of frames served to clients by month",
	}, []string{"month"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "http_requests_total",
		Help: "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    "http_request_duration_milliseconds",
		Help:    "HTTP request duration in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
	m.errorRateByType = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "errors_by_type_total",
		Help: "Total number of errors by type",
	}, []string{"error_type", "severity"})
	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "errors_by_endpoint_total",
		Help: "Total number of errors by endpoint",
	}, []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "system_memory_usage_bytes",
		Help: "System memory usage in bytes",
	})
	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "system_goroutine_count",
		Help: "Number of goroutines",
	})
	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    "system_gc_pause_time_milliseconds",
		Help:    "GC pause time in milliseconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// RefreshInterval returns how often gauges should be refreshed.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

// Enabled reports whether recording is active.
func (m *Manager) Enabled() bool { return m.enabled.Load() }

// Configure applies runtime settings to the global manager. Collectors are
// registered once at package init, so only these two can change.
func Configure(enabled bool, refresh time.Duration) {
	globalManager.enabled.Store(enabled)
	if refresh > 0 {
		globalManager.refreshInterval = refresh
	}
}

// RefreshInterval returns how often the global gauges are refreshed.
func RefreshInterval() time.Duration { return globalManager.refreshInterval }

// Dataset metrics.

// UpdateDataset sets the dataset shape gauges.
func UpdateDataset(records, countries, months int) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.recordsLoaded.Set(float64(records))
	globalManager.countries.Set(float64(countries))
	globalManager.months.Set(float64(months))
}

// UpdateFramesBuilt sets the number of frames in memory.
func UpdateFramesBuilt(count int) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.framesBuilt.Set(float64(count))
}

// RecordStageLatency records the duration of one pipeline stage.
func RecordStageLatency(stage string, d time.Duration) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.buildLatency.WithLabelValues(stage).Observe(float64(d) / float64(time.Millisecond))
}

// Export metrics.

// RecordExport counts a rendered document and its size.
func RecordExport(target string, size int) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.exportsTotal.WithLabelValues(target).Inc()
	globalManager.exportBytes.Observe(float64(size))
}

// Session metrics.

// UpdateSessionsActive sets the number of live sessions.
func UpdateSessionsActive(count int) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.sessionsActive.Set(float64(count))
}

// RecordSessionCreated counts a new session.
func RecordSessionCreated() {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.sessionsCreated.Inc()
}

// RecordSessionsExpired counts evicted sessions.
func RecordSessionsExpired(n int) {
	if !globalManager.enabled.Load() || n <= 0 {
		return
	}
	globalManager.sessionsExpired.Add(float64(n))
}

// RecordTransition counts a controller transition.
func RecordTransition(action string) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.controllerTransits.WithLabelValues(action).Inc()
}

// RecordFrameServed counts a frame sent to a client.
func RecordFrameServed(month string) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.controllerFrameSeen.WithLabelValues(month).Inc()
}

// HTTP metrics.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System metrics.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	if !globalManager.enabled.Load() {
		return
	}
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
