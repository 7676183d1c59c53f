// Package metrics provides Prometheus metrics for the multielo rating service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the rating service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Rating engine
	ratingComputations prometheus.Counter
	ratingLatency      prometheus.Histogram
	engineErrors       *prometheus.CounterVec
	simulations        prometheus.Counter

	// Tracker
	matchupsProcessed   prometheus.Counter
	matchupsSkipped     prometheus.Counter
	matchupsDuplicate   prometheus.Counter
	participantsCreated prometheus.Counter
	ratingUpdates       prometheus.Counter
	participantsTotal   prometheus.Gauge

	// Persisted state
	stateSaveDuration prometheus.Histogram
	stateLoadDuration prometheus.Histogram
	stateErrors       *prometheus.CounterVec

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

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "multielo",
		subsystem:        "ratings",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}, labels)
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	m.ratingComputations = m.counter("rating_computations_total", "Total number of rating updates computed by the engine")
	m.ratingLatency = m.histogram("rating_latency_milliseconds", "Histogram of rating computation latency in milliseconds", m.histogramBuckets)
	m.engineErrors = m.counterVec("engine_errors_total", "Rating engine errors by kind", "kind")
	m.simulations = m.counter("simulations_total", "Total number of win-probability simulations run")

	m.matchupsProcessed = m.counter("matchups_processed_total", "Total number of matchups applied to the tracker")
	m.matchupsSkipped = m.counter("matchups_skipped_total", "Total number of matchups skipped because no participant was present")
	m.matchupsDuplicate = m.counter("matchups_duplicate_total", "Total number of duplicate matchup submissions")
	m.participantsCreated = m.counter("participants_created_total", "Total number of participants created")
	m.ratingUpdates = m.counter("rating_updates_total", "Total number of participant rating updates")
	m.participantsTotal = m.gauge("participants", "Number of participants tracked")

	m.stateSaveDuration = m.histogram("state_save_duration_milliseconds", "Duration of tracker state saves in milliseconds", m.histogramBuckets)
	m.stateLoadDuration = m.histogram("state_load_duration_milliseconds", "Duration of tracker state loads in milliseconds", m.histogramBuckets)
	m.stateErrors = m.counterVec("state_errors_total", "Tracker state persistence errors by operation", "op")

	auto := promauto.With(m.registry)
	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests by endpoint and method",
			ConstLabels: m.constLabels,
		},
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "http_request_duration_milliseconds",
			Help:        "HTTP request duration in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: m.constLabels,
		},
		[]string{"endpoint", "method", "status_code"},
	)
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Errors by endpoint, method and type", "endpoint", "method", "error_type")
	m.errorRateByType = m.counterVec("errors_by_type_total", "Errors by type and severity", "error_type", "severity")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// RecordRatingComputation records one engine computation and its latency.
func RecordRatingComputation(latencyMs float64) {
	globalManager.ratingComputations.Inc()
	globalManager.ratingLatency.Observe(latencyMs)
}

// RecordEngineError increments the engine error counter for kind
// ("constraint", "contract", "data_shape").
func RecordEngineError(kind string) {
	globalManager.engineErrors.WithLabelValues(kind).Inc()
}

// RecordSimulation increments the simulation counter.
func RecordSimulation() {
	globalManager.simulations.Inc()
}

// RecordMatchupProcessed increments the processed matchups counter.
func RecordMatchupProcessed() {
	globalManager.matchupsProcessed.Inc()
}

// RecordMatchupSkipped increments the skipped matchups counter.
func RecordMatchupSkipped() {
	globalManager.matchupsSkipped.Inc()
}

// RecordMatchupDuplicate increments the duplicate matchups counter.
func RecordMatchupDuplicate() {
	globalManager.matchupsDuplicate.Inc()
}

// RecordParticipantCreated increments the created participants counter.
func RecordParticipantCreated() {
	globalManager.participantsCreated.Inc()
}

// RecordRatingUpdate increments the rating updates counter.
func RecordRatingUpdate() {
	globalManager.ratingUpdates.Inc()
}

// UpdateParticipantsTotal sets the number of tracked participants.
func UpdateParticipantsTotal(count int) {
	globalManager.participantsTotal.Set(float64(count))
}

// RecordStateSave records the duration of a state save.
func RecordStateSave(latencyMs float64) {
	globalManager.stateSaveDuration.Observe(latencyMs)
}

// RecordStateLoad records the duration of a state load.
func RecordStateLoad(latencyMs float64) {
	globalManager.stateLoadDuration.Observe(latencyMs)
}

// RecordStateError increments the persistence error counter for op ("save", "load").
func RecordStateError(op string) {
	globalManager.stateErrors.WithLabelValues(op).Inc()
}

// RecordHTTPRequest records an HTTP request.
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

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
