// Package metrics provides Prometheus metrics for the arena service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the arena service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Match metrics
	roundsPlayed      *prometheus.CounterVec
	matchesStarted    prometheus.Counter
	matchesWon        *prometheus.CounterVec
	matchesAbandoned  prometheus.Counter
	selectionRejected *prometheus.CounterVec
	actionsDuplicate  prometheus.Counter

	// Session metrics
	activeSessions         prometheus.Gauge
	sessionsEvicted        prometheus.Counter
	celebrationsCancelled  prometheus.Counter
	standingsContestants   prometheus.Gauge
	standingsUpdateLatency prometheus.Histogram

	// Results pipeline
	queueSize               prometheus.Gauge
	queueCapacity           prometheus.Gauge
	queueEnqueued           prometheus.Counter
	queueDropped            *prometheus.CounterVec
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "arena",
		subsystem:        "game",
		histogramBuckets: prometheus.DefBuckets,
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
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	})
}

func (m *Manager) initializeMetrics() {
	m.roundsPlayed = m.counterVec("rounds_played_total",
		"Total number of rounds resolved, by round result", "result")
	m.matchesStarted = m.counter("matches_started_total",
		"Total number of matches started (selection reached two contestants)")
	m.matchesWon = m.counterVec("matches_won_total",
		"Total number of matches won, by contestant", "contestant")
	m.matchesAbandoned = m.counter("matches_abandoned_total",
		"Total number of matches reset before completion")
	m.selectionRejected = m.counterVec("selection_rejected_total",
		"Total number of ignored selections, by reason", "reason")
	m.actionsDuplicate = m.counter("actions_duplicate_total",
		"Total number of repeated client actions that were not applied")

	m.activeSessions = m.gauge("active_sessions", "Current number of live sessions")
	m.sessionsEvicted = m.counter("sessions_evicted_total", "Total number of idle sessions evicted")
	m.celebrationsCancelled = m.counter("celebrations_cancelled_total",
		"Total number of celebration timers stopped before firing")
	m.standingsContestants = m.gauge("standings_contestants",
		"Number of contestants with at least one recorded win")
	m.standingsUpdateLatency = m.histogram("standings_update_latency_milliseconds",
		"Standings update latency in milliseconds", m.histogramBuckets)

	m.queueSize = m.gauge("results_queue_size", "Current number of match results waiting to be recorded")
	m.queueCapacity = m.gauge("results_queue_capacity", "Capacity of the match results queue")
	m.queueEnqueued = m.counter("results_enqueued_total", "Total number of match results enqueued")
	m.queueDropped = m.counterVec("results_dropped_total",
		"Total number of match results dropped, by reason", "reason")
	m.workerCount = m.gauge("worker_count", "Current number of results workers")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds",
		"Time spent by a worker recording one match result", m.histogramBuckets)
	m.workerErrors = m.counter("worker_errors_total", "Total number of results worker errors")

	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total",
		"Total number of HTTP errors by endpoint", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// RecordRound increments the rounds counter for a round result ("a", "b" or "tie").
func RecordRound(result string) {
	globalManager.roundsPlayed.WithLabelValues(result).Inc()
}

// RecordMatchStarted increments the matches started counter.
func RecordMatchStarted() {
	globalManager.matchesStarted.Inc()
}

// RecordMatchWon increments the win counter of a contestant.
func RecordMatchWon(contestantID string) {
	globalManager.matchesWon.WithLabelValues(contestantID).Inc()
}

// RecordMatchAbandoned increments the abandoned matches counter.
func RecordMatchAbandoned() {
	globalManager.matchesAbandoned.Inc()
}

// RecordSelectionRejected increments the rejected selection counter.
func RecordSelectionRejected(reason string) {
	globalManager.selectionRejected.WithLabelValues(reason).Inc()
}

// RecordActionDuplicate increments the duplicate actions counter.
func RecordActionDuplicate() {
	globalManager.actionsDuplicate.Inc()
}

// UpdateActiveSessions sets the current session count.
func UpdateActiveSessions(count int) {
	globalManager.activeSessions.Set(float64(count))
}

// RecordSessionsEvicted adds n to the evicted sessions counter.
func RecordSessionsEvicted(n int) {
	globalManager.sessionsEvicted.Add(float64(n))
}

// RecordCelebrationCancelled increments the cancelled celebrations counter.
func RecordCelebrationCancelled() {
	globalManager.celebrationsCancelled.Inc()
}

// UpdateStandingsContestants sets the number of contestants in the standings.
func UpdateStandingsContestants(count int) {
	globalManager.standingsContestants.Set(float64(count))
}

// RecordStandingsUpdateLatency records standings update latency.
func RecordStandingsUpdateLatency(latencyMs float64) {
	globalManager.standingsUpdateLatency.Observe(latencyMs)
}

// UpdateQueueSize sets the current results queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the results queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDropped increments the dropped results counter.
func RecordQueueDropped(reason string) {
	globalManager.queueDropped.WithLabelValues(reason).Inc()
}

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
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
