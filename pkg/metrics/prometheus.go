// Package metrics provides Prometheus metrics for the curator index service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the curator service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Ingestion
	likesReceived  prometheus.Counter
	likesDuplicate prometheus.Counter
	likesApplied   prometheus.Counter
	likesRejected  *prometheus.CounterVec

	// Index computation
	recomputeTotal    prometheus.Counter
	recomputeDuration prometheus.Histogram
	curatorsTotal     prometheus.Gauge
	rankedTotal       prometheus.Gauge
	itemsTotal        prometheus.Gauge
	projectsTotal     prometheus.Gauge
	snapshotVersion   prometheus.Gauge
	snapshotLastUnix  prometheus.Gauge
	archiveErrors     prometheus.Counter
	repositoryLatency *prometheus.HistogramVec

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueueTotal  prometheus.Counter
	queueDequeueTotal  prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec
	errorsByType      *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "curator",
		subsystem:        "index",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: name, Help: help, ConstLabels: m.constLabels,
	}
}

func (m *Manager) gauge(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: name, Help: help, ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.HistogramOpts {
	if buckets == nil {
		buckets = m.histogramBuckets
	}
	return prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: name, Help: help, ConstLabels: m.constLabels, Buckets: buckets,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.likesReceived = auto.NewCounter(m.counter("likes_received_total", "Like submissions received"))
	m.likesDuplicate = auto.NewCounter(m.counter("likes_duplicate_total", "Like submissions dropped as duplicate tx ids"))
	m.likesApplied = auto.NewCounter(m.counter("likes_applied_total", "Like events appended to the forest"))
	m.likesRejected = auto.NewCounterVec(m.counter("likes_rejected_total", "Like events rejected by the store"), []string{"reason"})

	m.recomputeTotal = auto.NewCounter(m.counter("recompute_total", "Index recomputations"))
	m.recomputeDuration = auto.NewHistogram(m.histogram("recompute_duration_milliseconds", "Index recomputation duration in milliseconds", nil))
	m.curatorsTotal = auto.NewGauge(m.gauge("curators", "Curators with a record in the last computation"))
	m.rankedTotal = auto.NewGauge(m.gauge("ranked_curators", "Curators with a positive overall index"))
	m.itemsTotal = auto.NewGauge(m.gauge("items", "Interactable items in the forest"))
	m.projectsTotal = auto.NewGauge(m.gauge("projects", "Projects in the forest"))
	m.snapshotVersion = auto.NewGauge(m.gauge("snapshot_version", "Version of the published index snapshot"))
	m.snapshotLastUnix = auto.NewGauge(m.gauge("snapshot_last_unix", "Unix time of the last snapshot publish"))
	m.archiveErrors = auto.NewCounter(m.counter("archive_errors_total", "Failed archive writes"))
	m.repositoryLatency = auto.NewHistogramVec(
		m.histogram("repository_latency_milliseconds", "Repository operation latency in milliseconds", nil),
		[]string{"operation"},
	)

	m.queueSize = auto.NewGauge(m.gauge("queue_size", "Current size of the like queue"))
	m.queueCapacity = auto.NewGauge(m.gauge("queue_capacity", "Maximum like queue capacity"))
	m.queueUtilization = auto.NewGauge(m.gauge("queue_utilization_ratio", "Queue utilization ratio (size / capacity)"))
	m.queueEnqueueTotal = auto.NewCounter(m.counter("queue_enqueue_total", "Messages enqueued"))
	m.queueDequeueTotal = auto.NewCounter(m.counter("queue_dequeue_total", "Messages dequeued"))
	m.queueEnqueueErrors = auto.NewCounter(m.counter("queue_enqueue_errors_total", "Failed enqueue attempts"))

	m.workerCount = auto.NewGauge(m.gauge("worker_count", "Running workers"))
	m.workerProcessingLatency = auto.NewHistogram(m.histogram("worker_processing_latency_milliseconds", "Per-submission processing latency in milliseconds", nil))
	m.workerErrors = auto.NewCounter(m.counter("worker_errors_total", "Worker processing errors"))

	m.httpRequests = auto.NewCounterVec(m.counter("http_requests_total", "HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogram("http_request_duration_milliseconds", "HTTP request duration in milliseconds", nil),
		[]string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(m.counter("errors_by_component_total", "Errors by component"),
		[]string{"component", "error_type"})
	m.errorsByType = auto.NewCounterVec(m.counter("errors_by_type_total", "Errors by type"),
		[]string{"error_type", "severity"})
	m.errorsByEndpoint = auto.NewCounterVec(m.counter("errors_by_endpoint_total", "Errors by endpoint"),
		[]string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gauge("system_memory_usage_bytes", "Heap memory in use in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gauge("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}))
}

// RecordLikeReceived increments the received submissions counter.
func RecordLikeReceived() { globalManager.likesReceived.Inc() }

// RecordLikeDuplicate increments the duplicate submissions counter.
func RecordLikeDuplicate() { globalManager.likesDuplicate.Inc() }

// RecordLikeApplied increments the applied likes counter.
func RecordLikeApplied() { globalManager.likesApplied.Inc() }

// RecordLikeRejected counts a like the store refused, labelled by reason.
func RecordLikeRejected(reason string) { globalManager.likesRejected.WithLabelValues(reason).Inc() }

// RecordRecompute records one index computation and its duration.
func RecordRecompute(durationMs float64) {
	globalManager.recomputeTotal.Inc()
	globalManager.recomputeDuration.Observe(durationMs)
}

// UpdateIndexSize publishes the shape of the latest computation.
func UpdateIndexSize(projects, items, curators, ranked int) {
	globalManager.projectsTotal.Set(float64(projects))
	globalManager.itemsTotal.Set(float64(items))
	globalManager.curatorsTotal.Set(float64(curators))
	globalManager.rankedTotal.Set(float64(ranked))
}

// UpdateSnapshot records the version and publish time of the current snapshot.
func UpdateSnapshot(version uint64, unix int64) {
	globalManager.snapshotVersion.Set(float64(version))
	globalManager.snapshotLastUnix.Set(float64(unix))
}

// RecordArchiveError increments the archive error counter.
func RecordArchiveError() { globalManager.archiveErrors.Inc() }

// RecordRepositoryLatency records the latency of a repository operation.
func RecordRepositoryLatency(operation string, latencyMs float64) {
	globalManager.repositoryLatency.WithLabelValues(operation).Observe(latencyMs)
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) { globalManager.queueUtilization.Set(utilization) }

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() { globalManager.queueEnqueueTotal.Inc() }

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() { globalManager.queueDequeueTotal.Inc() }

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() { globalManager.queueEnqueueErrors.Inc() }

// UpdateWorkerCount sets the number of running workers.
func UpdateWorkerCount(count int) { globalManager.workerCount.Set(float64(count)) }

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() { globalManager.workerErrors.Inc() }

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorsByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the heap memory in use.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutineCount.Set(float64(count)) }

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) { globalManager.systemGCPauseTime.Observe(pauseMs) }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
