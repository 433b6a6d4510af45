package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Ingestion
	recordsSubmitted prometheus.Counter
	recordsDuplicate prometheus.Counter
	recordsIngested  prometheus.Counter
	recordsRejected  *prometheus.CounterVec

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Store
	storeRecords       prometheus.Gauge
	storeInsertLatency prometheus.Histogram
	storeQueryLatency  prometheus.Histogram

	// Engine
	rankingsComputed *prometheus.CounterVec
	engineLatency    *prometheus.HistogramVec
	squadsAssembled  *prometheus.CounterVec
	poolSize         *prometheus.HistogramVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec

	// Runtime
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "lanes",
		histogramBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 1000},
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) gauge(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets, ConstLabels: m.constLabels}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.recordsSubmitted = auto.NewCounter(m.counter("records_submitted_total", "Time records accepted for ingestion"))
	m.recordsDuplicate = auto.NewCounter(m.counter("records_duplicate_total", "Time records dropped as duplicates"))
	m.recordsIngested = auto.NewCounter(m.counter("records_ingested_total", "Time records written to the store"))
	m.recordsRejected = auto.NewCounterVec(m.counter("records_rejected_total", "Time records rejected by validation"), []string{"reason"})

	m.queueSize = auto.NewGauge(m.gauge("queue_size", "Records waiting in the ingestion queue"))
	m.queueCapacity = auto.NewGauge(m.gauge("queue_capacity", "Capacity of the ingestion queue"))
	m.queueUtilization = auto.NewGauge(m.gauge("queue_utilization_ratio", "Queue size divided by capacity"))
	m.queueEnqueued = auto.NewCounter(m.counter("queue_enqueued_total", "Records enqueued"))
	m.queueDequeued = auto.NewCounter(m.counter("queue_dequeued_total", "Records dequeued"))
	m.queueEnqueueErrors = auto.NewCounter(m.counter("queue_enqueue_errors_total", "Enqueue attempts refused by a full or closed queue"))

	m.workerCount = auto.NewGauge(m.gauge("worker_count", "Ingestion workers started"))
	m.workerActiveCount = auto.NewGauge(m.gauge("worker_active_count", "Ingestion workers processing a record"))
	m.workerProcessingLatency = auto.NewHistogram(m.histogram("worker_processing_latency_milliseconds", "Time to normalize and store one record", m.histogramBuckets))
	m.workerErrors = auto.NewCounter(m.counter("worker_errors_total", "Records a worker failed to store"))

	m.storeRecords = auto.NewGauge(m.gauge("store_records", "Time records held by the store"))
	m.storeInsertLatency = auto.NewHistogram(m.histogram("store_insert_latency_milliseconds", "Store insert latency", m.histogramBuckets))
	m.storeQueryLatency = auto.NewHistogram(m.histogram("store_query_latency_milliseconds", "Store query latency", m.histogramBuckets))

	m.rankingsComputed = auto.NewCounterVec(m.counter("rankings_computed_total", "Rankings computed by kind and scoring mode"), []string{"kind", "mode"})
	m.engineLatency = auto.NewHistogramVec(m.histogram("engine_latency_milliseconds", "Engine run time by kind", m.histogramBuckets), []string{"kind"})
	m.squadsAssembled = auto.NewCounterVec(m.counter("squads_assembled_total", "Relay squads assembled per relay type and mode"), []string{"relay", "mode"})
	m.poolSize = auto.NewHistogramVec(m.histogram("pool_size", "Eligible entries per team-season relay pool", []float64{0, 4, 8, 12, 16, 24, 32, 64}), []string{"relay"})

	m.httpRequests = auto.NewCounterVec(m.counter("http_requests_total", "HTTP requests by endpoint and method"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogram("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets), []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(m.counter("errors_by_component_total", "Errors by component and type"), []string{"component", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gauge("system_memory_usage_bytes", "Heap memory in use"))
	m.systemGoroutineCount = auto.NewGauge(m.gauge("system_goroutine_count", "Number of goroutines"))
}

// Ingestion

// RecordSubmitted counts a record accepted by the submit path.
func RecordSubmitted() { globalManager.recordsSubmitted.Inc() }

// RecordDuplicate counts a record dropped by the deduper.
func RecordDuplicate() { globalManager.recordsDuplicate.Inc() }

// RecordIngested counts a record written to the store.
func RecordIngested() { globalManager.recordsIngested.Inc() }

// RecordRejected counts a record failing validation.
func RecordRejected(reason string) { globalManager.recordsRejected.WithLabelValues(reason).Inc() }

// Queue

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) { globalManager.queueUtilization.Set(utilization) }

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() { globalManager.queueEnqueued.Inc() }

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() { globalManager.queueDequeued.Inc() }

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() { globalManager.queueEnqueueErrors.Inc() }

// Workers

// UpdateWorkerCount sets the number of started workers.
func UpdateWorkerCount(count int) { globalManager.workerCount.Set(float64(count)) }

// UpdateWorkerActiveCount sets the number of busy workers.
func UpdateWorkerActiveCount(count int) { globalManager.workerActiveCount.Set(float64(count)) }

// RecordWorkerProcessingLatency records how long one record took.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() { globalManager.workerErrors.Inc() }

// Store

// UpdateStoreRecords sets the number of stored records.
func UpdateStoreRecords(count int) { globalManager.storeRecords.Set(float64(count)) }

// RecordStoreInsertLatency records store insert latency.
func RecordStoreInsertLatency(latencyMs float64) { globalManager.storeInsertLatency.Observe(latencyMs) }

// RecordStoreQueryLatency records store query latency.
func RecordStoreQueryLatency(latencyMs float64) { globalManager.storeQueryLatency.Observe(latencyMs) }

// Engine

// RecordRanking counts one computed ranking and its run time.
// kind is "individual" or "relay".
func RecordRanking(kind, mode string, latencyMs float64) {
	globalManager.rankingsComputed.WithLabelValues(kind, mode).Inc()
	globalManager.engineLatency.WithLabelValues(kind).Observe(latencyMs)
}

// RecordPoolAssembled records the size of one relay pool and the squads
// it produced.
func RecordPoolAssembled(relay, mode string, poolSize, squads int) {
	globalManager.poolSize.WithLabelValues(relay).Observe(float64(poolSize))
	globalManager.squadsAssembled.WithLabelValues(relay, mode).Add(float64(squads))
}

// HTTP

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Errors

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// Runtime

// UpdateSystemMemoryUsage sets the heap memory in use.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutineCount.Set(float64(count)) }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
