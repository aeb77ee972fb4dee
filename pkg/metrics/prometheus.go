// Package metrics provides Prometheus metrics for the contribgrid service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// frameBuckets covers frame times in milliseconds around common display rates.
var frameBuckets = []float64{0.25, 0.5, 1, 2, 4, 8, 11.1, 13.9, 16.7, 25, 33.3, 50, 100} //nolint:gochecknoglobals // fixed bucket layout

// Manager manages all Prometheus metrics for the contribgrid service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Population pass
	populationDuration prometheus.Histogram
	populationOutcomes *prometheus.CounterVec
	fetchErrors        *prometheus.CounterVec
	sourceDays         prometheus.Gauge
	modelCells         prometheus.Gauge
	cellsByLevel       *prometheus.GaugeVec

	// Frame loop
	framesTotal    *prometheus.CounterVec
	frameDuration  prometheus.Histogram
	barsDrawn      prometheus.Gauge
	grabsApplied   prometheus.Counter
	grabsDiscarded prometheus.Counter
	snapshots      prometheus.Counter

	// Grab input queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueueTotal  prometheus.Counter
	queueDequeueTotal  prometheus.Counter
	queueEnqueueErrors prometheus.Counter
	grabsDuplicate     prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

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
		namespace:        "contribgrid",
		subsystem:        "grid",
		histogramBuckets: prometheus.DefBuckets,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// name applies the configured metric prefix.
func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help,
		ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help,
		ConstLabels: m.customLabels, Buckets: buckets,
	})
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.populationDuration = m.histogram("population_duration_milliseconds",
		"Duration of the background population pass in milliseconds",
		[]float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000})
	m.populationOutcomes = m.counterVec("population_outcomes_total",
		"Population pass outcomes by result (ready, failed)", "outcome")
	m.fetchErrors = m.counterVec("fetch_errors_total",
		"Contribution source fetch failures by source and kind", "source", "kind")
	m.sourceDays = m.gauge("source_days", "Number of contribution days returned by the source")
	m.modelCells = m.gauge("model_cells", "Number of grid cells in the published model")
	m.cellsByLevel = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name("cells_by_level"),
		Help: "Number of grid cells per contribution level", ConstLabels: m.customLabels,
	}, []string{"level"})

	m.framesTotal = m.counterVec("frames_total", "Frames stepped by the render loop by model state", "state")
	m.frameDuration = m.histogram("frame_duration_milliseconds", "Frame step duration in milliseconds", frameBuckets)
	m.barsDrawn = m.gauge("bars_drawn", "Bars drawn in the most recent frame")
	m.grabsApplied = m.counter("grabs_applied_total", "Grab poses written back into the model")
	m.grabsDiscarded = m.counter("grabs_discarded_total", "Queued grabs that referenced no cell or arrived after a newer grab")
	m.snapshots = m.counter("snapshots_published_total", "Read snapshots published by the render loop")

	m.queueSize = m.gauge("queue_size", "Current number of queued grab requests")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum number of queued grab requests")
	m.queueEnqueueTotal = m.counter("queue_enqueue_total", "Total grab requests enqueued")
	m.queueDequeueTotal = m.counter("queue_dequeue_total", "Total grab requests dequeued by the render loop")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Grab requests rejected by the queue")
	m.grabsDuplicate = m.counter("grabs_duplicate_total", "Grab requests dropped as duplicates")

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name("http_requests_total"),
		Help: "Total number of HTTP requests by endpoint and method", ConstLabels: m.customLabels,
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name("http_request_duration_milliseconds"),
		Help: "HTTP request duration in milliseconds", ConstLabels: m.customLabels, Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Errors by component and type", "component", "error_type")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "HTTP errors by endpoint", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// RecordPopulation records the duration and outcome of the population pass.
func RecordPopulation(outcome string, durationMs float64) {
	globalManager.populationOutcomes.WithLabelValues(outcome).Inc()
	globalManager.populationDuration.Observe(durationMs)
}

// RecordFetchError counts a source failure.
func RecordFetchError(source, kind string) {
	globalManager.fetchErrors.WithLabelValues(source, kind).Inc()
}

// UpdateSourceDays sets the number of days returned by the source.
func UpdateSourceDays(count int) {
	globalManager.sourceDays.Set(float64(count))
}

// UpdateModelCells sets the number of cells in the published model.
func UpdateModelCells(count int) {
	globalManager.modelCells.Set(float64(count))
}

// UpdateCellsByLevel sets the number of cells at level.
func UpdateCellsByLevel(level string, count int) {
	globalManager.cellsByLevel.WithLabelValues(level).Set(float64(count))
}

// RecordFrame counts one frame and its duration.
func RecordFrame(state string, durationMs float64) {
	globalManager.framesTotal.WithLabelValues(state).Inc()
	globalManager.frameDuration.Observe(durationMs)
}

// UpdateBarsDrawn sets the bar count of the last frame.
func UpdateBarsDrawn(count int) {
	globalManager.barsDrawn.Set(float64(count))
}

// RecordGrabApplied counts a pose written back by the interaction layer.
func RecordGrabApplied() {
	globalManager.grabsApplied.Inc()
}

// RecordGrabDiscarded counts a queued grab that was not applied.
func RecordGrabDiscarded() {
	globalManager.grabsDiscarded.Inc()
}

// RecordGrabDuplicate counts a grab request dropped by deduplication.
func RecordGrabDuplicate() {
	globalManager.grabsDuplicate.Inc()
}

// RecordSnapshotPublished counts a read snapshot publish.
func RecordSnapshotPublished() {
	globalManager.snapshots.Inc()
}

// UpdateQueueSize updates the queue size gauge.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity updates the queue capacity gauge.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue counts an accepted enqueue.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueTotal.Inc()
}

// RecordQueueDequeue counts a dequeue.
func RecordQueueDequeue() {
	globalManager.queueDequeueTotal.Inc()
}

// RecordQueueEnqueueError counts a rejected enqueue.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records errors by component and type.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records HTTP errors by endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage updates memory usage.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount updates goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom registry served on /healthz.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
