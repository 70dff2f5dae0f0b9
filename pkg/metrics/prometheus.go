// Package metrics provides Prometheus metrics for the resume insight client.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the client.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	refreshInterval  time.Duration
	customLabels     map[string]string
	registry         prometheus.Registerer

	// API Metrics - Requests made against the insight backend
	apiRequests        *prometheus.CounterVec
	apiRequestDuration *prometheus.HistogramVec

	// History Metrics - Fetch lifecycle of the history collection
	historyFetches     prometheus.Counter
	historyReplaced    prometheus.Counter
	historyFailed      prometheus.Counter
	historyOutOfOrder  prometheus.Counter
	historyDiscarded   prometheus.Counter
	historyRecordCount prometheus.Gauge

	// View Metrics - Navigation and presentation
	uploads           *prometheus.CounterVec
	viewChanges       *prometheus.CounterVec
	accordionToggles  prometheus.Counter
	animationStarted  prometheus.Counter
	animationCanceled prometheus.Counter
	animationFrames   prometheus.Counter

	// Loop Metrics - Event loop backlog and task latency
	loopQueueSize   prometheus.Gauge
	loopQueueFull   prometheus.Counter
	loopTaskLatency prometheus.Histogram
	loopPanics      prometheus.Counter

	// Error Metrics
	errorRateByComponent *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "resumeinsight",
		subsystem:        "client",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	m.apiRequests = auto.NewCounterVec(
		m.counterOpts("api_requests_total", "Total number of backend API requests by endpoint, method and outcome"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.apiRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("api_request_duration_milliseconds", "Backend API request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"},
	)

	m.historyFetches = auto.NewCounter(m.counterOpts("history_fetches_total", "Total number of history fetches issued"))
	m.historyReplaced = auto.NewCounter(m.counterOpts("history_replaced_total", "Total number of times the history collection was replaced"))
	m.historyFailed = auto.NewCounter(m.counterOpts("history_failed_total", "Total number of failed history fetches"))
	m.historyOutOfOrder = auto.NewCounter(m.counterOpts("history_out_of_order_total", "History responses that completed after a newer fetch was issued"))
	m.historyDiscarded = auto.NewCounter(m.counterOpts("history_discarded_total", "Stale history responses dropped instead of applied"))
	m.historyRecordCount = auto.NewGauge(m.gaugeOpts("history_records", "Number of records in the current history collection"))

	m.uploads = auto.NewCounterVec(
		m.counterOpts("uploads_total", "Total number of resume uploads by outcome"),
		[]string{"outcome"},
	)
	m.viewChanges = auto.NewCounterVec(
		m.counterOpts("view_changes_total", "Total number of active view changes by target view"),
		[]string{"view"},
	)
	m.accordionToggles = auto.NewCounter(m.counterOpts("accordion_toggles_total", "Total number of history entry toggles"))
	m.animationStarted = auto.NewCounter(m.counterOpts("animations_started_total", "Total number of score animations started"))
	m.animationCanceled = auto.NewCounter(m.counterOpts("animations_canceled_total", "Total number of score animations canceled before completion"))
	m.animationFrames = auto.NewCounter(m.counterOpts("animation_frames_total", "Total number of animation frames rendered"))

	m.loopQueueSize = auto.NewGauge(m.gaugeOpts("loop_queue_size", "Current number of tasks waiting on the event loop"))
	m.loopQueueFull = auto.NewCounter(m.counterOpts("loop_queue_full_total", "Total number of tasks rejected because the event loop queue was full"))
	m.loopTaskLatency = auto.NewHistogram(m.histogramOpts("loop_task_latency_milliseconds", "Time from task post to task completion in milliseconds"))
	m.loopPanics = auto.NewCounter(m.counterOpts("loop_panics_total", "Total number of recovered event loop task panics"))

	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "Heap memory in use in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
}

// API Metrics Functions.

// RecordAPIRequest records a backend API request.
func RecordAPIRequest(endpoint, method, statusCode string) {
	globalManager.apiRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordAPIRequestDuration records backend API request duration in milliseconds.
func RecordAPIRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.apiRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// History Metrics Functions.

// RecordHistoryFetch increments the history fetch counter.
func RecordHistoryFetch() {
	globalManager.historyFetches.Inc()
}

// RecordHistoryReplaced increments the replaced counter and sets the record gauge.
func RecordHistoryReplaced(records int) {
	globalManager.historyReplaced.Inc()
	globalManager.historyRecordCount.Set(float64(records))
}

// RecordHistoryFailed increments the failed fetch counter.
func RecordHistoryFailed() {
	globalManager.historyFailed.Inc()
}

// RecordHistoryOutOfOrder increments the out-of-order completion counter.
func RecordHistoryOutOfOrder() {
	globalManager.historyOutOfOrder.Inc()
}

// RecordHistoryDiscarded increments the discarded response counter.
func RecordHistoryDiscarded() {
	globalManager.historyDiscarded.Inc()
}

// View Metrics Functions.

// RecordUpload records an upload outcome (success, failure, rejected).
func RecordUpload(outcome string) {
	globalManager.uploads.WithLabelValues(outcome).Inc()
}

// RecordViewChange records a change of the active view.
func RecordViewChange(view string) {
	globalManager.viewChanges.WithLabelValues(view).Inc()
}

// RecordAccordionToggle increments the accordion toggle counter.
func RecordAccordionToggle() {
	globalManager.accordionToggles.Inc()
}

// RecordAnimationStarted increments the started animations counter.
func RecordAnimationStarted() {
	globalManager.animationStarted.Inc()
}

// RecordAnimationCanceled increments the canceled animations counter.
func RecordAnimationCanceled() {
	globalManager.animationCanceled.Inc()
}

// RecordAnimationFrame increments the animation frame counter.
func RecordAnimationFrame() {
	globalManager.animationFrames.Inc()
}

// Loop Metrics Functions.

// UpdateLoopQueueSize sets the current event loop backlog.
func UpdateLoopQueueSize(size int) {
	globalManager.loopQueueSize.Set(float64(size))
}

// RecordLoopQueueFull increments the rejected task counter.
func RecordLoopQueueFull() {
	globalManager.loopQueueFull.Inc()
}

// RecordLoopTaskLatency records the latency of an event loop task.
func RecordLoopTaskLatency(latencyMs float64) {
	globalManager.loopTaskLatency.Observe(latencyMs)
}

// RecordLoopPanic increments the recovered panic counter.
func RecordLoopPanic() {
	globalManager.loopPanics.Inc()
}

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the heap memory in use in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RunSystemCollector refreshes the system gauges at the manager's refresh
// interval until ctx is done.
func RunSystemCollector(ctx context.Context) {
	ticker := time.NewTicker(globalManager.refreshInterval)
	defer ticker.Stop()
	collectSystemStats()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			collectSystemStats()
		}
	}
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
