// Package metrics provides Prometheus metrics for the Hangout discovery service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

var defaultClassifierBuckets = []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000} //nolint:gochecknoglobals // read-only default

// Manager manages all Prometheus metrics for the Hangout service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets  []float64
	classifierBuckets []float64
	enabled           bool
	refreshInterval   time.Duration
	customLabels      map[string]string
	metricPrefix      string
	registry          prometheus.Registerer

	// Discovery metrics
	recommendations         *prometheus.CounterVec
	recommendationCandidate *prometheus.HistogramVec
	filterResults           prometheus.Histogram
	searchRequests          *prometheus.CounterVec
	searchDroppedIDs        prometheus.Counter

	// Classifier metrics
	classifierLatency prometheus.Histogram
	classifierErrors  *prometheus.CounterVec
	breakerState      *prometheus.GaugeVec
	breakerChanges    *prometheus.CounterVec

	// Participation metrics
	participantChanges *prometheus.CounterVec

	// Repository metrics
	repositoryQueryLatency *prometheus.HistogramVec
	upcomingEvents         prometheus.Gauge

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec
	errorLatency        *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
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
		namespace:         "hangout",
		subsystem:         "discovery",
		histogramBuckets:  prometheus.DefBuckets,
		classifierBuckets: defaultClassifierBuckets,
		enabled:           true,
		refreshInterval:   defaultRefreshInterval,
		customLabels:      make(map[string]string),
		metricPrefix:      "",
		registry:          prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// NewMetricsManager is an alias of NewManager.
func NewMetricsManager(opts ...Option) *Manager { return NewManager(opts...) }

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	constLabels := prometheus.Labels(m.customLabels)

	m.recommendations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("recommendations_total"),
		Help:        "Recommendation requests by mode and result status",
		ConstLabels: constLabels,
	}, []string{"mode", "status"})

	m.recommendationCandidate = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("recommendation_candidates"),
		Help:        "Number of candidates scored per recommendation request",
		Buckets:     []float64{0, 1, 5, 10, 20, 50, 100, 250, 500, 1000},
		ConstLabels: constLabels,
	}, []string{"mode"})

	m.filterResults = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("filter_results"),
		Help:        "Number of events left after applying browse filters",
		Buckets:     []float64{0, 1, 5, 10, 20, 50, 100, 250, 500, 1000},
		ConstLabels: constLabels,
	})

	m.searchRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("search_requests_total"),
		Help:        "Natural-language searches by the path that produced the result",
		ConstLabels: constLabels,
	}, []string{"source"})

	m.searchDroppedIDs = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("search_dropped_ids_total"),
		Help:        "Classifier-proposed event ids that matched no known event",
		ConstLabels: constLabels,
	})

	m.classifierLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("classifier_latency_milliseconds"),
		Help:        "Latency of classifier calls in milliseconds",
		Buckets:     m.classifierBuckets,
		ConstLabels: constLabels,
	})

	m.classifierErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("classifier_errors_total"),
		Help:        "Classifier failures by kind",
		ConstLabels: constLabels,
	}, []string{"kind"})

	m.breakerState = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("circuit_breaker_state"),
		Help:        "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		ConstLabels: constLabels,
	}, []string{"name"})

	m.breakerChanges = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("circuit_breaker_transitions_total"),
		Help:        "Circuit breaker state transitions",
		ConstLabels: constLabels,
	}, []string{"name", "from", "to"})

	m.participantChanges = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("participant_changes_total"),
		Help:        "Join and leave attempts by action and result",
		ConstLabels: constLabels,
	}, []string{"action", "result"})

	m.repositoryQueryLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("repository_query_latency_milliseconds"),
		Help:        "Repository query latency in milliseconds by operation",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250},
		ConstLabels: constLabels,
	}, []string{"operation"})

	m.upcomingEvents = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("upcoming_events"),
		Help:        "Number of upcoming events in the catalog",
		ConstLabels: constLabels,
	})

	// HTTP Performance Metrics - User experience indicators
	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("http_requests_total"),
			Help:        "Total number of HTTP requests by endpoint and method",
			ConstLabels: constLabels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("http_request_duration_milliseconds"),
			Help:        "HTTP request duration in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: constLabels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByType = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("errors_by_type_total"),
			Help:        "Total errors by type and severity",
			ConstLabels: constLabels,
		},
		[]string{"error_type", "severity"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("errors_by_endpoint_total"),
			Help:        "Total errors by HTTP endpoint",
			ConstLabels: constLabels,
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.errorLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("error_latency_milliseconds"),
			Help:        "Latency of failed operations in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: constLabels,
		},
		[]string{"component", "error_type"},
	)

	// System Performance Metrics
	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_memory_usage_bytes"),
		Help:        "System memory usage in bytes",
		ConstLabels: constLabels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_goroutine_count"),
		Help:        "Number of goroutines",
		ConstLabels: constLabels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_gc_pause_time_milliseconds"),
		Help:        "GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: constLabels,
	})
}

// RecordRecommendation counts a recommendation request and the size of its
// candidate pool.
func RecordRecommendation(mode, status string, candidates int) {
	if !globalManager.enabled {
		return
	}
	globalManager.recommendations.WithLabelValues(mode, status).Inc()
	globalManager.recommendationCandidate.WithLabelValues(mode).Observe(float64(candidates))
}

// RecordFilterResults observes the number of events returned by a browse.
func RecordFilterResults(n int) {
	globalManager.filterResults.Observe(float64(n))
}

// RecordSearch counts a search by result source and the ids it dropped.
func RecordSearch(source string, dropped int) {
	globalManager.searchRequests.WithLabelValues(source).Inc()
	if dropped > 0 {
		globalManager.searchDroppedIDs.Add(float64(dropped))
	}
}

// RecordClassifierLatency records classifier latency in milliseconds.
func RecordClassifierLatency(latencyMs float64) {
	globalManager.classifierLatency.Observe(latencyMs)
}

// RecordClassifierError counts a classifier failure of the given kind.
func RecordClassifierError(kind string) {
	globalManager.classifierErrors.WithLabelValues(kind).Inc()
}

// UpdateCircuitBreakerState sets the numeric state of a named breaker.
func UpdateCircuitBreakerState(name string, state float64) {
	globalManager.breakerState.WithLabelValues(name).Set(state)
}

// RecordCircuitBreakerTransition counts a breaker state change.
func RecordCircuitBreakerTransition(name, from, to string) {
	globalManager.breakerChanges.WithLabelValues(name, from, to).Inc()
}

// RecordParticipantChange counts a join or leave attempt.
func RecordParticipantChange(action, result string) {
	globalManager.participantChanges.WithLabelValues(action, result).Inc()
}

// RecordRepositoryQueryLatency records repository latency in milliseconds.
func RecordRepositoryQueryLatency(operation string, latencyMs float64) {
	globalManager.repositoryQueryLatency.WithLabelValues(operation).Observe(latencyMs)
}

// UpdateUpcomingEvents sets the number of upcoming events.
func UpdateUpcomingEvents(count int) {
	globalManager.upcomingEvents.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByType records errors by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records errors by HTTP endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records latency of failed operations.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// UpdateSystemMemoryUsage sets the system memory usage.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
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

// RefreshInterval returns how often system gauges should be sampled.
func RefreshInterval() time.Duration {
	return globalManager.refreshInterval
}
