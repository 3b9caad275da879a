// Package metrics provides Prometheus metrics for the salesboard
// reconciliation pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus collectors for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Scan metrics
	scanInvocations   *prometheus.CounterVec
	scanPages         prometheus.Counter
	scanDuration      prometheus.Histogram
	placementsCounted prometheus.Counter
	placementsDeduped prometheus.Counter
	renewalsExcluded  prometheus.Counter
	unmatchedEmails   prometheus.Counter

	// Activity metrics
	activityPages   prometheus.Counter
	activityRecords prometheus.Counter

	// Upstream metrics
	rateLimitRetries prometheus.Counter
	upstreamErrors   *prometheus.CounterVec

	// Cache metrics
	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec

	// Build metrics
	buildDuration prometheus.Histogram

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional singleton

// Custom registry to avoid the default Go collectors.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional singleton

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "salesboard",
		subsystem:        "pipeline",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initCollectors()
	return m
}

func (m *Manager) initCollectors() {
	factory := promauto.With(m.registry)

	m.scanInvocations = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scan_invocations_total",
		Help:      "Placement scan invocations by outcome (complete, partial, cached, error).",
	}, []string{"outcome"})

	m.scanPages = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scan_pages_total",
		Help:      "Job listing pages fetched by the placement scanner.",
	})

	m.scanDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scan_duration_seconds",
		Help:      "Wall-clock duration of a single scan invocation.",
		Buckets:   m.histogramBuckets,
	})

	m.placementsCounted = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "placements_counted_total",
		Help:      "Placements attributed to a roster member.",
	})

	m.placementsDeduped = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "placements_deduplicated_total",
		Help:      "Placements skipped because their application id was already seen this generation.",
	})

	m.renewalsExcluded = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "renewals_excluded_total",
		Help:      "Placements excluded as contract renewals.",
	})

	m.unmatchedEmails = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "unmatched_attribution_total",
		Help:      "Placements whose placed-by email matched no roster member.",
	})

	m.activityPages = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "activity_pages_total",
		Help:      "Activity pages fetched.",
	})

	m.activityRecords = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "activity_records_total",
		Help:      "Raw activity records fetched.",
	})

	m.rateLimitRetries = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rate_limit_retries_total",
		Help:      "Retries performed after upstream 429 responses.",
	})

	m.upstreamErrors = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "upstream_errors_total",
		Help:      "Upstream call failures by endpoint.",
	}, []string{"endpoint"})

	m.cacheHits = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_hits_total",
		Help:      "Cache hits by cache name.",
	}, []string{"cache"})

	m.cacheMisses = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_misses_total",
		Help:      "Cache misses by cache name.",
	}, []string{"cache"})

	m.buildDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "leaderboard_build_duration_seconds",
		Help:      "End-to-end duration of a leaderboard build.",
		Buckets:   m.histogramBuckets,
	})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests by path and status.",
	}, []string{"path", "status"})

	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration by path.",
		Buckets:   m.histogramBuckets,
	}, []string{"path"})
}

// Registry returns the custom registry the global manager records into.
func Registry() *prometheus.Registry { return customRegistry }

// Package-level facade over the global manager.

func RecordScanInvocation(outcome string) {
	if globalManager.enabled {
		globalManager.scanInvocations.WithLabelValues(outcome).Inc()
	}
}

func RecordScanPage() {
	if globalManager.enabled {
		globalManager.scanPages.Inc()
	}
}

func ObserveScanDuration(d time.Duration) {
	if globalManager.enabled {
		globalManager.scanDuration.Observe(d.Seconds())
	}
}

func RecordPlacementCounted() {
	if globalManager.enabled {
		globalManager.placementsCounted.Inc()
	}
}

func RecordPlacementDeduplicated() {
	if globalManager.enabled {
		globalManager.placementsDeduped.Inc()
	}
}

func RecordRenewalExcluded() {
	if globalManager.enabled {
		globalManager.renewalsExcluded.Inc()
	}
}

func RecordUnmatchedAttribution() {
	if globalManager.enabled {
		globalManager.unmatchedEmails.Inc()
	}
}

func RecordActivityPage(records int) {
	if globalManager.enabled {
		globalManager.activityPages.Inc()
		globalManager.activityRecords.Add(float64(records))
	}
}

func RecordRateLimitRetry() {
	if globalManager.enabled {
		globalManager.rateLimitRetries.Inc()
	}
}

func RecordUpstreamError(endpoint string) {
	if globalManager.enabled {
		globalManager.upstreamErrors.WithLabelValues(endpoint).Inc()
	}
}

func RecordCacheHit(cache string) {
	if globalManager.enabled {
		globalManager.cacheHits.WithLabelValues(cache).Inc()
	}
}

func RecordCacheMiss(cache string) {
	if globalManager.enabled {
		globalManager.cacheMisses.WithLabelValues(cache).Inc()
	}
}

func ObserveBuildDuration(d time.Duration) {
	if globalManager.enabled {
		globalManager.buildDuration.Observe(d.Seconds())
	}
}

func RecordHTTPRequest(path, status string, d time.Duration) {
	if globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(path, status).Inc()
		globalManager.httpRequestDuration.WithLabelValues(path).Observe(d.Seconds())
	}
}
