package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds all application metrics.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Discovery import
	ImportsTotal         CounterVec
	ImportedRequestsTotal CounterVec
	ImportDuration       HistogramVec

	// Suggestion engine
	SuggestionRunsTotal     CounterVec
	SuggestionDuration      HistogramVec
	SuggestionCandidateCount HistogramVec
	EmbeddingCallsTotal     CounterVec

	// Mapping lifecycle
	MappingsCreatedTotal  CounterVec
	MappingReviewsTotal   CounterVec
	CoverageRecomputesTotal CounterVec

	// Infrastructure
	DBQueryDuration  HistogramVec
	CacheHitsTotal   CounterVec
	CacheMissesTotal CounterVec
	EventsPublishedTotal CounterVec

	// System health
	HealthCheckStatus GaugeVec
	ErrorsTotal       CounterVec
}

// Default buckets
var (
	DefaultHTTPDurationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultDBDurationBuckets   = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5}
	DefaultCountBuckets        = []float64{0, 1, 5, 10, 25, 50, 100, 250}
)

// NewAppMetrics registers all metrics and returns the AppMetrics struct.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests", "method")

	m.ImportsTotal = collector.RegisterCounter("discovery_imports_total", "Discovery import batches", "result")
	m.ImportedRequestsTotal = collector.RegisterCounter("discovery_imported_requests_total", "Requests persisted by import", "type")
	m.ImportDuration = collector.RegisterHistogram("discovery_import_duration_seconds", "Discovery import duration", DefaultHTTPDurationBuckets, "result")

	m.SuggestionRunsTotal = collector.RegisterCounter("suggestion_runs_total", "Suggestion engine runs", "mode", "result")
	m.SuggestionDuration = collector.RegisterHistogram("suggestion_duration_seconds", "Suggestion engine run duration", DefaultHTTPDurationBuckets, "mode")
	m.SuggestionCandidateCount = collector.RegisterHistogram("suggestion_candidate_count", "Candidates returned per run", DefaultCountBuckets, "mode")
	m.EmbeddingCallsTotal = collector.RegisterCounter("embedding_calls_total", "Embedding API calls", "status")

	m.MappingsCreatedTotal = collector.RegisterCounter("mappings_created_total", "Document mappings created", "source")
	m.MappingReviewsTotal = collector.RegisterCounter("mapping_reviews_total", "Mapping review decisions", "decision")
	m.CoverageRecomputesTotal = collector.RegisterCounter("coverage_recomputes_total", "Coverage recomputations", "status")

	m.DBQueryDuration = collector.RegisterHistogram("db_query_duration_seconds", "Database query duration", DefaultDBDurationBuckets, "operation")
	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")
	m.EventsPublishedTotal = collector.RegisterCounter("events_published_total", "Domain events published", "topic", "status")

	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Total errors", "component", "code")

	return m
}

// Helpers

func RecordHTTPRequest(metrics *AppMetrics, method, path string, statusCode int, duration time.Duration) {
	if metrics == nil {
		return
	}
	metrics.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func RecordImport(metrics *AppMetrics, imported, failed int, duration time.Duration) {
	if metrics == nil {
		return
	}
	result := "success"
	if failed > 0 {
		result = "partial"
	}
	if imported == 0 {
		result = "failure"
	}
	metrics.ImportsTotal.WithLabelValues(result).Inc()
	metrics.ImportDuration.WithLabelValues(result).Observe(duration.Seconds())
}

func RecordSuggestionRun(metrics *AppMetrics, mode string, candidates int, err error, duration time.Duration) {
	if metrics == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	metrics.SuggestionRunsTotal.WithLabelValues(mode, result).Inc()
	metrics.SuggestionDuration.WithLabelValues(mode).Observe(duration.Seconds())
	if err == nil {
		metrics.SuggestionCandidateCount.WithLabelValues(mode).Observe(float64(candidates))
	}
}

func RecordCacheAccess(metrics *AppMetrics, cache string, hit bool) {
	if metrics == nil {
		return
	}
	if hit {
		metrics.CacheHitsTotal.WithLabelValues(cache).Inc()
	} else {
		metrics.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
}

func RecordError(metrics *AppMetrics, component, code string) {
	if metrics == nil {
		return
	}
	metrics.ErrorsTotal.WithLabelValues(component, code).Inc()
}
