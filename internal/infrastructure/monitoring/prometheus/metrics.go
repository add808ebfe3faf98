package prometheus

import (
	"fmt"
	"time"
)

// AppMetrics holds every metric emitted by the discovery platform, grouped by
// layer.  All handles are pre-registered at startup so hot paths only pay for
// label resolution.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Discovery run lifecycle
	RunsTotal       CounterVec
	RunDuration     HistogramVec
	RunsActive      GaugeVec
	RunQueueDepth   GaugeVec
	ResultSolutions HistogramVec

	// Evolutionary engine
	GenerationsTotal    CounterVec
	GenerationDuration  HistogramVec
	EvaluationsTotal    CounterVec
	EvaluationDuration  HistogramVec
	EvalWorkersActive   GaugeVec
	ArchiveSize         GaugeVec
	EvaluationCacheHits CounterVec

	// Network coverage scoring
	CoverageScoreDuration HistogramVec
	PermutationsTotal     CounterVec
	DegenerateInputsTotal CounterVec

	// Interaction network
	NetworkNodesTotal    GaugeVec
	NetworkEdgesTotal    GaugeVec
	NetworkLoadDuration  HistogramVec
	NetworkQueryDuration HistogramVec

	// Infrastructure
	DBConnectionPoolSize   GaugeVec
	DBConnectionPoolActive GaugeVec
	DBQueryDuration        HistogramVec
	CacheHitsTotal         CounterVec
	CacheMissesTotal       CounterVec
	MessageQueueDepth      GaugeVec
	MessageProcessDuration HistogramVec
	ArtifactUploadDuration HistogramVec

	// System health
	ServiceUptime     GaugeVec
	HealthCheckStatus GaugeVec
	ErrorsTotal       CounterVec
}

// Default buckets tuned per layer.  Engine runs span seconds to hours;
// individual evaluations span milliseconds to seconds.
var (
	DefaultHTTPDurationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultRunDurationBuckets  = []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800, 3600, 7200}
	DefaultEvalDurationBuckets = []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10, 30}
	DefaultDBDurationBuckets   = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5}
	DefaultSolutionCountBuckets = []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000}
)

// NewAppMetrics registers all platform metrics on the collector and returns
// the populated handle struct.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	// HTTP
	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests", "method", "path")

	// Discovery run lifecycle
	m.RunsTotal = collector.RegisterCounter("discovery_runs_total", "Discovery runs by terminal status", "status")
	m.RunDuration = collector.RegisterHistogram("discovery_run_duration_seconds", "End-to-end discovery run duration", DefaultRunDurationBuckets, "status")
	m.RunsActive = collector.RegisterGauge("discovery_runs_active", "Currently executing discovery runs")
	m.RunQueueDepth = collector.RegisterGauge("discovery_run_queue_depth", "Queued discovery run requests")
	m.ResultSolutions = collector.RegisterHistogram("discovery_result_solutions", "Pareto-optimal solutions per completed run", DefaultSolutionCountBuckets)

	// Evolutionary engine
	m.GenerationsTotal = collector.RegisterCounter("engine_generations_total", "Completed generations across all runs")
	m.GenerationDuration = collector.RegisterHistogram("engine_generation_duration_seconds", "Wall time per generation", DefaultEvalDurationBuckets)
	m.EvaluationsTotal = collector.RegisterCounter("engine_evaluations_total", "Fitness evaluations performed", "outcome")
	m.EvaluationDuration = collector.RegisterHistogram("engine_evaluation_duration_seconds", "Single fitness evaluation duration", DefaultEvalDurationBuckets)
	m.EvalWorkersActive = collector.RegisterGauge("engine_eval_workers_active", "Fitness evaluation workers in flight")
	m.ArchiveSize = collector.RegisterGauge("engine_archive_size", "Non-dominated archive cardinality")
	m.EvaluationCacheHits = collector.RegisterCounter("engine_evaluation_cache_hits_total", "Memoised fitness evaluations served from cache")

	// Network coverage scoring
	m.CoverageScoreDuration = collector.RegisterHistogram("coverage_score_duration_seconds", "Network coverage scoring duration incl. permutation test", DefaultEvalDurationBuckets)
	m.PermutationsTotal = collector.RegisterCounter("coverage_permutations_total", "Degree-preserving permutations drawn")
	m.DegenerateInputsTotal = collector.RegisterCounter("coverage_degenerate_inputs_total", "Coverage scores rejected as degenerate", "reason")

	// Interaction network
	m.NetworkNodesTotal = collector.RegisterGauge("network_nodes_total", "Interaction network node count")
	m.NetworkEdgesTotal = collector.RegisterGauge("network_edges_total", "Interaction network edge count")
	m.NetworkLoadDuration = collector.RegisterHistogram("network_load_duration_seconds", "Interaction network load duration", DefaultRunDurationBuckets, "source")
	m.NetworkQueryDuration = collector.RegisterHistogram("network_query_duration_seconds", "Graph store query duration", DefaultDBDurationBuckets, "query_type")

	// Infrastructure
	m.DBConnectionPoolSize = collector.RegisterGauge("db_pool_size", "Database connection pool size", "db")
	m.DBConnectionPoolActive = collector.RegisterGauge("db_pool_active", "Database active connections", "db")
	m.DBQueryDuration = collector.RegisterHistogram("db_query_duration_seconds", "Database query duration", DefaultDBDurationBuckets, "db", "operation")
	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")
	m.MessageQueueDepth = collector.RegisterGauge("mq_depth", "Message queue depth", "queue")
	m.MessageProcessDuration = collector.RegisterHistogram("mq_process_duration_seconds", "Message processing duration", DefaultHTTPDurationBuckets, "queue", "message_type")
	m.ArtifactUploadDuration = collector.RegisterHistogram("artifact_upload_duration_seconds", "Result artifact upload duration", DefaultHTTPDurationBuckets, "bucket")

	// System health
	m.ServiceUptime = collector.RegisterGauge("service_uptime_seconds", "Service uptime", "service")
	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Total errors", "component", "error_type", "severity")

	return m
}

// Helpers

func RecordHTTPRequest(metrics *AppMetrics, method, path string, statusCode int, duration time.Duration) {
	status := fmt.Sprintf("%d", statusCode)
	metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func RecordRunCompleted(metrics *AppMetrics, status string, duration time.Duration, nSolutions int) {
	metrics.RunsTotal.WithLabelValues(status).Inc()
	metrics.RunDuration.WithLabelValues(status).Observe(duration.Seconds())
	if nSolutions >= 0 {
		metrics.ResultSolutions.WithLabelValues().Observe(float64(nSolutions))
	}
}

func RecordGeneration(metrics *AppMetrics, duration time.Duration, nEvals, archiveSize int) {
	metrics.GenerationsTotal.WithLabelValues().Inc()
	metrics.GenerationDuration.WithLabelValues().Observe(duration.Seconds())
	metrics.EvaluationsTotal.WithLabelValues("evaluated").Add(float64(nEvals))
	metrics.ArchiveSize.WithLabelValues().Set(float64(archiveSize))
}

func RecordDegenerateInput(metrics *AppMetrics, reason string) {
	metrics.DegenerateInputsTotal.WithLabelValues(reason).Inc()
}

func RecordDBQuery(metrics *AppMetrics, db, operation string, duration time.Duration, err error) {
	metrics.DBQueryDuration.WithLabelValues(db, operation).Observe(duration.Seconds())
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues(db, "query_error", "error").Inc()
	}
}

func RecordCacheAccess(metrics *AppMetrics, cache string, hit bool) {
	if hit {
		metrics.CacheHitsTotal.WithLabelValues(cache).Inc()
	} else {
		metrics.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
}

func RecordError(metrics *AppMetrics, component, errorType, severity string) {
	metrics.ErrorsTotal.WithLabelValues(component, errorType, severity).Inc()
}

//Personal.AI order the ending
