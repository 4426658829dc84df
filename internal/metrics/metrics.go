package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_derivatives_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_derivatives_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_derivatives_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Derivation metrics
var (
	DerivationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_derivatives_derivations_total",
			Help: "Total number of derivative generations by media kind and outcome",
		},
		[]string{"kind", "status"},
	)

	DerivationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_derivatives_derivation_duration_seconds",
			Help:    "End-to-end derivative generation time in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"kind"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_derivatives_stage_duration_seconds",
			Help:    "Duration of each pipeline stage in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"kind", "stage"},
	)

	OutputBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_derivatives_output_bytes",
			Help:    "Size of encoded derivatives in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 2, 10), // 1KB .. 512KB
		},
		[]string{"kind"},
	)

	DecodeHandlesOpen = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_derivatives_decode_handles_open",
			Help: "Decode handles currently held; returns to 0 when idle",
		},
		[]string{"kind"},
	)
)

// Job admission metrics
var (
	JobsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_derivatives_jobs_active",
			Help: "Number of derivation jobs currently holding a slot",
		},
	)

	JobsWaiting = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_derivatives_jobs_waiting",
			Help: "Number of derivation jobs waiting for a slot",
		},
	)

	JobsCapacity = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_derivatives_jobs_capacity",
			Help: "Maximum number of concurrent derivation jobs",
		},
	)

	JobsRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_derivatives_jobs_rejected_total",
			Help: "Jobs that never obtained a slot, by reason",
		},
		[]string{"reason"}, // "canceled", "memory"
	)

	JobWaitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_derivatives_job_wait_seconds",
			Help:    "Time spent waiting for a job slot",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		},
	)
)

// Memory metrics
var (
	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_derivatives_memory_usage_ratio",
			Help: "Heap allocation as a fraction of the configured memory limit",
		},
	)

	MemoryPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_derivatives_memory_paused",
			Help: "1 while new jobs are held back for memory pressure",
		},
	)

	MemoryGCPauses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_derivatives_memory_gc_pauses_total",
			Help: "Number of times memory pressure paused job admission",
		},
	)

	GoMemLimitBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_derivatives_go_memlimit_bytes",
			Help: "Configured GOMEMLIMIT in bytes (0 when unset)",
		},
	)
)

// Filesystem retry metrics
var (
	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_derivatives_filesystem_stale_errors_total",
			Help: "NFS stale file handle errors seen while reading sources",
		},
		[]string{"operation"},
	)

	FilesystemRetryOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_derivatives_filesystem_retry_outcomes_total",
			Help: "Filesystem operations that needed retries, by final outcome",
		},
		[]string{"operation", "outcome"}, // outcome: "success", "failure"
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_derivatives_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
