// Package metrics provides Prometheus instrumentation for the media-derivatives
// service.
//
// All metrics are prefixed with "media_derivatives_" and registered with the
// default Prometheus registry through promauto.
//
// # Metric Categories
//
// ## HTTP Metrics
//
// Track HTTP request performance and error rates:
//   - HTTPRequestsTotal: Counter of total requests by method, path, and status
//   - HTTPRequestDuration: Histogram of request duration by method and path
//   - HTTPRequestsInFlight: Gauge of currently processing requests
//
// ## Derivation Metrics
//
// Recorded through the media.Observer returned by NewPipelineObserver:
//   - DerivationsTotal: Counter by kind (image/video) and status
//   - DerivationDuration: Histogram of end-to-end time by kind
//   - StageDuration: Histogram by kind and stage (decode, encode, probe,
//     capture, rasterize, compress)
//   - OutputBytes: Histogram of encoded JPEG sizes by kind
//   - DecodeHandlesOpen: Gauge of decode handles held by kind. It must read
//     0 whenever the service is idle; anything else is a leak.
//
// ## Job Metrics
//
//   - JobsActive, JobsWaiting, JobsCapacity: Gauges updated by [Collector]
//   - JobsRejectedTotal: Counter of jobs that never got a slot, by reason
//   - JobWaitDuration: Histogram of time spent waiting for a slot
//
// ## Memory Metrics
//
//   - GoMemLimitBytes: Gauge of configured GOMEMLIMIT
//   - MemoryUsageRatio: Gauge of heap allocation as ratio of limit (0.0-1.0)
//   - MemoryPaused: Gauge indicating if job admission is paused
//   - MemoryGCPauses: Counter of times admission was paused for memory
//
// # Usage
//
// Install the observer once at startup and expose the registry:
//
//	media.SetObserver(metrics.NewPipelineObserver())
//	metrics.InitializeMetrics()
//	router.Handle("/metrics", promhttp.Handler())
//
// # Prometheus Queries
//
// Video failure rate:
//
//	sum(rate(media_derivatives_derivations_total{kind="video",status!="success"}[5m])) /
//	sum(rate(media_derivatives_derivations_total{kind="video"}[5m]))
//
// P95 capture latency:
//
//	histogram_quantile(0.95, sum(rate(media_derivatives_stage_duration_seconds_bucket{stage="capture"}[5m])) by (le))
//
// Leaked handles:
//
//	max_over_time(media_derivatives_decode_handles_open[10m]) > 0 and media_derivatives_jobs_active == 0
package metrics
