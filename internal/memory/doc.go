// Package memory sizes Go's heap for a container and holds back new
// derivation jobs while the heap is near that size.
//
// Decoding a large image or a 4K video frame allocates tens of megabytes at
// once, and ffmpeg needs memory outside the Go heap. Call [ConfigureFromEnv]
// early in main to derive GOMEMLIMIT from the container limit, then run a
// [Monitor] and have job admission call [Monitor.WaitIfPaused].
//
// # Environment Variables
//
//   - GOMEMLIMIT: Standard Go environment variable. If set, takes precedence
//     over all other configuration.
//   - MEMORY_LIMIT: Container memory limit in bytes, typically from the
//     Kubernetes Downward API (resourceFieldRef: limits.memory).
//   - MEMORY_RATIO: Fraction of MEMORY_LIMIT given to the Go heap, in (0, 1].
//     Default 0.85; lower it when many ffmpeg processes run concurrently.
//
// # Backpressure
//
// The Monitor samples heap allocation every CheckInterval. At
// CriticalWaterMark it pauses admission and triggers a GC; admission resumes
// once usage falls below HighWaterMark. Without a limit the Monitor never
// pauses.
package memory
