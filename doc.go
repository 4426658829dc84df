// Package main runs the media derivatives HTTP service.
//
// The service turns uploaded images and videos into small JPEG thumbnails.
// A still image is decoded, scaled to fit 400x300 (or the requested box)
// and re-encoded. A video is written to a per-request temp directory,
// probed for duration and size, seeked to min(t, duration/2) and captured
// with ffmpeg, and the captured frame is re-encoded the same way.
//
// # Application Lifecycle
//
//  1. Memory Configuration: Sets GOMEMLIMIT from MEMORY_LIMIT
//  2. Configuration Loading: CONFIG_FILE, then environment variables
//  3. Component Initialization:
//     - libvips (optional fallback decoder for HEIC/AVIF)
//     - Memory Monitor: pauses job admission under heap pressure
//     - Job Limiter: bounds concurrent derivations
//     - Metrics Collector: exports limiter state every 15s
//  4. HTTP Server Setup: routes, request IDs, logging and metrics middleware
//  5. Graceful Shutdown: SIGINT/SIGTERM drains requests, then stops components
//
// # HTTP API
//
//   - POST /api/thumbnail/image?maxWidth=&maxHeight=&quality=
//   - POST /api/thumbnail/video?t=
//   - POST /api/thumbnail (kind from Content-Type, or sniffed)
//   - GET /health, /livez, /version, /metrics
//
// The request body is the media buffer and Content-Type its MIME type. A
// successful response is image/jpeg with X-Thumbnail-Width and
// X-Thumbnail-Height headers. Every thumbnail response, failed or not,
// carries X-Thumbnail-Kind. Undecodable input answers 422, a busy server
// 503.
//
// # Build Requirements
//
//   - libvips (CGO, through govips)
//   - FFmpeg and ffprobe at runtime for video thumbnails
//
// The cmd/thumbnail tool runs the same pipeline from the command line.
package main
