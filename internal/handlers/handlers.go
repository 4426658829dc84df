package handlers

import (
	"context"
	"time"

	"github.com/gorilla/mux"

	"media-derivatives/internal/thumbnail"
)

// JobLimiter bounds concurrent derivations. *jobs.Limiter implements it.
type JobLimiter interface {
	Acquire(ctx context.Context) (release func(), err error)
}

// MemoryStatus reports memory pressure. *memory.Monitor implements it.
type MemoryStatus interface {
	IsPaused() bool
}

// Options configures Handlers.
type Options struct {
	// MaxUploadBytes bounds request bodies. 0 means unbounded.
	MaxUploadBytes int64

	// FFmpegAvailable is reported by the health check; without ffmpeg
	// the service is degraded.
	FFmpegAvailable bool

	// Memory is optional.
	Memory MemoryStatus
}

type Handlers struct {
	images    thumbnail.ImageCompressor
	videos    thumbnail.VideoSampler
	generator *thumbnail.Generator
	jobs      JobLimiter
	opts      Options
	startTime time.Time
}

func New(images thumbnail.ImageCompressor, videos thumbnail.VideoSampler, limiter JobLimiter, opts Options) *Handlers {
	return &Handlers{
		images:    images,
		videos:    videos,
		generator: thumbnail.NewGenerator(images, videos),
		jobs:      limiter,
		opts:      opts,
		startTime: time.Now(),
	}
}

// RegisterRoutes adds every endpoint to r.
func (h *Handlers) RegisterRoutes(r *mux.Router, metricsEnabled bool) {
	r.HandleFunc("/health", h.HealthCheck).Methods("GET", "HEAD").Name("health")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD").Name("livez")
	r.HandleFunc("/version", h.GetVersion).Methods("GET").Name("version")
	if metricsEnabled {
		r.Handle("/metrics", h.MetricsHandler()).Methods("GET").Name("metrics")
	}

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/thumbnail", h.Thumbnail).Methods("POST").Name("thumbnail")
	api.HandleFunc("/thumbnail/image", h.ImageThumbnail).Methods("POST").Name("imageThumbnail")
	api.HandleFunc("/thumbnail/video", h.VideoThumbnail).Methods("POST").Name("videoThumbnail")
}
