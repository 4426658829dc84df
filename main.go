package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"media-derivatives/internal/handlers"
	"media-derivatives/internal/jobs"
	"media-derivatives/internal/logging"
	"media-derivatives/internal/media"
	"media-derivatives/internal/memory"
	"media-derivatives/internal/metrics"
	"media-derivatives/internal/middleware"
	"media-derivatives/internal/startup"
	"media-derivatives/internal/video"
	"media-derivatives/internal/workers"
)

func main() {
	startTime := time.Now()

	// GOMEMLIMIT first, before anything allocates much
	memResult := memory.ConfigureFromEnv()

	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}
	startup.LogMemoryConfig(memResult)

	metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion)
	metrics.InitializeMetrics()
	if config.MetricsEnabled {
		media.SetObserver(metrics.NewPipelineObserver())
	}

	if config.VipsEnabled {
		if err := media.InitVips(); err != nil {
			logging.Warn("libvips unavailable: %v", err)
		}
	}
	startup.LogVipsInit(config.VipsEnabled, media.IsVipsAvailable())

	monitor := memory.NewMonitor(memory.DefaultConfig())
	monitor.Start()

	capacity := config.MaxConcurrentJobs
	if capacity == 0 {
		capacity = workers.ForMixed(0)
	}
	limiter := jobs.NewLimiter(capacity, monitor)
	startup.LogJobsInit(capacity)

	collector := metrics.NewCollector(limiter, 15*time.Second)
	collector.Start()

	encoderConfig := media.EncoderConfig{
		MaxPixels:     config.MaxImagePixels,
		FFmpegTimeout: config.CommandTimeout,
	}
	if config.FFmpegAvailable {
		encoderConfig.FFmpegPath = config.FFmpegPath
	}
	encoder := media.NewEncoder(encoderConfig)

	sampler := video.NewSampler(video.SamplerConfig{
		TempDir:     config.TempDir,
		FFmpegPath:  config.FFmpegPath,
		FFprobePath: config.FFprobePath,
		Timeout:     config.CommandTimeout,
	})

	h := handlers.New(encoder, sampler, limiter, handlers.Options{
		MaxUploadBytes:  config.MaxUploadBytes,
		FFmpegAvailable: config.FFmpegAvailable,
		Memory:          monitor,
	})

	router := mux.NewRouter()
	router.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))
	h.RegisterRoutes(router, config.MetricsEnabled)
	startup.LogHTTPRoutes(router, config.LogHealthChecks)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	handler := middleware.RequestID(middleware.Logger(loggingConfig)(router))

	srv := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       5 * time.Minute,
		WriteTimeout:      0,
		IdleTimeout:       60 * time.Second,
	}

	go handleShutdown(srv, collector, monitor)

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		startup.LogFatal("Server error: %v", err)
	}
}

func handleShutdown(srv *http.Server, collector *metrics.Collector, monitor *memory.Monitor) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// In-flight derivations finish before their handles are released.
	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownStep("Stopping metrics collector")
	collector.Stop()
	startup.LogShutdownStepComplete("Metrics collector stopped")

	startup.LogShutdownStep("Stopping memory monitor")
	monitor.Stop()
	startup.LogShutdownStepComplete("Memory monitor stopped")

	if media.IsVipsAvailable() {
		startup.LogShutdownStep("Shutting down libvips")
		media.ShutdownVips()
		startup.LogShutdownStepComplete("libvips shut down")
	}

	startup.LogShutdownComplete()
}
