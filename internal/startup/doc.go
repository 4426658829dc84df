// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// Configuration is read from an optional YAML file named by CONFIG_FILE and
// then from environment variables, which take precedence:
//
//   - PORT: HTTP server port, also serving /metrics (default: 8080)
//   - METRICS_ENABLED: Expose Prometheus metrics (default: true)
//   - LOG_LEVEL: debug, info, warn, error (default: info)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//   - FFMPEG_PATH: ffmpeg binary (default: PATH and common locations)
//   - FFPROBE_PATH: ffprobe binary (default: next to ffmpeg, then PATH)
//   - COMMAND_TIMEOUT: Bound on each ffmpeg/ffprobe run (default: 60s)
//   - TEMP_DIR: Parent of per-call video handle directories (default: os.TempDir)
//   - MAX_IMAGE_PIXELS: Largest source image decoded; video frames are not limited (default: 40000000)
//   - MAX_UPLOAD_BYTES: Largest request body accepted (default: 256MiB)
//   - MAX_CONCURRENT_JOBS: Derivations in flight (default: from CPU count)
//   - VIPS_ENABLED: Use libvips as a fallback decoder (default: true)
//   - MEMORY_LIMIT, MEMORY_RATIO, GOMEMLIMIT: see package memory
//
// The YAML keys are the lower-case variable names, e.g. max_image_pixels.
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo].
//
// # Example Usage
//
//	config, err := startup.LoadConfig()
//	if err != nil {
//	    startup.LogFatal("Configuration error: %v", err)
//	}
//	startup.LogMemoryConfig(memory.ConfigureFromEnv())
//	...
//	startup.LogServerStarted(startup.ServerConfig{
//	    Port:            config.Port,
//	    MetricsEnabled:  config.MetricsEnabled,
//	    StartupDuration: time.Since(startTime),
//	})
package startup
