package startup

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"media-derivatives/internal/logging"
	"media-derivatives/internal/memory"
	"media-derivatives/internal/video"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// LoadConfig prints the banner, loads the configuration and prepares the
// temp directory and ffmpeg paths.
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	config, err := Load()
	if err != nil {
		return nil, err
	}
	logConfig(config)

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")
	if err := ensureDirectory(config.TempDir); err != nil {
		return nil, fmt.Errorf("temp directory error: %w", err)
	}
	if err := testWriteAccess(config.TempDir); err != nil {
		return nil, fmt.Errorf("temp directory is not writable (required for video thumbnails): %w", err)
	}
	logging.Info("  [OK] Temp directory is writable: %s", config.TempDir)

	CheckFFmpeg(config)

	logging.Info("")
	logging.Info("  Feature availability:")
	logging.Info("    Image thumbnails: ENABLED")
	logging.Info("    Video thumbnails: %s", enabledString(config.FFmpegAvailable))
	logging.Info("    libvips:          %s", enabledString(config.VipsEnabled))
	logging.Info("    Metrics:          %s", enabledString(config.MetricsEnabled))

	return config, nil
}

func logConfig(config *Config) {
	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")
	if config.Source != "" {
		logging.Info("  CONFIG_FILE:         %s", config.Source)
	}
	logging.Info("  PORT:                %s", config.Port)
	logging.Info("  METRICS_ENABLED:     %v", config.MetricsEnabled)
	logging.Info("  LOG_HEALTH_CHECKS:   %v", config.LogHealthChecks)
	logging.Info("  LOG_LEVEL:           %s", logging.GetLevel())
	logging.Info("  FFMPEG_PATH:         %s", orDefault(config.FFmpegPath, "(search)"))
	logging.Info("  FFPROBE_PATH:        %s", orDefault(config.FFprobePath, "(derive)"))
	logging.Info("  COMMAND_TIMEOUT:     %v", config.CommandTimeout)
	logging.Info("  TEMP_DIR:            %s", config.TempDir)
	logging.Info("  MAX_IMAGE_PIXELS:    %d", config.MaxImagePixels)
	logging.Info("  MAX_UPLOAD_BYTES:    %s", memory.FormatBytes(config.MaxUploadBytes))
	if config.MaxConcurrentJobs > 0 {
		logging.Info("  MAX_CONCURRENT_JOBS: %d", config.MaxConcurrentJobs)
	} else {
		logging.Info("  MAX_CONCURRENT_JOBS: auto")
	}
	logging.Info("  VIPS_ENABLED:        %v", config.VipsEnabled)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

// CheckFFmpeg resolves the ffmpeg and ffprobe binaries and records whether
// video thumbnails can work.
func CheckFFmpeg(config *Config) {
	path, err := video.FindFFmpeg(config.FFmpegPath)
	if err != nil {
		logging.Warn("  FFmpeg check failed: %v", err)
		logging.Warn("  Video thumbnails will fail until ffmpeg is installed")
		config.FFmpegAvailable = false
		return
	}
	config.FFmpegPath = path
	config.FFprobePath = video.ResolveFFprobeBin(config.FFprobePath, path)
	config.FFmpegAvailable = true

	logging.Debug("  FFmpeg path: %s", path)
	if config.FFprobePath != "" {
		logging.Debug("  FFprobe path: %s", config.FFprobePath)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	output, err := exec.CommandContext(ctx, path, "-version").Output()
	if err != nil {
		logging.Warn("  Failed to get ffmpeg version: %v", err)
		return
	}
	if line, _, _ := strings.Cut(string(output), "\n"); line != "" {
		logging.Info("  [OK] %s", strings.TrimSpace(line))
	}
}

// LogMemoryConfig logs the GOMEMLIMIT configuration
func LogMemoryConfig(result memory.ConfigResult) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("MEMORY CONFIGURATION")
	logging.Info("------------------------------------------------------------")
	switch result.Source {
	case "GOMEMLIMIT":
		logging.Info("  GOMEMLIMIT:      %s (from environment)", memory.FormatBytes(result.GoMemLimit))
	case "MEMORY_LIMIT":
		logging.Info("  Container limit: %s", memory.FormatBytes(result.ContainerLimit))
		logging.Info("  GOMEMLIMIT:      %s (%.0f%%)", memory.FormatBytes(result.GoMemLimit), result.Ratio*100)
	default:
		logging.Info("  GOMEMLIMIT:      not configured")
		logging.Info("  (set MEMORY_LIMIT to enable memory backpressure)")
	}
}

// LogVipsInit logs the libvips decoder state
func LogVipsInit(enabled, available bool) {
	switch {
	case !enabled:
		logging.Info("  libvips decoding disabled (VIPS_ENABLED=false)")
	case available:
		logging.Info("  [OK] libvips initialized")
	default:
		logging.Warn("  libvips unavailable, HEIC/AVIF sources will use ffmpeg")
	}
}

// LogJobsInit logs the job limiter size
func LogJobsInit(capacity int) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("PIPELINE INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Concurrent jobs: %d", capacity)
}

// GetRoutes extracts all registered routes from a mux.Router
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return err
		}

		methods, err := route.GetMethods()
		if err != nil {
			methods = []string{"*"}
		}

		for _, method := range methods {
			routes = append(routes, RouteInfo{
				Method: method,
				Path:   pathTemplate,
				Name:   route.GetName(),
			})
		}
		return nil
	})

	return routes, err
}

// LogHTTPRoutes logs all registered HTTP routes at debug level
func LogHTTPRoutes(router *mux.Router, logHealthChecks bool) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("HTTP SERVER SETUP")
	logging.Info("------------------------------------------------------------")

	if logging.IsDebugEnabled() {
		routes, err := GetRoutes(router)
		if err != nil {
			logging.Warn("error walking routes: %v", err)
		}

		logging.Debug("  Registered routes (%d total):", len(routes))

		groups := make(map[string][]RouteInfo)
		for _, route := range routes {
			prefix := getRouteGroup(route.Path)
			groups[prefix] = append(groups[prefix], route)
		}

		groupKeys := make([]string, 0, len(groups))
		for k := range groups {
			groupKeys = append(groupKeys, k)
		}
		sort.Strings(groupKeys)

		for _, group := range groupKeys {
			if group != "" {
				logging.Debug("  [%s]", group)
			} else {
				logging.Debug("  [root]")
			}
			for _, route := range groups[group] {
				logging.Debug("    %-6s %s", route.Method, route.Path)
			}
		}
	}

	logging.Info("  HTTP logging enabled")
	if logHealthChecks {
		logging.Info("    Health check logging: ON")
	} else {
		logging.Info("    Health check logging: OFF (set LOG_HEALTH_CHECKS=true to enable)")
	}
}

// getRouteGroup extracts a group name from a route path
func getRouteGroup(path string) string {
	path = strings.TrimPrefix(path, "/")

	parts := strings.SplitN(path, "/", 2)
	first := parts[0]

	if first == "api" && len(parts) > 1 {
		subParts := strings.SplitN(parts[1], "/", 2)
		return "api/" + subParts[0]
	}

	return first
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	Port            string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted logs successful server start with all endpoint information
func LogServerStarted(config ServerConfig) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SERVER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("")
	logging.Info("  Endpoints:")
	logging.Info("    Thumbnails:    http://0.0.0.0:%s/api/thumbnail", config.Port)
	if config.MetricsEnabled {
		logging.Info("    Metrics:       http://0.0.0.0:%s/metrics", config.Port)
	} else {
		logging.Info("    Metrics:       DISABLED")
	}
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop the server")
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

func printBanner() {
	banner := `
------------------------------------------------------------
   __  __                 _         _
  |  \/  | ___  _ _  __ _| |__  _ _(_)__ _ ___
  | |\/| |/ _ \| ' \/ _' | '_ \| '_| / _' (_-<
  |_|  |_|\___/|_||_\__,_|_.__/|_| |_\__,_/__/   derivatives

------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		logging.Info("  (Container CPU limit detected)")
	}

	if logging.IsDebugEnabled() {
		logging.Debug("  Goroutines:      %d", runtime.NumGoroutine())
		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

func ensureDirectory(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		logging.Debug("    Directory does not exist, creating...")
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}
	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
	}
	return nil
}
