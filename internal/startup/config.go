package startup

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"media-derivatives/internal/logging"
	"media-derivatives/internal/media"
)

// ConfigFileEnv names the optional YAML config file. Environment variables
// override values read from it.
const ConfigFileEnv = "CONFIG_FILE"

// DefaultMaxUploadBytes bounds request bodies.
const DefaultMaxUploadBytes = 256 << 20

// Config holds all application configuration
type Config struct {
	Port              string        `yaml:"port"`
	MetricsEnabled    bool          `yaml:"metrics_enabled"`
	LogHealthChecks   bool          `yaml:"log_health_checks"`
	LogLevel          string        `yaml:"log_level"`
	FFmpegPath        string        `yaml:"ffmpeg_path"`
	FFprobePath       string        `yaml:"ffprobe_path"`
	CommandTimeout    time.Duration `yaml:"command_timeout"`
	TempDir           string        `yaml:"temp_dir"`
	MaxImagePixels    int           `yaml:"max_image_pixels"`
	MaxUploadBytes    int64         `yaml:"max_upload_bytes"`
	MaxConcurrentJobs int           `yaml:"max_concurrent_jobs"`
	VipsEnabled       bool          `yaml:"vips_enabled"`

	// Source is the config file path, empty when only env was used.
	Source string `yaml:"-"`

	// Set by CheckFFmpeg.
	FFmpegAvailable bool `yaml:"-"`
}

// Defaults returns a Config with default values. MaxConcurrentJobs 0
// means "size from the CPU count".
func Defaults() Config {
	return Config{
		Port:            "8080",
		MetricsEnabled:  true,
		LogHealthChecks: true,
		CommandTimeout:  60 * time.Second,
		TempDir:         os.TempDir(),
		MaxImagePixels:  media.DefaultMaxPixels,
		MaxUploadBytes:  DefaultMaxUploadBytes,
		VipsEnabled:     true,
	}
}

// Load reads CONFIG_FILE when set, applies environment overrides and
// validates the result. It does not log or touch the filesystem beyond
// reading the config file.
func Load() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
		cfg.Source = path
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.MetricsEnabled = getEnvBool("METRICS_ENABLED", cfg.MetricsEnabled)
	cfg.LogHealthChecks = getEnvBool("LOG_HEALTH_CHECKS", cfg.LogHealthChecks)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.FFmpegPath = getEnv("FFMPEG_PATH", cfg.FFmpegPath)
	cfg.FFprobePath = getEnv("FFPROBE_PATH", cfg.FFprobePath)
	cfg.TempDir = getEnv("TEMP_DIR", cfg.TempDir)
	cfg.VipsEnabled = getEnvBool("VIPS_ENABLED", cfg.VipsEnabled)

	if v := os.Getenv("COMMAND_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid COMMAND_TIMEOUT %q: %w", v, err)
		}
		cfg.CommandTimeout = d
	}

	var err error
	if cfg.MaxImagePixels, err = getEnvInt("MAX_IMAGE_PIXELS", cfg.MaxImagePixels); err != nil {
		return err
	}
	if cfg.MaxConcurrentJobs, err = getEnvInt("MAX_CONCURRENT_JOBS", cfg.MaxConcurrentJobs); err != nil {
		return err
	}
	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid MAX_UPLOAD_BYTES %q: %w", v, err)
		}
		cfg.MaxUploadBytes = n
	}
	return nil
}

// Validate checks value ranges and applies the log level.
func (c *Config) Validate() error {
	if _, err := strconv.ParseUint(c.Port, 10, 16); err != nil {
		return fmt.Errorf("invalid port %q", c.Port)
	}
	if c.MaxImagePixels <= 0 {
		return fmt.Errorf("max image pixels must be positive, got %d", c.MaxImagePixels)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive, got %d", c.MaxUploadBytes)
	}
	if c.MaxConcurrentJobs < 0 {
		return fmt.Errorf("max concurrent jobs cannot be negative, got %d", c.MaxConcurrentJobs)
	}
	if c.CommandTimeout < 0 {
		return fmt.Errorf("command timeout cannot be negative, got %v", c.CommandTimeout)
	}

	// Empty keeps the level chosen by LOG_LEVEL or DEBUG.
	if c.LogLevel != "" {
		level, ok := logging.ParseLevel(c.LogLevel)
		if !ok {
			return fmt.Errorf("invalid log level %q", c.LogLevel)
		}
		logging.SetLevel(level)
	}

	if c.TempDir == "" {
		c.TempDir = os.TempDir()
	}
	abs, err := filepath.Abs(c.TempDir)
	if err != nil {
		return fmt.Errorf("failed to resolve temp directory path: %w", err)
	}
	c.TempDir = abs
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}
