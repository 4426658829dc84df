package logging

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/mattn/go-isatty"
)

// LogLevel represents the severity of a log message
type LogLevel int32

const (
	// LevelDebug is the debug log level
	LevelDebug LogLevel = iota
	// LevelInfo is the info log level
	LevelInfo
	// LevelWarn is the warning log level
	LevelWarn
	// LevelError is the error log level
	LevelError
)

const (
	colorReset  = "\033[0m"
	colorGray   = "\033[90m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
)

var (
	currentLevel atomic.Int32
	levelOnce    sync.Once
	colorOutput  = isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
)

// ParseLevel converts a level name to a LogLevel. Unknown names map to
// LevelInfo and ok=false.
func ParseLevel(s string) (level LogLevel, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, true
	case "info":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	default:
		return LevelInfo, false
	}
}

func initLevel() {
	levelOnce.Do(func() {
		if debug := os.Getenv("DEBUG"); debug != "" {
			switch strings.ToLower(debug) {
			case "1", "true", "yes", "on":
				currentLevel.Store(int32(LevelDebug))
				return
			}
		}
		level, _ := ParseLevel(os.Getenv("LOG_LEVEL"))
		currentLevel.Store(int32(level))
	})
}

// GetLevel returns the current log level
func GetLevel() LogLevel {
	initLevel()
	return LogLevel(currentLevel.Load())
}

// SetLevel overrides the level read from the environment.
func SetLevel(level LogLevel) {
	initLevel()
	currentLevel.Store(int32(level))
}

// IsDebugEnabled returns true if debug logging is enabled
func IsDebugEnabled() bool {
	return GetLevel() <= LevelDebug
}

func output(level LogLevel, tag, color, format string, args ...interface{}) {
	if GetLevel() > level {
		return
	}
	if colorOutput && color != "" {
		tag = color + tag + colorReset
	}
	log.Printf(tag+" "+format, args...)
}

// Debug logs a debug message (only if DEBUG=true or LOG_LEVEL=debug)
func Debug(format string, args ...interface{}) {
	output(LevelDebug, "[DEBUG]", colorGray, format, args...)
}

// Info logs an info message
func Info(format string, args ...interface{}) {
	output(LevelInfo, "[INFO]", "", format, args...)
}

// Warn logs a warning message
func Warn(format string, args ...interface{}) {
	output(LevelWarn, "[WARN]", colorYellow, format, args...)
}

// Error logs an error message
func Error(format string, args ...interface{}) {
	output(LevelError, "[ERROR]", colorRed, format, args...)
}

// Fatal logs an error message and exits
func Fatal(format string, args ...interface{}) {
	log.Fatalf("[FATAL] "+format, args...)
}

// Component is a logger that prefixes every message with a component name,
// e.g. "[video] probe ok".
type Component string

// Debug logs a debug message tagged with the component.
func (c Component) Debug(format string, args ...interface{}) {
	Debug("["+string(c)+"] "+format, args...)
}

// Info logs an info message tagged with the component.
func (c Component) Info(format string, args ...interface{}) {
	Info("["+string(c)+"] "+format, args...)
}

// Warn logs a warning tagged with the component.
func (c Component) Warn(format string, args ...interface{}) {
	Warn("["+string(c)+"] "+format, args...)
}

// Error logs an error tagged with the component.
func (c Component) Error(format string, args ...interface{}) {
	Error("["+string(c)+"] "+format, args...)
}

// String returns the string representation of a log level
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("unknown(%d)", l)
	}
}
