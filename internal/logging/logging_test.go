package logging

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevWriter, prevFlags := log.Writer(), log.Flags()
	prevColor := colorOutput
	log.SetOutput(&buf)
	log.SetFlags(0)
	colorOutput = false
	t.Cleanup(func() {
		log.SetOutput(prevWriter)
		log.SetFlags(prevFlags)
		colorOutput = prevColor
	})
	return &buf
}

func withLevel(t *testing.T, level LogLevel) {
	t.Helper()
	prev := GetLevel()
	SetLevel(level)
	t.Cleanup(func() { SetLevel(prev) })
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
		ok       bool
	}{
		{"debug", LevelDebug, true},
		{"info", LevelInfo, true},
		{"warn", LevelWarn, true},
		{"warning", LevelWarn, true},
		{"error", LevelError, true},
		{"DEBUG", LevelDebug, true},
		{"  error ", LevelError, true},
		{"", LevelInfo, false},
		{"verbose", LevelInfo, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseLevel(tt.input)
			if got != tt.expected || ok != tt.ok {
				t.Errorf("ParseLevel(%q) = (%v, %v), want (%v, %v)", tt.input, got, ok, tt.expected, tt.ok)
			}
		})
	}
}

func TestLogLevelConstants(t *testing.T) {
	levels := []LogLevel{LevelDebug, LevelInfo, LevelWarn, LevelError}
	for i := 0; i < len(levels)-1; i++ {
		if levels[i] >= levels[i+1] {
			t.Errorf("Log levels should be in ascending order: %v >= %v", levels[i], levels[i+1])
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	buf := captureLog(t)
	withLevel(t, LevelWarn)

	Debug("hidden debug")
	Info("hidden info")
	Warn("visible warn %d", 1)
	Error("visible error %s", "x")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("messages below the level were logged: %q", out)
	}
	if !strings.Contains(out, "[WARN] visible warn 1") {
		t.Errorf("missing warn line in %q", out)
	}
	if !strings.Contains(out, "[ERROR] visible error x") {
		t.Errorf("missing error line in %q", out)
	}
}

func TestSetLevelEnablesDebug(t *testing.T) {
	buf := captureLog(t)
	withLevel(t, LevelDebug)

	if !IsDebugEnabled() {
		t.Fatal("IsDebugEnabled() = false after SetLevel(LevelDebug)")
	}
	Debug("stage %s", "decode")
	if !strings.Contains(buf.String(), "[DEBUG] stage decode") {
		t.Errorf("debug line missing: %q", buf.String())
	}
}

func TestComponentPrefix(t *testing.T) {
	buf := captureLog(t)
	withLevel(t, LevelDebug)

	c := Component("video")
	c.Debug("seek to %.1fs", 5.0)
	c.Warn("release failed")

	out := buf.String()
	if !strings.Contains(out, "[DEBUG] [video] seek to 5.0s") {
		t.Errorf("component debug line missing: %q", out)
	}
	if !strings.Contains(out, "[WARN] [video] release failed") {
		t.Errorf("component warn line missing: %q", out)
	}
}

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{LogLevel(99), "unknown(99)"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			got := tt.level.String()
			if got != tt.expected {
				t.Errorf("LogLevel.String() = %q, want %q", got, tt.expected)
			}
		})
	}
}
