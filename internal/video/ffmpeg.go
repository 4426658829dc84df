package video

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrFFmpegNotFound is returned when no ffmpeg binary can be located.
var ErrFFmpegNotFound = errors.New("ffmpeg not found")

// FindFFmpeg returns custom if it exists, otherwise searches PATH and the
// usual install locations.
func FindFFmpeg(custom string) (string, error) {
	if custom != "" {
		if _, err := os.Stat(custom); err == nil {
			return custom, nil
		}
		if path, err := exec.LookPath(custom); err == nil {
			return path, nil
		}
		return "", fmt.Errorf("%w: custom path %s not found", ErrFFmpegNotFound, custom)
	}

	execName := "ffmpeg"
	if runtime.GOOS == "windows" {
		execName = "ffmpeg.exe"
	}
	if path, err := exec.LookPath(execName); err == nil {
		return path, nil
	}

	var commonPaths []string
	if runtime.GOOS == "windows" {
		commonPaths = []string{
			`C:\ffmpeg\bin\ffmpeg.exe`,
			`C:\Program Files\ffmpeg\bin\ffmpeg.exe`,
		}
	} else {
		commonPaths = []string{
			"/usr/bin/ffmpeg",
			"/usr/local/bin/ffmpeg",
			"/opt/homebrew/bin/ffmpeg",
			"/snap/bin/ffmpeg",
		}
	}
	for _, p := range commonPaths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", ErrFFmpegNotFound
}

// ResolveFFprobeBin returns the ffprobe binary to use.
//
// Resolution order:
// 1) Explicit ffprobeBin
// 2) Derive from ffmpegBin (.../ffmpeg -> .../ffprobe) if the derived binary exists
// 3) Empty string (caller falls back to PATH resolution)
func ResolveFFprobeBin(ffprobeBin, ffmpegBin string) string {
	return resolveFFprobeBinWithStat(ffprobeBin, ffmpegBin, os.Stat)
}

func resolveFFprobeBinWithStat(ffprobeBin, ffmpegBin string, stat func(string) (os.FileInfo, error)) string {
	if ffprobeBin = strings.TrimSpace(ffprobeBin); ffprobeBin != "" {
		return ffprobeBin
	}

	ffmpegBin = strings.TrimSpace(ffmpegBin)
	// A bare "ffmpeg" resolves through PATH; don't guess a sibling.
	if ffmpegBin == "" || !strings.ContainsRune(ffmpegBin, filepath.Separator) {
		return ""
	}
	base := strings.TrimSuffix(filepath.Base(ffmpegBin), ".exe")
	if base != "ffmpeg" {
		return ""
	}

	candidate := filepath.Join(filepath.Dir(ffmpegBin), "ffprobe"+strings.TrimPrefix(filepath.Base(ffmpegBin), "ffmpeg"))
	if fi, err := stat(candidate); err == nil && fi != nil && !fi.IsDir() {
		return candidate
	}
	return ""
}
