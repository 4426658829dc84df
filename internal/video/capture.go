package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os/exec"
	"strconv"
	"time"
)

// FrameGrabber decodes the frame displayed at a given time.
type FrameGrabber interface {
	GrabFrame(ctx context.Context, path string, at float64) (image.Image, error)
}

// FrameGrabberFunc adapts a function to FrameGrabber.
type FrameGrabberFunc func(ctx context.Context, path string, at float64) (image.Image, error)

// GrabFrame calls f.
func (f FrameGrabberFunc) GrabFrame(ctx context.Context, path string, at float64) (image.Image, error) {
	return f(ctx, path, at)
}

// FFmpegGrabber seeks with ffmpeg and reads back exactly one PNG frame at
// the stream's native resolution. Audio and subtitles are ignored.
type FFmpegGrabber struct {
	// Path is the ffmpeg binary.
	Path string

	// Timeout bounds one capture. 0 means no timeout.
	Timeout time.Duration
}

// GrabFrame implements FrameGrabber.
func (g *FFmpegGrabber) GrabFrame(ctx context.Context, path string, at float64) (image.Image, error) {
	if g.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}

	// #nosec G204 - binary comes from configuration; path is our own temp file
	cmd := exec.CommandContext(ctx, g.Path,
		"-hide_banner",
		"-loglevel", "error",
		"-ss", strconv.FormatFloat(at, 'f', 3, 64),
		"-i", path,
		"-an",
		"-sn",
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"pipe:1",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg failed: %w, stderr: %s", err, truncate(stderr.String(), 500))
	}
	if stdout.Len() == 0 {
		return nil, errors.New("ffmpeg produced no frame")
	}

	img, err := png.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to decode captured frame: %w", err)
	}
	return img, nil
}
