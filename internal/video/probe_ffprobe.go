package video

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"time"
)

// FFprobeProber reads metadata by running ffprobe with JSON output.
type FFprobeProber struct {
	// Path is the ffprobe binary.
	Path string

	// Timeout bounds one ffprobe run. 0 means no timeout.
	Timeout time.Duration
}

type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
	Format  struct {
		FormatName string `json:"format_name"`
		Duration   string `json:"duration"`
	} `json:"format"`
}

type ffprobeStream struct {
	CodecType string `json:"codec_type"`
	CodecName string `json:"codec_name"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Duration  string `json:"duration"`
}

// Probe implements Prober.
func (p *FFprobeProber) Probe(ctx context.Context, path string) (*Metadata, error) {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	// #nosec G204 - binary comes from configuration; path is our own temp file
	cmd := exec.CommandContext(ctx, p.Path,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe error: %w - %s", err, truncate(stderr.String(), 500))
	}

	return parseFFprobeOutput(stdout.Bytes())
}

func parseFFprobeOutput(data []byte) (*Metadata, error) {
	var out ffprobeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("json decode: %w", err)
	}

	for _, s := range out.Streams {
		if s.CodecType != "video" {
			continue
		}
		meta := &Metadata{
			Width:  s.Width,
			Height: s.Height,
			Codec:  s.CodecName,
			Source: "ffprobe",
		}
		// Stream duration is absent for many containers (mkv, webm); the
		// format duration covers them.
		meta.Duration = parseDuration(s.Duration)
		if meta.Duration <= 0 {
			meta.Duration = parseDuration(out.Format.Duration)
		}
		return meta, nil
	}
	return nil, errors.New("no video stream found")
}

func parseDuration(s string) float64 {
	if s == "" || s == "N/A" {
		return 0
	}
	d, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return d
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max] + "... (truncated)"
	}
	return s
}
