package video

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// Metadata is what the probe stage learns about a video without decoding
// any frame.
type Metadata struct {
	// Duration in seconds.
	Duration float64 `json:"duration"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Codec    string  `json:"codec,omitempty"`

	// Source names the prober that produced this, for logs.
	Source string `json:"-"`
}

// Validate rejects metadata a frame cannot be sampled from.
func (m *Metadata) Validate() error {
	switch {
	case m == nil:
		return errors.New("no metadata")
	case math.IsNaN(m.Duration) || math.IsInf(m.Duration, 0):
		return fmt.Errorf("duration is not finite: %v", m.Duration)
	case m.Duration <= 0:
		return fmt.Errorf("duration must be positive, got %v", m.Duration)
	case m.Width <= 0 || m.Height <= 0:
		return fmt.Errorf("invalid video dimensions %dx%d", m.Width, m.Height)
	}
	return nil
}

// Prober reads video metadata from a file.
type Prober interface {
	Probe(ctx context.Context, path string) (*Metadata, error)
}

// ProberFunc adapts a function to Prober.
type ProberFunc func(ctx context.Context, path string) (*Metadata, error)

// Probe calls f.
func (f ProberFunc) Probe(ctx context.Context, path string) (*Metadata, error) {
	return f(ctx, path)
}

// ChainProber tries each prober in order and returns the first valid result.
type ChainProber []Prober

// Probe implements Prober.
func (c ChainProber) Probe(ctx context.Context, path string) (*Metadata, error) {
	var errs []error
	for _, p := range c {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		meta, err := p.Probe(ctx, path)
		if err == nil {
			err = meta.Validate()
		}
		if err != nil {
			log.Debug("prober %T failed: %v", p, err)
			errs = append(errs, err)
			continue
		}
		return meta, nil
	}
	if len(errs) == 0 {
		return nil, errors.New("no prober configured")
	}
	return nil, errors.Join(errs...)
}

// SeekTarget picks the capture time: the requested offset, clamped to the
// midpoint of the video. The clamp applies even to offsets that lie inside
// the video. NaN and negative offsets seek to 0.
func SeekTarget(timeOffset, duration float64) float64 {
	if math.IsNaN(timeOffset) || timeOffset < 0 {
		timeOffset = 0
	}
	return math.Min(timeOffset, duration/2)
}
