package video

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"media-derivatives/internal/logging"
	"media-derivatives/internal/media"
	"media-derivatives/internal/mediatypes"
)

// DefaultTimeOffset is the capture time, in seconds, used when the caller
// has no preference.
const DefaultTimeOffset = 1.0

// The captured frame is encoded at CaptureQuality and native size, then
// recompressed into the thumbnail box.
const (
	CaptureQuality     = 0.8
	ThumbnailMaxWidth  = 400
	ThumbnailMaxHeight = 300
)

var log = logging.Component("video")

// SamplerConfig configures a Sampler. The zero value locates ffmpeg and
// ffprobe on the host and writes handles under os.TempDir().
type SamplerConfig struct {
	// TempDir holds the per-call handle directories.
	TempDir string

	// FFmpegPath and FFprobePath name the binaries. Empty means search.
	FFmpegPath  string
	FFprobePath string

	// Timeout bounds each ffprobe/ffmpeg run. 0 means no timeout.
	Timeout time.Duration

	// Prober replaces the mp4ff/ffprobe probe chain.
	Prober Prober

	// Grabber replaces the ffmpeg frame grabber.
	Grabber FrameGrabber

	// Observer receives telemetry. nil falls back to the package observer.
	Observer media.Observer
}

// Sampler is the VideoFrameSampler. It holds only configuration; every
// call owns its own Handle, so one Sampler serves concurrent calls.
type Sampler struct {
	cfg     SamplerConfig
	ffprobe Prober
	grabber FrameGrabber
	encoder *media.Encoder
}

// NewSampler creates a Sampler.
func NewSampler(cfg SamplerConfig) *Sampler {
	ffmpegPath, err := FindFFmpeg(cfg.FFmpegPath)
	if err != nil {
		log.Debug("%v, falling back to PATH lookup at call time", err)
		ffmpegPath = "ffmpeg"
		if cfg.FFmpegPath != "" {
			ffmpegPath = cfg.FFmpegPath
		}
	}
	ffprobePath := ResolveFFprobeBin(cfg.FFprobePath, ffmpegPath)
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}

	s := &Sampler{
		cfg:     cfg,
		ffprobe: &FFprobeProber{Path: ffprobePath, Timeout: cfg.Timeout},
		grabber: cfg.Grabber,
		// The derivation is reported once, as video; the recompress is
		// timed as the "compress" stage instead. Its input is our own
		// capture, already bounded by the surface limits, so the image
		// pixel limit does not apply.
		encoder: media.NewEncoder(media.EncoderConfig{
			MaxPixels: media.MaxSurfacePixels,
			Observer:  media.NopObserver(),
		}),
	}
	if s.grabber == nil {
		s.grabber = &FFmpegGrabber{Path: ffmpegPath, Timeout: cfg.Timeout}
	}
	return s
}

func (s *Sampler) proberFor(buf media.Buffer) Prober {
	if s.cfg.Prober != nil {
		return s.cfg.Prober
	}
	if mediatypes.IsISOBMFF(buf.MimeType) || mediatypes.IsISOBMFF(mediatypes.SniffMimeType(buf.Data)) {
		return ChainProber{MP4Prober{}, s.ffprobe}
	}
	return ChainProber{s.ffprobe}
}

// CreateVideoThumbnail captures the frame at min(timeOffset, duration/2)
// and returns it as a JPEG no larger than 400x300.
//
// Load, probe, seek and capture failures are ErrLoad. Errors from the
// final recompress are media.ErrDecode or media.ErrEncode, unchanged.
func (s *Sampler) CreateVideoThumbnail(ctx context.Context, buf media.Buffer, timeOffset float64) (res *media.Result, err error) {
	start := time.Now()
	obs := media.ResolveObserver(s.cfg.Observer)
	defer func() {
		obs.ObserveDerivation(media.KindVideo, media.Status(err), time.Since(start), res.Size())
	}()

	if len(buf.Data) == 0 {
		return nil, loadError("load", errors.New("empty buffer"))
	}

	tempDir := s.cfg.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	h, err := acquireHandle(tempDir, buf, obs)
	if err != nil {
		return nil, loadError("load", err)
	}
	defer h.Release()

	timer := media.StartStage(obs, media.KindVideo)
	meta, err := s.proberFor(buf).Probe(ctx, h.Path())
	if err == nil {
		err = meta.Validate()
	}
	if err != nil {
		return nil, loadError("metadata", err)
	}
	timer.Done("probe")

	target := SeekTarget(timeOffset, meta.Duration)
	log.Debug("%s: %.3fs %dx%d (%s), seeking to %.3fs",
		meta.Source, meta.Duration, meta.Width, meta.Height, meta.Codec, target)

	frame, err := s.grabber.GrabFrame(ctx, h.Path(), target)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return nil, loadError("capture", err)
	}
	timer.Done("capture")

	// Decoders apply container rotation, so the frame's own size is the
	// display size; it matches the probed size otherwise.
	native := media.NativeDimensions(frame)
	if native != (media.Dimensions{Width: meta.Width, Height: meta.Height}) {
		log.Debug("frame is %dx%d, metadata said %dx%d", native.Width, native.Height, meta.Width, meta.Height)
	}
	captured, err := media.RasterizeAndEncode(frame, native, CaptureQuality)
	if err != nil {
		return nil, err
	}
	timer.Done("rasterize")

	res, err = s.encoder.CompressImage(ctx,
		media.Buffer{Data: captured, MimeType: media.MimeJPEG},
		media.WithMaxSize(ThumbnailMaxWidth, ThumbnailMaxHeight),
		media.WithQuality(CaptureQuality),
	)
	if err != nil {
		return nil, err
	}
	timer.Done("compress")
	return res, nil
}

var (
	defaultSampler     *Sampler
	defaultSamplerOnce sync.Once
)

// Default returns the package Sampler, built from a zero SamplerConfig on
// first use.
func Default() *Sampler {
	defaultSamplerOnce.Do(func() {
		defaultSampler = NewSampler(SamplerConfig{})
	})
	return defaultSampler
}

// CreateVideoThumbnail runs the default Sampler.
func CreateVideoThumbnail(ctx context.Context, buf media.Buffer, timeOffset float64) (*media.Result, error) {
	return Default().CreateVideoThumbnail(ctx, buf, timeOffset)
}
