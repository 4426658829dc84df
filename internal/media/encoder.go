package media

import (
	"context"
	"time"
)

// DefaultMaxPixels bounds the source size CompressImage will decode. A
// 40MP RGBA image is ~160MB in memory.
const DefaultMaxPixels = 40_000_000

// EncoderConfig configures an Encoder. The zero value is usable.
type EncoderConfig struct {
	// MaxPixels rejects larger sources with ErrDecode. 0 means DefaultMaxPixels.
	MaxPixels int

	// FFmpegPath enables the ffmpeg decode fallback when non-empty.
	FFmpegPath string

	// FFmpegTimeout bounds one ffmpeg fallback decode. 0 means no timeout.
	FFmpegTimeout time.Duration

	// Observer receives telemetry. nil falls back to the package observer.
	Observer Observer
}

// Encoder is the FrameEncoder: decode, fit, rasterize, re-encode. It holds
// only configuration, so one Encoder serves any number of concurrent calls.
type Encoder struct {
	cfg EncoderConfig
}

// NewEncoder creates an Encoder.
func NewEncoder(cfg EncoderConfig) *Encoder {
	if cfg.MaxPixels <= 0 {
		cfg.MaxPixels = DefaultMaxPixels
	}
	return &Encoder{cfg: cfg}
}

// MaxPixels returns the largest source, in pixels, the Encoder decodes.
func (e *Encoder) MaxPixels() int {
	return e.cfg.MaxPixels
}

// CompressImage decodes buf as a still image, scales it to fit the bounds
// (never upscaling) and encodes a JPEG at the requested quality.
//
// It fails with ErrDecode when buf is not a decodable image and with
// ErrEncode when no surface can be allocated or encoding yields no bytes.
// The encoded size itself is not bounded.
func (e *Encoder) CompressImage(ctx context.Context, buf Buffer, opts ...Option) (res *Result, err error) {
	start := time.Now()
	obs := ResolveObserver(e.cfg.Observer)
	defer func() {
		obs.ObserveDerivation(KindImage, Status(err), time.Since(start), res.Size())
	}()

	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}

	timer := StartStage(obs, KindImage)
	img, err := e.decodeImage(ctx, buf.Data)
	if err != nil {
		return nil, err
	}
	timer.Done("decode")

	src := NativeDimensions(img)
	size := DeriveDimensions(src.Width, src.Height, o.maxWidth, o.maxHeight)
	log.Debug("fit %dx%d into %dx%d -> %dx%d (q=%.2f)",
		src.Width, src.Height, o.maxWidth, o.maxHeight, size.Width, size.Height, o.quality)

	data, err := RasterizeAndEncode(img, size, o.quality)
	if err != nil {
		return nil, err
	}
	timer.Done("encode")

	return &Result{
		Data:     data,
		MimeType: MimeJPEG,
		Width:    size.Width,
		Height:   size.Height,
		Quality:  o.quality,
	}, nil
}

var defaultEncoder = NewEncoder(EncoderConfig{})

// CompressImage runs the default Encoder. Defaults: 400x300, quality 0.8.
func CompressImage(ctx context.Context, buf Buffer, opts ...Option) (*Result, error) {
	return defaultEncoder.CompressImage(ctx, buf, opts...)
}
