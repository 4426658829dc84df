package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"

	"media-derivatives/internal/logging"

	// Image format decoders
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // BMP format support
	_ "golang.org/x/image/tiff" // TIFF format support
	_ "golang.org/x/image/webp" // WebP format support
)

// ErrPixelLimitExceeded is wrapped into ErrDecode for oversized sources.
var ErrPixelLimitExceeded = errors.New("image exceeds max pixels limit")

var log = logging.Component("media")

type imageDecoder struct {
	name   string
	decode func(ctx context.Context, data []byte) (image.Image, error)
}

// decodeImage owns the image decode handle for one call: it is acquired on
// entry and released on return, whichever decoder succeeded or failed.
func (e *Encoder) decodeImage(ctx context.Context, data []byte) (image.Image, error) {
	obs := ResolveObserver(e.cfg.Observer)
	obs.HandleAcquired(KindImage)
	defer obs.HandleReleased(KindImage)

	if len(data) == 0 {
		return nil, decodeError("decode", fmt.Errorf("empty buffer"))
	}
	if err := ctx.Err(); err != nil {
		return nil, decodeError("decode", err)
	}

	// Reject oversized images from the header alone, before allocating pixels.
	if cfg, format, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		log.Debug("source %s %dx%d", format, cfg.Width, cfg.Height)
		if err := e.checkPixels(cfg.Width, cfg.Height); err != nil {
			return nil, err
		}
	}

	var errs []error
	for _, d := range e.decoders() {
		img, err := d.decode(ctx, data)
		if err != nil {
			log.Debug("%s decode failed: %v", d.name, err)
			errs = append(errs, fmt.Errorf("%s: %w", d.name, err))
			continue
		}
		b := img.Bounds()
		if b.Dx() <= 0 || b.Dy() <= 0 {
			errs = append(errs, fmt.Errorf("%s: empty image", d.name))
			continue
		}
		if err := e.checkPixels(b.Dx(), b.Dy()); err != nil {
			return nil, err
		}
		log.Debug("decoded with %s: %dx%d", d.name, b.Dx(), b.Dy())
		return img, nil
	}
	return nil, decodeError("decode", errors.Join(errs...))
}

func (e *Encoder) checkPixels(width, height int) error {
	if width*height > e.cfg.MaxPixels {
		return decodeError("limits", fmt.Errorf("%w: %dx%d > %d", ErrPixelLimitExceeded, width, height, e.cfg.MaxPixels))
	}
	return nil
}

func (e *Encoder) decoders() []imageDecoder {
	decoders := []imageDecoder{{name: "imaging", decode: decodeWithImaging}}
	if IsVipsAvailable() {
		decoders = append(decoders, imageDecoder{name: "vips", decode: func(_ context.Context, data []byte) (image.Image, error) {
			return decodeWithVips(data)
		}})
	}
	if e.cfg.FFmpegPath != "" {
		decoders = append(decoders, imageDecoder{name: "ffmpeg", decode: func(ctx context.Context, data []byte) (image.Image, error) {
			return decodeWithFFmpeg(ctx, e.cfg.FFmpegPath, e.cfg.FFmpegTimeout, data)
		}})
	}
	return decoders
}

func decodeWithImaging(_ context.Context, data []byte) (image.Image, error) {
	return imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
}
