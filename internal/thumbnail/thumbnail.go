package thumbnail

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"media-derivatives/internal/logging"
	"media-derivatives/internal/media"
	"media-derivatives/internal/mediatypes"
	"media-derivatives/internal/video"
)

// ErrUnsupported is returned for buffers that are neither image nor video.
var ErrUnsupported = errors.New("unsupported media type")

// ImageCompressor is implemented by *media.Encoder.
type ImageCompressor interface {
	CompressImage(ctx context.Context, buf media.Buffer, opts ...media.Option) (*media.Result, error)
}

// VideoSampler is implemented by *video.Sampler.
type VideoSampler interface {
	CreateVideoThumbnail(ctx context.Context, buf media.Buffer, timeOffset float64) (*media.Result, error)
}

// Generator dispatches buffers by media kind.
type Generator struct {
	images ImageCompressor
	videos VideoSampler
}

// NewGenerator creates a Generator.
func NewGenerator(images ImageCompressor, videos VideoSampler) *Generator {
	return &Generator{images: images, videos: videos}
}

// ResolveMime returns buf's MIME tag, sniffing the data when the tag is
// missing or generic.
func ResolveMime(buf media.Buffer) string {
	mt := mediatypes.NormalizeMime(buf.MimeType)
	if mt == "" || mt == mediatypes.OctetStream {
		return mediatypes.SniffMimeType(buf.Data)
	}
	return mt
}

// Kind reports which pipeline Generate would use for buf.
func Kind(buf media.Buffer) mediatypes.FileType {
	return mediatypes.KindForMime(ResolveMime(buf))
}

// Generate derives a thumbnail with default parameters: 400x300 at
// quality 0.8, and for videos a capture at video.DefaultTimeOffset.
func (g *Generator) Generate(ctx context.Context, buf media.Buffer) (*media.Result, error) {
	buf.MimeType = ResolveMime(buf)
	kind := mediatypes.KindForMime(buf.MimeType)
	logging.Debug("Thumbnail generating: %d bytes (type: %s, mime: %s)", len(buf.Data), kind, buf.MimeType)

	switch kind {
	case mediatypes.FileTypeImage:
		return g.images.CompressImage(ctx, buf)
	case mediatypes.FileTypeVideo:
		return g.videos.CreateVideoThumbnail(ctx, buf, video.DefaultTimeOffset)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, buf.MimeType)
	}
}

var (
	defaultGenerator     *Generator
	defaultGeneratorOnce sync.Once
)

// Generate runs a Generator built on the default encoder and sampler.
func Generate(ctx context.Context, buf media.Buffer) (*media.Result, error) {
	defaultGeneratorOnce.Do(func() {
		defaultGenerator = NewGenerator(media.NewEncoder(media.EncoderConfig{}), video.Default())
	})
	return defaultGenerator.Generate(ctx, buf)
}
