package media

import (
	"fmt"
	"math"
)

// Defaults for CompressImage.
const (
	DefaultMaxWidth  = 400
	DefaultMaxHeight = 300
	DefaultQuality   = 0.8
)

type options struct {
	maxWidth  int
	maxHeight int
	quality   float64
}

// Option configures a single CompressImage call.
type Option func(*options)

// WithMaxSize sets the bounding box.
func WithMaxSize(maxWidth, maxHeight int) Option {
	return func(o *options) {
		o.maxWidth = maxWidth
		o.maxHeight = maxHeight
	}
}

// WithQuality sets the JPEG quality in [0,1].
func WithQuality(quality float64) Option {
	return func(o *options) {
		o.quality = quality
	}
}

func buildOptions(opts []Option) (options, error) {
	o := options{
		maxWidth:  DefaultMaxWidth,
		maxHeight: DefaultMaxHeight,
		quality:   DefaultQuality,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if o.maxWidth <= 0 || o.maxHeight <= 0 {
		return o, fmt.Errorf("%w: bounds must be positive, got %dx%d", ErrInvalidOptions, o.maxWidth, o.maxHeight)
	}
	if math.IsNaN(o.quality) || o.quality < 0 || o.quality > 1 {
		return o, fmt.Errorf("%w: quality must be in [0,1], got %v", ErrInvalidOptions, o.quality)
	}
	return o, nil
}
