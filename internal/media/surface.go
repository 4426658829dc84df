package media

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
)

// Surface limits match what mainstream 2D raster backends accept.
const (
	MaxSurfaceSide   = 32767
	MaxSurfacePixels = 268_435_456
)

// Background is painted under every rasterized image. JPEG has no alpha,
// so transparent sources are flattened onto it.
var Background color.Color = color.White

// Surface is a write-once, read-once raster buffer backed by a gg context.
type Surface struct {
	dc   *gg.Context
	size Dimensions
}

// NewSurface allocates a surface of the given size, cleared to Background.
// It fails with ErrEncode when the size cannot be backed by a raster.
func NewSurface(size Dimensions) (*Surface, error) {
	if size.Width <= 0 || size.Height <= 0 {
		return nil, encodeError("surface", fmt.Errorf("invalid surface size %dx%d", size.Width, size.Height))
	}
	if size.Width > MaxSurfaceSide || size.Height > MaxSurfaceSide || size.Pixels() > MaxSurfacePixels {
		return nil, encodeError("surface", fmt.Errorf("surface %dx%d exceeds raster limits", size.Width, size.Height))
	}

	dc := gg.NewContext(size.Width, size.Height)
	dc.SetColor(Background)
	dc.Clear()
	return &Surface{dc: dc, size: size}, nil
}

// Size returns the surface dimensions.
func (s *Surface) Size() Dimensions {
	return s.size
}

// Draw resamples the whole of img to the surface size and paints it at the
// origin. It is a scale, never a crop.
func (s *Surface) Draw(img image.Image) {
	b := img.Bounds()
	if b.Dx() != s.size.Width || b.Dy() != s.size.Height {
		img = imaging.Resize(img, s.size.Width, s.size.Height, mks2013Filter)
	} else if b.Min != (image.Point{}) {
		img = imaging.Clone(img)
	}
	s.dc.DrawImage(img, 0, 0)
}

// Image exposes the surface pixels.
func (s *Surface) Image() image.Image {
	return s.dc.Image()
}

// EncodeJPEG encodes the surface at quality in [0,1].
func (s *Surface) EncodeJPEG(quality float64) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, s.dc.Image(), &jpeg.Options{Quality: JPEGQuality(quality)}); err != nil {
		return nil, encodeError("jpeg", err)
	}
	if buf.Len() == 0 {
		return nil, encodeError("jpeg", fmt.Errorf("encoder produced no output"))
	}
	return buf.Bytes(), nil
}

// JPEGQuality maps a [0,1] quality to the 1..100 libjpeg scale.
func JPEGQuality(quality float64) int {
	q := int(math.Round(quality * 100))
	if q < 1 {
		return 1
	}
	if q > 100 {
		return 100
	}
	return q
}

// RasterizeAndEncode draws img into a new surface of the given size and
// encodes it as JPEG. It is the one rasterize+encode step shared by image
// compression and video frame capture.
func RasterizeAndEncode(img image.Image, size Dimensions, quality float64) ([]byte, error) {
	if img == nil {
		return nil, encodeError("rasterize", fmt.Errorf("nil image"))
	}
	surface, err := NewSurface(size)
	if err != nil {
		return nil, err
	}
	surface.Draw(img)
	return surface.EncodeJPEG(quality)
}

// NativeDimensions returns the size of img without scaling.
func NativeDimensions(img image.Image) Dimensions {
	b := img.Bounds()
	return Dimensions{Width: b.Dx(), Height: b.Dy()}
}
