package media

import "math"

// DeriveDimensions fits (srcWidth, srcHeight) inside (maxWidth, maxHeight)
// with one uniform scale factor, min(maxWidth/srcWidth, maxHeight/srcHeight).
// Sources that already fit are returned unchanged; nothing is upscaled.
//
// Scaled sides are rounded to the nearest pixel and clamped to [1, bound],
// so the limiting side always lands exactly on its bound.
func DeriveDimensions(srcWidth, srcHeight, maxWidth, maxHeight int) Dimensions {
	if srcWidth <= 0 || srcHeight <= 0 || maxWidth <= 0 || maxHeight <= 0 {
		return Dimensions{Width: srcWidth, Height: srcHeight}
	}
	if srcWidth <= maxWidth && srcHeight <= maxHeight {
		return Dimensions{Width: srcWidth, Height: srcHeight}
	}

	ratio := math.Min(float64(maxWidth)/float64(srcWidth), float64(maxHeight)/float64(srcHeight))
	return Dimensions{
		Width:  scaleSide(srcWidth, ratio, maxWidth),
		Height: scaleSide(srcHeight, ratio, maxHeight),
	}
}

func scaleSide(side int, ratio float64, bound int) int {
	v := int(math.Round(float64(side) * ratio))
	if v < 1 {
		return 1
	}
	if v > bound {
		return bound
	}
	return v
}
