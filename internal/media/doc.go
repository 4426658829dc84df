// Package media implements the still-image half of the derivative pipeline:
// decode a caller-supplied buffer, derive an aspect-preserving bounded size,
// rasterize into a fresh surface and re-encode as JPEG.
//
// CompressImage is the entry point. RasterizeAndEncode is the shared
// surface+encode primitive that the video sampler also uses for its
// native-resolution capture encode.
//
// Decoding tries, in order:
//   - imaging.Decode (jpeg, png, gif, webp, bmp, tiff) with EXIF orientation
//   - libvips, when InitVips succeeded (HEIC, AVIF and friends)
//   - ffmpeg, when an ffmpeg binary is configured
//
// Every call owns its decode handle and surface; nothing is shared between
// calls except the optional Observer.
package media
