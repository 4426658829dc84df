// Package thumbnail routes a media buffer to the derivative pipeline for
// its kind: still images are compressed with media.Encoder, videos are
// sampled with video.Sampler. Both produce the same JPEG media.Result.
package thumbnail
