// Package video samples a single representative frame from a video buffer
// and turns it into a JPEG thumbnail.
//
// Each CreateVideoThumbnail call runs the same linear sequence:
//
//  1. the buffer is written to a private temporary file (the Handle),
//  2. metadata only is probed: duration and native dimensions,
//  3. ffmpeg seeks to min(timeOffset, duration/2) and emits one frame,
//  4. the frame is encoded once at native size and quality 0.8, then
//     recompressed through media.Encoder into a 400x300 box.
//
// ISO base media files (mp4, mov, m4v, 3gp) are probed in-process with
// mp4ff; everything else, and any MP4 that mp4ff cannot date, goes through
// ffprobe. Any failure before step 4 is reported as ErrLoad. The Handle is
// released exactly once on every path.
package video
