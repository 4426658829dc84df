package video

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"media-derivatives/internal/media"
	"media-derivatives/internal/mediatypes"
)

// Handle owns the on-disk copy of a video buffer that ffprobe and ffmpeg
// read from. Release removes it; later calls are no-ops.
type Handle struct {
	dir  string
	path string
	obs  media.Observer

	once sync.Once
	err  error
}

// acquireHandle writes buf into a fresh directory under tempDir.
func acquireHandle(tempDir string, buf media.Buffer, obs media.Observer) (*Handle, error) {
	dir, err := os.MkdirTemp(tempDir, "video-thumb-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}

	ext := mediatypes.ExtensionForMime(buf.MimeType)
	if ext == "" {
		ext = ".bin"
	}
	path := filepath.Join(dir, "source"+ext)

	if err := os.WriteFile(path, buf.Data, 0o600); err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("write temp file: %w", err)
	}

	obs.HandleAcquired(media.KindVideo)
	return &Handle{dir: dir, path: path, obs: obs}, nil
}

// Path is the locator handed to the probe and capture stages.
func (h *Handle) Path() string {
	return h.path
}

// Release deletes the backing file and directory.
func (h *Handle) Release() error {
	h.once.Do(func() {
		h.err = os.RemoveAll(h.dir)
		h.obs.HandleReleased(media.KindVideo)
		if h.err != nil {
			log.Warn("failed to remove %s: %v", h.dir, h.err)
		}
	})
	return h.err
}
