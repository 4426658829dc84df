package video

import (
	"errors"

	"media-derivatives/internal/media"
)

// ErrLoad means the video could not be loaded, probed, seeked or captured.
var ErrLoad = errors.New("load error")

func loadError(stage string, err error) error {
	return &media.StageError{Kind: ErrLoad, Stage: stage, Err: err}
}
