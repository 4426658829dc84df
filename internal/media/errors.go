package media

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode means the buffer could not be decoded as an image.
	ErrDecode = errors.New("decode error")

	// ErrEncode means no raster surface could be produced or the encoder
	// returned no bytes.
	ErrEncode = errors.New("encode error")

	// ErrInvalidOptions means bounds or quality are out of range.
	ErrInvalidOptions = errors.New("invalid options")
)

// StageError records which pipeline stage failed. It matches its Kind
// sentinel with errors.Is and unwraps to the underlying cause.
type StageError struct {
	Kind  error
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%v: %s", e.Kind, e.Stage)
	}
	return fmt.Sprintf("%v: %s: %v", e.Kind, e.Stage, e.Err)
}

// Is reports whether target is this error's kind sentinel.
func (e *StageError) Is(target error) bool {
	return target == e.Kind
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func decodeError(stage string, err error) error {
	return &StageError{Kind: ErrDecode, Stage: stage, Err: err}
}

func encodeError(stage string, err error) error {
	return &StageError{Kind: ErrEncode, Stage: stage, Err: err}
}

// Status maps a pipeline error to the metric status label.
func Status(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrDecode):
		return "error_decode"
	case errors.Is(err, ErrEncode):
		return "error_encode"
	case errors.Is(err, ErrInvalidOptions):
		return "error_options"
	default:
		var se *StageError
		if errors.As(err, &se) && se.Kind != nil {
			return "error_" + sanitizeLabel(se.Kind.Error())
		}
		return "error"
	}
}

func sanitizeLabel(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c == ' ' || c == '-' {
			b[i] = '_'
		}
	}
	if n := len(b); n > 6 && string(b[n-6:]) == "_error" {
		b = b[:n-6]
	}
	return string(b)
}
