package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"media-derivatives/internal/jobs"
	"media-derivatives/internal/logging"
	"media-derivatives/internal/media"
	"media-derivatives/internal/middleware"
	"media-derivatives/internal/thumbnail"
	"media-derivatives/internal/video"
)

// Response headers describing the derivative.
const (
	HeaderKind    = middleware.ThumbnailKindHeader
	HeaderWidth   = middleware.ThumbnailWidthHeader
	HeaderHeight  = middleware.ThumbnailHeightHeader
	HeaderQuality = "X-Thumbnail-Quality"
)

type deriveFunc func(ctx context.Context, buf media.Buffer) (*media.Result, error)

// ImageThumbnail compresses the request body as a still image. Query
// parameters maxWidth, maxHeight and quality override the defaults.
func (h *Handlers) ImageThumbnail(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(HeaderKind, media.KindImage)
	opts, err := imageOptions(r.URL.Query())
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.derive(w, r, func(ctx context.Context, buf media.Buffer) (*media.Result, error) {
		return h.images.CompressImage(ctx, buf, opts...)
	})
}

// VideoThumbnail captures one frame of the request body. Query parameter
// t is the capture offset in seconds.
func (h *Handlers) VideoThumbnail(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(HeaderKind, media.KindVideo)
	offset, err := timeOffset(r.URL.Query())
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.derive(w, r, func(ctx context.Context, buf media.Buffer) (*media.Result, error) {
		return h.videos.CreateVideoThumbnail(ctx, buf, offset)
	})
}

// Thumbnail picks the pipeline from the request Content-Type, sniffing the
// body when the type is missing or generic.
func (h *Handlers) Thumbnail(w http.ResponseWriter, r *http.Request) {
	h.derive(w, r, h.generator.Generate)
}

func (h *Handlers) derive(w http.ResponseWriter, r *http.Request, fn deriveFunc) {
	ctx := r.Context()
	requestID := middleware.RequestIDFromContext(ctx)

	body, err := h.readBody(w, r)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSONError(w, fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit), http.StatusRequestEntityTooLarge)
			return
		}
		writeJSONError(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	buf := media.Buffer{Data: body, MimeType: r.Header.Get("Content-Type")}
	if w.Header().Get(HeaderKind) == "" {
		w.Header().Set(HeaderKind, string(thumbnail.Kind(buf)))
	}

	if h.jobs != nil {
		release, err := h.jobs.Acquire(ctx)
		if err != nil {
			logging.Warn("Thumbnail [%s]: no job slot: %v", requestID, err)
			w.Header().Set("Retry-After", "1")
			writeJSONError(w, "server busy", http.StatusServiceUnavailable)
			return
		}
		defer release()
	}

	logging.Debug("Thumbnail [%s]: %s %d bytes (%s)", requestID, r.URL.Path, len(body), buf.MimeType)

	res, err := fn(ctx, buf)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			logging.Error("Thumbnail [%s]: %v", requestID, err)
		} else {
			logging.Debug("Thumbnail [%s]: rejected: %v", requestID, err)
		}
		writeJSONError(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", res.MimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set(HeaderWidth, strconv.Itoa(res.Width))
	w.Header().Set(HeaderHeight, strconv.Itoa(res.Height))
	w.Header().Set(HeaderQuality, strconv.FormatFloat(res.Quality, 'g', -1, 64))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.Data); err != nil {
		logging.Debug("Thumbnail [%s]: write failed: %v", requestID, err)
	}
}

func (h *Handlers) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body := r.Body
	if h.opts.MaxUploadBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes)
	}
	defer body.Close()
	return io.ReadAll(body)
}

// statusFor maps a pipeline error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, media.ErrInvalidOptions):
		return http.StatusBadRequest
	case errors.Is(err, thumbnail.ErrUnsupported):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, jobs.ErrUnavailable),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	case errors.Is(err, media.ErrDecode), errors.Is(err, video.ErrLoad):
		return http.StatusUnprocessableEntity
	default:
		// media.ErrEncode and anything unexpected.
		return http.StatusInternalServerError
	}
}

func imageOptions(q url.Values) ([]media.Option, error) {
	maxWidth, maxHeight := media.DefaultMaxWidth, media.DefaultMaxHeight
	var err error
	if v := q.Get("maxWidth"); v != "" {
		if maxWidth, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("invalid maxWidth %q", v)
		}
	}
	if v := q.Get("maxHeight"); v != "" {
		if maxHeight, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("invalid maxHeight %q", v)
		}
	}
	opts := []media.Option{media.WithMaxSize(maxWidth, maxHeight)}

	if v := q.Get("quality"); v != "" {
		quality, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid quality %q", v)
		}
		opts = append(opts, media.WithQuality(quality))
	}
	return opts, nil
}

func timeOffset(q url.Values) (float64, error) {
	v := q.Get("t")
	if v == "" {
		return video.DefaultTimeOffset, nil
	}
	t, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid t %q", v)
	}
	return t, nil
}
