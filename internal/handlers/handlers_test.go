package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-derivatives/internal/jobs"
	"media-derivatives/internal/media"
	"media-derivatives/internal/middleware"
	"media-derivatives/internal/startup"
	"media-derivatives/internal/thumbnail"
	"media-derivatives/internal/video"
)

type fakeSampler struct {
	offset float64
	mime   string
	err    error
}

func (f *fakeSampler) CreateVideoThumbnail(_ context.Context, buf media.Buffer, timeOffset float64) (*media.Result, error) {
	f.offset = timeOffset
	f.mime = buf.MimeType
	if f.err != nil {
		return nil, f.err
	}
	return &media.Result{Data: []byte{0xff, 0xd8, 0xff, 0xd9}, MimeType: media.MimeJPEG, Width: 169, Height: 300, Quality: 0.8}, nil
}

type fakeLimiter struct {
	err      error
	acquired atomic.Int32
	released atomic.Int32
}

func (f *fakeLimiter) Acquire(context.Context) (func(), error) {
	if f.err != nil {
		return nil, f.err
	}
	f.acquired.Add(1)
	return func() { f.released.Add(1) }, nil
}

type fakeMemory bool

func (f fakeMemory) IsPaused() bool { return bool(f) }

func newTestRouter(h *Handlers) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RequestID)
	h.RegisterRoutes(r, true)
	return r
}

func newTestHandlers(videos thumbnail.VideoSampler, limiter JobLimiter, opts Options) *Handlers {
	return New(media.NewEncoder(media.EncoderConfig{}), videos, limiter, opts)
}

func pngBody(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x % 256), uint8(y % 256), 90, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func post(t *testing.T, r http.Handler, target, contentType string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

func TestImageThumbnail(t *testing.T) {
	limiter := &fakeLimiter{}
	r := newTestRouter(newTestHandlers(&fakeSampler{}, limiter, Options{}))

	w := post(t, r, "/api/thumbnail/image", "image/png", pngBody(t, 800, 600))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, media.MimeJPEG, w.Header().Get("Content-Type"))
	assert.Equal(t, "400", w.Header().Get(HeaderWidth))
	assert.Equal(t, "300", w.Header().Get(HeaderHeight))
	assert.Equal(t, "0.8", w.Header().Get(HeaderQuality))
	assert.Equal(t, media.KindImage, w.Header().Get(HeaderKind))
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 400, cfg.Width)
	assert.Equal(t, 300, cfg.Height)

	assert.Equal(t, int32(1), limiter.acquired.Load())
	assert.Equal(t, int32(1), limiter.released.Load())
}

func TestImageThumbnailQueryParameters(t *testing.T) {
	r := newTestRouter(newTestHandlers(&fakeSampler{}, nil, Options{}))

	w := post(t, r, "/api/thumbnail/image?maxWidth=100&maxHeight=100&quality=0.5", "image/png", pngBody(t, 800, 600))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "100", w.Header().Get(HeaderWidth))
	assert.Equal(t, "75", w.Header().Get(HeaderHeight))
	assert.Equal(t, "0.5", w.Header().Get(HeaderQuality))
}

func TestImageThumbnailBadRequests(t *testing.T) {
	r := newTestRouter(newTestHandlers(&fakeSampler{}, nil, Options{}))
	body := pngBody(t, 40, 30)

	tests := []struct {
		name  string
		query string
	}{
		{"non-numeric width", "?maxWidth=wide"},
		{"non-numeric height", "?maxHeight=tall"},
		{"non-numeric quality", "?quality=high"},
		{"zero width", "?maxWidth=0"},
		{"negative height", "?maxHeight=-5"},
		{"quality above one", "?quality=1.5"},
		{"quality NaN", "?quality=NaN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(t, r, "/api/thumbnail/image"+tt.query, "image/png", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.NotEmpty(t, decodeError(t, w))
		})
	}
}

func TestImageThumbnailUndecodable(t *testing.T) {
	r := newTestRouter(newTestHandlers(&fakeSampler{}, nil, Options{}))

	for name, body := range map[string][]byte{
		"garbage": []byte("definitely not an image"),
		"empty":   {},
	} {
		t.Run(name, func(t *testing.T) {
			w := post(t, r, "/api/thumbnail/image", "image/png", body)
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			assert.Contains(t, decodeError(t, w), "decode error")
		})
	}
}

func TestVideoThumbnail(t *testing.T) {
	sampler := &fakeSampler{}
	r := newTestRouter(newTestHandlers(sampler, nil, Options{}))

	w := post(t, r, "/api/thumbnail/video?t=2.5", "video/mp4", []byte("fake video"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2.5, sampler.offset)
	assert.Equal(t, "video/mp4", sampler.mime)
	assert.Equal(t, "169", w.Header().Get(HeaderWidth))
	assert.Equal(t, "300", w.Header().Get(HeaderHeight))

	w = post(t, r, "/api/thumbnail/video", "video/mp4", []byte("fake video"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, video.DefaultTimeOffset, sampler.offset)

	w = post(t, r, "/api/thumbnail/video?t=soon", "video/mp4", []byte("fake video"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVideoThumbnailErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"load", &media.StageError{Kind: video.ErrLoad, Stage: "metadata", Err: errors.New("no video stream")}, http.StatusUnprocessableEntity},
		{"decode", &media.StageError{Kind: media.ErrDecode, Stage: "decode"}, http.StatusUnprocessableEntity},
		{"encode", &media.StageError{Kind: media.ErrEncode, Stage: "encode"}, http.StatusInternalServerError},
		{"canceled", &media.StageError{Kind: video.ErrLoad, Stage: "capture", Err: context.Canceled}, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(newTestHandlers(&fakeSampler{err: tt.err}, nil, Options{}))
			w := post(t, r, "/api/thumbnail/video", "video/mp4", []byte("fake video"))
			assert.Equal(t, tt.want, w.Code)
			assert.Equal(t, tt.err.Error(), decodeError(t, w))
		})
	}
}

func TestThumbnailDispatch(t *testing.T) {
	sampler := &fakeSampler{}
	r := newTestRouter(newTestHandlers(sampler, nil, Options{}))

	t.Run("image by content type", func(t *testing.T) {
		w := post(t, r, "/api/thumbnail", "image/png", pngBody(t, 80, 60))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "80", w.Header().Get(HeaderWidth))
		assert.Equal(t, media.KindImage, w.Header().Get(HeaderKind))
	})

	t.Run("image sniffed without content type", func(t *testing.T) {
		w := post(t, r, "/api/thumbnail", "", pngBody(t, 80, 60))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "60", w.Header().Get(HeaderHeight))
	})

	t.Run("video by content type", func(t *testing.T) {
		w := post(t, r, "/api/thumbnail", "video/webm", []byte("fake video"))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "video/webm", sampler.mime)
		assert.Equal(t, video.DefaultTimeOffset, sampler.offset)
		assert.Equal(t, media.KindVideo, w.Header().Get(HeaderKind))
	})

	t.Run("unsupported", func(t *testing.T) {
		w := post(t, r, "/api/thumbnail", "text/plain", []byte("hello"))
		assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
		assert.Contains(t, decodeError(t, w), "unsupported media type")
		assert.Equal(t, "other", w.Header().Get(HeaderKind))
	})
}

func TestThumbnailAccessLog(t *testing.T) {
	handler := middleware.RequestID(middleware.Logger(middleware.DefaultLoggingConfig())(
		newTestRouter(newTestHandlers(&fakeSampler{err: &media.StageError{Kind: video.ErrLoad, Stage: "metadata"}}, nil, Options{})),
	))

	var buf bytes.Buffer
	prevOut, prevFlags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
	})

	w := post(t, handler, "/api/thumbnail/image", "image/png", pngBody(t, 800, 600))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, buf.String(), " image ok 400x300 ")
	assert.Contains(t, buf.String(), w.Header().Get(middleware.RequestIDHeader))

	buf.Reset()
	w = post(t, handler, "/api/thumbnail/video", "video/mp4", []byte("fake video"))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, buf.String(), " video rejected - ")
}

func TestUploadLimit(t *testing.T) {
	r := newTestRouter(newTestHandlers(&fakeSampler{}, nil, Options{MaxUploadBytes: 1024}))

	w := post(t, r, "/api/thumbnail/video", "video/mp4", make([]byte, 2048))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, decodeError(t, w), "1024")

	w = post(t, r, "/api/thumbnail/video", "video/mp4", make([]byte, 512))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJobLimiterBusy(t *testing.T) {
	sampler := &fakeSampler{}
	limiter := &fakeLimiter{err: jobs.ErrUnavailable}
	r := newTestRouter(newTestHandlers(sampler, limiter, Options{}))

	w := post(t, r, "/api/thumbnail/video", "video/mp4", []byte("fake video"))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Equal(t, media.KindVideo, w.Header().Get(HeaderKind))
	assert.Empty(t, sampler.mime, "sampler must not run without a slot")
}

func TestJobLimiterBoundsRealRequests(t *testing.T) {
	limiter := jobs.NewLimiter(1, nil)
	r := newTestRouter(newTestHandlers(&fakeSampler{}, limiter, Options{}))

	release, err := limiter.Acquire(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/thumbnail/video", bytes.NewReader([]byte("fake"))).WithContext(ctx)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	release()
	w = post(t, r, "/api/thumbnail/video", "video/mp4", []byte("fake"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, limiter.GetStats().JobsActive)
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		opts       Options
		wantStatus string
	}{
		{"healthy", Options{FFmpegAvailable: true, Memory: fakeMemory(false)}, statusHealthy},
		{"no ffmpeg", Options{FFmpegAvailable: false}, statusDegraded},
		{"memory pressure", Options{FFmpegAvailable: true, Memory: fakeMemory(true)}, statusDegraded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(newTestHandlers(&fakeSampler{}, nil, tt.opts))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

			require.Equal(t, http.StatusOK, w.Code)
			var resp HealthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Equal(t, startup.Version, resp.Version)
			assert.Positive(t, resp.NumCPU)
		})
	}
}

func TestLivenessCheck(t *testing.T) {
	r := newTestRouter(newTestHandlers(&fakeSampler{}, nil, Options{}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/livez", http.NoBody))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"alive"}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodHead, "/livez", http.NoBody))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestGetVersion(t *testing.T) {
	r := newTestRouter(newTestHandlers(&fakeSampler{}, nil, Options{}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/version", http.NoBody))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))

	var info startup.BuildInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, startup.GetBuildInfo(), info)
}

func TestMetricsRoute(t *testing.T) {
	h := newTestHandlers(&fakeSampler{}, nil, Options{})

	enabled := mux.NewRouter()
	h.RegisterRoutes(enabled, true)
	w := httptest.NewRecorder()
	enabled.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "media_derivatives_")

	disabled := mux.NewRouter()
	h.RegisterRoutes(disabled, false)
	w = httptest.NewRecorder()
	disabled.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetricsHandlerFormats(t *testing.T) {
	h := newTestHandlers(&fakeSampler{}, nil, Options{})
	handler := h.MetricsHandler()

	req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
	req.Header.Set("Accept", "application/openmetrics-text; version=1.0.0")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "application/openmetrics-text"),
		"content type %q", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasSuffix(w.Body.String(), "# EOF\n"))

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain"))
	assert.Contains(t, w.Body.String(), "promhttp_metric_handler_requests_total")
}

func TestMethodNotAllowed(t *testing.T) {
	r := newTestRouter(newTestHandlers(&fakeSampler{}, nil, Options{}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/thumbnail/image", http.NoBody))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"options", media.ErrInvalidOptions, http.StatusBadRequest},
		{"unsupported", thumbnail.ErrUnsupported, http.StatusUnsupportedMediaType},
		{"no slot", jobs.ErrUnavailable, http.StatusServiceUnavailable},
		{"deadline", context.DeadlineExceeded, http.StatusServiceUnavailable},
		{"decode", media.ErrDecode, http.StatusUnprocessableEntity},
		{"load", video.ErrLoad, http.StatusUnprocessableEntity},
		{"encode", media.ErrEncode, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
