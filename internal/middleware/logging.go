package middleware

import (
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Derivative headers written by the thumbnail handlers and read back into
// the access log.
const (
	ThumbnailKindHeader   = "X-Thumbnail-Kind"
	ThumbnailWidthHeader  = "X-Thumbnail-Width"
	ThumbnailHeightHeader = "X-Thumbnail-Height"
)

// accessFields is the W3C #Fields directive for every access line.
const accessFields = "date time c-ip cs-method cs-uri-stem cs-uri-query sc-status sc-bytes time-taken x-request-id x-kind x-outcome x-size cs(User-Agent)"

// statusRecorder captures the status and body size of a response.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	bytes       int64
	wroteHeader bool
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (rw *statusRecorder) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.status = code
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += int64(n)
	return n, err
}

// LoggingConfig holds configuration for the access log.
type LoggingConfig struct {
	LogHealthChecks bool
}

// DefaultLoggingConfig logs everything except /metrics scrapes.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{LogHealthChecks: true}
}

var healthCheckPaths = map[string]bool{
	"/health": true,
	"/livez":  true,
}

// Logger returns middleware writing one W3C Extended Log Format line per
// request. Thumbnail requests carry their media kind, outcome class and
// derivative size.
func Logger(config LoggingConfig) func(http.Handler) http.Handler {
	log.Printf("#Fields: %s", accessFields)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/metrics" || (!config.LogHealthChecks && healthCheckPaths[r.URL.Path]) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)

			log.Println(accessLine(r, rec, time.Since(start)))
		})
	}
}

func accessLine(r *http.Request, rec *statusRecorder, took time.Duration) string {
	now := time.Now().UTC()
	h := rec.Header()

	kind := h.Get(ThumbnailKindHeader)
	result := "-"
	if kind != "" {
		result = outcome(rec.status)
	}

	fields := []string{
		now.Format("2006-01-02"),
		now.Format("15:04:05"),
		orDash(sanitizeLogField(getClientIP(r))),
		orDash(sanitizeLogField(r.Method)),
		orDash(sanitizeLogField(r.URL.Path)),
		orDash(sanitizeLogField(r.URL.RawQuery)),
		strconv.Itoa(rec.status),
		strconv.FormatInt(rec.bytes, 10),
		strconv.FormatInt(took.Milliseconds(), 10),
		orDash(RequestIDFromContext(r.Context())),
		orDash(sanitizeLogField(kind)),
		result,
		derivativeSize(h),
		orDash(escapeW3CField(sanitizeLogField(r.UserAgent()))),
	}
	return strings.Join(fields, " ")
}

// outcome classifies a thumbnail response status.
func outcome(status int) string {
	switch {
	case status < http.StatusBadRequest:
		return "ok"
	case status == http.StatusServiceUnavailable || status == http.StatusTooManyRequests:
		return "busy"
	case status < http.StatusInternalServerError:
		return "rejected"
	default:
		return "failed"
	}
}

// derivativeSize formats the derivative dimensions as WxH, or "-" when the
// response carries none.
func derivativeSize(h http.Header) string {
	w, errW := strconv.Atoi(h.Get(ThumbnailWidthHeader))
	ht, errH := strconv.Atoi(h.Get(ThumbnailHeightHeader))
	if errW != nil || errH != nil {
		return "-"
	}
	return strconv.Itoa(w) + "x" + strconv.Itoa(ht)
}

// sanitizeLogField strips control characters that could forge log lines or
// inject terminal escapes. Line breaks become spaces; tabs are kept.
func sanitizeLogField(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\r':
			return ' '
		case r == '\t':
			return r
		case r < 0x20:
			return -1
		}
		return r
	}, s)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// escapeW3CField quotes values containing whitespace or quotes, doubling
// embedded quotes.
func escapeW3CField(s string) string {
	if !strings.ContainsAny(s, " \t\"") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
