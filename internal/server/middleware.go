package server

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/tartampluch/go-natal/internal/config"
	"github.com/tartampluch/go-natal/internal/metrics"
)

// statusRecorder captures the status code written by the next handler.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.written {
		sr.statusCode = code
		sr.written = true
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if !sr.written {
		sr.statusCode = http.StatusOK
		sr.written = true
	}
	return sr.ResponseWriter.Write(b)
}

// recoveryMiddleware turns a handler panic into a 500 JSON error.
func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error(config.ErrPanicRecovered,
					config.LogKeyComponent, config.CompHTTP,
					config.LogKeyPanic, rec,
					config.LogKeyMethod, r.Method,
					config.LogKeyPath, r.URL.Path,
					config.LogKeyStack, string(debug.Stack()),
				)
				writeError(w, http.StatusInternalServerError, errInternal)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs one line per request, at a level chosen by status,
// and counts the status in rec.
func loggingMiddleware(rec metrics.Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(sr, r)

			level := slog.LevelInfo
			switch {
			case sr.statusCode >= http.StatusInternalServerError:
				level = slog.LevelError
			case sr.statusCode >= http.StatusBadRequest:
				level = slog.LevelWarn
			}

			slog.Log(r.Context(), level, config.MsgHTTPRequest,
				config.LogKeyComponent, config.CompHTTP,
				config.LogKeyMethod, r.Method,
				config.LogKeyPath, r.URL.Path,
				config.LogKeyStatus, sr.statusCode,
				config.LogKeyDuration, float64(time.Since(start).Nanoseconds())/float64(time.Millisecond),
			)
			rec.RecordHTTPStatus(sr.statusCode)
		})
	}
}
