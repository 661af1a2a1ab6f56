// Package logger owns the process-wide zap sugared logger and the HTTP
// access-log middleware built on it.
package logger

import (
	"errors"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
)

// Log is the shared sugared logger. It starts as a no-op so packages
// can log before Init runs (and tests never have to initialize it).
var Log = zap.NewNop().Sugar()

// Init replaces the global logger with a development-config zap logger
// at the given level ("debug", "info", ...).
func Init(level string) error {
	atomicLevel, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return err
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = atomicLevel

	built, err := cfg.Build()
	if err != nil {
		return err
	}
	Log = built.Sugar()

	return nil
}

// Sync flushes buffered entries. Syncing stderr reports EINVAL on some
// platforms, which is not a real failure and is swallowed.
func Sync() error {
	if err := Log.Sync(); err != nil && !errors.Is(err, os.ErrInvalid) {
		return err
	}

	return nil
}

// statusRecorder captures the status code and body size written by the
// downstream handler for the access log line.
type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (rec *statusRecorder) WriteHeader(statusCode int) {
	rec.status = statusCode
	rec.ResponseWriter.WriteHeader(statusCode)
}

func (rec *statusRecorder) Write(p []byte) (int, error) {
	written, err := rec.ResponseWriter.Write(p)
	rec.size += written

	return written, err
}

// WithLoggingHTTPMiddleware logs one structured line per request:
// method, URI, resulting status, duration and response size.
func WithLoggingHTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
		start := time.Now()

		// Handlers that never call WriteHeader implicitly answer 200.
		recorder := &statusRecorder{ResponseWriter: response, status: http.StatusOK}

		next.ServeHTTP(recorder, request)

		Log.Infow("handled request",
			"method", request.Method,
			"uri", request.RequestURI,
			"status", recorder.status,
			"duration", time.Since(start),
			"size", recorder.size,
		)
	})
}
