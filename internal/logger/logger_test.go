package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func withObservedLog(t *testing.T) *observer.ObservedLogs {
	t.Helper()

	core, logs := observer.New(zap.InfoLevel)
	previous := Log
	Log = zap.New(core).Sugar()
	t.Cleanup(func() { Log = previous })

	return logs
}

func TestMiddlewareLogsExplicitStatus(t *testing.T) {
	logs := withObservedLog(t)

	handler := WithLoggingHTTPMiddleware(http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
		response.WriteHeader(http.StatusNotFound)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(http.StatusNotFound), entries[0].ContextMap()["status"])
}

func TestMiddlewareLogsImplicitOKStatus(t *testing.T) {
	logs := withObservedLog(t)

	// Writing a body without WriteHeader is an implicit 200.
	handler := WithLoggingHTTPMiddleware(http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
		_, _ = response.Write([]byte("pong"))
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

	entries := logs.All()
	require.Len(t, entries, 1)

	contextMap := entries[0].ContextMap()
	assert.Equal(t, int64(http.StatusOK), contextMap["status"])
	assert.Equal(t, int64(len("pong")), contextMap["size"])
}
