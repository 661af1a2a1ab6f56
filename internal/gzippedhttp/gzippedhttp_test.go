package gzippedhttp

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonHandler(status int, payload interface{}) http.Handler {
	return http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
		response.Header().Set("Content-Type", "application/json")
		response.WriteHeader(status)
		_ = json.NewEncoder(response).Encode(payload)
	})
}

func gunzip(t *testing.T, compressed []byte) []byte {
	t.Helper()

	zr, err := gzip.NewReader(bytes.NewReader(compressed))
	require.NoError(t, err)
	defer zr.Close()

	plain, err := io.ReadAll(zr)
	require.NoError(t, err)

	return plain
}

func TestGzipResponseEncodesEveryStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{name: "success", status: http.StatusOK},
		{name: "client error", status: http.StatusBadRequest},
		{name: "unauthorized", status: http.StatusUnauthorized},
		{name: "server error", status: http.StatusInternalServerError},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			handler := GzipResponse(jsonHandler(test.status, map[string]string{"msg": "payload"}))

			request := httptest.NewRequest(http.MethodGet, "/", nil)
			request.Header.Set("Accept-Encoding", "gzip")
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, request)

			assert.Equal(t, test.status, recorder.Code)
			require.Equal(t, "gzip", recorder.Header().Get("Content-Encoding"))

			var decoded map[string]string
			require.NoError(t, json.Unmarshal(gunzip(t, recorder.Body.Bytes()), &decoded))
			assert.Equal(t, "payload", decoded["msg"])
		})
	}
}

func TestGzipResponseImplicitStatusHeader(t *testing.T) {
	// A handler that never calls WriteHeader still gets the encoding header.
	handler := GzipResponse(http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
		_, _ = response.Write([]byte(`{"msg":"payload"}`))
	}))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Accept-Encoding", "gzip")
	recorder := httptest.NewRecorder()

	handler.ServeHTTP(recorder, request)

	require.Equal(t, "gzip", recorder.Header().Get("Content-Encoding"))
	assert.JSONEq(t, `{"msg":"payload"}`, string(gunzip(t, recorder.Body.Bytes())))
}

func TestGzipResponseSkipsClientsWithoutGzip(t *testing.T) {
	handler := GzipResponse(jsonHandler(http.StatusBadRequest, map[string]string{"msg": "plain"}))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	recorder := httptest.NewRecorder()

	handler.ServeHTTP(recorder, request)

	assert.Empty(t, recorder.Header().Get("Content-Encoding"))
	assert.JSONEq(t, `{"msg":"plain"}`, recorder.Body.String())
}

func TestUngzipRequestDecompressesBody(t *testing.T) {
	var seenByHandler []byte
	handler := UngzipRequest(http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
		body, err := io.ReadAll(request.Body)
		require.NoError(t, err)
		seenByHandler = body
	}))

	var compressed bytes.Buffer
	zw := gzip.NewWriter(&compressed)
	_, err := zw.Write([]byte(`{"status":"Developer"}`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	request := httptest.NewRequest(http.MethodPost, "/", &compressed)
	request.Header.Set("Content-Encoding", "gzip")
	recorder := httptest.NewRecorder()

	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"status":"Developer"}`, string(seenByHandler))
}

func TestUngzipRequestRejectsCorruptBody(t *testing.T) {
	handler := UngzipRequest(http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
		t.Fatal("handler must not run for a corrupt body")
	}))

	request := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("not gzip at all"))
	request.Header.Set("Content-Encoding", "gzip")
	recorder := httptest.NewRecorder()

	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestUngzipRequestPassesPlainBodyThrough(t *testing.T) {
	var seenByHandler []byte
	handler := UngzipRequest(http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
		body, err := io.ReadAll(request.Body)
		require.NoError(t, err)
		seenByHandler = body
	}))

	request := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"status":"Developer"}`))
	recorder := httptest.NewRecorder()

	handler.ServeHTTP(recorder, request)

	assert.JSONEq(t, `{"status":"Developer"}`, string(seenByHandler))
}
