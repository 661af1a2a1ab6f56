// Package gzippedhttp holds the gzip middleware pair: request bodies
// declared as gzip are decompressed before the handler sees them, and
// responses are compressed for clients that accept it.
package gzippedhttp

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"
)

// Response writers are pooled: compressing every API response would
// otherwise allocate a fresh gzip state per request.
var writerPool = sync.Pool{
	New: func() interface{} {
		zw, _ := gzip.NewWriterLevel(io.Discard, gzip.BestSpeed)
		return zw
	},
}

type decompressingBody struct {
	original io.ReadCloser
	zr       *gzip.Reader
}

func newDecompressingBody(body io.ReadCloser) (*decompressingBody, error) {
	zr, err := gzip.NewReader(body)
	if err != nil {
		return nil, err
	}

	return &decompressingBody{original: body, zr: zr}, nil
}

func (b *decompressingBody) Read(p []byte) (int, error) {
	return b.zr.Read(p)
}

func (b *decompressingBody) Close() error {
	if err := b.original.Close(); err != nil {
		return err
	}

	return b.zr.Close()
}

type compressingWriter struct {
	http.ResponseWriter
	zw *gzip.Writer
}

// newCompressingWriter declares the gzip encoding up front: every body
// byte goes through the gzip writer, error responses included, so the
// header must match regardless of the status the handler picks later.
func newCompressingWriter(w http.ResponseWriter) *compressingWriter {
	zw := writerPool.Get().(*gzip.Writer)
	zw.Reset(w)
	w.Header().Set("Content-Encoding", "gzip")

	return &compressingWriter{ResponseWriter: w, zw: zw}
}

func (w *compressingWriter) Write(p []byte) (int, error) {
	return w.zw.Write(p)
}

func (w *compressingWriter) finish() error {
	err := w.zw.Close()
	writerPool.Put(w.zw)

	return err
}

// GzipResponse compresses the response body when the client's
// Accept-Encoding allows gzip, otherwise it passes the writer through
// untouched.
func GzipResponse(next http.Handler) http.Handler {
	return http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
		if !strings.Contains(request.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(response, request)

			return
		}

		compressed := newCompressingWriter(response)
		defer compressed.finish()

		next.ServeHTTP(compressed, request)
	})
}

// UngzipRequest swaps the request body for a decompressing reader when
// the Content-Encoding header declares gzip.
func UngzipRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
		if strings.Contains(request.Header.Get("Content-Encoding"), "gzip") {
			body, err := newDecompressingBody(request.Body)
			if err != nil {
				response.WriteHeader(http.StatusBadRequest)

				return
			}
			defer body.Close()
			request.Body = body
		}

		next.ServeHTTP(response, request)
	})
}
