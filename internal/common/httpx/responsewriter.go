package httpx

import (
	"net/http"
	"sync"
)

// ResponseWriter wraps http.ResponseWriter and records whether a response
// has been started. It is safe for use by a handler and a middleware
// concurrently.
type ResponseWriter struct {
	http.ResponseWriter
	mu      sync.Mutex
	written bool
	status  int
}

// NewResponseWriter creates a new ResponseWriter wrapping w.
func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{ResponseWriter: w}
}

// WriteHeader is a no-op once headers were written.
func (rw *ResponseWriter) WriteHeader(code int) {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	rw.writeHeader(code)
}

func (rw *ResponseWriter) writeHeader(code int) {
	if rw.written {
		return
	}
	rw.status = code
	rw.written = true
	rw.ResponseWriter.WriteHeader(code)
}

// Write writes StatusOK first if no header was written.
func (rw *ResponseWriter) Write(b []byte) (int, error) {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	rw.writeHeader(http.StatusOK)
	return rw.ResponseWriter.Write(b)
}

// Written reports whether headers or body were written.
func (rw *ResponseWriter) Written() bool {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	return rw.written
}

// Status returns the status code, or http.StatusOK if none was set.
func (rw *ResponseWriter) Status() int {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	if rw.status == 0 {
		return http.StatusOK
	}
	return rw.status
}

// Flush implements http.Flusher if the underlying writer supports it.
func (rw *ResponseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
