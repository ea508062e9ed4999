package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLoggerSetsRequestID(t *testing.T) {
	var seen string
	h := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

	require.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get(RequestIDHeader))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestPanicHandler(t *testing.T) {
	h := RequestLogger(PanicHandler(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/mcp", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "unable to process request")
}

func TestSetTimeout(t *testing.T) {
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	w := httptest.NewRecorder()
	SetTimeout(10*time.Millisecond)(slow).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/mcp", nil))
	assert.Equal(t, http.StatusRequestTimeout, w.Code)

	fast := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	w = httptest.NewRecorder()
	SetTimeout(time.Second)(fast).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/mcp", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
