// Package middleware provides HTTP middleware for request logging, request
// deadlines, and panic recovery, logging through zerolog.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tansive/nanobanana/internal/common/httpx"
	"github.com/tansive/nanobanana/internal/common/uuid"
)

type requestIdContextKey string

const (
	requestIdKey    = requestIdContextKey("requestId")
	RequestIDHeader = "X-Nanobanana-Request-ID"
)

// RequestLogger tags each request with a request id, carried in the context
// logger and the response header, and logs its start and completion.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()

		requestID := uuid.NewRequestID()
		ctx = context.WithValue(ctx, requestIdKey, requestID)
		ctx = log.With().Str("request_id", requestID).Logger().WithContext(ctx)

		w.Header().Set(RequestIDHeader, requestID)
		rw := httpx.NewResponseWriter(w)

		log.Ctx(ctx).Info().
			Str("requestMethod", r.Method).
			Str("requestPath", r.URL.Path).
			Str("remoteIP", r.RemoteAddr).
			Str("proto", r.Proto).
			Msg("incoming request")

		defer func() {
			log.Ctx(ctx).Info().
				Int("status", rw.Status()).
				Str("duration", fmt.Sprintf("%dms", time.Since(start).Milliseconds())).
				Msg("request completed")
		}()

		next.ServeHTTP(rw, r.WithContext(ctx))
	})
}

// RequestIDFromContext returns the id assigned by RequestLogger, or "".
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIdKey).(string); ok {
		return id
	}
	return ""
}
