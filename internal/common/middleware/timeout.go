package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tansive/nanobanana/internal/common/httpx"
)

// SetTimeout bounds the request context to timeout. Handlers see the deadline
// through ctx and are expected to stop; if one returns after the deadline
// without writing, a 408 is sent.
func SetTimeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			rw, ok := w.(*httpx.ResponseWriter)
			if !ok {
				rw = httpx.NewResponseWriter(w)
			}
			next.ServeHTTP(rw, r.WithContext(ctx))

			if ctx.Err() == context.DeadlineExceeded && !rw.Written() {
				log.Ctx(ctx).Error().Dur("timeout", timeout).Msg("request timed out")
				httpx.ErrRequestTimeout().Send(rw)
			}
		})
	}
}
