package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog/log"

	"github.com/tansive/nanobanana/internal/common/httpx"
)

// PanicHandler recovers from panics in handlers, logs the stack, and answers
// 500 if nothing was written yet.
func PanicHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw, ok := w.(*httpx.ResponseWriter)
		if !ok {
			rw = httpx.NewResponseWriter(w)
		}
		defer func() {
			if err := recover(); err != nil {
				log.Ctx(r.Context()).Error().
					Str("panic", fmt.Sprintf("%v", err)).
					Str("stack_trace", string(debug.Stack())).
					Msg("panic occurred")

				if !rw.Written() {
					httpx.ErrApplicationError("unable to process request").Send(rw)
				}
			}
		}()
		next.ServeHTTP(rw, r)
	})
}
