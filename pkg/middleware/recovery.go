package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	apperrors "bookminton/pkg/errors"
	httputil "bookminton/pkg/http"
	"bookminton/pkg/logger"
)

func Recovery(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				log.Error("Panic recovered",
					"request_id", RequestIDFrom(r.Context()),
					"error", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)

				if err := httputil.WriteError(w, apperrors.Internal("panic", fmt.Errorf("%v", rec))); err != nil {
					log.Error("failed to write error response", "handler", "Recovery", "operation", "WriteError", "error", err)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
