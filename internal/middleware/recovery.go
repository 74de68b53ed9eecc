package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"toppharma/internal/httputil"
)

// Recovery turns a handler panic into a 500 problem response carrying the
// request ID, so a failed directory page can be matched to its log line.
// The log records which database the request was routed to. A panic after
// the response has started only gets logged; http.ErrAbortHandler is
// re-raised for net/http to handle.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusWriter{ResponseWriter: w}
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				requestID := w.Header().Get(RequestIDHeader)
				target := "default"
				if t, ok := cookieTarget(r); ok {
					target = string(t)
				}
				logger.Error("panic recovered",
					"error", rec,
					"request_id", requestID,
					"method", r.Method,
					"path", r.URL.Path,
					"db_target", target,
					"response_started", sw.status != 0,
					"stack", string(debug.Stack()),
				)

				if sw.status != 0 {
					return
				}
				var extras map[string]interface{}
				if requestID != "" {
					extras = map[string]interface{}{"request_id": requestID}
				}
				httputil.RespondErrorWithExtras(w, http.StatusInternalServerError, "internal server error", extras)
			}()

			next.ServeHTTP(sw, r)
		})
	}
}
