package daemon

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"shelver/internal/logging"
	"shelver/internal/services"
)

// requestIDHeader is the header chi's RequestID middleware reads.
const requestIDHeader = "X-Request-Id"

// requestContext copies chi's request id into the service context so every
// log line of the request carries it, and echoes it back to the caller.
func requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := middleware.GetReqID(r.Context())
		if reqID == "" {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set(requestIDHeader, reqID)
		next.ServeHTTP(w, r.WithContext(services.WithRequestID(r.Context(), reqID)))
	})
}

func loggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			statusCode := ww.Status()
			if statusCode == 0 {
				statusCode = http.StatusOK
			}
			attrs := []logging.Attr{
				logging.String("method", r.Method),
				logging.String("path", r.URL.Path),
				logging.Int("status_code", statusCode),
				logging.Int("bytes", ww.BytesWritten()),
				logging.Duration("duration", time.Since(start)),
			}
			log := logging.WithContext(r.Context(), logger)
			switch {
			case statusCode >= 500:
				log.Error("http request", logging.Args(attrs...)...)
			case statusCode >= 400:
				log.Warn("http request", logging.Args(attrs...)...)
			default:
				log.Debug("http request", logging.Args(attrs...)...)
			}
		})
	}
}
