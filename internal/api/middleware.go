package api

import (
	"log/slog"
	"net/http"
	"time"

	"itinerary-scoring-service/internal/platform/obs"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// requestLogger logs end-to-end request duration and response size.
// Wire it after chimiddleware.RequestID so the request id is available.
func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.InfoContext(r.Context(), "request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.RequestURI()),
				slog.Int("status", ww.Status()),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Int64("dur_ms", time.Since(start).Milliseconds()),
				slog.String("req_id", chimiddleware.GetReqID(r.Context())),
			)
		})
	}
}

// propagateRequestID copies chi's request id into the context key used by
// the service layer, so pipeline logs and spans carry it too.
func propagateRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := chimiddleware.GetReqID(r.Context()); id != "" {
			r = r.WithContext(obs.WithRequestID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}
