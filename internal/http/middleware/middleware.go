package middleware

import (
	"net/http"
	"notesauth/internal/core/domain/logging"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const (
	RequestIDHeader       = "X-Request-ID"
	REQUEST_ID_MAX_LENGTH = 128
)

// RequestID keeps the caller's X-Request-ID or generates one, echoes it back and stores it
// in the request context for the logger.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" || len(requestID) > REQUEST_ID_MAX_LENGTH {
			requestID = uuid.NewString()
		}
		rw.Header().Set(RequestIDHeader, requestID)
		next.ServeHTTP(rw, r.WithContext(logging.WithRequestID(r.Context(), requestID)))
	})
}

func AccessLog(log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(rw, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			log.Info(
				r.Context(),
				"Request completed.",
				logging.Entry("method", r.Method),
				logging.Entry("path", r.URL.Path),
				logging.Entry("status", status),
				logging.Entry("latency", time.Since(start)),
				logging.Entry("bytes", ww.BytesWritten()),
			)
		})
	}
}
