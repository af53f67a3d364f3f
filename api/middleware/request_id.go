package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/tradesphere/tradesphere-backend/pkg/logger"
)

const requestIDHeader = "X-Request-ID"

// RequestID assigns a request id when the client did not supply one and
// threads it through the context logger and response headers.
func RequestID(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(requestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}

			ctx := log.WithRequestID(r.Context(), requestID)
			w.Header().Set(requestIDHeader, requestID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
