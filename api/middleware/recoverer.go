package middleware

import (
	"fmt"
	"net/http"

	"github.com/tradesphere/tradesphere-backend/api/responses"
	apperrors "github.com/tradesphere/tradesphere-backend/pkg/errors"
	"github.com/tradesphere/tradesphere-backend/pkg/logger"
)

// Recoverer converts panics into 500 responses instead of dropping the connection.
func Recoverer(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					err := apperrors.Wrap(apperrors.CodeInternal, fmt.Errorf("panic: %v", rec), "request handler panicked")
					responses.WriteError(r.Context(), w, log, err)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
