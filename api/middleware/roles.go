package middleware

import (
	"net/http"

	"github.com/tradesphere/tradesphere-backend/api/responses"
	"github.com/tradesphere/tradesphere-backend/pkg/enums"
	apperrors "github.com/tradesphere/tradesphere-backend/pkg/errors"
	"github.com/tradesphere/tradesphere-backend/pkg/logger"
)

// RequireRole rejects requests whose principal is not one of the allowed roles.
func RequireRole(log *logger.Logger, allowed ...enums.Role) func(http.Handler) http.Handler {
	allowedSet := make(map[enums.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := RoleFromContext(r.Context())
			if !ok {
				responses.WriteError(r.Context(), w, log, apperrors.New(apperrors.CodeUnauthorized, "authentication required"))
				return
			}
			if _, ok := allowedSet[role]; !ok {
				responses.WriteError(r.Context(), w, log, apperrors.New(apperrors.CodeForbidden, "insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
