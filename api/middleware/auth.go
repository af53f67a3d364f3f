package middleware

import (
	"net/http"
	"strings"

	"github.com/tradesphere/tradesphere-backend/api/responses"
	"github.com/tradesphere/tradesphere-backend/pkg/auth"
	"github.com/tradesphere/tradesphere-backend/pkg/config"
	apperrors "github.com/tradesphere/tradesphere-backend/pkg/errors"
	"github.com/tradesphere/tradesphere-backend/pkg/logger"
)

// Auth validates the bearer token and stores the principal on the context.
func Auth(cfg config.JWTConfig, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				responses.WriteError(r.Context(), w, log, apperrors.New(apperrors.CodeUnauthorized, "missing authorization header"))
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				responses.WriteError(r.Context(), w, log, apperrors.New(apperrors.CodeUnauthorized, "malformed authorization header"))
				return
			}

			claims, err := auth.ParseAccessToken(cfg, strings.TrimSpace(parts[1]))
			if err != nil {
				responses.WriteError(r.Context(), w, log, apperrors.Wrap(apperrors.CodeUnauthorized, err, "invalid access token"))
				return
			}
			if !claims.Role.IsValid() {
				responses.WriteError(r.Context(), w, log, apperrors.New(apperrors.CodeUnauthorized, "invalid role claim"))
				return
			}

			ctx := WithPrincipal(r.Context(), claims.UserID, claims.Role)
			ctx = log.WithUserID(ctx, claims.UserID.String())
			ctx = log.WithActorRole(ctx, string(claims.Role))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
