package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/tradesphere/tradesphere-backend/pkg/enums"
)

type ctxKeyUserID struct{}
type ctxKeyRole struct{}

// WithPrincipal attaches the authenticated principal to the context.
func WithPrincipal(ctx context.Context, userID uuid.UUID, role enums.Role) context.Context {
	ctx = context.WithValue(ctx, ctxKeyUserID{}, userID)
	return context.WithValue(ctx, ctxKeyRole{}, role)
}

// UserIDFromContext resolves the authenticated user id.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ctxKeyUserID{}).(uuid.UUID)
	return id, ok
}

// RoleFromContext resolves the authenticated role.
func RoleFromContext(ctx context.Context) (enums.Role, bool) {
	role, ok := ctx.Value(ctxKeyRole{}).(enums.Role)
	return role, ok
}
