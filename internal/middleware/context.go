package middleware

import (
	"context"

	"civic-backend/internal/utils"
)

// WithIdentity returns ctx carrying uid and role as WithAuth would set them.
func WithIdentity(ctx context.Context, uid, role string) context.Context {
	ctx = context.WithValue(ctx, CtxUserID, uid)
	return context.WithValue(ctx, CtxRole, role)
}

// Identity returns the caller set by WithAuth; both are empty for anonymous
// requests.
func Identity(ctx context.Context) (uid, role string) {
	uid, _ = utils.Value[string](ctx, CtxUserID)
	role, _ = utils.Value[string](ctx, CtxRole)
	return uid, role
}

func UserID(ctx context.Context) string {
	uid, _ := Identity(ctx)
	return uid
}
