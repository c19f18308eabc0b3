package httpx

import "context"

type ctxKey string

const (
	CtxKeyUserID ctxKey = "user_id"
	CtxKeyEmail  ctxKey = "email"
	CtxKeyMode   ctxKey = "mode"
)

// WithIdentity stores the authenticated caller on ctx.
func WithIdentity(ctx context.Context, mode, userID, email string) context.Context {
	ctx = context.WithValue(ctx, CtxKeyMode, mode)
	ctx = context.WithValue(ctx, CtxKeyUserID, userID)
	ctx = context.WithValue(ctx, CtxKeyEmail, email)
	return ctx
}

func UserIDFromContext(ctx context.Context) string { return stringFromCtx(ctx, CtxKeyUserID) }
func EmailFromContext(ctx context.Context) string  { return stringFromCtx(ctx, CtxKeyEmail) }
func ModeFromContext(ctx context.Context) string   { return stringFromCtx(ctx, CtxKeyMode) }

func stringFromCtx(ctx context.Context, key ctxKey) string {
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}
