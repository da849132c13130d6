package httpx

import "context"

type ctxKey string

const (
	CtxKeySessionID ctxKey = "session_id"
	CtxKeySubject   ctxKey = "subject"
)

// WithSession records the resolved session on the request context.
func WithSession(ctx context.Context, sessionID, subject string) context.Context {
	ctx = context.WithValue(ctx, CtxKeySessionID, sessionID)
	return context.WithValue(ctx, CtxKeySubject, subject)
}

func SessionIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(CtxKeySessionID).(string)
	return v, ok && v != ""
}

func SubjectFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(CtxKeySubject).(string)
	return v, ok && v != ""
}
