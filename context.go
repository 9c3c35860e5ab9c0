package lockgate

import "context"

type clientIPContextKey struct{}
type sessionHandleContextKey struct{}

// WithClientIP attaches the caller's address to ctx. The finalizer records
// it in the login audit trail; the audit dispatcher includes it in events.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

// WithSessionHandle attaches the presentation layer's session handle to ctx.
// Logout and a failed two-factor verification destroy it through the
// [SessionStore] collaborator.
func WithSessionHandle(ctx context.Context, handle string) context.Context {
	return context.WithValue(ctx, sessionHandleContextKey{}, handle)
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}

func sessionHandleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	handle, _ := ctx.Value(sessionHandleContextKey{}).(string)
	return handle
}
