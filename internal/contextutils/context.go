package contextutils

import "context"

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	principalKey contextKey = "principal_id"
	roleKey      contextKey = "principal_role"
)

// GetRequestID retrieves the request ID from the context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// WithRequestID adds the request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetPrincipalID retrieves the authenticated principal's ID from the context
func GetPrincipalID(ctx context.Context) int64 {
	if id, ok := ctx.Value(principalKey).(int64); ok {
		return id
	}
	return 0
}

// GetRole retrieves the authenticated principal's role from the context
func GetRole(ctx context.Context) string {
	if role, ok := ctx.Value(roleKey).(string); ok {
		return role
	}
	return ""
}

// WithPrincipal adds the authenticated principal's ID and role to the context
func WithPrincipal(ctx context.Context, id int64, role string) context.Context {
	ctx = context.WithValue(ctx, principalKey, id)
	return context.WithValue(ctx, roleKey, role)
}
