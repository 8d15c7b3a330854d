// Package contextkeys provides centralized context key definitions
//
// IMPORTANT: All context keys used across the application must be defined here.
// This prevents typos, documents dependencies, and makes key usage discoverable.
//
// USAGE PATTERN:
//
//	import "github.com/platinummonkey/ideagrave/pkg/contextkeys"
//	ctx = contextkeys.WithPrincipal(ctx, principal)
//	principal := ctx.Value(contextkeys.PrincipalKey).(*auth.Principal)
package contextkeys

import "context"

// Key is the type for context keys to prevent collisions
type Key string

const (
	// PrincipalKey contains *auth.Principal
	// Set by: middleware.SessionMiddleware (pkg/middleware/auth.go)
	// Required by: session-gated and role-gated endpoints
	// Type: *auth.Principal
	PrincipalKey Key = "principal"

	// SessionIDKey contains the hashed session id backing the principal
	// Set by: middleware.SessionMiddleware
	// Used by: logout, logging
	// Type: string
	SessionIDKey Key = "session_id"

	// RequestIDKey contains request ID string (UUID)
	// Set by: httputil.RequestIDMiddleware
	// Used by: Logger, error responses
	// Type: string
	RequestIDKey Key = "request_id"

	// UserIDKey contains user ID string
	// Set by: middleware.SessionMiddleware after the session is resolved
	// Used by: Logger
	// Type: string
	UserIDKey Key = "user_id"

	// LoggerKey contains *observability.Logger
	// Set by: httputil.LoggingMiddleware
	// Used by: Handlers that need structured logging with request context
	// Type: *observability.Logger
	LoggerKey Key = "logger"
)

// WithPrincipal adds the authenticated principal to the context
func WithPrincipal(ctx context.Context, principal interface{}) context.Context {
	return context.WithValue(ctx, PrincipalKey, principal)
}

// WithSessionID adds the session id to the context
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, SessionIDKey, sessionID)
}

// WithRequestID adds request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// WithUserID adds user ID to the context
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// WithLogger adds logger to the context
func WithLogger(ctx context.Context, logger interface{}) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// GetSessionID retrieves the session id from context
func GetSessionID(ctx context.Context) string {
	if id, ok := ctx.Value(SessionIDKey).(string); ok {
		return id
	}
	return ""
}

// GetRequestID retrieves request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// GetUserID retrieves user ID from context
func GetUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(UserIDKey).(string); ok {
		return userID
	}
	return ""
}
