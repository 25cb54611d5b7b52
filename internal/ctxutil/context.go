// Package ctxutil provides type-safe context value management.
// Uses private key types to prevent collisions.
package ctxutil

import (
	"context"
)

type contextKey string

const (
	requestIDKey contextKey = "ctxutil.requestID"
	clientIDKey  contextKey = "ctxutil.clientID"
	toolNameKey  contextKey = "ctxutil.toolName"
)

// WithRequestID adds a request ID to the context.
// Request IDs are assigned by the HTTP middleware and used for log correlation.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
// Returns the ID and true if found, empty string and false otherwise.
func GetRequestID(ctx context.Context) (string, bool) {
	if v := ctx.Value(requestIDKey); v != nil {
		if requestID, ok := v.(string); ok && requestID != "" {
			return requestID, true
		}
	}
	return "", false
}

// WithClientID adds a client identifier (remote IP or authenticated user)
// to the context. Used for rate limiting and log attribution.
func WithClientID(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, clientIDKey, clientID)
}

// GetClientID retrieves the client identifier from the context.
// Returns the client ID if found, empty string otherwise.
func GetClientID(ctx context.Context) string {
	if v := ctx.Value(clientIDKey); v != nil {
		if clientID, ok := v.(string); ok && clientID != "" {
			return clientID
		}
	}
	return ""
}

// WithToolName records the tool currently being dispatched on behalf of
// the request. Log records emitted during tool execution carry it.
func WithToolName(ctx context.Context, toolName string) context.Context {
	return context.WithValue(ctx, toolNameKey, toolName)
}

// GetToolName retrieves the active tool name from the context.
// Returns the tool name if found, empty string otherwise.
func GetToolName(ctx context.Context) string {
	if v := ctx.Value(toolNameKey); v != nil {
		if toolName, ok := v.(string); ok && toolName != "" {
			return toolName
		}
	}
	return ""
}
