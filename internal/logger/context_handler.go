// Package logger provides structured logging utilities for the application.
package logger

import (
	"context"
	"log/slog"

	"github.com/campusbuddy/campusbuddy-go/internal/ctxutil"
)

// ContextHandler is a slog.Handler that extracts tracing values
// (request ID, client ID, active tool) from the context and adds them
// as attributes to log records.
//
// It wraps another handler and enriches every record, so call sites never
// need to thread these values manually.
type ContextHandler struct {
	handler slog.Handler
}

// NewContextHandler creates a new ContextHandler that wraps the provided handler.
func NewContextHandler(handler slog.Handler) *ContextHandler {
	return &ContextHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle adds context values as attributes before delegating to the wrapped handler.
//
// Context values extracted:
//   - request_id: assigned by the HTTP middleware, used for log correlation
//   - client_id: remote IP or authenticated user, used for rate limiting attribution
//   - tool: the tool currently being dispatched, when inside tool execution
func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if requestID, ok := ctxutil.GetRequestID(ctx); ok && requestID != "" {
		r.AddAttrs(slog.String("request_id", requestID))
	}
	if clientID := ctxutil.GetClientID(ctx); clientID != "" {
		r.AddAttrs(slog.String("client_id", clientID))
	}
	if toolName := ctxutil.GetToolName(ctx); toolName != "" {
		r.AddAttrs(slog.String("tool", toolName))
	}
	return h.handler.Handle(ctx, r)
}

// WithAttrs returns a new ContextHandler whose attributes consist of
// both the receiver's attributes and the arguments.
func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{handler: h.handler.WithAttrs(attrs)}
}

// WithGroup returns a new ContextHandler with the given group name prepended
// to the current group name.
func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{handler: h.handler.WithGroup(name)}
}
