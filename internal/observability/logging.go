// Package observability carries per-build logging context. A build run gets a
// uuid at the top level; every log line emitted under that run includes it
// without threading the id through individual call signatures.
package observability

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

type logContextKeyType string

const logContextKey logContextKeyType = "log-context"

// LogContext holds structured logging context information.
type LogContext struct {
	BuildID string
}

// WithBuildID adds a build run id to the context, generating one if id is empty.
func WithBuildID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = uuid.NewString()
	}
	lc := extractLogContext(ctx)
	lc.BuildID = id
	return context.WithValue(ctx, logContextKey, lc)
}

// BuildID returns the build run id carried by ctx, or "".
func BuildID(ctx context.Context) string {
	return extractLogContext(ctx).BuildID
}

func extractLogContext(ctx context.Context) LogContext {
	if lc, ok := ctx.Value(logContextKey).(LogContext); ok {
		return lc
	}
	return LogContext{}
}

func getLogAttrs(ctx context.Context) []slog.Attr {
	lc := extractLogContext(ctx)
	attrs := []slog.Attr{}
	if lc.BuildID != "" {
		attrs = append(attrs, slog.String("build_id", lc.BuildID))
	}
	return attrs
}

// InfoContext logs an info message with context information.
func InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	slog.LogAttrs(ctx, slog.LevelInfo, msg, append(getLogAttrs(ctx), attrs...)...)
}

// WarnContext logs a warning message with context information.
func WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	slog.LogAttrs(ctx, slog.LevelWarn, msg, append(getLogAttrs(ctx), attrs...)...)
}

// ErrorContext logs an error message with context information.
func ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	slog.LogAttrs(ctx, slog.LevelError, msg, append(getLogAttrs(ctx), attrs...)...)
}

// DebugContext logs a debug message with context information.
func DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	slog.LogAttrs(ctx, slog.LevelDebug, msg, append(getLogAttrs(ctx), attrs...)...)
}
