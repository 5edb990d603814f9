package common

import (
	"context"
	"log/slog"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRunID     contextKey = "run_id"
	ContextKeySourceRef contextKey = "source_ref"
)

// WithRunID adds a run ID to the context
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, ContextKeyRunID, runID)
}

// RunIDFromContext extracts the run ID from context
func RunIDFromContext(ctx context.Context) string {
	if runID, ok := ctx.Value(ContextKeyRunID).(string); ok {
		return runID
	}
	return ""
}

// WithSourceRef adds the email being processed to the context
func WithSourceRef(ctx context.Context, ref string) context.Context {
	return context.WithValue(ctx, ContextKeySourceRef, ref)
}

// SourceRefFromContext extracts the email source reference from context
func SourceRefFromContext(ctx context.Context) string {
	if ref, ok := ctx.Value(ContextKeySourceRef).(string); ok {
		return ref
	}
	return ""
}

// LoggerFrom decorates logger with the run and email carried by ctx.
func LoggerFrom(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	if id := RunIDFromContext(ctx); id != "" {
		logger = logger.With("run_id", id)
	}
	if ref := SourceRefFromContext(ctx); ref != "" {
		logger = logger.With("source", ref)
	}
	return logger
}
