package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// contextKey is a type for context keys used by the logger package
type contextKey string

const (
	// LoggerKey is the context key for the logger
	LoggerKey contextKey = "logger"
	// DeliveryIDKey is the context key for the webhook delivery ID
	DeliveryIDKey contextKey = "delivery_id"
	// WorkspaceIDKey is the context key for the workspace ID
	WorkspaceIDKey contextKey = "workspace_id"
)

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext retrieves the logger from context, returning a no-op logger
// if none is attached
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(LoggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithDeliveryID adds the delivery ID to the context and returns an
// enriched logger
func WithDeliveryID(ctx context.Context, logger *zap.Logger, deliveryID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, DeliveryIDKey, deliveryID)
	enriched := logger.With(zap.String("delivery_id", deliveryID))
	return WithContext(ctx, enriched), enriched
}

// WithWorkspaceID adds the workspace ID to the context and returns an
// enriched logger
func WithWorkspaceID(ctx context.Context, logger *zap.Logger, workspaceID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, WorkspaceIDKey, workspaceID)
	enriched := logger.With(zap.String("workspace_id", workspaceID))
	return WithContext(ctx, enriched), enriched
}

// GetDeliveryID retrieves the delivery ID from context
func GetDeliveryID(ctx context.Context) string {
	if id, ok := ctx.Value(DeliveryIDKey).(string); ok {
		return id
	}
	return ""
}

// GetWorkspaceID retrieves the workspace ID from context
func GetWorkspaceID(ctx context.Context) string {
	if id, ok := ctx.Value(WorkspaceIDKey).(string); ok {
		return id
	}
	return ""
}

// WithTraceContext adds trace_id and span_id to the logger from the
// context's span. If no valid span exists, returns the logger unchanged.
func WithTraceContext(ctx context.Context, logger *zap.Logger) *zap.Logger {
	span := trace.SpanFromContext(ctx)
	if span == nil {
		return logger
	}
	spanCtx := span.SpanContext()
	if !spanCtx.IsValid() {
		return logger
	}

	return logger.With(
		zap.String("trace_id", spanCtx.TraceID().String()),
		zap.String("span_id", spanCtx.SpanID().String()),
	)
}
