package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the tracer name for listener spans
const TracerName = "sheetflow-listener"

// StartSpan starts a new span with the given name. The caller ends it.
//
//	ctx, span := telemetry.StartSpan(ctx, "handler.purchase_order")
//	defer span.End()
func StartSpan(ctx context.Context, spanName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer(TracerName)

	opts := []trace.SpanStartOption{
		trace.WithSpanKind(trace.SpanKindInternal),
	}
	if len(attrs) > 0 {
		opts = append(opts, trace.WithAttributes(attrs...))
	}

	return tracer.Start(ctx, spanName, opts...)
}

// StartHandlerSpan starts a span for an event handler, named
// handler.{eventType}
func StartHandlerSpan(ctx context.Context, eventType, eventID string) (context.Context, trace.Span) {
	return StartSpan(ctx, fmt.Sprintf("handler.%s", eventType),
		attribute.String("event.type", eventType),
		attribute.String("event.id", eventID),
	)
}

// RecordError records an error on the span and marks it failed
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
