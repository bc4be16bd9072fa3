package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "glamsite"

// StartBlobSpan starts a client span for one blob store round trip.
func StartBlobSpan(ctx context.Context, op, driver, key string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "blob."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("blob.driver", driver),
			attribute.String("blob.key", key),
		),
	)
}

// StartContentSpan starts a span for a section read or write.
func StartContentSpan(ctx context.Context, op, section string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "content."+op,
		trace.WithAttributes(attribute.String("content.section", section)),
	)
}

// EndSpan records err on span (when non-nil) and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
