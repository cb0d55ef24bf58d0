package tracing

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// StartRequestSpan starts a client span covering one request attempt against
// the named function.
func StartRequestSpan(ctx context.Context, tracer trace.Tracer, function string) (context.Context, trace.Span) {
	spanName := "inference request"
	if function != "" {
		spanName = "inference " + function
	}
	ctx, span := tracer.Start(ctx, spanName,
		trace.WithSpanKind(trace.SpanKindClient),
	)
	if function != "" {
		span.SetAttributes(attribute.String("faasbench.function", function))
	}
	return ctx, span
}

// EndSpan finishes a span, recording error status if applicable.
func EndSpan(span trace.Span, err error, attrs ...attribute.KeyValue) {
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// InjectHTTPHeaders injects W3C trace context into HTTP headers.
func InjectHTTPHeaders(ctx context.Context, headers http.Header) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(headers))
}
