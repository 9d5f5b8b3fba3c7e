package observe

import (
	"context"
	"log/slog"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// instrumentationScope names the tracer and meter of this module.
const instrumentationScope = "github.com/MrWong99/gambit"

// Tracer returns the module tracer from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationScope)
}

// StartSpan starts a span with the module tracer. The caller ends it.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, opts...)
}

// CorrelationID identifies the request or turn in ctx for log correlation:
// the trace ID when a span is active, otherwise the chi request ID, otherwise
// "". The HTTP middleware echoes it in the X-Correlation-ID header.
func CorrelationID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return chiMiddleware.GetReqID(ctx)
}

// Logger returns slog.Default enriched with what ctx knows about the current
// request: request_id from chi's RequestID middleware and trace_id/span_id
// from the active span.
func Logger(ctx context.Context) *slog.Logger {
	var attrs []any
	if id := chiMiddleware.GetReqID(ctx); id != "" {
		attrs = append(attrs, slog.String("request_id", id))
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		attrs = append(attrs,
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	l := slog.Default()
	if len(attrs) > 0 {
		l = l.With(attrs...)
	}
	return l
}
