package obs

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "itinerary-scoring-service"

type ctxKey string

const RequestIDKey ctxKey = "req_id"

// WithRequestID returns a copy of ctx carrying id for log correlation.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// RequestID returns the request id stored in ctx, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// Start opens a span named name and returns a func that ends it.
// The returned func logs the duration at debug level, records it in the
// operation histogram and marks the span failed when *errp is non-nil.
//
//	ctx, done := obs.Start(ctx, "places.Resolve")
//	defer done(&err)
func Start(ctx context.Context, name string) (context.Context, func(errp *error)) {
	start := time.Now()
	ctx, span := otel.Tracer(tracerName).Start(ctx, name)

	reqID := RequestID(ctx)

	return ctx, func(errp *error) {
		dur := time.Since(start)
		OperationDuration.WithLabelValues(name).Observe(dur.Seconds())

		attrs := []any{
			slog.String("req_id", reqID),
			slog.String("op", name),
			slog.Int64("dur_ms", dur.Milliseconds()),
		}

		if errp != nil && *errp != nil {
			span.RecordError(*errp)
			span.SetStatus(codes.Error, (*errp).Error())
			span.End()
			slog.DebugContext(ctx, "operation failed", append(attrs, slog.Any("err", *errp))...)
			return
		}

		span.End()
		slog.DebugContext(ctx, "operation done", attrs...)
	}
}

// Time is Start for leaf operations that do not pass the span on.
func Time(ctx context.Context, name string) func(errp *error) {
	_, done := Start(ctx, name)
	return done
}

// SpanFromContext is re-exported so callers can annotate the current span
// without importing otel directly.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}
