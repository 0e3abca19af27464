package instrument

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TraceCalls runs every call inside a span named after the identity.
// Failed calls record the error and set the span status to Error.
func TraceCalls[A, R any](tracer trace.Tracer) Wrapper[A, R] {
	return func(id Identity, next Operation[A, R]) Operation[A, R] {
		return func(ctx context.Context, args A) (R, error) {
			ctx, span := tracer.Start(ctx, string(id),
				trace.WithSpanKind(trace.SpanKindInternal),
				trace.WithAttributes(attribute.String("operation", string(id))),
			)
			defer span.End()

			result, err := next(ctx, args)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return result, err
			}

			span.SetStatus(codes.Ok, "")
			return result, nil
		}
	}
}
