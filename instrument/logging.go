package instrument

import (
	"context"
	"log/slog"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// LogCalls writes one record per call: Debug on success, Error on failure.
// go-errors attributes are attached to failure records.
func LogCalls[A, R any](logger *slog.Logger) Wrapper[A, R] {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return func(id Identity, next Operation[A, R]) Operation[A, R] {
		return func(ctx context.Context, args A) (R, error) {
			start := time.Now()
			result, err := next(ctx, args)

			attrs := []slog.Attr{
				slog.String("operation", string(id)),
				slog.Duration("duration", time.Since(start)),
			}
			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
				attrs = append(attrs, goerrors.ToSlogAttributes(err)...)
				logger.LogAttrs(ctx, slog.LevelError, "instrumented call failed", attrs...)
				return result, err
			}

			logger.LogAttrs(ctx, slog.LevelDebug, "instrumented call completed", attrs...)
			return result, nil
		}
	}
}
