package instrument

import (
	"context"
	"strconv"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-kvcache/cache"
)

// Incrementer is the part of a store CountCalls needs.
type Incrementer interface {
	Incr(ctx context.Context, key string) (int64, error)
}

// Reader reads a raw value.
type Reader interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
}

// CountCalls increments the counter stored under the operation identity
// before every call. The increment is atomic at the store. When it fails
// the error is returned and the operation does not run.
func CountCalls[A, R any](store Incrementer) Wrapper[A, R] {
	return func(id Identity, next Operation[A, R]) Operation[A, R] {
		return func(ctx context.Context, args A) (R, error) {
			if _, err := store.Incr(ctx, string(id)); err != nil {
				var zero R
				return zero, wrapInstrumentError(err, id, "count call")
			}
			return next(ctx, args)
		}
	}
}

// CallCount reads how many times id was invoked. It returns 0 for an
// identity that was never called.
func CallCount(ctx context.Context, store Reader, id Identity) (int64, error) {
	raw, found, err := store.Get(ctx, string(id))
	if err != nil {
		return 0, wrapInstrumentError(err, id, "read call count")
	}
	if !found {
		return 0, nil
	}

	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, goerrors.Wrap(err, cache.CategoryConversion, "call count is not an integer").
			WithTextCode(cache.TextCodeConversionFailed).
			WithMetadata(map[string]any{"identity": string(id)})
	}
	return n, nil
}

// wrapInstrumentError keeps the category of store errors and tags anything
// else as a store failure.
func wrapInstrumentError(err error, id Identity, msg string) error {
	return goerrors.Wrap(err, cache.CategoryStore, msg).
		WithMetadata(map[string]any{"identity": string(id)})
}
