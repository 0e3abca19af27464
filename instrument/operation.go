package instrument

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
)

// Operation is any call that can be instrumented. Multi argument calls pack
// their arguments into A.
type Operation[A, R any] func(ctx context.Context, args A) (R, error)

// Wrapper adds one behaviour around next. Wrappers must pass args and the
// result of next through unchanged and must not swallow errors.
type Wrapper[A, R any] func(id Identity, next Operation[A, R]) Operation[A, R]

// Compose applies wrappers to base under id. The first wrapper is the
// outermost: its pre effects run first and its post effects run last.
//
//	op := Compose(id, base, CountCalls[A, R](store), RecordHistory[A, R](store))
//
// counts the call, then records the input, runs base and records the output.
// nil wrappers are skipped.
func Compose[A, R any](id Identity, base Operation[A, R], wrappers ...Wrapper[A, R]) Operation[A, R] {
	if base == nil {
		return func(context.Context, A) (R, error) {
			var zero R
			return zero, goerrors.New("instrumented operation is nil", goerrors.CategoryValidation).
				WithMetadata(map[string]any{"identity": string(id)})
		}
	}

	op := base
	for i := len(wrappers) - 1; i >= 0; i-- {
		if wrappers[i] == nil {
			continue
		}
		op = wrappers[i](id, op)
	}
	return op
}

// Chain folds wrappers into a single Wrapper with the same ordering as
// Compose. Chain(a, Chain(b, c)) behaves like Chain(a, b, c).
func Chain[A, R any](wrappers ...Wrapper[A, R]) Wrapper[A, R] {
	stack := make([]Wrapper[A, R], 0, len(wrappers))
	for _, w := range wrappers {
		if w != nil {
			stack = append(stack, w)
		}
	}

	return func(id Identity, next Operation[A, R]) Operation[A, R] {
		return Compose(id, next, stack...)
	}
}
