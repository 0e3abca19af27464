package instrument

import (
	"context"
	"errors"

	"github.com/goliatone/go-kvcache/cache"
)

// SequenceAppender is the part of a store RecordHistory needs.
type SequenceAppender interface {
	Append(ctx context.Context, key, element string) error
}

// SequenceReader reads a whole sequence in insertion order.
type SequenceReader interface {
	Sequence(ctx context.Context, key string) ([]string, error)
}

// FailurePolicy decides what RecordHistory writes to the outputs sequence
// when the wrapped operation fails.
type FailurePolicy int

const (
	// RecordFailures appends FailedOutput(err) so inputs and outputs stay
	// the same length.
	RecordFailures FailurePolicy = iota
	// SkipFailures appends nothing. The outputs sequence then falls behind
	// the inputs sequence by one entry per failed call.
	SkipFailures
)

func (p FailurePolicy) String() string {
	switch p {
	case RecordFailures:
		return "record_failures"
	case SkipFailures:
		return "skip_failures"
	default:
		return "unknown"
	}
}

// FailedOutput is the outputs entry written for a failed call under RecordFailures.
func FailedOutput(err error) string {
	return "error: " + err.Error()
}

type historyConfig struct {
	serializer cache.ArgSerializer
	policy     FailurePolicy
}

// HistoryOption configures RecordHistory.
type HistoryOption func(*historyConfig)

// WithSerializer replaces the reflection based default serializer.
func WithSerializer(s cache.ArgSerializer) HistoryOption {
	return func(c *historyConfig) {
		if s != nil {
			c.serializer = s
		}
	}
}

// WithFailurePolicy sets how failed calls are recorded. Defaults to RecordFailures.
func WithFailurePolicy(p FailurePolicy) HistoryOption {
	return func(c *historyConfig) {
		c.policy = p
	}
}

// RecordHistory appends the serialized arguments to id.InputsKey() before
// the call and the serialized result to id.OutputsKey() after it.
//
// Failing to record the inputs aborts the call. Failing to record the output
// of a successful call returns the zero result with the append error, the
// operation has already run at that point.
func RecordHistory[A, R any](store SequenceAppender, opts ...HistoryOption) Wrapper[A, R] {
	cfg := historyConfig{
		serializer: cache.NewDefaultArgSerializer(),
		policy:     RecordFailures,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return func(id Identity, next Operation[A, R]) Operation[A, R] {
		return func(ctx context.Context, args A) (R, error) {
			var zero R

			if err := store.Append(ctx, id.InputsKey(), cfg.serializer.Serialize(args)); err != nil {
				return zero, wrapInstrumentError(err, id, "record call inputs")
			}

			result, err := next(ctx, args)
			if err != nil {
				if cfg.policy == RecordFailures {
					if appendErr := store.Append(ctx, id.OutputsKey(), FailedOutput(err)); appendErr != nil {
						return result, errors.Join(err, wrapInstrumentError(appendErr, id, "record call failure"))
					}
				}
				return result, err
			}

			if err := store.Append(ctx, id.OutputsKey(), cfg.serializer.Serialize(result)); err != nil {
				return zero, wrapInstrumentError(err, id, "record call output")
			}
			return result, nil
		}
	}
}

// History holds the recorded calls of one operation.
type History struct {
	Identity Identity
	Inputs   []string
	Outputs  []string
}

// Call pairs one input with its output. Complete is false when the outputs
// sequence has no entry for this input.
type Call struct {
	Input    string
	Output   string
	Complete bool
}

// Len is the number of recorded invocations.
func (h History) Len() int {
	return len(h.Inputs)
}

// Calls pairs inputs and outputs by position.
func (h History) Calls() []Call {
	calls := make([]Call, len(h.Inputs))
	for i, in := range h.Inputs {
		calls[i].Input = in
		if i < len(h.Outputs) {
			calls[i].Output = h.Outputs[i]
			calls[i].Complete = true
		}
	}
	return calls
}

// ReadHistory loads both sequences recorded for id. An operation that was
// never called has an empty history.
func ReadHistory(ctx context.Context, store SequenceReader, id Identity) (History, error) {
	inputs, err := store.Sequence(ctx, id.InputsKey())
	if err != nil {
		return History{}, wrapInstrumentError(err, id, "read call inputs")
	}
	outputs, err := store.Sequence(ctx, id.OutputsKey())
	if err != nil {
		return History{}, wrapInstrumentError(err, id, "read call outputs")
	}

	return History{Identity: id, Inputs: inputs, Outputs: outputs}, nil
}
