// Package instrument layers cross-cutting behaviour around an operation
// without changing the operation.
//
// # Overview
//
// An Operation is a context aware call from A to R. A Wrapper receives the
// operation identity and the next operation in the stack and returns a new
// operation with the same signature:
//
//	type Operation[A, R any] func(ctx context.Context, args A) (R, error)
//	type Wrapper[A, R any] func(id Identity, next Operation[A, R]) Operation[A, R]
//
// Compose stacks wrappers around a base operation. The first wrapper is the
// outermost one, so for
//
//	store := instrument.Compose(instrument.IdentityOf(c, "Store"), c.Store,
//		instrument.CountCalls[any, string](kv),
//		instrument.RecordHistory[any, string](kv),
//	)
//
// a call increments "cache.store", appends the argument to
// "cache.store:inputs", runs c.Store and appends the result to
// "cache.store:outputs".
//
// # Behaviours
//
//   - CountCalls: atomic per identity counter in the store, read back with CallCount
//   - RecordHistory: input and output sequences in the store, read back with ReadHistory and Replay
//   - ObserveCalls: Prometheus call, failure and latency metrics
//   - TraceCalls: one OpenTelemetry span per call
//   - LogCalls: one slog record per call
//
// Every behaviour passes arguments and results through untouched and
// returns the error of the inner operation unchanged.
//
// # Failures
//
// CountCalls fails fast: when the increment fails the operation does not
// run. RecordHistory aborts when the input cannot be appended. When the
// operation itself fails, the default RecordFailures policy appends
// FailedOutput(err) so inputs and outputs stay aligned, SkipFailures leaves
// the outputs sequence short.
//
// Store failures keep the store error category from the cache package and
// carry the identity in their metadata.
//
// # Identities
//
// IdentityOf builds "<type>.<method>" in snake case from a receiver and a
// method name. Any string converts to an Identity directly when the derived
// name does not fit.
package instrument
