package instrument

import (
	"context"
	"fmt"
	"io"
)

// HistoryStore reads counters and sequences.
type HistoryStore interface {
	Reader
	SequenceReader
}

// Replay writes a report of every recorded call of id:
//
//	cache.store was called 2 times:
//	cache.store(foo) -> 0f5e6c3a-...
//	cache.store(42) -> 9b1d2e77-...
//
// The header uses the call counter when one was recorded and the number of
// inputs otherwise. Calls without a recorded output print "<missing>".
func Replay(ctx context.Context, w io.Writer, store HistoryStore, id Identity) error {
	history, err := ReadHistory(ctx, store, id)
	if err != nil {
		return err
	}

	calls, err := CallCount(ctx, store, id)
	if err != nil {
		return err
	}
	if calls == 0 {
		calls = int64(history.Len())
	}

	if _, err := fmt.Fprintf(w, "%s was called %d %s:\n", id, calls, plural(calls, "time", "times")); err != nil {
		return err
	}

	for _, call := range history.Calls() {
		output := call.Output
		if !call.Complete {
			output = "<missing>"
		}
		if _, err := fmt.Fprintf(w, "%s(%s) -> %s\n", id, call.Input, output); err != nil {
			return err
		}
	}
	return nil
}

func plural(n int64, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
