package instrument

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/goliatone/go-kvcache/cache"
	"github.com/goliatone/go-kvcache/pkg/testsupport"
)

func newRedisKV(t *testing.T) (cache.KeyValueStore, *miniredis.Miniredis) {
	t.Helper()
	mr, client := testsupport.NewRedis(t)
	return cache.NewRedisStore(client), mr
}

// faultyStore fails Append for selected keys and Incr on demand.
type faultyStore struct {
	cache.KeyValueStore
	appendErrs map[string]error
	incrErr    error
}

func (s *faultyStore) Append(ctx context.Context, key, element string) error {
	if err, ok := s.appendErrs[key]; ok {
		return err
	}
	return s.KeyValueStore.Append(ctx, key, element)
}

func (s *faultyStore) Incr(ctx context.Context, key string) (int64, error) {
	if s.incrErr != nil {
		return 0, s.incrErr
	}
	return s.KeyValueStore.Incr(ctx, key)
}

// upper is the base operation used across tests.
func upper(calls *int) Operation[string, string] {
	return func(_ context.Context, s string) (string, error) {
		if calls != nil {
			*calls++
		}
		return strings.ToUpper(s), nil
	}
}

// traceLog records the order in which wrappers and the base run.
type traceLog struct {
	mu      sync.Mutex
	entries []string
}

func (l *traceLog) add(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, s)
}

func (l *traceLog) wrapper(name string) Wrapper[string, string] {
	return func(id Identity, next Operation[string, string]) Operation[string, string] {
		return func(ctx context.Context, s string) (string, error) {
			l.add("pre:" + name)
			out, err := next(ctx, s)
			l.add("post:" + name)
			return out, err
		}
	}
}

func (l *traceLog) base() Operation[string, string] {
	return func(_ context.Context, s string) (string, error) {
		l.add("base")
		return s, nil
	}
}
