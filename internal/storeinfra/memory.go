package storeinfra

import (
	"context"
	"strconv"

	"github.com/puzpuzpuz/xsync/v3"
)

// memoryStore keeps entries and sequences in concurrent maps.
// Single key atomicity comes from xsync's per-bucket Compute.
type memoryStore struct {
	entries   *xsync.MapOf[string, []byte]
	sequences *xsync.MapOf[string, []string]
}

// NewMemoryStore creates an in-process store with Redis-like string and list semantics.
func NewMemoryStore() *memoryStore {
	return &memoryStore{
		entries:   xsync.NewMapOf[string, []byte](),
		sequences: xsync.NewMapOf[string, []string](),
	}
}

func (s *memoryStore) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return wrapStoreError(err, "memory set", key)
	}
	s.entries.Store(key, append([]byte(nil), value...))
	return nil
}

func (s *memoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, wrapStoreError(err, "memory get", key)
	}
	value, ok := s.entries.Load(key)
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

// Incr creates the counter at 0 when absent and fails, like Redis, when the
// current value is not a base 10 integer.
func (s *memoryStore) Incr(ctx context.Context, key string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, wrapStoreError(err, "memory incr", key)
	}

	var (
		next     int64
		parseErr error
	)
	s.entries.Compute(key, func(old []byte, loaded bool) ([]byte, bool) {
		current := int64(0)
		if loaded {
			n, err := strconv.ParseInt(string(old), 10, 64)
			if err != nil {
				parseErr = err
				return old, false
			}
			current = n
		}
		next = current + 1
		return []byte(strconv.FormatInt(next, 10)), false
	})

	if parseErr != nil {
		return 0, wrapStoreError(parseErr, "memory incr", key)
	}
	return next, nil
}

func (s *memoryStore) Append(ctx context.Context, key, element string) error {
	if err := ctx.Err(); err != nil {
		return wrapStoreError(err, "memory append", key)
	}
	s.sequences.Compute(key, func(old []string, _ bool) ([]string, bool) {
		// copy on write so readers holding the previous slice never observe the append
		next := make([]string, len(old), len(old)+1)
		copy(next, old)
		return append(next, element), false
	})
	return nil
}

func (s *memoryStore) Sequence(ctx context.Context, key string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, wrapStoreError(err, "memory sequence", key)
	}
	elements, ok := s.sequences.Load(key)
	if !ok {
		return []string{}, nil
	}
	return append([]string(nil), elements...), nil
}

func (s *memoryStore) FlushAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return wrapStoreError(err, "memory flush", "")
	}
	s.entries.Clear()
	s.sequences.Clear()
	return nil
}

// Close is a no-op, the maps are released with the store.
func (s *memoryStore) Close() error {
	return nil
}
