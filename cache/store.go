package cache

import (
	"context"

	"github.com/goliatone/go-kvcache/internal/storeinfra"
	"github.com/redis/go-redis/v9"
)

// KeyValueStore is the external store the cache and the instrumentation write to.
//
// Implementations must make Incr and Append atomic for a single key. Nothing
// in this module coordinates across keys.
type KeyValueStore interface {
	// Set writes value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Get returns the stored bytes. found is false, with a nil error, when the key is absent.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Incr atomically increments the integer at key, starting from 0, and returns the new value.
	Incr(ctx context.Context, key string) (int64, error)

	// Append pushes element to the tail of the ordered sequence at key.
	Append(ctx context.Context, key, element string) error

	// Sequence returns every element of the sequence at key in insertion order.
	Sequence(ctx context.Context, key string) ([]string, error)

	// FlushAll removes every key from the store.
	FlushAll(ctx context.Context) error

	// Close releases resources owned by the store.
	Close() error
}

// NewRedisStore adapts an already connected go-redis client.
// The caller owns the client: closing the store leaves the client open.
func NewRedisStore(client redis.UniversalClient) KeyValueStore {
	return storeinfra.NewRedisStore(client)
}

// NewMemoryStore returns an in-process store with Redis string and list semantics.
func NewMemoryStore() KeyValueStore {
	return storeinfra.NewMemoryStore()
}
