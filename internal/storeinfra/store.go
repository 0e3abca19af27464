package storeinfra

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
)

// CategoryStore tags every failure raised by a store adapter.
var CategoryStore = goerrors.CategoryExternal.Extend("store")

// Store is the method set shared by every adapter in this package.
// It is structurally identical to cache.KeyValueStore.
type Store interface {
	Set(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Incr(ctx context.Context, key string) (int64, error)
	Append(ctx context.Context, key, element string) error
	Sequence(ctx context.Context, key string) ([]string, error)
	FlushAll(ctx context.Context) error
	Close() error
}

// Open builds the store selected by cfg.Backend.
// The returned store owns every connection it opened.
func Open(ctx context.Context, cfg Config) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Backend {
	case BackendRedis:
		return OpenRedisStore(ctx, cfg.Redis)
	case BackendSQLite:
		return OpenSQLStore(ctx, SQLiteDialect, cfg.SQL)
	case BackendPostgres:
		return OpenSQLStore(ctx, PostgresDialect, cfg.SQL)
	default:
		return NewMemoryStore(), nil
	}
}

// wrapStoreError tags err as a store failure while keeping it reachable
// through errors.Is and errors.As.
func wrapStoreError(err error, op, key string) error {
	if err == nil {
		return nil
	}
	wrapped := goerrors.Wrap(err, CategoryStore, op+" failed")
	if key != "" {
		wrapped = wrapped.WithMetadata(map[string]any{"key": key})
	}
	return wrapped
}
