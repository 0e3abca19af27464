package cache

import (
	"context"
	"log/slog"

	goerrors "github.com/goliatone/go-errors"
)

// Cache stores scalars under generated keys and reads them back.
//
// A Cache starts every session from an empty store: New flushes the store it
// is given. It is safe for concurrent use as long as the store is.
type Cache struct {
	store  KeyValueStore
	ids    IdentifierGenerator
	logger *slog.Logger
	owned  bool
}

// Option configures a Cache.
type Option func(*Cache)

// WithIDGenerator replaces the default UUID generator.
func WithIDGenerator(gen IdentifierGenerator) Option {
	return func(c *Cache) {
		if gen != nil {
			c.ids = gen
		}
	}
}

// WithLogger sets the logger used for debug records. Defaults to a discarding logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// withOwnedStore makes Close release the store. Used by Open.
func withOwnedStore() Option {
	return func(c *Cache) {
		c.owned = true
	}
}

// New creates a Cache over store and flushes every existing key from it.
func New(ctx context.Context, store KeyValueStore, opts ...Option) (*Cache, error) {
	if store == nil {
		return nil, goerrors.New("key-value store is required", goerrors.CategoryValidation).
			WithTextCode(TextCodeMissingStore)
	}

	c := &Cache{
		store:  store,
		ids:    NewUUIDGenerator(),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := store.FlushAll(ctx); err != nil {
		return nil, goerrors.Wrap(err, CategoryStore, "flush store on cache init")
	}
	c.logger.DebugContext(ctx, "cache store flushed")

	return c, nil
}

// Open builds the store described by cfg and creates a Cache that owns it.
// Close releases the store.
func Open(ctx context.Context, cfg Config, opts ...Option) (*Cache, error) {
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	c, err := New(ctx, store, append(opts, withOwnedStore())...)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return c, nil
}

// Store writes value under a freshly generated key and returns the key.
func (c *Cache) Store(ctx context.Context, value any) (string, error) {
	data, err := EncodeScalar(value)
	if err != nil {
		return "", err
	}

	key := c.ids.NewID()
	if err := c.store.Set(ctx, key, data); err != nil {
		return "", err
	}

	c.logger.DebugContext(ctx, "cache entry stored", slog.String("key", key), slog.Int("size", len(data)))
	return key, nil
}

// Get returns the raw bytes stored under key. found is false when the key is absent.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return c.store.Get(ctx, key)
}

// GetString reads key and decodes it as UTF-8 text.
func (c *Cache) GetString(ctx context.Context, key string) (string, bool, error) {
	return RetrieveString(ctx, c, key)
}

// GetInt reads key and parses it as a base 10 integer.
func (c *Cache) GetInt(ctx context.Context, key string) (int64, bool, error) {
	return RetrieveInt(ctx, c, key)
}

// GetFloat reads key and parses it as a 64 bit float.
func (c *Cache) GetFloat(ctx context.Context, key string) (float64, bool, error) {
	return RetrieveFloat(ctx, c, key)
}

// KVStore exposes the underlying store, instrumentation records its
// counters and history there.
func (c *Cache) KVStore() KeyValueStore {
	return c.store
}

// Close releases the store when the cache opened it. Stores passed to New
// belong to the caller and are left open.
func (c *Cache) Close() error {
	if !c.owned {
		return nil
	}
	return c.store.Close()
}
