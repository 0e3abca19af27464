package instrumentedcache

import (
	"context"
	"io"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-kvcache/cache"
	"github.com/goliatone/go-kvcache/instrument"
)

// Interface assertion so the typed cache.Retrieve helpers run through the instrumented Get
var _ cache.Getter = (*InstrumentedCache)(nil)

// TextCodeUnknownOperation marks lookups of a method that is not instrumented.
const TextCodeUnknownOperation = "UNKNOWN_OPERATION"

// Lookup is the result of the instrumented Get operation.
type Lookup struct {
	Value []byte
	Found bool
}

// InstrumentedCache decorates a cache.Cache with call counting and call
// history recorded in the cache's own store
type InstrumentedCache struct {
	base  *cache.Cache
	kv    cache.KeyValueStore
	store instrument.Operation[any, string]
	get   instrument.Operation[string, Lookup]

	storeID instrument.Identity
	getID   instrument.Identity
}

type options struct {
	storeWrappers []instrument.Wrapper[any, string]
	getWrappers   []instrument.Wrapper[string, Lookup]
	historyOpts   []instrument.HistoryOption
	storeSet      bool
	getSet        bool
}

// Option configures an InstrumentedCache.
type Option func(*options)

// WithStoreWrappers replaces the default Store stack (counter then history).
// The first wrapper is the outermost.
func WithStoreWrappers(wrappers ...instrument.Wrapper[any, string]) Option {
	return func(o *options) {
		o.storeWrappers = wrappers
		o.storeSet = true
	}
}

// WithGetWrappers replaces the default Get stack (counter only).
func WithGetWrappers(wrappers ...instrument.Wrapper[string, Lookup]) Option {
	return func(o *options) {
		o.getWrappers = wrappers
		o.getSet = true
	}
}

// WithHistoryOptions configures the history recorder of the default Store stack.
func WithHistoryOptions(opts ...instrument.HistoryOption) Option {
	return func(o *options) {
		o.historyOpts = append(o.historyOpts, opts...)
	}
}

// New wraps base. Store is counted and its history recorded, Get is counted.
func New(base *cache.Cache, opts ...Option) *InstrumentedCache {
	o := &options{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	kv := base.KVStore()
	if !o.storeSet {
		o.storeWrappers = []instrument.Wrapper[any, string]{
			instrument.CountCalls[any, string](kv),
			instrument.RecordHistory[any, string](kv, o.historyOpts...),
		}
	}
	if !o.getSet {
		o.getWrappers = []instrument.Wrapper[string, Lookup]{
			instrument.CountCalls[string, Lookup](kv),
		}
	}

	c := &InstrumentedCache{
		base:    base,
		kv:      kv,
		storeID: instrument.IdentityOf(base, "Store"),
		getID:   instrument.IdentityOf(base, "Get"),
	}

	c.store = instrument.Compose(c.storeID, base.Store, o.storeWrappers...)
	c.get = instrument.Compose(c.getID, func(ctx context.Context, key string) (Lookup, error) {
		value, found, err := base.Get(ctx, key)
		return Lookup{Value: value, Found: found}, err
	}, o.getWrappers...)

	return c
}

// Store writes value under a new key through the Store stack.
func (c *InstrumentedCache) Store(ctx context.Context, value any) (string, error) {
	return c.store(ctx, value)
}

// Get reads key through the Get stack.
func (c *InstrumentedCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	res, err := c.get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	return res.Value, res.Found, nil
}

// GetString reads key through the Get stack and decodes it as text.
func (c *InstrumentedCache) GetString(ctx context.Context, key string) (string, bool, error) {
	return cache.RetrieveString(ctx, c, key)
}

// GetInt reads key through the Get stack and parses a base 10 integer.
func (c *InstrumentedCache) GetInt(ctx context.Context, key string) (int64, bool, error) {
	return cache.RetrieveInt(ctx, c, key)
}

// GetFloat reads key through the Get stack and parses a float.
func (c *InstrumentedCache) GetFloat(ctx context.Context, key string) (float64, bool, error) {
	return cache.RetrieveFloat(ctx, c, key)
}

// Identity returns the identity recorded for method ("Store" or "Get").
func (c *InstrumentedCache) Identity(method string) (instrument.Identity, error) {
	id := instrument.IdentityOf(c.base, method)
	switch id {
	case c.storeID, c.getID:
		return id, nil
	}
	return "", goerrors.New("method is not instrumented", goerrors.CategoryValidation).
		WithTextCode(TextCodeUnknownOperation).
		WithMetadata(map[string]any{"method": method})
}

// Calls returns how many times method was invoked.
func (c *InstrumentedCache) Calls(ctx context.Context, method string) (int64, error) {
	id, err := c.Identity(method)
	if err != nil {
		return 0, err
	}
	return instrument.CallCount(ctx, c.kv, id)
}

// History returns the recorded inputs and outputs of method.
func (c *InstrumentedCache) History(ctx context.Context, method string) (instrument.History, error) {
	id, err := c.Identity(method)
	if err != nil {
		return instrument.History{}, err
	}
	return instrument.ReadHistory(ctx, c.kv, id)
}

// Replay writes the call report of method to w.
func (c *InstrumentedCache) Replay(ctx context.Context, w io.Writer, method string) error {
	id, err := c.Identity(method)
	if err != nil {
		return err
	}
	return instrument.Replay(ctx, w, c.kv, id)
}

// Unwrap returns the decorated cache.
func (c *InstrumentedCache) Unwrap() *cache.Cache {
	return c.base
}

// Close closes the decorated cache.
func (c *InstrumentedCache) Close() error {
	return c.base.Close()
}
