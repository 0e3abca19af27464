// Package instrumentedcache decorates a cache.Cache with call instrumentation.
//
// # Overview
//
// InstrumentedCache decorates a base cache: every method keeps its
// signature and delegates to the base, while the instrument package adds
// behaviour around the call. The counters
// and history live in the same store as the cached values.
//
// # Basic Usage
//
//	base, err := cache.New(ctx, cache.NewRedisStore(rdb))
//	if err != nil {
//		return err
//	}
//	c := instrumentedcache.New(base)
//
//	key, _ := c.Store(ctx, "foo")
//	value, _, _ := c.GetString(ctx, key)
//
//	n, _ := c.Calls(ctx, "Store")       // 1
//	h, _ := c.History(ctx, "Store")     // Inputs: [foo], Outputs: [<key>]
//	_ = c.Replay(ctx, os.Stdout, "Store")
//
// # Default Stacks
//
//   - Store under "cache.store": CountCalls then RecordHistory
//   - Get under "cache.get": CountCalls
//
// The typed getters go through Get, so GetInt also counts as a Get call.
//
// # Custom Stacks
//
// WithStoreWrappers and WithGetWrappers replace the defaults. Add
// observability by composing the built in behaviours:
//
//	c := instrumentedcache.New(base,
//		instrumentedcache.WithStoreWrappers(
//			instrument.TraceCalls[any, string](tracer),
//			instrument.CountCalls[any, string](base.KVStore()),
//			instrument.RecordHistory[any, string](base.KVStore()),
//		),
//	)
//
// # Error Handling
//
// Errors from the base cache are returned unchanged. Instrumentation errors
// carry the store category, see the instrument package for the failure
// rules of each behaviour.
//
// # See Also
//
// For wiring from configuration, see the pkg/di package.
package instrumentedcache
