// Package cache stores scalar values under generated keys in a key-value store.
//
// # Overview
//
// The package exports the Cache type and the pieces it is built from:
//
//   - KeyValueStore: the store contract (Redis, in-memory and SQL adapters ship with the module)
//   - IdentifierGenerator: produces the opaque keys handed back by Store
//   - Retrieve: reads a key and converts the raw bytes with a Converter
//   - ArgSerializer: renders call arguments and results as text for call history
//
// # Basic Usage
//
//	rdb := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	c, err := cache.New(ctx, cache.NewRedisStore(rdb))
//	if err != nil {
//		return err
//	}
//
//	key, err := c.Store(ctx, 42)
//	n, found, err := c.GetInt(ctx, key)
//
// New flushes the store it receives, every Cache starts from an empty store.
// Point it at a dedicated Redis database.
//
// Open builds the store from a Config instead and releases it on Close:
//
//	cfg := cache.DefaultConfig()
//	cfg.Backend = cache.BackendRedis
//	c, err := cache.Open(ctx, cfg)
//	defer c.Close()
//
// # Values
//
// Store accepts strings, byte slices, integers, floats and booleans. They are
// encoded the way Redis encodes command arguments. Other types are rejected
// before the store is touched.
//
// Reads return raw bytes. Get reports absence with found == false and a nil
// error. The typed getters run a Converter on the bytes, a failed conversion
// returns found == true together with an error in the conversion category so
// callers can tell "missing" from "unreadable":
//
//	s, found, err := cache.Retrieve(ctx, c, key, func(b []byte) (string, error) {
//		return strings.ToUpper(string(b)), nil
//	})
//
// # Error Handling
//
// Errors are *errors.Error values from github.com/goliatone/go-errors. Store
// failures carry CategoryStore and keep the driver error reachable through
// errors.As. Use IsStoreFailure, IsConversion and IsUnsupportedScalar to branch.
//
// # See Also
//
// The instrument package adds call counting and call history around any
// operation. The instrumentedcache package applies it to a Cache.
package cache
