package cache

import (
	"context"
	"fmt"
	"testing"

	"github.com/goliatone/go-kvcache/pkg/testsupport"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisCache(t *testing.T, opts ...Option) *Cache {
	t.Helper()
	_, client := testsupport.NewRedis(t)
	c, err := New(context.Background(), NewRedisStore(client), opts...)
	require.NoError(t, err)
	return c
}

func TestCache_StoreGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newRedisCache(t)

	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"text", "foo", "foo"},
		{"bytes", []byte("bar"), "bar"},
		{"binary", []byte{0x00, 0x01, 0xfe}, "\x00\x01\xfe"},
		{"integer", 123, "123"},
		{"negative integer", int64(-45), "-45"},
		{"float", 3.25, "3.25"},
		{"empty string", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := c.Store(ctx, tt.value)
			require.NoError(t, err)

			raw, found, err := c.Get(ctx, key)
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, tt.want, string(raw))
		})
	}
}

func TestCache_StoreGeneratesUniqueUUIDKeys(t *testing.T) {
	ctx := context.Background()
	c, err := New(ctx, NewMemoryStore())
	require.NoError(t, err)

	seen := make(map[string]struct{})
	for i := 0; i < 500; i++ {
		key, err := c.Store(ctx, i)
		require.NoError(t, err)

		id, err := uuid.Parse(key)
		require.NoError(t, err, "key %q should be a UUID", key)
		assert.Equal(t, uuid.Version(4), id.Version())

		_, dup := seen[key]
		require.False(t, dup, "duplicate key %s", key)
		seen[key] = struct{}{}
	}
}

func TestCache_GetMissingKey(t *testing.T) {
	c := newRedisCache(t)

	raw, found, err := c.Get(context.Background(), uuid.NewString())
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, raw)
}

func TestCache_TypedGetters(t *testing.T) {
	ctx := context.Background()
	c := newRedisCache(t)

	textKey, err := c.Store(ctx, "hello")
	require.NoError(t, err)
	intKey, err := c.Store(ctx, 42)
	require.NoError(t, err)
	floatKey, err := c.Store(ctx, 2.5)
	require.NoError(t, err)

	s, found, err := c.GetString(ctx, textKey)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "hello", s)

	n, found, err := c.GetInt(ctx, intKey)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(42), n)

	f, found, err := c.GetFloat(ctx, floatKey)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 2.5, f)

	_, found, err = c.GetInt(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCache_GetIntConversionFailure(t *testing.T) {
	ctx := context.Background()
	c := newRedisCache(t)

	key, err := c.Store(ctx, "not a number")
	require.NoError(t, err)

	n, found, err := c.GetInt(ctx, key)
	require.Error(t, err)
	assert.True(t, found, "conversion failures must be distinguishable from missing keys")
	assert.Zero(t, n)
	assert.True(t, IsConversion(err))
	assert.False(t, IsStoreFailure(err))
}

func TestCache_StoreUnsupportedScalar(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	c, err := New(ctx, store, WithIDGenerator(IdentifierFunc(func() string { return "fixed" })))
	require.NoError(t, err)

	_, err = c.Store(ctx, map[string]int{"a": 1})
	require.Error(t, err)
	assert.True(t, IsUnsupportedScalar(err))

	_, found, err := store.Get(ctx, "fixed")
	require.NoError(t, err)
	assert.False(t, found, "rejected values must not reach the store")
}

func TestCache_StoreFailurePropagates(t *testing.T) {
	ctx := context.Background()
	mr, client := testsupport.NewRedis(t)
	c, err := New(ctx, NewRedisStore(client))
	require.NoError(t, err)

	restore := testsupport.FailRedis(t, mr, client, "ERR injected failure")
	defer restore()

	_, err = c.Store(ctx, "foo")
	require.Error(t, err)
	assert.True(t, IsStoreFailure(err))
	assert.Contains(t, err.Error(), "injected failure")

	_, _, err = c.Get(ctx, "any")
	require.Error(t, err)
	assert.True(t, IsStoreFailure(err))
}

func TestCache_NewFlushesStore(t *testing.T) {
	ctx := context.Background()
	mr, client := testsupport.NewRedis(t)

	first, err := New(ctx, NewRedisStore(client))
	require.NoError(t, err)
	key, err := first.Store(ctx, "survivor?")
	require.NoError(t, err)
	require.True(t, mr.Exists(key))

	second, err := New(ctx, NewRedisStore(client))
	require.NoError(t, err)

	_, found, err := second.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, found, "a new cache must start from an empty store")
	assert.Empty(t, mr.Keys())
}

func TestCache_NewFlushFailure(t *testing.T) {
	mr, client := testsupport.NewRedis(t)
	restore := testsupport.FailRedis(t, mr, client, "ERR flush denied")
	defer restore()

	_, err := New(context.Background(), NewRedisStore(client))
	require.Error(t, err)
	assert.True(t, IsStoreFailure(err))
}

func TestCache_NewRequiresStore(t *testing.T) {
	_, err := New(context.Background(), nil)
	require.Error(t, err)
}

func TestCache_WithIDGenerator(t *testing.T) {
	ctx := context.Background()
	n := 0
	gen := IdentifierFunc(func() string {
		n++
		return fmt.Sprintf("entry-%d", n)
	})

	c, err := New(ctx, NewMemoryStore(), WithIDGenerator(gen))
	require.NoError(t, err)

	key, err := c.Store(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "entry-1", key)
}

func TestOpen_OwnsStore(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.Backend = BackendSQLite

	c, err := Open(ctx, cfg)
	require.NoError(t, err)

	key, err := c.Store(ctx, 7)
	require.NoError(t, err)
	n, found, err := c.GetInt(ctx, key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(7), n)

	require.NoError(t, c.Close())

	_, _, err = c.Get(ctx, key)
	assert.Error(t, err, "store should be closed with the cache")
}

func TestOpen_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend = BackendRedis
	cfg.Redis.Addr = ""

	_, err := Open(context.Background(), cfg)
	require.Error(t, err)
}

func TestCache_CloseLeavesBorrowedStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	c, err := New(ctx, store)
	require.NoError(t, err)

	require.NoError(t, c.Close())
	require.NoError(t, store.Set(ctx, "k", []byte("v")))
}
