package testsupport

import (
	"context"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// NewRedis starts an in-process Redis server and a client connected to it.
// Both are torn down when the test ends.
func NewRedis(t testing.TB) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("failed to reach miniredis at %s: %v", mr.Addr(), err)
	}

	return mr, client
}

// FailRedis makes every command fail with msg until the returned function is called.
// The client pool is warmed first so failures hit commands, not the connection handshake.
func FailRedis(t testing.TB, mr *miniredis.Miniredis, client *redis.Client, msg string) (restore func()) {
	t.Helper()

	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("failed to warm redis client: %v", err)
	}
	mr.SetError(msg)

	return func() { mr.SetError("") }
}

// RedisList reads a list straight from the server, bypassing the code under test.
func RedisList(t testing.TB, mr *miniredis.Miniredis, key string) []string {
	t.Helper()

	if !mr.Exists(key) {
		return []string{}
	}
	list, err := mr.List(key)
	if err != nil {
		t.Fatalf("failed to read list %s: %v", key, err)
	}
	return list
}

// RedisInt reads an integer string key straight from the server. Missing keys read as 0.
func RedisInt(t testing.TB, mr *miniredis.Miniredis, key string) int {
	t.Helper()

	if !mr.Exists(key) {
		return 0
	}
	raw, err := mr.Get(key)
	if err != nil {
		t.Fatalf("failed to read %s: %v", key, err)
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		t.Fatalf("value at %s is not an integer: %q", key, raw)
	}
	return n
}
