package storeinfra

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// redisStore adapts a go-redis client to the Store method set.
type redisStore struct {
	client redis.UniversalClient
	owned  bool
}

// NewRedisStore wraps an existing client. The caller keeps ownership of the
// client, Close does not close it.
func NewRedisStore(client redis.UniversalClient) *redisStore {
	return &redisStore{client: client}
}

// OpenRedisStore dials Redis with cfg and checks the connection with PING.
// The returned store owns the client and closes it on Close.
func OpenRedisStore(ctx context.Context, cfg RedisConfig) (*redisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, wrapStoreError(err, "redis connect", "")
	}

	return &redisStore{client: client, owned: true}, nil
}

func (s *redisStore) Set(ctx context.Context, key string, value []byte) error {
	return wrapStoreError(s.client.Set(ctx, key, value, 0).Err(), "redis set", key)
}

func (s *redisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, wrapStoreError(err, "redis get", key)
	}
	return value, true, nil
}

func (s *redisStore) Incr(ctx context.Context, key string) (int64, error) {
	n, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, wrapStoreError(err, "redis incr", key)
	}
	return n, nil
}

func (s *redisStore) Append(ctx context.Context, key, element string) error {
	return wrapStoreError(s.client.RPush(ctx, key, element).Err(), "redis rpush", key)
}

func (s *redisStore) Sequence(ctx context.Context, key string) ([]string, error) {
	elements, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, wrapStoreError(err, "redis lrange", key)
	}
	return elements, nil
}

// FlushAll clears the selected logical database (FLUSHDB), other databases
// on the same server are left alone.
func (s *redisStore) FlushAll(ctx context.Context) error {
	return wrapStoreError(s.client.FlushDB(ctx).Err(), "redis flushdb", "")
}

func (s *redisStore) Close() error {
	if !s.owned {
		return nil
	}
	return wrapStoreError(s.client.Close(), "redis close", "")
}
