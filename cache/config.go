package cache

import (
	"context"
	"time"

	"github.com/goliatone/go-kvcache/internal/storeinfra"
)

// Backend names a KeyValueStore implementation selectable from Config.
type Backend = storeinfra.Backend

const (
	BackendMemory   = storeinfra.BackendMemory
	BackendRedis    = storeinfra.BackendRedis
	BackendSQLite   = storeinfra.BackendSQLite
	BackendPostgres = storeinfra.BackendPostgres
)

// Config exposes store configuration options for consumers of the cache package.
type Config struct {
	Backend Backend
	Redis   RedisConfig
	SQL     SQLConfig
}

// RedisConfig mirrors the go-redis options used by the redis backend.
type RedisConfig struct {
	Addr         string
	Username     string
	Password     string
	DB           int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// SQLConfig configures the sqlite and postgres backends.
type SQLConfig struct {
	DSN          string
	MaxOpenConns int
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	return convertFromInternal(storeinfra.DefaultConfig())
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	return c.toInternal().Validate()
}

// OpenStore constructs the store selected by cfg.Backend. The caller owns the
// returned store and must Close it.
func OpenStore(ctx context.Context, cfg Config) (KeyValueStore, error) {
	return storeinfra.Open(ctx, cfg.toInternal())
}

func (c Config) toInternal() storeinfra.Config {
	return storeinfra.Config{
		Backend: c.Backend,
		Redis: storeinfra.RedisConfig{
			Addr:         c.Redis.Addr,
			Username:     c.Redis.Username,
			Password:     c.Redis.Password,
			DB:           c.Redis.DB,
			DialTimeout:  c.Redis.DialTimeout,
			ReadTimeout:  c.Redis.ReadTimeout,
			WriteTimeout: c.Redis.WriteTimeout,
		},
		SQL: storeinfra.SQLConfig{
			DSN:          c.SQL.DSN,
			MaxOpenConns: c.SQL.MaxOpenConns,
		},
	}
}

func convertFromInternal(cfg storeinfra.Config) Config {
	return Config{
		Backend: cfg.Backend,
		Redis: RedisConfig{
			Addr:         cfg.Redis.Addr,
			Username:     cfg.Redis.Username,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		},
		SQL: SQLConfig{
			DSN:          cfg.SQL.DSN,
			MaxOpenConns: cfg.SQL.MaxOpenConns,
		},
	}
}
