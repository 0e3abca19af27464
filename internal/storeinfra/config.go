package storeinfra

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
)

// Backend names a key-value store implementation.
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendRedis    Backend = "redis"
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
)

// Config holds the configuration needed to open a key-value store.
type Config struct {
	// Backend selects the store implementation. Default: memory
	Backend Backend

	// Redis is only consulted when Backend is BackendRedis.
	Redis RedisConfig

	// SQL is consulted for the sqlite and postgres backends.
	SQL SQLConfig
}

// RedisConfig maps onto the go-redis client options we expose.
type RedisConfig struct {
	// Addr is the host:port of the Redis server. Required for the redis backend.
	Addr string

	Username string
	Password string

	// DB is the logical database selected after connecting.
	// Flushes only affect this database.
	DB int

	// Zero values keep the go-redis defaults.
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// SQLConfig configures the database/sql backed store.
type SQLConfig struct {
	// DSN is passed unchanged to the driver. Required for sql backends.
	DSN string

	// MaxOpenConns limits the pool size. Zero means no limit, except for
	// in-memory sqlite databases which are pinned to a single connection.
	MaxOpenConns int
}

// DefaultConfig returns a Config with sensible defaults for most use cases.
func DefaultConfig() Config {
	return Config{
		Backend: BackendMemory,
		Redis: RedisConfig{
			Addr:        "localhost:6379",
			DialTimeout: 5 * time.Second,
		},
		SQL: SQLConfig{
			DSN: "file::memory:",
		},
	}
}

// Validate checks if the configuration values are valid.
// Failures are reported as a go-errors validation error with one entry per field.
func (c Config) Validate() error {
	isSQL := c.Backend == BackendSQLite || c.Backend == BackendPostgres

	err := validation.Errors{
		"backend": validation.Validate(string(c.Backend),
			validation.Required,
			validation.In(string(BackendMemory), string(BackendRedis), string(BackendSQLite), string(BackendPostgres)),
		),
		"redis.addr": validation.Validate(c.Redis.Addr,
			validation.When(c.Backend == BackendRedis, validation.Required),
		),
		"redis.db":           validation.Validate(c.Redis.DB, validation.Min(0)),
		"redis.dial_timeout": validation.Validate(int64(c.Redis.DialTimeout), validation.Min(int64(0))),
		"sql.dsn": validation.Validate(c.SQL.DSN,
			validation.When(isSQL, validation.Required),
		),
		"sql.max_open_conns": validation.Validate(c.SQL.MaxOpenConns, validation.Min(0)),
	}.Filter()
	if err != nil {
		return goerrors.FromOzzoValidation(err, "invalid store configuration")
	}
	return nil
}

func isMemoryDSN(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}
