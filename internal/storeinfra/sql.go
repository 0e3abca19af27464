package storeinfra

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Dialect holds the driver name and the statements that differ between databases.
type Dialect struct {
	Name   string
	Driver string
	Schema []string

	// Numbered placeholders ($1, $2) instead of ?
	Numbered bool
}

var SQLiteDialect = Dialect{
	Name:   "sqlite",
	Driver: "sqlite3",
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS kv_entries (kv_key TEXT PRIMARY KEY, kv_value BLOB NOT NULL)`,
		`CREATE TABLE IF NOT EXISTS kv_sequences (id INTEGER PRIMARY KEY AUTOINCREMENT, kv_key TEXT NOT NULL, element TEXT NOT NULL)`,
		`CREATE INDEX IF NOT EXISTS kv_sequences_key_idx ON kv_sequences (kv_key, id)`,
	},
}

var PostgresDialect = Dialect{
	Name:   "postgres",
	Driver: "postgres",
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS kv_entries (kv_key TEXT PRIMARY KEY, kv_value BYTEA NOT NULL)`,
		`CREATE TABLE IF NOT EXISTS kv_sequences (id BIGSERIAL PRIMARY KEY, kv_key TEXT NOT NULL, element TEXT NOT NULL)`,
		`CREATE INDEX IF NOT EXISTS kv_sequences_key_idx ON kv_sequences (kv_key, id)`,
	},
	Numbered: true,
}

const (
	setQuery      = `INSERT INTO kv_entries (kv_key, kv_value) VALUES (?, ?) ON CONFLICT (kv_key) DO UPDATE SET kv_value = excluded.kv_value`
	getQuery      = `SELECT kv_value FROM kv_entries WHERE kv_key = ?`
	createQuery   = `INSERT INTO kv_entries (kv_key, kv_value) VALUES (?, ?) ON CONFLICT (kv_key) DO NOTHING`
	swapQuery     = `UPDATE kv_entries SET kv_value = ? WHERE kv_key = ? AND kv_value = ?`
	appendQuery   = `INSERT INTO kv_sequences (kv_key, element) VALUES (?, ?)`
	sequenceQuery = `SELECT element FROM kv_sequences WHERE kv_key = ? ORDER BY id`
)

// maxIncrAttempts bounds the compare-and-swap loop in Incr.
const maxIncrAttempts = 64

var flushQueries = []string{
	`DELETE FROM kv_entries`,
	`DELETE FROM kv_sequences`,
}

var (
	errNotInteger     = errors.New("value is not an integer or out of range")
	errIncrContention = errors.New("counter changed concurrently too many times")
)

// rebind rewrites ? placeholders into $n for dialects that number them.
func (d Dialect) rebind(query string) string {
	if !d.Numbered {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// sqlStore keeps entries and sequences in two tables. Counters are plain
// entries holding a decimal string, so Set, Get and Incr share one keyspace
// the way they do in Redis.
type sqlStore struct {
	db      *sql.DB
	dialect Dialect
}

// OpenSQLStore opens the database, applies the schema and returns a store that owns the pool.
func OpenSQLStore(ctx context.Context, dialect Dialect, cfg SQLConfig) (*sqlStore, error) {
	db, err := sql.Open(dialect.Driver, cfg.DSN)
	if err != nil {
		return nil, wrapStoreError(err, dialect.Name+" open", "")
	}

	maxOpen := cfg.MaxOpenConns
	if dialect.Driver == SQLiteDialect.Driver && isMemoryDSN(cfg.DSN) {
		// every connection to :memory: is a separate database
		maxOpen = 1
	}
	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
	}

	store, err := NewSQLStore(ctx, db, dialect)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLStore applies the schema on an existing pool. Close will close db.
func NewSQLStore(ctx context.Context, db *sql.DB, dialect Dialect) (*sqlStore, error) {
	if err := db.PingContext(ctx); err != nil {
		return nil, wrapStoreError(err, dialect.Name+" connect", "")
	}
	for _, stmt := range dialect.Schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, wrapStoreError(err, dialect.Name+" migrate", "")
		}
	}
	return &sqlStore{db: db, dialect: dialect}, nil
}

func (s *sqlStore) Set(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	_, err := s.db.ExecContext(ctx, s.dialect.rebind(setQuery), key, value)
	return wrapStoreError(err, s.dialect.Name+" set", key)
}

func (s *sqlStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, s.dialect.rebind(getQuery), key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, wrapStoreError(err, s.dialect.Name+" get", key)
	}
	return value, true, nil
}

// Incr reads the current value, parses it and swaps in the successor only if
// the row still holds what was read. A lost race retries from the read.
// Non-integer values are rejected and left untouched.
func (s *sqlStore) Incr(ctx context.Context, key string) (int64, error) {
	op := s.dialect.Name + " incr"
	for attempt := 0; attempt < maxIncrAttempts; attempt++ {
		current, found, err := s.Get(ctx, key)
		if err != nil {
			return 0, err
		}

		if !found {
			ok, err := s.exec(ctx, createQuery, key, []byte("1"))
			if err != nil {
				return 0, wrapStoreError(err, op, key)
			}
			if ok {
				return 1, nil
			}
			continue
		}

		n, err := strconv.ParseInt(string(current), 10, 64)
		if err != nil || n == math.MaxInt64 {
			return 0, wrapStoreError(errNotInteger, op, key)
		}
		next := n + 1
		ok, err := s.exec(ctx, swapQuery, []byte(strconv.FormatInt(next, 10)), key, current)
		if err != nil {
			return 0, wrapStoreError(err, op, key)
		}
		if ok {
			return next, nil
		}
	}
	return 0, wrapStoreError(errIncrContention, op, key)
}

// exec runs a single-row statement and reports whether it touched the row.
func (s *sqlStore) exec(ctx context.Context, query string, args ...any) (bool, error) {
	res, err := s.db.ExecContext(ctx, s.dialect.rebind(query), args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *sqlStore) Append(ctx context.Context, key, element string) error {
	_, err := s.db.ExecContext(ctx, s.dialect.rebind(appendQuery), key, element)
	return wrapStoreError(err, s.dialect.Name+" append", key)
}

func (s *sqlStore) Sequence(ctx context.Context, key string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(sequenceQuery), key)
	if err != nil {
		return nil, wrapStoreError(err, s.dialect.Name+" sequence", key)
	}
	defer rows.Close()

	elements := []string{}
	for rows.Next() {
		var element string
		if err := rows.Scan(&element); err != nil {
			return nil, wrapStoreError(err, s.dialect.Name+" sequence", key)
		}
		elements = append(elements, element)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStoreError(err, s.dialect.Name+" sequence", key)
	}
	return elements, nil
}

func (s *sqlStore) FlushAll(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapStoreError(err, s.dialect.Name+" flush", "")
	}
	for _, q := range flushQueries {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			_ = tx.Rollback()
			return wrapStoreError(err, s.dialect.Name+" flush", "")
		}
	}
	return wrapStoreError(tx.Commit(), s.dialect.Name+" flush", "")
}

func (s *sqlStore) Close() error {
	return wrapStoreError(s.db.Close(), s.dialect.Name+" close", "")
}
