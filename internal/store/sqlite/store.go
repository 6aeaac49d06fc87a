// Package sqlite implements core.Store on an embedded SQLite database
// (modernc.org/sqlite, no cgo).
//
// The store holds a single connection, so every transaction is serialized.
// This is stricter than the per-key ordering the ledger needs and keeps
// read-modify-write sequences atomic without row locks.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"warehouse-ledger/internal/core"
)

const defaultLockTimeout = 2 * time.Second

const schema = `
CREATE TABLE IF NOT EXISTS warehouses (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	name              TEXT    NOT NULL UNIQUE CHECK (name <> ''),
	overdraft_control INTEGER NOT NULL DEFAULT 0,
	created_at        TEXT    NOT NULL
);
CREATE TABLE IF NOT EXISTS items (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT    NOT NULL UNIQUE CHECK (name <> ''),
	volume     INTEGER NOT NULL DEFAULT 0 CHECK (volume >= 0),
	created_at TEXT    NOT NULL
);
CREATE TABLE IF NOT EXISTS balance_journal (
	warehouse_id INTEGER NOT NULL REFERENCES warehouses (id) ON DELETE CASCADE,
	item_id      INTEGER NOT NULL REFERENCES items (id) ON DELETE CASCADE,
	quantity     INTEGER NOT NULL DEFAULT 0,
	updated_at   TEXT    NOT NULL,
	PRIMARY KEY (warehouse_id, item_id)
);
CREATE INDEX IF NOT EXISTS balance_journal_item_id_idx ON balance_journal (item_id);
`

// Store is a core.Store over a SQLite file.
type Store struct {
	db          *sql.DB
	lockTimeout time.Duration
}

var _ core.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLockTimeout bounds how long a write waits for the connection.
func WithLockTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.lockTimeout = d
		}
	}
}

// Open opens (creating if needed) the database at path and applies the schema.
// ":memory:" gives a private in-memory database.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	if path == "" {
		path = "warehouse-ledger.db"
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}

	s := &Store{lockTimeout: defaultLockTimeout}
	for _, opt := range opts {
		opt(s)
	}

	params := url.Values{}
	params.Add("_pragma", "foreign_keys(1)")
	params.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", s.lockTimeout.Milliseconds()))
	db, err := sql.Open("sqlite", "file:"+path+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	s.db = db
	return s, nil
}

func (s *Store) Warehouses() core.WarehouseRepository { return &warehouseRepo{db: s.db} }

func (s *Store) Items() core.ItemRepository { return &itemRepo{db: s.db} }

func (s *Store) Balances() core.BalanceRepository {
	return &balanceRepo{db: s.db, lockTimeout: s.lockTimeout}
}

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Close() { _ = s.db.Close() }

func now() string { return time.Now().UTC().Format(time.RFC3339Nano) }

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
