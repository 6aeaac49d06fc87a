// Package postgres implements core.Store on PostgreSQL through pgx.
//
// Ledger writes take a row lock on balance_journal(warehouse_id, item_id) and a
// share lock on the warehouse row, so operations on the same key are
// serialized while disjoint keys proceed in parallel.
package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"warehouse-ledger/internal/core"
)

const defaultLockTimeout = 2 * time.Second

// Store is a core.Store over a pgx connection pool.
type Store struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
}

var _ core.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLockTimeout bounds how long a ledger write waits for its row lock.
func WithLockTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.lockTimeout = d
		}
	}
}

// New wraps pool. The Store takes ownership of the pool and closes it in Close.
func New(pool *pgxpool.Pool, opts ...Option) *Store {
	s := &Store{pool: pool, lockTimeout: defaultLockTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Warehouses() core.WarehouseRepository { return &warehouseRepo{pool: s.pool} }

func (s *Store) Items() core.ItemRepository { return &itemRepo{pool: s.pool} }

func (s *Store) Balances() core.BalanceRepository {
	return &balanceRepo{pool: s.pool, lockTimeout: s.lockTimeout}
}

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *Store) Close() { s.pool.Close() }
