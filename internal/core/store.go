package core

import "context"

// Store is the relational store shared by all services. Implementations live
// under internal/store and must be safe for concurrent use.
type Store interface {
	Warehouses() WarehouseRepository
	Items() ItemRepository
	Balances() BalanceRepository
	Ping(ctx context.Context) error
	Close()
}

// WarehouseRepository persists warehouses. Create and Update return
// ErrDuplicateName on a name collision; Get, Update and Delete return
// ErrWarehouseNotFound for an unknown id.
type WarehouseRepository interface {
	Create(ctx context.Context, in WarehouseInput) (*Warehouse, error)
	Get(ctx context.Context, id int) (*Warehouse, error)
	Update(ctx context.Context, id int, patch WarehousePatch) (*Warehouse, error)
	Delete(ctx context.Context, id int) error
	List(ctx context.Context) ([]Warehouse, error)
}

// ItemRepository persists items with the same contract as WarehouseRepository,
// returning ErrItemNotFound for an unknown id.
type ItemRepository interface {
	Create(ctx context.Context, in ItemInput) (*Item, error)
	Get(ctx context.Context, id int) (*Item, error)
	Update(ctx context.Context, id int, patch ItemPatch) (*Item, error)
	Delete(ctx context.Context, id int) error
	List(ctx context.Context) ([]Item, error)
}

// AccumulateFunc decides the new quantity of a balance row from the warehouse
// and the row's current quantity. A non-nil error aborts the transaction and
// leaves the row untouched.
type AccumulateFunc func(w Warehouse, current int64) (int64, error)

// BalanceRepository persists the balance journal.
type BalanceRepository interface {
	// Accumulate runs decide against the locked, committed quantity of key
	// (0 when the row does not exist yet) and stores its result, all inside one
	// transaction. Concurrent calls on the same key are serialized; calls on
	// different keys must not block each other beyond what the backend forces.
	//
	// Returns ErrWarehouseNotFound or ErrItemNotFound for dangling references
	// and ErrConflict when the row lock could not be taken in time.
	Accumulate(ctx context.Context, key BalanceKey, decide AccumulateFunc) (int64, error)

	// List returns every row joined with its warehouse and item, read in a
	// single statement. Volume is left zero for the caller to derive.
	List(ctx context.Context) ([]Balance, error)

	// DeleteZero removes rows whose quantity is 0 and reports how many were removed.
	DeleteZero(ctx context.Context) (int64, error)
}
