package app

import (
	"context"
)

// ApplicationService is the single interface all UI adapters (CLI, Web) call.
// It decouples presentation from business logic. Implementations must contain
// no display logic of any kind.
type ApplicationService interface {
	// CreateWarehouse creates a warehouse with a unique name.
	CreateWarehouse(ctx context.Context, req CreateWarehouseRequest) (*WarehouseResult, error)

	// GetWarehouse returns one warehouse by id.
	GetWarehouse(ctx context.Context, id int) (*WarehouseResult, error)

	// UpdateWarehouse changes the name and/or overdraft control of a warehouse.
	UpdateWarehouse(ctx context.Context, req UpdateWarehouseRequest) (*WarehouseResult, error)

	// DeleteWarehouse removes a warehouse together with its balances.
	DeleteWarehouse(ctx context.Context, id int) error

	// ListWarehouses returns all warehouses ordered by id.
	ListWarehouses(ctx context.Context) (*WarehouseListResult, error)

	// CreateItem creates an item with a unique name and an optional unit volume.
	CreateItem(ctx context.Context, req CreateItemRequest) (*ItemResult, error)

	// GetItem returns one item by id.
	GetItem(ctx context.Context, id int) (*ItemResult, error)

	// UpdateItem changes the name and/or unit volume of an item.
	UpdateItem(ctx context.Context, req UpdateItemRequest) (*ItemResult, error)

	// DeleteItem removes an item together with its balances.
	DeleteItem(ctx context.Context, id int) error

	// ListItems returns all items ordered by id.
	ListItems(ctx context.Context) (*ItemListResult, error)

	// ApplyBalanceOperation adds a signed quantity delta to a (warehouse, item)
	// balance and returns the resulting quantity.
	ApplyBalanceOperation(ctx context.Context, req BalanceOperationRequest) (*BalanceOperationResult, error)

	// ListBalances returns every balance with its derived volume.
	ListBalances(ctx context.Context) (*BalanceListResult, error)

	// PruneZeroBalances deletes balances whose quantity is 0.
	PruneZeroBalances(ctx context.Context) (*PruneResult, error)

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}
