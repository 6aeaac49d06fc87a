package app

import "warehouse-ledger/internal/core"

// WarehouseResult is returned by single-warehouse operations.
type WarehouseResult struct {
	Warehouse *core.Warehouse
}

// WarehouseListResult is returned by ListWarehouses.
type WarehouseListResult struct {
	Warehouses []core.Warehouse
}

// ItemResult is returned by single-item operations.
type ItemResult struct {
	Item *core.Item
}

// ItemListResult is returned by ListItems.
type ItemListResult struct {
	Items []core.Item
}

// BalanceOperationResult is returned by ApplyBalanceOperation.
type BalanceOperationResult struct {
	WarehouseID int
	ItemID      int
	Quantity    int64
}

// BalanceListResult is returned by ListBalances.
type BalanceListResult struct {
	Balances []core.Balance
}

// PruneResult is returned by PruneZeroBalances.
type PruneResult struct {
	Deleted int64
}
