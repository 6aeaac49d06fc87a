package core

import "time"

// Warehouse is a storage location that holds balances of items.
//
// OverdraftControl == true forbids any balance in the warehouse from going
// negative; false lets balances go below zero.
type Warehouse struct {
	ID               int       `json:"id"`
	Name             string    `json:"name"`
	OverdraftControl bool      `json:"overdraft_control"`
	CreatedAt        time.Time `json:"-"`
}

// Item is a stockable article. Volume is the volume of a single unit.
type Item struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Volume    int64     `json:"volume"`
	CreatedAt time.Time `json:"-"`
}

// WarehouseInput is the input for creating a warehouse.
type WarehouseInput struct {
	Name             string
	OverdraftControl bool
}

// WarehousePatch carries the fields to change on a warehouse. Nil fields are left untouched.
type WarehousePatch struct {
	Name             *string
	OverdraftControl *bool
}

// ItemInput is the input for creating an item.
type ItemInput struct {
	Name   string
	Volume int64
}

// ItemPatch carries the fields to change on an item. Nil fields are left untouched.
type ItemPatch struct {
	Name   *string
	Volume *int64
}

// BalanceKey identifies one row of the balance journal.
type BalanceKey struct {
	WarehouseID int
	ItemID      int
}

// Balance is a read view of a balance_journal row joined with its warehouse and item.
type Balance struct {
	Warehouse Warehouse
	Item      Item
	Quantity  int64
	Volume    int64 // = Quantity * Item.Volume, never stored; saturates at the int64 limits
	UpdatedAt time.Time
}
