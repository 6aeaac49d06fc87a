package app

// CreateWarehouseRequest is the input for creating a warehouse.
type CreateWarehouseRequest struct {
	Name             string
	OverdraftControl bool
}

// UpdateWarehouseRequest carries a partial warehouse update. Nil fields are left as they are.
type UpdateWarehouseRequest struct {
	ID               int
	Name             *string
	OverdraftControl *bool
}

// CreateItemRequest is the input for creating an item.
type CreateItemRequest struct {
	Name   string
	Volume int64
}

// UpdateItemRequest carries a partial item update. Nil fields are left as they are.
type UpdateItemRequest struct {
	ID     int
	Name   *string
	Volume *int64
}

// BalanceOperationRequest posts a signed delta against one ledger key.
// Quantity is the delta, not the absolute balance.
type BalanceOperationRequest struct {
	WarehouseID int
	ItemID      int
	Quantity    int64
}
