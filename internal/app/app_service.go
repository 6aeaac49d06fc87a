package app

import (
	"context"
	"fmt"

	"warehouse-ledger/internal/core"
)

type appService struct {
	store      core.Store
	warehouses core.WarehouseService
	items      core.ItemService
	ledger     core.LedgerService
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(
	store core.Store,
	warehouses core.WarehouseService,
	items core.ItemService,
	ledger core.LedgerService,
) ApplicationService {
	return &appService{
		store:      store,
		warehouses: warehouses,
		items:      items,
		ledger:     ledger,
	}
}

func (s *appService) CreateWarehouse(ctx context.Context, req CreateWarehouseRequest) (*WarehouseResult, error) {
	w, err := s.warehouses.CreateWarehouse(ctx, core.WarehouseInput{
		Name:             req.Name,
		OverdraftControl: req.OverdraftControl,
	})
	if err != nil {
		return nil, err
	}
	return &WarehouseResult{Warehouse: w}, nil
}

func (s *appService) GetWarehouse(ctx context.Context, id int) (*WarehouseResult, error) {
	w, err := s.warehouses.GetWarehouse(ctx, id)
	if err != nil {
		return nil, err
	}
	return &WarehouseResult{Warehouse: w}, nil
}

func (s *appService) UpdateWarehouse(ctx context.Context, req UpdateWarehouseRequest) (*WarehouseResult, error) {
	w, err := s.warehouses.UpdateWarehouse(ctx, req.ID, core.WarehousePatch{
		Name:             req.Name,
		OverdraftControl: req.OverdraftControl,
	})
	if err != nil {
		return nil, err
	}
	return &WarehouseResult{Warehouse: w}, nil
}

func (s *appService) DeleteWarehouse(ctx context.Context, id int) error {
	return s.warehouses.DeleteWarehouse(ctx, id)
}

func (s *appService) ListWarehouses(ctx context.Context) (*WarehouseListResult, error) {
	list, err := s.warehouses.ListWarehouses(ctx)
	if err != nil {
		return nil, err
	}
	return &WarehouseListResult{Warehouses: list}, nil
}

func (s *appService) CreateItem(ctx context.Context, req CreateItemRequest) (*ItemResult, error) {
	it, err := s.items.CreateItem(ctx, core.ItemInput{Name: req.Name, Volume: req.Volume})
	if err != nil {
		return nil, err
	}
	return &ItemResult{Item: it}, nil
}

func (s *appService) GetItem(ctx context.Context, id int) (*ItemResult, error) {
	it, err := s.items.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ItemResult{Item: it}, nil
}

func (s *appService) UpdateItem(ctx context.Context, req UpdateItemRequest) (*ItemResult, error) {
	it, err := s.items.UpdateItem(ctx, req.ID, core.ItemPatch{Name: req.Name, Volume: req.Volume})
	if err != nil {
		return nil, err
	}
	return &ItemResult{Item: it}, nil
}

func (s *appService) DeleteItem(ctx context.Context, id int) error {
	return s.items.DeleteItem(ctx, id)
}

func (s *appService) ListItems(ctx context.Context) (*ItemListResult, error) {
	list, err := s.items.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	return &ItemListResult{Items: list}, nil
}

func (s *appService) ApplyBalanceOperation(ctx context.Context, req BalanceOperationRequest) (*BalanceOperationResult, error) {
	qty, err := s.ledger.ApplyDelta(ctx, req.WarehouseID, req.ItemID, req.Quantity)
	if err != nil {
		return nil, err
	}
	return &BalanceOperationResult{WarehouseID: req.WarehouseID, ItemID: req.ItemID, Quantity: qty}, nil
}

func (s *appService) ListBalances(ctx context.Context) (*BalanceListResult, error) {
	list, err := s.ledger.ListBalances(ctx)
	if err != nil {
		return nil, err
	}
	return &BalanceListResult{Balances: list}, nil
}

func (s *appService) PruneZeroBalances(ctx context.Context) (*PruneResult, error) {
	n, err := s.ledger.PruneZero(ctx)
	if err != nil {
		return nil, err
	}
	return &PruneResult{Deleted: n}, nil
}

func (s *appService) Ping(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping store: %w", err)
	}
	return nil
}
