package core

import (
	"context"
	"fmt"
	"log/slog"
)

// WarehouseService manages warehouse records.
type WarehouseService interface {
	CreateWarehouse(ctx context.Context, in WarehouseInput) (*Warehouse, error)
	GetWarehouse(ctx context.Context, id int) (*Warehouse, error)
	// UpdateWarehouse applies the non-nil fields of patch.
	UpdateWarehouse(ctx context.Context, id int, patch WarehousePatch) (*Warehouse, error)
	// DeleteWarehouse removes the warehouse and, through the foreign key, its balances.
	DeleteWarehouse(ctx context.Context, id int) error
	ListWarehouses(ctx context.Context) ([]Warehouse, error)
}

type warehouseService struct {
	repo   WarehouseRepository
	logger *slog.Logger
}

// NewWarehouseService constructs a WarehouseService backed by store.
func NewWarehouseService(store Store, logger *slog.Logger) WarehouseService {
	if logger == nil {
		logger = slog.Default()
	}
	return &warehouseService{repo: store.Warehouses(), logger: logger.With("service", "warehouses")}
}

func (s *warehouseService) CreateWarehouse(ctx context.Context, in WarehouseInput) (*Warehouse, error) {
	name, err := normalizeName(in.Name)
	if err != nil {
		return nil, err
	}
	in.Name = name

	w, err := s.repo.Create(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create warehouse %q: %w", in.Name, err)
	}
	s.logger.InfoContext(ctx, "warehouse created", "warehouse_id", w.ID, "name", w.Name,
		"overdraft_control", w.OverdraftControl)
	return w, nil
}

func (s *warehouseService) GetWarehouse(ctx context.Context, id int) (*Warehouse, error) {
	w, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get warehouse %d: %w", id, err)
	}
	return w, nil
}

func (s *warehouseService) UpdateWarehouse(ctx context.Context, id int, patch WarehousePatch) (*Warehouse, error) {
	if patch.Name != nil {
		name, err := normalizeName(*patch.Name)
		if err != nil {
			return nil, err
		}
		patch.Name = &name
	}

	w, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update warehouse %d: %w", id, err)
	}
	s.logger.InfoContext(ctx, "warehouse updated", "warehouse_id", w.ID)
	return w, nil
}

func (s *warehouseService) DeleteWarehouse(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete warehouse %d: %w", id, err)
	}
	s.logger.InfoContext(ctx, "warehouse deleted", "warehouse_id", id)
	return nil
}

func (s *warehouseService) ListWarehouses(ctx context.Context) ([]Warehouse, error) {
	warehouses, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list warehouses: %w", err)
	}
	return warehouses, nil
}
