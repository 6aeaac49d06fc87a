package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"warehouse-ledger/internal/core"
)

type warehouseRepo struct {
	pool *pgxpool.Pool
}

func (r *warehouseRepo) Create(ctx context.Context, in core.WarehouseInput) (*core.Warehouse, error) {
	w := &core.Warehouse{}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO warehouses (name, overdraft_control)
		VALUES ($1, $2)
		RETURNING id, name, overdraft_control, created_at`,
		in.Name, in.OverdraftControl,
	).Scan(&w.ID, &w.Name, &w.OverdraftControl, &w.CreatedAt)
	if err != nil {
		return nil, classify(err, nil)
	}
	return w, nil
}

func (r *warehouseRepo) Get(ctx context.Context, id int) (*core.Warehouse, error) {
	w := &core.Warehouse{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, overdraft_control, created_at
		FROM warehouses
		WHERE id = $1`,
		id,
	).Scan(&w.ID, &w.Name, &w.OverdraftControl, &w.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrWarehouseNotFound
		}
		return nil, fmt.Errorf("query warehouse: %w", err)
	}
	return w, nil
}

func (r *warehouseRepo) Update(ctx context.Context, id int, patch core.WarehousePatch) (*core.Warehouse, error) {
	w := &core.Warehouse{}
	err := r.pool.QueryRow(ctx, `
		UPDATE warehouses
		SET name              = COALESCE($2, name),
		    overdraft_control = COALESCE($3, overdraft_control)
		WHERE id = $1
		RETURNING id, name, overdraft_control, created_at`,
		id, patch.Name, patch.OverdraftControl,
	).Scan(&w.ID, &w.Name, &w.OverdraftControl, &w.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrWarehouseNotFound
		}
		return nil, classify(err, nil)
	}
	return w, nil
}

func (r *warehouseRepo) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM warehouses WHERE id = $1", id)
	if err != nil {
		return classify(err, nil)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrWarehouseNotFound
	}
	return nil
}

func (r *warehouseRepo) List(ctx context.Context) ([]core.Warehouse, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, overdraft_control, created_at
		FROM warehouses
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query warehouses: %w", err)
	}
	defer rows.Close()

	warehouses := []core.Warehouse{}
	for rows.Next() {
		var w core.Warehouse
		if err := rows.Scan(&w.ID, &w.Name, &w.OverdraftControl, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan warehouse: %w", err)
		}
		warehouses = append(warehouses, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate warehouses: %w", err)
	}
	return warehouses, nil
}
