package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"warehouse-ledger/internal/core"
)

type warehouseRepo struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWarehouse(row rowScanner) (*core.Warehouse, error) {
	var (
		w       core.Warehouse
		created string
	)
	if err := row.Scan(&w.ID, &w.Name, &w.OverdraftControl, &created); err != nil {
		return nil, err
	}
	w.CreatedAt = parseTime(created)
	return &w, nil
}

func (r *warehouseRepo) Create(ctx context.Context, in core.WarehouseInput) (*core.Warehouse, error) {
	w, err := scanWarehouse(r.db.QueryRowContext(ctx, `
		INSERT INTO warehouses (name, overdraft_control, created_at)
		VALUES (?, ?, ?)
		RETURNING id, name, overdraft_control, created_at`,
		in.Name, in.OverdraftControl, now(),
	))
	if err != nil {
		return nil, classify(err, nil)
	}
	return w, nil
}

func (r *warehouseRepo) Get(ctx context.Context, id int) (*core.Warehouse, error) {
	w, err := scanWarehouse(r.db.QueryRowContext(ctx, `
		SELECT id, name, overdraft_control, created_at
		FROM warehouses
		WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrWarehouseNotFound
		}
		return nil, fmt.Errorf("query warehouse: %w", err)
	}
	return w, nil
}

func (r *warehouseRepo) Update(ctx context.Context, id int, patch core.WarehousePatch) (*core.Warehouse, error) {
	w, err := scanWarehouse(r.db.QueryRowContext(ctx, `
		UPDATE warehouses
		SET name              = COALESCE(?, name),
		    overdraft_control = COALESCE(?, overdraft_control)
		WHERE id = ?
		RETURNING id, name, overdraft_control, created_at`,
		patch.Name, patch.OverdraftControl, id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrWarehouseNotFound
		}
		return nil, classify(err, nil)
	}
	return w, nil
}

func (r *warehouseRepo) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM warehouses WHERE id = ?", id)
	if err != nil {
		return classify(err, nil)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrWarehouseNotFound
	}
	return nil
}

func (r *warehouseRepo) List(ctx context.Context) ([]core.Warehouse, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, overdraft_control, created_at
		FROM warehouses
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query warehouses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	warehouses := []core.Warehouse{}
	for rows.Next() {
		w, err := scanWarehouse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan warehouse: %w", err)
		}
		warehouses = append(warehouses, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate warehouses: %w", err)
	}
	return warehouses, nil
}
