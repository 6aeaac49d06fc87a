package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"warehouse-ledger/internal/core"
)

type balanceRepo struct {
	db          *sql.DB
	lockTimeout time.Duration
}

func (r *balanceRepo) Accumulate(ctx context.Context, key core.BalanceKey, decide core.AccumulateFunc) (int64, error) {
	lockCtx, cancel := context.WithTimeout(ctx, r.lockTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(lockCtx, nil)
	if err != nil {
		return 0, lockErr(ctx, fmt.Errorf("begin transaction: %w", err))
	}
	defer func() { _ = tx.Rollback() }()

	w, err := scanWarehouse(tx.QueryRowContext(lockCtx, `
		SELECT id, name, overdraft_control, created_at
		FROM warehouses
		WHERE id = ?`, key.WarehouseID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, core.ErrWarehouseNotFound
		}
		return 0, lockErr(ctx, fmt.Errorf("resolve warehouse: %w", err))
	}

	var itemID int
	if err := tx.QueryRowContext(lockCtx, "SELECT id FROM items WHERE id = ?", key.ItemID).Scan(&itemID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, core.ErrItemNotFound
		}
		return 0, lockErr(ctx, fmt.Errorf("resolve item: %w", err))
	}

	var current int64
	err = tx.QueryRowContext(lockCtx, `
		SELECT quantity
		FROM balance_journal
		WHERE warehouse_id = ? AND item_id = ?`,
		key.WarehouseID, key.ItemID,
	).Scan(&current)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, lockErr(ctx, fmt.Errorf("read balance: %w", err))
	}

	next, err := decide(*w, current)
	if err != nil {
		return 0, err
	}

	if _, err := tx.ExecContext(lockCtx, `
		INSERT INTO balance_journal (warehouse_id, item_id, quantity, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (warehouse_id, item_id)
		DO UPDATE SET quantity = excluded.quantity, updated_at = excluded.updated_at`,
		key.WarehouseID, key.ItemID, next, now(),
	); err != nil {
		return 0, lockErr(ctx, classify(fmt.Errorf("write balance: %w", err), core.ErrNotFound))
	}

	if err := tx.Commit(); err != nil {
		return 0, lockErr(ctx, fmt.Errorf("commit balance: %w", err))
	}
	return next, nil
}

func (r *balanceRepo) List(ctx context.Context) ([]core.Balance, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT w.id, w.name, w.overdraft_control, w.created_at,
		       i.id, i.name, i.volume, i.created_at,
		       b.quantity, b.updated_at
		FROM balance_journal b
		JOIN warehouses w ON w.id = b.warehouse_id
		JOIN items i      ON i.id = b.item_id
		ORDER BY b.warehouse_id, b.item_id`)
	if err != nil {
		return nil, fmt.Errorf("query balances: %w", err)
	}
	defer func() { _ = rows.Close() }()

	balances := []core.Balance{}
	for rows.Next() {
		var b core.Balance
		var whCreated, itemCreated, updatedAt string
		if err := rows.Scan(
			&b.Warehouse.ID, &b.Warehouse.Name, &b.Warehouse.OverdraftControl, &whCreated,
			&b.Item.ID, &b.Item.Name, &b.Item.Volume, &itemCreated,
			&b.Quantity, &updatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan balance: %w", err)
		}
		b.Warehouse.CreatedAt = parseTime(whCreated)
		b.Item.CreatedAt = parseTime(itemCreated)
		b.UpdatedAt = parseTime(updatedAt)
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate balances: %w", err)
	}
	return balances, nil
}

func (r *balanceRepo) DeleteZero(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM balance_journal WHERE quantity = 0")
	if err != nil {
		return 0, classify(fmt.Errorf("delete zero balances: %w", err), nil)
	}
	return res.RowsAffected()
}
