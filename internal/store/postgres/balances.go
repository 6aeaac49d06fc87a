package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"warehouse-ledger/internal/core"
	"warehouse-ledger/internal/db"
)

type balanceRepo struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
}

func (r *balanceRepo) Accumulate(ctx context.Context, key core.BalanceKey, decide core.AccumulateFunc) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "SELECT set_config('lock_timeout', $1, true)",
		fmt.Sprintf("%dms", db.LockTimeoutMillis(r.lockTimeout))); err != nil {
		return 0, fmt.Errorf("failed to set lock timeout: %w", err)
	}

	// Share lock: the overdraft flag cannot change and the warehouse cannot be
	// deleted until this delta commits. Other keys in the same warehouse are not blocked.
	var w core.Warehouse
	err = tx.QueryRow(ctx, `
		SELECT id, name, overdraft_control, created_at
		FROM warehouses
		WHERE id = $1
		FOR SHARE`,
		key.WarehouseID,
	).Scan(&w.ID, &w.Name, &w.OverdraftControl, &w.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, core.ErrWarehouseNotFound
		}
		return 0, classify(fmt.Errorf("failed to resolve warehouse: %w", err), nil)
	}

	var itemID int
	err = tx.QueryRow(ctx, "SELECT id FROM items WHERE id = $1 FOR SHARE", key.ItemID).Scan(&itemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, core.ErrItemNotFound
		}
		return 0, classify(fmt.Errorf("failed to resolve item: %w", err), nil)
	}

	// Create the row if it doesn't exist yet; a concurrent creator makes this
	// wait and then do nothing.
	if _, err := tx.Exec(ctx, `
		INSERT INTO balance_journal (warehouse_id, item_id, quantity)
		VALUES ($1, $2, 0)
		ON CONFLICT (warehouse_id, item_id) DO NOTHING`,
		key.WarehouseID, key.ItemID,
	); err != nil {
		return 0, classify(fmt.Errorf("failed to create balance row: %w", err), core.ErrNotFound)
	}

	var current int64
	err = tx.QueryRow(ctx, `
		SELECT quantity
		FROM balance_journal
		WHERE warehouse_id = $1 AND item_id = $2
		FOR UPDATE`,
		key.WarehouseID, key.ItemID,
	).Scan(&current)
	if err != nil {
		return 0, classify(fmt.Errorf("failed to lock balance row: %w", err), nil)
	}

	next, err := decide(w, current)
	if err != nil {
		return 0, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE balance_journal
		SET quantity = $3, updated_at = NOW()
		WHERE warehouse_id = $1 AND item_id = $2`,
		key.WarehouseID, key.ItemID, next,
	); err != nil {
		return 0, classify(fmt.Errorf("failed to update balance row: %w", err), nil)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, classify(fmt.Errorf("failed to commit balance: %w", err), nil)
	}
	return next, nil
}

func (r *balanceRepo) List(ctx context.Context) ([]core.Balance, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT w.id, w.name, w.overdraft_control, w.created_at,
		       i.id, i.name, i.volume, i.created_at,
		       b.quantity, b.updated_at
		FROM balance_journal b
		JOIN warehouses w ON w.id = b.warehouse_id
		JOIN items i      ON i.id = b.item_id
		ORDER BY b.warehouse_id, b.item_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query balances: %w", err)
	}
	defer rows.Close()

	balances := []core.Balance{}
	for rows.Next() {
		var b core.Balance
		if err := rows.Scan(
			&b.Warehouse.ID, &b.Warehouse.Name, &b.Warehouse.OverdraftControl, &b.Warehouse.CreatedAt,
			&b.Item.ID, &b.Item.Name, &b.Item.Volume, &b.Item.CreatedAt,
			&b.Quantity, &b.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan balance: %w", err)
		}
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating balances: %w", err)
	}
	return balances, nil
}

func (r *balanceRepo) DeleteZero(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, "DELETE FROM balance_journal WHERE quantity = 0")
	if err != nil {
		return 0, classify(fmt.Errorf("failed to delete zero balances: %w", err), nil)
	}
	return tag.RowsAffected(), nil
}
