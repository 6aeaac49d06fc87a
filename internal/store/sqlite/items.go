package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"warehouse-ledger/internal/core"
)

type itemRepo struct {
	db *sql.DB
}

func scanItem(row rowScanner) (*core.Item, error) {
	var (
		item    core.Item
		created string
	)
	if err := row.Scan(&item.ID, &item.Name, &item.Volume, &created); err != nil {
		return nil, err
	}
	item.CreatedAt = parseTime(created)
	return &item, nil
}

func (r *itemRepo) Create(ctx context.Context, in core.ItemInput) (*core.Item, error) {
	item, err := scanItem(r.db.QueryRowContext(ctx, `
		INSERT INTO items (name, volume, created_at)
		VALUES (?, ?, ?)
		RETURNING id, name, volume, created_at`,
		in.Name, in.Volume, now(),
	))
	if err != nil {
		return nil, classify(err, nil)
	}
	return item, nil
}

func (r *itemRepo) Get(ctx context.Context, id int) (*core.Item, error) {
	item, err := scanItem(r.db.QueryRowContext(ctx, `
		SELECT id, name, volume, created_at
		FROM items
		WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrItemNotFound
		}
		return nil, fmt.Errorf("query item: %w", err)
	}
	return item, nil
}

func (r *itemRepo) Update(ctx context.Context, id int, patch core.ItemPatch) (*core.Item, error) {
	item, err := scanItem(r.db.QueryRowContext(ctx, `
		UPDATE items
		SET name   = COALESCE(?, name),
		    volume = COALESCE(?, volume)
		WHERE id = ?
		RETURNING id, name, volume, created_at`,
		patch.Name, patch.Volume, id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrItemNotFound
		}
		return nil, classify(err, nil)
	}
	return item, nil
}

func (r *itemRepo) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM items WHERE id = ?", id)
	if err != nil {
		return classify(err, nil)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrItemNotFound
	}
	return nil
}

func (r *itemRepo) List(ctx context.Context) ([]core.Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, volume, created_at
		FROM items
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := []core.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}
