package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"warehouse-ledger/internal/core"
)

type itemRepo struct {
	pool *pgxpool.Pool
}

func (r *itemRepo) Create(ctx context.Context, in core.ItemInput) (*core.Item, error) {
	item := &core.Item{}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO items (name, volume)
		VALUES ($1, $2)
		RETURNING id, name, volume, created_at`,
		in.Name, in.Volume,
	).Scan(&item.ID, &item.Name, &item.Volume, &item.CreatedAt)
	if err != nil {
		return nil, classify(err, nil)
	}
	return item, nil
}

func (r *itemRepo) Get(ctx context.Context, id int) (*core.Item, error) {
	item := &core.Item{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, volume, created_at
		FROM items
		WHERE id = $1`,
		id,
	).Scan(&item.ID, &item.Name, &item.Volume, &item.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrItemNotFound
		}
		return nil, fmt.Errorf("query item: %w", err)
	}
	return item, nil
}

func (r *itemRepo) Update(ctx context.Context, id int, patch core.ItemPatch) (*core.Item, error) {
	item := &core.Item{}
	err := r.pool.QueryRow(ctx, `
		UPDATE items
		SET name   = COALESCE($2, name),
		    volume = COALESCE($3, volume)
		WHERE id = $1
		RETURNING id, name, volume, created_at`,
		id, patch.Name, patch.Volume,
	).Scan(&item.ID, &item.Name, &item.Volume, &item.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrItemNotFound
		}
		return nil, classify(err, nil)
	}
	return item, nil
}

func (r *itemRepo) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM items WHERE id = $1", id)
	if err != nil {
		return classify(err, nil)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrItemNotFound
	}
	return nil
}

func (r *itemRepo) List(ctx context.Context) ([]core.Item, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, volume, created_at
		FROM items
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	items := []core.Item{}
	for rows.Next() {
		var item core.Item
		if err := rows.Scan(&item.ID, &item.Name, &item.Volume, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}
