package postgres_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"warehouse-ledger/internal/core"
	"warehouse-ledger/internal/db"
	"warehouse-ledger/internal/store/postgres"
	"warehouse-ledger/migrations"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	_ = godotenv.Load("../../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, db.PoolConfig{URL: dbURL, MaxConns: 20})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := db.Migrate(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	_, err = pool.Exec(ctx, `TRUNCATE TABLE balance_journal, items, warehouses RESTART IDENTITY CASCADE`)
	if err != nil {
		pool.Close()
		t.Fatalf("Failed to clean test database: %v", err)
	}
	return pool
}

type fixture struct {
	store  *postgres.Store
	ledger *core.Ledger
	wh     core.WarehouseService
	items  core.ItemService
}

func newFixture(t *testing.T, opts ...postgres.Option) *fixture {
	pool := setupTestDB(t)
	store := postgres.New(pool, opts...)
	t.Cleanup(store.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &fixture{
		store:  store,
		ledger: core.NewLedger(store, core.LedgerOptions{Logger: logger}),
		wh:     core.NewWarehouseService(store, logger),
		items:  core.NewItemService(store, logger),
	}
}

func (f *fixture) seed(t *testing.T, warehouse string, overdraftControl bool, item string, volume int64) core.BalanceKey {
	ctx := context.Background()
	w, err := f.wh.CreateWarehouse(ctx, core.WarehouseInput{Name: warehouse, OverdraftControl: overdraftControl})
	if err != nil {
		t.Fatalf("CreateWarehouse: %v", err)
	}
	it, err := f.items.CreateItem(ctx, core.ItemInput{Name: item, Volume: volume})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	return core.BalanceKey{WarehouseID: w.ID, ItemID: it.ID}
}

func (f *fixture) quantity(t *testing.T, key core.BalanceKey) int64 {
	balances, err := f.ledger.ListBalances(context.Background())
	if err != nil {
		t.Fatalf("ListBalances: %v", err)
	}
	for _, b := range balances {
		if b.Warehouse.ID == key.WarehouseID && b.Item.ID == key.ItemID {
			return b.Quantity
		}
	}
	t.Fatalf("no balance for %+v", key)
	return 0
}

func TestLedger_AccumulationAndVolume(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := f.seed(t, "Main", false, "Box", 2)

	for _, delta := range []int64{10, 10, 23} {
		if _, err := f.ledger.ApplyDelta(ctx, key.WarehouseID, key.ItemID, delta); err != nil {
			t.Fatalf("ApplyDelta(%d): %v", delta, err)
		}
	}

	balances, err := f.ledger.ListBalances(ctx)
	if err != nil {
		t.Fatalf("ListBalances: %v", err)
	}
	if len(balances) != 1 || balances[0].Quantity != 43 || balances[0].Volume != 86 {
		t.Errorf("unexpected balances: %+v", balances)
	}
}

func TestLedger_Overdraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	controlled := f.seed(t, "Controlled", true, "Crate", 1)

	if _, err := f.ledger.ApplyDelta(ctx, controlled.WarehouseID, controlled.ItemID, -10); !errors.Is(err, core.ErrOverdraft) {
		t.Fatalf("got %v, want ErrOverdraft", err)
	}
	balances, err := f.ledger.ListBalances(ctx)
	if err != nil {
		t.Fatalf("ListBalances: %v", err)
	}
	if len(balances) != 0 {
		t.Errorf("rejected delta left a row: %+v", balances)
	}

	open, err := f.wh.CreateWarehouse(ctx, core.WarehouseInput{Name: "Open"})
	if err != nil {
		t.Fatalf("CreateWarehouse: %v", err)
	}
	got, err := f.ledger.ApplyDelta(ctx, open.ID, controlled.ItemID, -10)
	if err != nil {
		t.Fatalf("ApplyDelta: %v", err)
	}
	if got != -10 {
		t.Errorf("quantity = %d, want -10", got)
	}
}

func TestLedger_NotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := f.seed(t, "Main", false, "Crate", 1)

	if _, err := f.ledger.ApplyDelta(ctx, 999, key.ItemID, 1); !errors.Is(err, core.ErrWarehouseNotFound) {
		t.Errorf("unknown warehouse: got %v", err)
	}
	if _, err := f.ledger.ApplyDelta(ctx, key.WarehouseID, 999, 1); !errors.Is(err, core.ErrItemNotFound) {
		t.Errorf("unknown item: got %v", err)
	}
	name := "Ghost"
	if _, err := f.wh.UpdateWarehouse(ctx, 999, core.WarehousePatch{Name: &name}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("update unknown warehouse: got %v", err)
	}
	if err := f.items.DeleteItem(ctx, 999); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("delete unknown item: got %v", err)
	}
}

func TestEntities_UniquenessAndCascade(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := f.seed(t, "Main", false, "Crate", 1)

	if _, err := f.wh.CreateWarehouse(ctx, core.WarehouseInput{Name: "Main"}); !errors.Is(err, core.ErrValidation) {
		t.Errorf("duplicate warehouse: got %v, want ErrValidation", err)
	}
	if _, err := f.items.CreateItem(ctx, core.ItemInput{Name: "Crate"}); !errors.Is(err, core.ErrValidation) {
		t.Errorf("duplicate item: got %v, want ErrValidation", err)
	}

	if _, err := f.ledger.ApplyDelta(ctx, key.WarehouseID, key.ItemID, 5); err != nil {
		t.Fatalf("ApplyDelta: %v", err)
	}
	if err := f.wh.DeleteWarehouse(ctx, key.WarehouseID); err != nil {
		t.Fatalf("DeleteWarehouse: %v", err)
	}
	balances, err := f.ledger.ListBalances(ctx)
	if err != nil {
		t.Fatalf("ListBalances: %v", err)
	}
	if len(balances) != 0 {
		t.Errorf("balances survived warehouse delete: %+v", balances)
	}
}

func TestLedger_ConcurrentIncrements(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := f.seed(t, "Main", true, "Crate", 1)

	const writers = 100
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.ledger.ApplyDelta(ctx, key.WarehouseID, key.ItemID, 1); err != nil {
				t.Errorf("ApplyDelta: %v", err)
			}
		}()
	}
	wg.Wait()

	if q := f.quantity(t, key); q != writers {
		t.Errorf("quantity = %d, want %d (lost update)", q, writers)
	}
}

func TestLedger_ConcurrentOverdraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := f.seed(t, "Controlled", true, "Crate", 1)

	const stock, writers = 20, 60
	if _, err := f.ledger.ApplyDelta(ctx, key.WarehouseID, key.ItemID, stock); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var mu sync.Mutex
	succeeded, rejected := 0, 0
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.ledger.ApplyDelta(ctx, key.WarehouseID, key.ItemID, -1)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, core.ErrOverdraft):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != stock || rejected != writers-stock {
		t.Errorf("succeeded %d rejected %d, want %d and %d", succeeded, rejected, stock, writers-stock)
	}
	if q := f.quantity(t, key); q != 0 {
		t.Errorf("quantity = %d, want 0", q)
	}
}

func TestLedger_LockTimeout(t *testing.T) {
	f := newFixture(t, postgres.WithLockTimeout(100*time.Millisecond))
	ctx := context.Background()
	held := f.seed(t, "Main", false, "Crate", 1)

	other, err := f.items.CreateItem(ctx, core.ItemInput{Name: "Bolt", Volume: 1})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	free := core.BalanceKey{WarehouseID: held.WarehouseID, ItemID: other.ID}

	if _, err := f.ledger.ApplyDelta(ctx, held.WarehouseID, held.ItemID, 1); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// A separate session holds the row lock on one key.
	pool := setupLockPool(t)
	tx, err := pool.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if _, err := tx.Exec(ctx,
		"SELECT quantity FROM balance_journal WHERE warehouse_id = $1 AND item_id = $2 FOR UPDATE",
		held.WarehouseID, held.ItemID); err != nil {
		t.Fatalf("lock row: %v", err)
	}

	t.Run("disjoint key proceeds", func(t *testing.T) {
		if _, err := f.ledger.ApplyDelta(ctx, free.WarehouseID, free.ItemID, 1); err != nil {
			t.Errorf("ApplyDelta on a free key: %v", err)
		}
	})

	t.Run("locked key gives up with a conflict", func(t *testing.T) {
		start := time.Now()
		_, err := f.ledger.ApplyDelta(ctx, held.WarehouseID, held.ItemID, 1)
		if !errors.Is(err, core.ErrConflict) {
			t.Fatalf("got %v, want ErrConflict", err)
		}
		if elapsed := time.Since(start); elapsed > 5*time.Second {
			t.Errorf("gave up after %s, want a bounded wait", elapsed)
		}
	})
}

// setupLockPool opens a second pool on the test database without truncating it.
func setupLockPool(t *testing.T) *pgxpool.Pool {
	pool, err := pgxpool.New(context.Background(), os.Getenv("TEST_DATABASE_URL"))
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}
