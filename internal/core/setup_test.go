package core_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"warehouse-ledger/internal/core"
	"warehouse-ledger/internal/store/sqlite"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// setupStore opens a fresh SQLite store in a temp dir.
func setupStore(t *testing.T) core.Store {
	t.Helper()
	store, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "ledger.db"),
		sqlite.WithLockTimeout(10*time.Second))
	if err != nil {
		t.Fatalf("Failed to open test store: %v", err)
	}
	t.Cleanup(store.Close)
	return store
}

type fixture struct {
	store      core.Store
	warehouses core.WarehouseService
	items      core.ItemService
	ledger     *core.Ledger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := setupStore(t)
	return &fixture{
		store:      store,
		warehouses: core.NewWarehouseService(store, discardLogger),
		items:      core.NewItemService(store, discardLogger),
		ledger:     core.NewLedger(store, core.LedgerOptions{Logger: discardLogger}),
	}
}

func (f *fixture) warehouse(t *testing.T, name string, overdraftControl bool) *core.Warehouse {
	t.Helper()
	w, err := f.warehouses.CreateWarehouse(context.Background(), core.WarehouseInput{Name: name, OverdraftControl: overdraftControl})
	if err != nil {
		t.Fatalf("CreateWarehouse(%q): %v", name, err)
	}
	return w
}

func (f *fixture) item(t *testing.T, name string, volume int64) *core.Item {
	t.Helper()
	it, err := f.items.CreateItem(context.Background(), core.ItemInput{Name: name, Volume: volume})
	if err != nil {
		t.Fatalf("CreateItem(%q): %v", name, err)
	}
	return it
}

// quantity returns the stored quantity for a key and whether a row exists.
func (f *fixture) quantity(t *testing.T, warehouseID, itemID int) (int64, bool) {
	t.Helper()
	balances, err := f.ledger.ListBalances(context.Background())
	if err != nil {
		t.Fatalf("ListBalances: %v", err)
	}
	for _, b := range balances {
		if b.Warehouse.ID == warehouseID && b.Item.ID == itemID {
			return b.Quantity, true
		}
	}
	return 0, false
}
