package core_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"warehouse-ledger/internal/core"
)

func TestLedger_Accumulates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.warehouse(t, "Main", false)
	it := f.item(t, "Crate", 0)

	for i, want := range []int64{10, 20} {
		got, err := f.ledger.ApplyDelta(ctx, w.ID, it.ID, 10)
		if err != nil {
			t.Fatalf("ApplyDelta #%d: %v", i+1, err)
		}
		if got != want {
			t.Errorf("ApplyDelta #%d = %d, want %d", i+1, got, want)
		}
	}

	if q, ok := f.quantity(t, w.ID, it.ID); !ok || q != 20 {
		t.Errorf("listed quantity = %d (present %v), want 20", q, ok)
	}
}

func TestLedger_ZeroDeltaCreatesRow(t *testing.T) {
	f := newFixture(t)
	w := f.warehouse(t, "Main", true)
	it := f.item(t, "Crate", 0)

	got, err := f.ledger.ApplyDelta(context.Background(), w.ID, it.ID, 0)
	if err != nil {
		t.Fatalf("ApplyDelta: %v", err)
	}
	if got != 0 {
		t.Errorf("ApplyDelta = %d, want 0", got)
	}
	if _, ok := f.quantity(t, w.ID, it.ID); !ok {
		t.Error("expected a balance row for a zero delta")
	}
}

func TestLedger_OverdraftControl(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	controlled := f.warehouse(t, "Controlled", true)
	open := f.warehouse(t, "Open", false)
	it := f.item(t, "Crate", 0)

	t.Run("rejected on first use leaves no row", func(t *testing.T) {
		_, err := f.ledger.ApplyDelta(ctx, controlled.ID, it.ID, -10)
		if !errors.Is(err, core.ErrOverdraft) {
			t.Fatalf("got %v, want ErrOverdraft", err)
		}
		var od *core.OverdraftError
		if !errors.As(err, &od) {
			t.Fatalf("got %T, want *core.OverdraftError", err)
		}
		if od.Current != 0 || od.Delta != -10 {
			t.Errorf("unexpected overdraft error: %+v", od)
		}
		if q, ok := f.quantity(t, controlled.ID, it.ID); ok {
			t.Errorf("expected no balance row, found quantity %d", q)
		}
	})

	t.Run("rejected against existing stock keeps quantity", func(t *testing.T) {
		if _, err := f.ledger.ApplyDelta(ctx, controlled.ID, it.ID, 5); err != nil {
			t.Fatalf("seed: %v", err)
		}
		if _, err := f.ledger.ApplyDelta(ctx, controlled.ID, it.ID, -6); !errors.Is(err, core.ErrOverdraft) {
			t.Fatalf("got %v, want ErrOverdraft", err)
		}
		if q, _ := f.quantity(t, controlled.ID, it.ID); q != 5 {
			t.Errorf("quantity = %d, want 5", q)
		}
		got, err := f.ledger.ApplyDelta(ctx, controlled.ID, it.ID, -5)
		if err != nil {
			t.Fatalf("draining to zero: %v", err)
		}
		if got != 0 {
			t.Errorf("quantity = %d, want 0", got)
		}
	})

	t.Run("permissive warehouse goes negative", func(t *testing.T) {
		got, err := f.ledger.ApplyDelta(ctx, open.ID, it.ID, -10)
		if err != nil {
			t.Fatalf("ApplyDelta: %v", err)
		}
		if got != -10 {
			t.Errorf("quantity = %d, want -10", got)
		}
	})

	t.Run("turning control on does not rewrite negative balances", func(t *testing.T) {
		control := true
		if _, err := f.warehouses.UpdateWarehouse(ctx, open.ID, core.WarehousePatch{OverdraftControl: &control}); err != nil {
			t.Fatalf("UpdateWarehouse: %v", err)
		}
		if q, _ := f.quantity(t, open.ID, it.ID); q != -10 {
			t.Errorf("quantity = %d, want -10", q)
		}
		// Any result below zero is refused, even one that moves toward zero.
		if _, err := f.ledger.ApplyDelta(ctx, open.ID, it.ID, -1); !errors.Is(err, core.ErrOverdraft) {
			t.Errorf("decrease: got %v, want ErrOverdraft", err)
		}
		if _, err := f.ledger.ApplyDelta(ctx, open.ID, it.ID, 1); !errors.Is(err, core.ErrOverdraft) {
			t.Errorf("increase staying negative: got %v, want ErrOverdraft", err)
		}
		if _, err := f.ledger.ApplyDelta(ctx, open.ID, it.ID, 15); err != nil {
			t.Errorf("increase to positive: %v", err)
		}
	})
}

func TestLedger_DerivedVolume(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.warehouse(t, "Main", false)
	it := f.item(t, "Box", 2)

	if _, err := f.ledger.ApplyDelta(ctx, w.ID, it.ID, 43); err != nil {
		t.Fatalf("ApplyDelta: %v", err)
	}
	balances, err := f.ledger.ListBalances(ctx)
	if err != nil {
		t.Fatalf("ListBalances: %v", err)
	}
	if len(balances) != 1 {
		t.Fatalf("expected 1 balance, got %d", len(balances))
	}
	b := balances[0]
	if b.Volume != 86 {
		t.Errorf("volume = %d, want 86", b.Volume)
	}
	if b.Warehouse.Name != "Main" || b.Item.Name != "Box" {
		t.Errorf("unexpected joined rows: %+v", b)
	}

	// Volume follows the item, it is never stored.
	volume := int64(3)
	if _, err := f.items.UpdateItem(ctx, it.ID, core.ItemPatch{Volume: &volume}); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	balances, err = f.ledger.ListBalances(ctx)
	if err != nil {
		t.Fatalf("ListBalances: %v", err)
	}
	if balances[0].Volume != 129 {
		t.Errorf("volume after item update = %d, want 129", balances[0].Volume)
	}
}

func TestLedger_DerivedVolumeOverflow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.warehouse(t, "Main", false)
	bulky := f.item(t, "Container", 1<<40)
	owed := f.item(t, "Pallet", 1<<40)
	fits := f.item(t, "Drum", 1<<20)

	if _, err := f.ledger.ApplyDelta(ctx, w.ID, bulky.ID, 1<<24); err != nil {
		t.Fatalf("ApplyDelta: %v", err)
	}
	if _, err := f.ledger.ApplyDelta(ctx, w.ID, owed.ID, -(1 << 24)); err != nil {
		t.Fatalf("ApplyDelta: %v", err)
	}
	if _, err := f.ledger.ApplyDelta(ctx, w.ID, fits.ID, 1<<20); err != nil {
		t.Fatalf("ApplyDelta: %v", err)
	}

	balances, err := f.ledger.ListBalances(ctx)
	if err != nil {
		t.Fatalf("ListBalances: %v", err)
	}
	want := map[int]int64{
		bulky.ID: math.MaxInt64,
		owed.ID: math.MinInt64,
		fits.ID:  1 << 40,
	}
	if len(balances) != len(want) {
		t.Fatalf("expected %d balances, got %d", len(want), len(balances))
	}
	for _, b := range balances {
		if b.Volume != want[b.Item.ID] {
			t.Errorf("%s: volume = %d, want %d", b.Item.Name, b.Volume, want[b.Item.ID])
		}
	}
}

func TestLedger_NotFoundAndValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.warehouse(t, "Main", false)
	it := f.item(t, "Crate", 0)

	tests := []struct {
		name        string
		warehouseID int
		itemID      int
		delta       int64
		want        error
	}{
		{"unknown warehouse", 999, it.ID, 1, core.ErrWarehouseNotFound},
		{"unknown item", w.ID, 999, 1, core.ErrItemNotFound},
		{"zero warehouse id", 0, it.ID, 1, core.ErrValidation},
		{"negative item id", w.ID, -1, 1, core.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ledger.ApplyDelta(ctx, tt.warehouseID, tt.itemID, tt.delta)
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}

	balances, err := f.ledger.ListBalances(ctx)
	if err != nil {
		t.Fatalf("ListBalances: %v", err)
	}
	if len(balances) != 0 {
		t.Errorf("expected no balances, got %+v", balances)
	}
}

func TestLedger_Overflow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.warehouse(t, "Main", false)
	it := f.item(t, "Crate", 0)

	if _, err := f.ledger.ApplyDelta(ctx, w.ID, it.ID, math.MaxInt64); err != nil {
		t.Fatalf("ApplyDelta(MaxInt64): %v", err)
	}
	if _, err := f.ledger.ApplyDelta(ctx, w.ID, it.ID, 1); !errors.Is(err, core.ErrValidation) {
		t.Errorf("got %v, want ErrValidation", err)
	}
	if q, _ := f.quantity(t, w.ID, it.ID); q != math.MaxInt64 {
		t.Errorf("quantity = %d, want MaxInt64", q)
	}
}

func TestLedger_CascadeDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w1 := f.warehouse(t, "North", false)
	w2 := f.warehouse(t, "South", false)
	i1 := f.item(t, "Bolt", 1)
	i2 := f.item(t, "Nut", 1)

	for _, key := range []core.BalanceKey{
		{WarehouseID: w1.ID, ItemID: i1.ID},
		{WarehouseID: w1.ID, ItemID: i2.ID},
		{WarehouseID: w2.ID, ItemID: i1.ID},
		{WarehouseID: w2.ID, ItemID: i2.ID},
	} {
		if _, err := f.ledger.ApplyDelta(ctx, key.WarehouseID, key.ItemID, 1); err != nil {
			t.Fatalf("ApplyDelta(%+v): %v", key, err)
		}
	}

	if err := f.warehouses.DeleteWarehouse(ctx, w1.ID); err != nil {
		t.Fatalf("DeleteWarehouse: %v", err)
	}
	if err := f.items.DeleteItem(ctx, i2.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}

	balances, err := f.ledger.ListBalances(ctx)
	if err != nil {
		t.Fatalf("ListBalances: %v", err)
	}
	if len(balances) != 1 || balances[0].Warehouse.ID != w2.ID || balances[0].Item.ID != i1.ID {
		t.Errorf("expected only (South, Bolt) to remain, got %+v", balances)
	}
}

func TestLedger_PruneZero(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.warehouse(t, "Main", false)
	i1 := f.item(t, "Bolt", 1)
	i2 := f.item(t, "Nut", 1)

	if _, err := f.ledger.ApplyDelta(ctx, w.ID, i1.ID, 0); err != nil {
		t.Fatalf("ApplyDelta: %v", err)
	}
	if _, err := f.ledger.ApplyDelta(ctx, w.ID, i2.ID, 4); err != nil {
		t.Fatalf("ApplyDelta: %v", err)
	}

	n, err := f.ledger.PruneZero(ctx)
	if err != nil {
		t.Fatalf("PruneZero: %v", err)
	}
	if n != 1 {
		t.Errorf("pruned %d rows, want 1", n)
	}
	if _, ok := f.quantity(t, w.ID, i1.ID); ok {
		t.Error("zero balance still listed after prune")
	}
	if q, ok := f.quantity(t, w.ID, i2.ID); !ok || q != 4 {
		t.Errorf("non-zero balance = %d (present %v), want 4", q, ok)
	}
}

func TestLedger_ConcurrentIncrements(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.warehouse(t, "Main", true)
	it := f.item(t, "Crate", 0)

	const writers = 50
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.ledger.ApplyDelta(ctx, w.ID, it.ID, 1); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent ApplyDelta: %v", err)
	}

	if q, _ := f.quantity(t, w.ID, it.ID); q != writers {
		t.Errorf("quantity = %d, want %d (lost update)", q, writers)
	}
}

func TestLedger_ConcurrentOverdraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.warehouse(t, "Controlled", true)
	it := f.item(t, "Crate", 0)

	const stock, writers = 10, 25
	if _, err := f.ledger.ApplyDelta(ctx, w.ID, it.ID, stock); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var ok, rejected atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.ledger.ApplyDelta(ctx, w.ID, it.ID, -1)
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, core.ErrOverdraft):
				rejected.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if ok.Load() != stock || rejected.Load() != writers-stock {
		t.Errorf("succeeded %d rejected %d, want %d and %d", ok.Load(), rejected.Load(), stock, writers-stock)
	}
	if q, _ := f.quantity(t, w.ID, it.ID); q != 0 {
		t.Errorf("quantity = %d, want 0", q)
	}
}

// conflictStore is a core.Store whose balance repository fails with
// ErrConflict a fixed number of times before succeeding.
type conflictStore struct {
	core.Store
	balances *conflictBalances
}

func (s *conflictStore) Balances() core.BalanceRepository { return s.balances }

type conflictBalances struct {
	core.BalanceRepository
	failures int32
	calls    atomic.Int32
	quantity int64
}

func (b *conflictBalances) Accumulate(_ context.Context, _ core.BalanceKey, decide core.AccumulateFunc) (int64, error) {
	if b.calls.Add(1) <= b.failures {
		return 0, core.ErrConflict
	}
	next, err := decide(core.Warehouse{ID: 1, Name: "Main"}, b.quantity)
	if err != nil {
		return 0, err
	}
	b.quantity = next
	return next, nil
}

type recordedOutcome struct {
	operation, outcome string
}

type fakeMetrics struct {
	mu       sync.Mutex
	outcomes []recordedOutcome
}

func (m *fakeMetrics) Observe(_ context.Context, operation, outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, recordedOutcome{operation, outcome})
}

func TestLedger_RetriesConflicts(t *testing.T) {
	ctx := context.Background()

	t.Run("succeeds within budget", func(t *testing.T) {
		balances := &conflictBalances{failures: 2}
		metrics := &fakeMetrics{}
		ledger := core.NewLedger(&conflictStore{balances: balances}, core.LedgerOptions{
			MaxAttempts:  3,
			RetryBackoff: time.Millisecond,
			Metrics:      metrics,
			Logger:       discardLogger,
		})

		got, err := ledger.ApplyDelta(ctx, 1, 1, 7)
		if err != nil {
			t.Fatalf("ApplyDelta: %v", err)
		}
		if got != 7 {
			t.Errorf("quantity = %d, want 7", got)
		}
		if calls := balances.calls.Load(); calls != 3 {
			t.Errorf("Accumulate called %d times, want 3", calls)
		}
		want := []recordedOutcome{
			{"apply_delta", core.OutcomeRetry},
			{"apply_delta", core.OutcomeRetry},
			{"apply_delta", core.OutcomeSuccess},
		}
		if len(metrics.outcomes) != len(want) {
			t.Fatalf("outcomes = %v, want %v", metrics.outcomes, want)
		}
		for i := range want {
			if metrics.outcomes[i] != want[i] {
				t.Errorf("outcome[%d] = %v, want %v", i, metrics.outcomes[i], want[i])
			}
		}
	})

	t.Run("gives up after budget", func(t *testing.T) {
		balances := &conflictBalances{failures: 10}
		ledger := core.NewLedger(&conflictStore{balances: balances}, core.LedgerOptions{
			MaxAttempts:  3,
			RetryBackoff: time.Millisecond,
			Logger:       discardLogger,
		})

		_, err := ledger.ApplyDelta(ctx, 1, 1, 7)
		if !errors.Is(err, core.ErrConflict) {
			t.Fatalf("got %v, want ErrConflict", err)
		}
		if calls := balances.calls.Load(); calls != 3 {
			t.Errorf("Accumulate called %d times, want 3", calls)
		}
	})

	t.Run("cancelled context stops retrying", func(t *testing.T) {
		balances := &conflictBalances{failures: 10}
		ledger := core.NewLedger(&conflictStore{balances: balances}, core.LedgerOptions{
			MaxAttempts:  5,
			RetryBackoff: time.Hour,
			Logger:       discardLogger,
		})

		cctx, cancel := context.WithCancel(ctx)
		time.AfterFunc(10*time.Millisecond, cancel)
		_, err := ledger.ApplyDelta(cctx, 1, 1, 7)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("got %v, want context.Canceled", err)
		}
		if calls := balances.calls.Load(); calls != 1 {
			t.Errorf("Accumulate called %d times, want 1", calls)
		}
	})

	t.Run("client errors are not retried", func(t *testing.T) {
		balances := &conflictBalances{}
		ledger := core.NewLedger(&conflictStore{balances: balances}, core.LedgerOptions{Logger: discardLogger})

		if _, err := ledger.ApplyDelta(ctx, 1, 1, math.MinInt64); err != nil {
			t.Fatalf("seed: %v", err)
		}
		if _, err := ledger.ApplyDelta(ctx, 1, 1, -1); !errors.Is(err, core.ErrValidation) {
			t.Fatalf("got %v, want ErrValidation", err)
		}
		if calls := balances.calls.Load(); calls != 2 {
			t.Errorf("Accumulate called %d times, want 2", calls)
		}
	})
}
