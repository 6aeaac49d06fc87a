package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"
)

// LedgerService accumulates signed quantity deltas into per-(warehouse, item) balances.
type LedgerService interface {
	// ApplyDelta adds delta to the balance of (warehouseID, itemID), creating the
	// row on first use, and returns the new quantity. On a warehouse with
	// overdraft control a delta that would leave the balance negative is
	// rejected with an *OverdraftError and nothing is stored.
	ApplyDelta(ctx context.Context, warehouseID, itemID int, delta int64) (int64, error)
	// ListBalances returns every balance with its derived volume.
	ListBalances(ctx context.Context) ([]Balance, error)
	// PruneZero deletes balances whose quantity is 0.
	PruneZero(ctx context.Context) (int64, error)
}

const (
	defaultMaxAttempts  = 3
	defaultRetryBackoff = 20 * time.Millisecond
)

// LedgerOptions tunes the ledger. Zero values select the defaults.
type LedgerOptions struct {
	// MaxAttempts bounds how many times a delta is tried when the store
	// reports ErrConflict.
	MaxAttempts int
	// RetryBackoff is multiplied by the attempt number between retries.
	RetryBackoff time.Duration
	Metrics      MetricsRecorder
	Logger       *slog.Logger
}

// Ledger is the LedgerService backed by a Store.
type Ledger struct {
	balances     BalanceRepository
	maxAttempts  int
	retryBackoff time.Duration
	metrics      MetricsRecorder
	logger       *slog.Logger
}

var _ LedgerService = (*Ledger)(nil)

// NewLedger constructs a Ledger over store.
func NewLedger(store Store, opts LedgerOptions) *Ledger {
	l := &Ledger{
		balances:     store.Balances(),
		maxAttempts:  opts.MaxAttempts,
		retryBackoff: opts.RetryBackoff,
		metrics:      opts.Metrics,
		logger:       opts.Logger,
	}
	if l.maxAttempts <= 0 {
		l.maxAttempts = defaultMaxAttempts
	}
	if l.retryBackoff <= 0 {
		l.retryBackoff = defaultRetryBackoff
	}
	if l.metrics == nil {
		l.metrics = noopRecorder{}
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	l.logger = l.logger.With("service", "ledger")
	return l
}

func (l *Ledger) ApplyDelta(ctx context.Context, warehouseID, itemID int, delta int64) (int64, error) {
	if err := validateID("warehouse", warehouseID); err != nil {
		return 0, err
	}
	if err := validateID("item", itemID); err != nil {
		return 0, err
	}

	key := BalanceKey{WarehouseID: warehouseID, ItemID: itemID}
	decide := accumulate(key, delta)
	start := time.Now()

	var lastErr error
	for attempt := 1; attempt <= l.maxAttempts; attempt++ {
		qty, err := l.balances.Accumulate(ctx, key, decide)
		if err == nil {
			l.metrics.Observe(ctx, "apply_delta", OutcomeSuccess, time.Since(start))
			l.logger.DebugContext(ctx, "delta applied", "warehouse_id", warehouseID, "item_id", itemID,
				"delta", delta, "quantity", qty, "attempt", attempt)
			return qty, nil
		}
		if !errors.Is(err, ErrConflict) {
			l.metrics.Observe(ctx, "apply_delta", outcomeOf(err), time.Since(start))
			return 0, fmt.Errorf("apply delta %d to warehouse %d item %d: %w", delta, warehouseID, itemID, err)
		}

		lastErr = err
		l.metrics.Observe(ctx, "apply_delta", OutcomeRetry, time.Since(start))
		l.logger.WarnContext(ctx, "balance lock conflict", "warehouse_id", warehouseID, "item_id", itemID,
			"attempt", attempt, "error", err)
		if attempt == l.maxAttempts {
			break
		}

		timer := time.NewTimer(time.Duration(attempt) * l.retryBackoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			l.metrics.Observe(ctx, "apply_delta", OutcomeError, time.Since(start))
			return 0, fmt.Errorf("apply delta to warehouse %d item %d: %w", warehouseID, itemID, ctx.Err())
		case <-timer.C:
		}
	}

	l.metrics.Observe(ctx, "apply_delta", OutcomeConflict, time.Since(start))
	return 0, fmt.Errorf("apply delta to warehouse %d item %d: gave up after %d attempts: %w",
		warehouseID, itemID, l.maxAttempts, lastErr)
}

// accumulate returns the decision run under the row lock: the overdraft check
// always sees the committed quantity, never an earlier read.
func accumulate(key BalanceKey, delta int64) AccumulateFunc {
	return func(w Warehouse, current int64) (int64, error) {
		if (delta > 0 && current > math.MaxInt64-delta) || (delta < 0 && current < math.MinInt64-delta) {
			return 0, validationErrorf("quantity overflow: %d + %d", current, delta)
		}
		candidate := current + delta
		if candidate < 0 && w.OverdraftControl {
			return 0, &OverdraftError{Key: key, Current: current, Delta: delta}
		}
		return candidate, nil
	}
}

func (l *Ledger) ListBalances(ctx context.Context) ([]Balance, error) {
	start := time.Now()
	balances, err := l.balances.List(ctx)
	if err != nil {
		l.metrics.Observe(ctx, "list_balances", OutcomeError, time.Since(start))
		return nil, fmt.Errorf("list balances: %w", err)
	}
	for i := range balances {
		balances[i].Volume = derivedVolume(balances[i].Quantity, balances[i].Item.Volume)
	}
	l.metrics.Observe(ctx, "list_balances", OutcomeSuccess, time.Since(start))
	return balances, nil
}

// derivedVolume returns quantity × unit volume, saturated at MaxInt64 or
// MinInt64 when the product does not fit. unitVolume is never negative.
func derivedVolume(quantity, unitVolume int64) int64 {
	if quantity == 0 || unitVolume == 0 {
		return 0
	}
	if quantity > 0 && quantity > math.MaxInt64/unitVolume {
		return math.MaxInt64
	}
	if quantity < 0 && quantity < math.MinInt64/unitVolume {
		return math.MinInt64
	}
	return quantity * unitVolume
}

func (l *Ledger) PruneZero(ctx context.Context) (int64, error) {
	n, err := l.balances.DeleteZero(ctx)
	if err != nil {
		return 0, fmt.Errorf("prune zero balances: %w", err)
	}
	l.logger.InfoContext(ctx, "zero balances pruned", "rows", n)
	return n, nil
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, ErrOverdraft), errors.Is(err, ErrValidation):
		return OutcomeRejected
	case errors.Is(err, ErrNotFound):
		return OutcomeNotFound
	default:
		return OutcomeError
	}
}
