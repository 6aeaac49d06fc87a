package core

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed or missing input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a lookup of an id that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrOverdraft marks a delta that would drive a controlled balance below zero.
	ErrOverdraft = errors.New("overdraft rejected")
	// ErrConflict marks a transient lock or serialization failure in the store.
	// The ledger retries it a bounded number of times before giving up.
	ErrConflict = errors.New("transient conflict")

	ErrWarehouseNotFound = fmt.Errorf("warehouse %w", ErrNotFound)
	ErrItemNotFound      = fmt.Errorf("item %w", ErrNotFound)
	ErrDuplicateName     = fmt.Errorf("%w: name already exists", ErrValidation)
)

// OverdraftError reports a rejected delta on a warehouse with overdraft control.
type OverdraftError struct {
	Key     BalanceKey
	Current int64
	Delta   int64
}

func (e *OverdraftError) Error() string {
	return fmt.Sprintf("overdraft rejected: warehouse %d item %d has %d, delta %d would leave %d",
		e.Key.WarehouseID, e.Key.ItemID, e.Current, e.Delta, e.Current+e.Delta)
}

func (e *OverdraftError) Unwrap() error { return ErrOverdraft }

func validationErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
