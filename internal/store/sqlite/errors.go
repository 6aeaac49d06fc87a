package sqlite

import (
	"context"
	"errors"
	"fmt"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"warehouse-ledger/internal/core"
)

// classify maps SQLite errors onto the core taxonomy. notFound is returned
// for foreign key violations and may be nil when none is expected.
func classify(err error, notFound error) error {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return fmt.Errorf("%w (%s)", core.ErrDuplicateName, sqliteErr.Error())
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		if notFound != nil {
			return notFound
		}
	}
	switch sqliteErr.Code() & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return fmt.Errorf("%w: %s", core.ErrConflict, sqliteErr.Error())
	}
	return err
}

// lockErr turns a lock-wait deadline into ErrConflict while leaving the
// caller's own cancellation untouched.
func lockErr(parent context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) && parent.Err() == nil {
		return fmt.Errorf("%w: lock wait timed out", core.ErrConflict)
	}
	return classify(err, nil)
}
