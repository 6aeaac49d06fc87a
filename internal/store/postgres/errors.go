package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"warehouse-ledger/internal/core"
)

// SQLSTATE codes the store reacts to.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
)

// classify maps Postgres errors onto the core taxonomy. notFound is returned
// for foreign key violations and may be nil when none is expected.
func classify(err error, notFound error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeUniqueViolation:
		return fmt.Errorf("%w (%s)", core.ErrDuplicateName, pgErr.ConstraintName)
	case codeForeignKeyViolation:
		if notFound != nil {
			return fmt.Errorf("%w (%s)", notFound, pgErr.ConstraintName)
		}
	case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
		return fmt.Errorf("%w: %s", core.ErrConflict, pgErr.Message)
	}
	return err
}
