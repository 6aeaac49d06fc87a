// Package store opens the core.Store named by a database URL.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"warehouse-ledger/internal/core"
	"warehouse-ledger/internal/db"
	"warehouse-ledger/internal/store/postgres"
	"warehouse-ledger/internal/store/sqlite"
)

// Options are the backend-independent store settings.
type Options struct {
	URL         string
	MaxConns    int32
	LockTimeout time.Duration
}

// Open returns a Postgres store for postgres:// and postgresql:// URLs and a
// SQLite store for sqlite:<path> URLs.
func Open(ctx context.Context, opts Options) (core.Store, error) {
	switch {
	case strings.HasPrefix(opts.URL, "postgres://"), strings.HasPrefix(opts.URL, "postgresql://"):
		pool, err := db.NewPool(ctx, db.PoolConfig{
			URL:         opts.URL,
			MaxConns:    opts.MaxConns,
			LockTimeout: opts.LockTimeout,
		})
		if err != nil {
			return nil, err
		}
		return postgres.New(pool, postgres.WithLockTimeout(opts.LockTimeout)), nil

	case strings.HasPrefix(opts.URL, "sqlite:"):
		path := strings.TrimPrefix(strings.TrimPrefix(opts.URL, "sqlite:"), "//")
		return sqlite.Open(ctx, path, sqlite.WithLockTimeout(opts.LockTimeout))

	default:
		return nil, fmt.Errorf("unsupported database URL scheme: %q", schemeOf(opts.URL))
	}
}

func schemeOf(url string) string {
	if i := strings.Index(url, ":"); i >= 0 {
		return url[:i]
	}
	return url
}
