package main

import (
	"context"
	"log"
	"time"

	"warehouse-ledger/internal/config"
	"warehouse-ledger/internal/db"
	"warehouse-ledger/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[CONFIG] %v", err)
	}
	logger := cfg.Logger()

	ctx := context.Background()
	connCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := db.NewPool(connCtx, db.PoolConfig{URL: cfg.DatabaseURL, MaxConns: 2})
	if err != nil {
		log.Fatalf("[CONNECT] %v", err)
	}
	defer pool.Close()
	logger.Info("connected to database")

	if err := db.Migrate(ctx, pool, migrations.FS, logger); err != nil {
		log.Fatalf("[MIGRATE] %v", err)
	}
}
