package main

import (
	"bufio"
	"context"
	"log"
	"os"

	"warehouse-ledger/internal/adapters/cli"
	"warehouse-ledger/internal/adapters/repl"
	"warehouse-ledger/internal/app"
	"warehouse-ledger/internal/config"
	"warehouse-ledger/internal/core"
	"warehouse-ledger/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := cfg.Logger()

	ctx := context.Background()
	st, err := store.Open(ctx, store.Options{
		URL:         cfg.DatabaseURL,
		MaxConns:    cfg.DBMaxConns,
		LockTimeout: cfg.LockTimeout,
	})
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}

	svc := app.NewAppService(
		st,
		core.NewWarehouseService(st, logger),
		core.NewItemService(st, logger),
		core.NewLedger(st, core.LedgerOptions{
			MaxAttempts:  cfg.LedgerMaxAttempts,
			RetryBackoff: cfg.LedgerRetryBackoff,
			Logger:       logger,
		}),
	)

	// No arguments: interactive shell. Otherwise a single command.
	if len(os.Args) == 1 {
		if err = repl.Run(ctx, svc, bufio.NewReader(os.Stdin), os.Stdout); err != nil {
			log.Printf("repl: %v", err)
		}
	} else {
		err = cli.NewRootCommand(svc).ExecuteContext(ctx)
	}
	st.Close()
	if err != nil {
		os.Exit(1)
	}
}
