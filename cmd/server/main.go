package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	webAdapter "warehouse-ledger/internal/adapters/web"
	"warehouse-ledger/internal/app"
	"warehouse-ledger/internal/auth"
	"warehouse-ledger/internal/config"
	"warehouse-ledger/internal/core"
	"warehouse-ledger/internal/metrics"
	"warehouse-ledger/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := cfg.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, store.Options{
		URL:         cfg.DatabaseURL,
		MaxConns:    cfg.DBMaxConns,
		LockTimeout: cfg.LockTimeout,
	})
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer st.Close()

	verifier, err := auth.NewJWTVerifier(ctx, auth.Config{
		Secret:   cfg.AuthSecret,
		JWKSURL:  cfg.AuthJWKSURL,
		Issuer:   cfg.AuthIssuer,
		Audience: cfg.AuthAudience,
	})
	if err != nil {
		log.Fatalf("auth: %v", err)
	}

	recorder := metrics.New()
	svc := app.NewAppService(
		st,
		core.NewWarehouseService(st, logger),
		core.NewItemService(st, logger),
		core.NewLedger(st, core.LedgerOptions{
			MaxAttempts:  cfg.LedgerMaxAttempts,
			RetryBackoff: cfg.LedgerRetryBackoff,
			Metrics:      recorder,
			Logger:       logger,
		}),
	)

	handler := webAdapter.NewHandler(svc, verifier, webAdapter.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		BodyLimit:      cfg.RequestBodyLimit,
		Logger:         logger,
		Metrics:        recorder,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server: %v", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down", "timeout", cfg.ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}
}
