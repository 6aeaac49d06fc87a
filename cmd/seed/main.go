// seed loads a small demo data set: two warehouses, a handful of items and
// opening stock. Rows whose names already exist are left untouched, so it is
// safe to run more than once.
//
// Usage: go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"log"

	"warehouse-ledger/internal/app"
	"warehouse-ledger/internal/config"
	"warehouse-ledger/internal/core"
	"warehouse-ledger/internal/store"
)

var demoWarehouses = []app.CreateWarehouseRequest{
	{Name: "Main", OverdraftControl: true},
	{Name: "Transit", OverdraftControl: false},
}

var demoItems = []app.CreateItemRequest{
	{Name: "Pallet", Volume: 1200},
	{Name: "Crate", Volume: 60},
	{Name: "Carton", Volume: 25},
	{Name: "Envelope", Volume: 0},
}

// Opening stock per warehouse name, by item name.
var openingStock = map[string]map[string]int64{
	"Main":    {"Pallet": 40, "Crate": 250, "Carton": 900, "Envelope": 5000},
	"Transit": {"Crate": 12},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[CONFIG] %v", err)
	}
	logger := cfg.Logger()

	ctx := context.Background()
	st, err := store.Open(ctx, store.Options{
		URL:         cfg.DatabaseURL,
		MaxConns:    2,
		LockTimeout: cfg.LockTimeout,
	})
	if err != nil {
		log.Fatalf("[CONNECT] %v", err)
	}
	defer st.Close()

	svc := app.NewAppService(
		st,
		core.NewWarehouseService(st, logger),
		core.NewItemService(st, logger),
		core.NewLedger(st, core.LedgerOptions{Logger: logger}),
	)

	items := map[string]int{}
	for _, req := range demoItems {
		res, err := svc.CreateItem(ctx, req)
		if errors.Is(err, core.ErrDuplicateName) {
			log.Printf("Item %q already exists, skipping", req.Name)
			continue
		}
		if err != nil {
			log.Fatalf("Failed to create item %q: %v", req.Name, err)
		}
		items[req.Name] = res.Item.ID
	}

	for _, req := range demoWarehouses {
		res, err := svc.CreateWarehouse(ctx, req)
		if errors.Is(err, core.ErrDuplicateName) {
			// Existing warehouses keep their balances; opening stock is only posted once.
			log.Printf("Warehouse %q already exists, skipping", req.Name)
			continue
		}
		if err != nil {
			log.Fatalf("Failed to create warehouse %q: %v", req.Name, err)
		}

		for itemName, qty := range openingStock[req.Name] {
			itemID, ok := items[itemName]
			if !ok {
				continue
			}
			if _, err := svc.ApplyBalanceOperation(ctx, app.BalanceOperationRequest{
				WarehouseID: res.Warehouse.ID,
				ItemID:      itemID,
				Quantity:    qty,
			}); err != nil {
				log.Fatalf("Failed to post opening stock %s/%s: %v", req.Name, itemName, err)
			}
		}
		log.Printf("Warehouse %q seeded", req.Name)
	}

	log.Println("Seed complete.")
}
