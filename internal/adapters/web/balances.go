package web

import (
	"net/http"

	"warehouse-ledger/internal/app"
	"warehouse-ledger/internal/core"
)

type balanceView struct {
	Warehouse core.Warehouse `json:"warehouse"`
	Item      core.Item      `json:"item"`
	Quantity  int64          `json:"quantity"`
	Volume    int64          `json:"volume"`
}

// listBalances handles GET /balances.
func (h *Handler) listBalances(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListBalances(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	views := make([]balanceView, 0, len(result.Balances))
	for _, b := range result.Balances {
		views = append(views, balanceView{Warehouse: b.Warehouse, Item: b.Item, Quantity: b.Quantity, Volume: b.Volume})
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "balances": views})
}

// postBalanceOperation handles POST /balances.
// Body: { warehouse_id, item_id, quantity } where quantity is the signed delta.
func (h *Handler) postBalanceOperation(w http.ResponseWriter, r *http.Request) {
	var body struct {
		WarehouseID *int   `json:"warehouse_id"`
		ItemID      *int   `json:"item_id"`
		Quantity    *int64 `json:"quantity"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	switch {
	case body.WarehouseID == nil:
		writeError(w, r, "warehouse_id is required", http.StatusBadRequest)
		return
	case body.ItemID == nil:
		writeError(w, r, "item_id is required", http.StatusBadRequest)
		return
	case body.Quantity == nil:
		writeError(w, r, "quantity is required", http.StatusBadRequest)
		return
	}

	result, err := h.svc.ApplyBalanceOperation(r.Context(), app.BalanceOperationRequest{
		WarehouseID: *body.WarehouseID,
		ItemID:      *body.ItemID,
		Quantity:    *body.Quantity,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "new_balance": result.Quantity})
}
