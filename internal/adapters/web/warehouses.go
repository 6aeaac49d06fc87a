package web

import (
	"net/http"

	"warehouse-ledger/internal/app"
)

// listWarehouses handles GET /warehouses.
func (h *Handler) listWarehouses(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListWarehouses(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "warehouses": result.Warehouses})
}

// getWarehouse handles GET /warehouses/{id}.
func (h *Handler) getWarehouse(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.GetWarehouse(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "warehouse": result.Warehouse})
}

// createWarehouse handles POST /warehouses.
// Body: { name, overdraft_control? }
func (h *Handler) createWarehouse(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name             string `json:"name"`
		OverdraftControl bool   `json:"overdraft_control"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	result, err := h.svc.CreateWarehouse(r.Context(), app.CreateWarehouseRequest{
		Name:             body.Name,
		OverdraftControl: body.OverdraftControl,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "new_wh": result.Warehouse})
}

// updateWarehouse handles PATCH /warehouses/{id}.
// Body: { name?, overdraft_control? }
func (h *Handler) updateWarehouse(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body struct {
		Name             *string `json:"name"`
		OverdraftControl *bool   `json:"overdraft_control"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	result, err := h.svc.UpdateWarehouse(r.Context(), app.UpdateWarehouseRequest{
		ID:               id,
		Name:             body.Name,
		OverdraftControl: body.OverdraftControl,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "warehouse": result.Warehouse})
}

// deleteWarehouse handles DELETE /warehouses/{id}.
func (h *Handler) deleteWarehouse(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteWarehouse(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
