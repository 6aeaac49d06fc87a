package web

import (
	"net/http"

	"warehouse-ledger/internal/app"
)

// listItems handles GET /items.
func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListItems(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "items": result.Items})
}

// getItem handles GET /items/{id}.
func (h *Handler) getItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.GetItem(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "item": result.Item})
}

// createItem handles POST /items.
// Body: { name, volume? }
func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name   string `json:"name"`
		Volume int64  `json:"volume"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	result, err := h.svc.CreateItem(r.Context(), app.CreateItemRequest{Name: body.Name, Volume: body.Volume})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "new_item": result.Item})
}

// updateItem handles PATCH /items/{id}.
// Body: { name?, volume? }
func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body struct {
		Name   *string `json:"name"`
		Volume *int64  `json:"volume"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	result, err := h.svc.UpdateItem(r.Context(), app.UpdateItemRequest{ID: id, Name: body.Name, Volume: body.Volume})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "item": result.Item})
}

// deleteItem handles DELETE /items/{id}.
func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteItem(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
