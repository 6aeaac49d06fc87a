package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"warehouse-ledger/internal/auth"
	"warehouse-ledger/internal/core"
)

type errorResponse struct {
	Success   bool   `json:"success"`
	Error     int    `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes the structured JSON error envelope.
func writeError(w http.ResponseWriter, r *http.Request, message string, status int) {
	writeJSON(w, status, errorResponse{
		Success:   false,
		Error:     status,
		Message:   message,
		RequestID: requestIDFromContext(r.Context()),
	})
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps a service or authorization error to its HTTP status.
func statusFor(err error) int {
	var authErr *auth.Error
	switch {
	case errors.As(err, &authErr):
		if authErr.Kind == auth.KindInsufficientScope {
			return http.StatusForbidden
		}
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrValidation), errors.Is(err, core.ErrOverdraft):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError writes err with its mapped status. Internal errors are
// logged with the request id and hidden from the client.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed",
			"request_id", requestIDFromContext(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
		writeError(w, r, "internal server error", status)
		return
	}
	msg := err.Error()
	var authErr *auth.Error
	if errors.As(err, &authErr) {
		msg = authErr.Message
	}
	writeError(w, r, msg, status)
}
