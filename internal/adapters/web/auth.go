package web

import (
	"net/http"

	"warehouse-ledger/internal/auth"
)

// RequireScope is chi middleware that verifies the bearer token and checks
// that it grants scope. It answers 401 for a missing, malformed or expired
// token and 403 for a valid token without the scope; the handler never runs
// in either case.
func (h *Handler) RequireScope(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.BearerToken(r.Header.Get("Authorization"))
			if err != nil {
				h.writeServiceError(w, r, err)
				return
			}
			scopes, err := h.verifier.Verify(r.Context(), token)
			if err != nil {
				h.logger.InfoContext(r.Context(), "token rejected",
					"request_id", requestIDFromContext(r.Context()), "error", err)
				h.writeServiceError(w, r, err)
				return
			}
			if err := scopes.Require(scope); err != nil {
				h.writeServiceError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithScopes(r.Context(), scopes)))
		})
	}
}
