package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"warehouse-ledger/internal/app"
	"warehouse-ledger/internal/auth"
	"warehouse-ledger/internal/metrics"
)

// Options configures the HTTP handler. Zero values are usable.
type Options struct {
	// AllowedOrigins is a comma-separated CORS allow list; empty disables CORS.
	AllowedOrigins string
	// BodyLimit caps request bodies in bytes. Defaults to 1 MB.
	BodyLimit int64
	Logger    *slog.Logger
	// Metrics, when set, instruments every route and serves GET /metrics.
	Metrics *metrics.Recorder
}

// Handler holds the ApplicationService, the authorization gate and the chi router.
type Handler struct {
	svc      app.ApplicationService
	verifier auth.Verifier
	logger   *slog.Logger
	router   chi.Router
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, verifier auth.Verifier, opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.BodyLimit <= 0 {
		opts.BodyLimit = 1 << 20
	}

	h := &Handler{
		svc:      svc,
		verifier: verifier,
		logger:   opts.Logger,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(h.logger))
	if opts.Metrics != nil {
		r.Use(Instrument(opts.Metrics))
	}
	r.Use(Recoverer(h.logger))
	r.Use(CORS(opts.AllowedOrigins))
	r.Use(RequestBodyLimit(opts.BodyLimit))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, "resource not found", http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, "method not allowed", http.StatusMethodNotAllowed)
	})

	// ── Health and metrics (public) ──────────────────────────────────────────
	r.Get("/", h.health)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	// ── Warehouses ───────────────────────────────────────────────────────────
	r.Get("/warehouses", h.listWarehouses)
	r.Get("/warehouses/{id}", h.getWarehouse)
	r.Group(func(r chi.Router) {
		r.Use(h.RequireScope(auth.ScopeEditWarehouses))
		r.Post("/warehouses", h.createWarehouse)
		r.Patch("/warehouses/{id}", h.updateWarehouse)
		r.Delete("/warehouses/{id}", h.deleteWarehouse)
	})

	// ── Items ────────────────────────────────────────────────────────────────
	r.Get("/items", h.listItems)
	r.Get("/items/{id}", h.getItem)
	r.Group(func(r chi.Router) {
		r.Use(h.RequireScope(auth.ScopeEditItems))
		r.Post("/items", h.createItem)
		r.Patch("/items/{id}", h.updateItem)
		r.Delete("/items/{id}", h.deleteItem)
	})

	// ── Balances ─────────────────────────────────────────────────────────────
	r.Get("/balances", h.listBalances)
	r.With(h.RequireScope(auth.ScopePostBalanceOperations)).Post("/balances", h.postBalanceOperation)

	h.router = r
	return r
}

// health reports liveness and store reachability.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Ping(r.Context()); err != nil {
		h.logger.ErrorContext(r.Context(), "health check failed", "request_id", requestIDFromContext(r.Context()), "error", err)
		writeError(w, r, "store unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "status": "Healthy"})
}

// pathID parses the {id} URL parameter. A non-numeric or non-positive id
// cannot name a record, so it is reported as not found.
func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, r, "resource not found", http.StatusNotFound)
		return 0, false
	}
	return id, true
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}
