package ledger

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jmwansa/stockledger-backend/internal/modules/auth"
)

// Handler exposes ledger HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/transactions", func(r chi.Router) {
		r.Post("/", h.record)
		r.Get("/", h.list)
	})
}

func (h *Handler) record(w http.ResponseWriter, r *http.Request) {
	var req RecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	req.ActorID = auth.ActorID(r.Context())

	txn, changes, err := h.service.Record(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidTransaction):
			respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, ErrInsufficientStock), errors.Is(err, ErrDuplicateRequest):
			respond(w, http.StatusConflict, map[string]string{"error": err.Error()})
		case errors.Is(err, ErrConcurrencyConflict):
			respond(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		default:
			respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return
	}
	respond(w, http.StatusCreated, map[string]interface{}{
		"transaction": txn,
		"changes":     changes,
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{
		ProductID:  q.Get("product_id"),
		LocationID: q.Get("location_id"),
		Type:       TransactionType(q.Get("type")),
	}
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respond(w, http.StatusBadRequest, map[string]string{"error": "from must be RFC3339"})
			return
		}
		filter.From = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respond(w, http.StatusBadRequest, map[string]string{"error": "to must be RFC3339"})
			return
		}
		filter.To = &t
	}
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))
	filter.Offset, _ = strconv.Atoi(q.Get("offset"))

	transactions, err := h.service.List(r.Context(), filter)
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, transactions)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
