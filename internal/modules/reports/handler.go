package reports

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// defaultHighValueThreshold is used when the query does not set one.
const defaultHighValueThreshold = 10000

// Handler exposes reporting HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/inventory", func(r chi.Router) {
		r.Get("/", h.stockLevels) // ?sku=...&location=...
		r.Get("/totals", h.totals)
		r.Get("/below-minimum", h.belowMinimum)
	})
	r.Route("/api/v1/reports", func(r chi.Router) {
		r.Get("/valuation", h.valuation)
		r.Get("/high-value", h.highValue) // ?threshold=...
		r.Get("/summary", h.summary)
	})
}

func (h *Handler) stockLevels(w http.ResponseWriter, r *http.Request) {
	filter := StockFilter{
		SKU:          r.URL.Query().Get("sku"),
		LocationCode: r.URL.Query().Get("location"),
	}
	levels, err := h.service.StockLevels(r.Context(), filter)
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, levels)
}

func (h *Handler) totals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.service.TotalsBySKU(r.Context())
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, totals)
}

func (h *Handler) belowMinimum(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.BelowMinimum(r.Context())
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, items)
}

func (h *Handler) valuation(w http.ResponseWriter, r *http.Request) {
	valuations, err := h.service.ValuationByCategory(r.Context())
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, valuations)
}

func (h *Handler) highValue(w http.ResponseWriter, r *http.Request) {
	threshold := float64(defaultHighValueThreshold)
	if v := r.URL.Query().Get("threshold"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			respond(w, http.StatusBadRequest, map[string]string{"error": "threshold must be a number"})
			return
		}
		threshold = parsed
	}
	items, err := h.service.HighValue(r.Context(), threshold)
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, items)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, summary)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
