package simulation

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// Handler exposes simulation control and report endpoints.
type Handler struct {
	engine *Engine
	repo   ReportRepository
}

func NewHandler(engine *Engine, repo ReportRepository) *Handler {
	return &Handler{engine: engine, repo: repo}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/simulation", func(r chi.Router) {
		r.Post("/seed", h.seed)
		r.Post("/advance", h.advance)
		r.Post("/pause", h.pause)
		r.Post("/resume", h.resume)
		r.Get("/status", h.status)
		r.Get("/reports", h.listReports)
		r.Get("/reports/{id}", h.getReport)
	})
}

func (h *Handler) seed(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Seed(r.Context()); err != nil {
		if errors.Is(err, ErrAlreadySeeded) {
			respond(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusCreated, map[string]string{"status": "seeded"})
}

func (h *Handler) advance(w http.ResponseWriter, r *http.Request) {
	report, err := h.engine.AdvanceDay(r.Context())
	if err != nil {
		if errors.Is(err, ErrPaused) {
			respond(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, report)
}

func (h *Handler) pause(w http.ResponseWriter, r *http.Request) {
	h.engine.Pause()
	h.status(w, r)
}

func (h *Handler) resume(w http.ResponseWriter, r *http.Request) {
	h.engine.Resume()
	h.status(w, r)
}

func (h *Handler) status(w http.ResponseWriter, _ *http.Request) {
	respond(w, http.StatusOK, map[string]interface{}{
		"state": h.engine.State(),
		"day":   h.engine.CurrentDay().Format("2006-01-02"),
	})
}

func (h *Handler) listReports(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	reports, err := h.repo.List(r.Context(), limit)
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, reports)
}

func (h *Handler) getReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respond(w, http.StatusNotFound, map[string]string{"error": "report not found"})
			return
		}
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, report)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
