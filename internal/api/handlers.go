package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/snapcurator/internal/apperr"
	"github.com/starford/snapcurator/internal/journal"
	"github.com/starford/snapcurator/internal/models"
	"github.com/starford/snapcurator/internal/request"
)

// Collector is the monitor surface the handlers need.
type Collector interface {
	Latest() request.Outcome[models.CollectorInfo]
	RunStep(ctx context.Context, step string) (request.Outcome[models.RunStepResult], error)
}

// History lists journaled mutations.
type History interface {
	Recent(limit int) ([]journal.Entry, error)
}

// Handler holds API route handlers.
type Handler struct {
	collector Collector
	history   History
}

// NewHandler creates a new Handler. history may be nil.
func NewHandler(collector Collector, history History) *Handler {
	return &Handler{collector: collector, history: history}
}

// Status handles GET /api/status.
func (h *Handler) Status(w http.ResponseWriter, _ *http.Request) {
	out := h.collector.Latest()
	writeJSON(w, http.StatusOK, StatusResponse{
		Data:    out.Data,
		Loading: out.Loading,
		Error:   out.Error,
	})
}

// RunStep handles POST /api/steps/{step}/run.
func (h *Handler) RunStep(w http.ResponseWriter, r *http.Request) {
	step := chi.URLParam(r, "step")
	out, err := h.collector.RunStep(r.Context(), step)
	switch {
	case errors.Is(err, apperr.ErrInvalidStep):
		writeJSON(w, http.StatusBadRequest, errorBody("invalid step"))
		return
	case err != nil:
		slog.Error("run step failed", slog.String("step", step), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}

	if out.Failure != nil {
		msg := out.Error
		if out.Failure.Kind == request.FailureUnauthenticated {
			msg = apperr.ErrSessionExpired.Error()
		}
		writeJSON(w, http.StatusBadGateway, errorBody(msg))
		return
	}
	var message string
	if out.Data != nil {
		message = out.Data.Message
	}
	writeJSON(w, http.StatusAccepted, RunStepResponse{Step: step, Message: message})
}

// History handles GET /api/history.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeJSON(w, http.StatusNotFound, errorBody("journal disabled"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.history.Recent(limit)
	if err != nil {
		slog.Error("list history failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	resp := HistoryResponse{Entries: make([]HistoryEntry, 0, len(entries))}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, HistoryEntry{
			At:         e.At,
			Method:     e.Method,
			Path:       e.Path,
			Status:     e.Status,
			Outcome:    e.Outcome,
			Applied:    e.Applied,
			DurationMS: e.Duration.Milliseconds(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
