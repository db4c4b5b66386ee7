package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/joeypjx/fleet-manager/internal/core/port"
)

// EventHandler exposes recently-persisted alarm events under /alarm/events.
type EventHandler struct {
	service port.EventService
}

func NewEventHandler(service port.EventService) *EventHandler {
	return &EventHandler{service: service}
}

func (h *EventHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	return r
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	events, err := h.service.RecentEvents(r.Context(), limit)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, events)
}
