package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/joeypjx/fleet-manager/internal/core/domain"
	"github.com/joeypjx/fleet-manager/internal/core/port"
	"github.com/joeypjx/fleet-manager/pkg/apperror"
)

// IngestHandler accepts agent heartbeat payloads under /nodes/{nodeId}/metrics.
type IngestHandler struct {
	service port.IngestService
}

func NewIngestHandler(service port.IngestService) *IngestHandler {
	return &IngestHandler{service: service}
}

func (h *IngestHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/{nodeId}/metrics", h.Update)
	return r
}

func (h *IngestHandler) Update(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeId")

	var snapshot domain.MetricSnapshot
	if err := json.NewDecoder(r.Body).Decode(&snapshot); err != nil {
		respondError(w, apperror.Validation("invalid metric snapshot"))
		return
	}

	if err := h.service.UpdateNodeMetrics(r.Context(), nodeID, snapshot); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusAccepted, nil)
}
