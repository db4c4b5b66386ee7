package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/joeypjx/fleet-manager/internal/core/port"
	"github.com/joeypjx/fleet-manager/pkg/validation"
)

// TemplateHandler exposes alarm rule template CRUD and the dry-run test
// endpoint under /alarm/rules.
type TemplateHandler struct {
	service port.TemplateService
}

func NewTemplateHandler(service port.TemplateService) *TemplateHandler {
	return &TemplateHandler{service: service}
}

func (h *TemplateHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/test", h.Test)
	return r
}

func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	templates, err := h.service.ListTemplates(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, templates)
}

func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.service.SaveTemplate(r.Context(), json.RawMessage(body)); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, nil)
}

func (h *TemplateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.DeleteTemplate(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *TemplateHandler) Test(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	nodeID := r.URL.Query().Get("nodeId")

	if err := validation.Validate(func(v *validation.Validator) {
		v.Required("id", id)
		v.Required("nodeId", nodeID)
	}); err != nil {
		respondError(w, err)
		return
	}

	result, err := h.service.TestTemplate(r.Context(), id, nodeID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
