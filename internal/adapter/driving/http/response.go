package http

import (
	"encoding/json"
	"net/http"

	"github.com/joeypjx/fleet-manager/pkg/apperror"
)

// apiVersion is the envelope's fixed version field (§6.2).
const apiVersion = 1

// envelope is the wire shape every admin-API response is wrapped in:
// {"api_version":1,"status":"success"|"error","data":{...}}.
type envelope struct {
	APIVersion int         `json:"api_version"`
	Status     string      `json:"status"`
	Data       interface{} `json:"data,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{APIVersion: apiVersion, Status: "success", Data: data})
}

func respondError(w http.ResponseWriter, err error) {
	appErr := apperror.MapError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.HTTPStatus)
	json.NewEncoder(w).Encode(envelope{
		APIVersion: apiVersion,
		Status:     "error",
		Data: map[string]interface{}{
			"message": appErr.Message,
			"code":    appErr.Code,
		},
	})
}
