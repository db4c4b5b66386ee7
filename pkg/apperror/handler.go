package apperror

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/joeypjx/fleet-manager/internal/core/domain"
)

// ErrorResponse is the JSON structure returned to clients
type ErrorResponse struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Handler handles error responses in HTTP handlers
type Handler struct {
	logger *slog.Logger
}

// NewHandler creates a new error handler
func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{logger: logger}
}

// Handle writes an error response to the client
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	appErr := h.toAppError(err)

	// Log internal errors with full details
	if appErr.HTTPStatus >= 500 {
		h.logger.Error("internal error",
			"error", appErr.Error(),
			"code", appErr.Code,
			"path", r.URL.Path,
			"method", r.Method,
		)
	} else {
		h.logger.Debug("client error",
			"code", appErr.Code,
			"message", appErr.Message,
			"path", r.URL.Path,
		)
	}

	h.writeError(w, appErr)
}

// HandleWithContext handles error with additional context
func (h *Handler) HandleWithContext(w http.ResponseWriter, r *http.Request, err error, context map[string]interface{}) {
	appErr := h.toAppError(err)

	// Merge context into details
	if appErr.Details == nil {
		appErr.Details = context
	} else {
		for k, v := range context {
			appErr.Details[k] = v
		}
	}

	h.Handle(w, r, appErr)
}

// toAppError converts any error to an AppError
func (h *Handler) toAppError(err error) *AppError {
	return MapError(err)
}

// MapError converts any error into an AppError: it passes one through
// unchanged, maps known domain sentinel errors to their HTTP-facing shape,
// and falls back to a generic 500 for anything else. Handlers that don't
// need a Handler's request logging can call this directly.
func MapError(err error) *AppError {
	// Check if already an AppError
	if appErr, ok := GetAppError(err); ok {
		return appErr
	}

	// Map domain errors to AppErrors
	return mapDomainError(err)
}

// mapDomainError maps domain errors to AppErrors
func mapDomainError(err error) *AppError {
	switch err {
	// Alarm template errors
	case domain.ErrTemplateNotFound:
		return NotFound("alarm rule template")
	case domain.ErrInvalidTemplate:
		return Validation("invalid alarm rule template")
	case domain.ErrInvalidCondition:
		return Validation("invalid condition tree")
	case domain.ErrUnknownActionType:
		return Validation("unknown action type")
	case domain.ErrUnknownConditionType:
		return Validation("unknown condition type")

	// Alarm rule errors
	case domain.ErrRuleNotFound:
		return NotFound("alarm rule")
	case domain.ErrRuleAlreadyExists:
		return Conflict("alarm rule already exists")

	// General errors
	case domain.ErrNotFound:
		return NotFound("resource")
	case domain.ErrUnauthorized:
		return Unauthorized("")
	case domain.ErrForbidden:
		return Forbidden("")

	default:
		return Internal(err)
	}
}

// writeError writes the error response
func (h *Handler) writeError(w http.ResponseWriter, appErr *AppError) {
	response := ErrorResponse{
		Code:    string(appErr.Code),
		Message: appErr.Message,
		Details: appErr.Details,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.HTTPStatus)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("failed to encode error response", "error", err)
	}
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful JSON response
func WriteSuccess(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusOK, data)
}

// WriteCreated writes a created JSON response
func WriteCreated(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusCreated, data)
}

// WriteNoContent writes a no content response
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
