package http

import (
	"encoding/json"
	"net/http"

	apperrors "skybook/pkg/errors"
)

type ErrorResponse struct {
	Error   string         `json:"error"`
	Details map[string]any `json:"details,omitempty"`
}

type SuccessResponse struct {
	Data any `json:"data,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ListResponse struct {
	Data  any `json:"data"`
	Count int `json:"count"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError maps a service-layer failure to its HTTP status. Anything that
// is not an AppError is reported as an opaque 500.
func WriteError(w http.ResponseWriter, err error) {
	appErr := apperrors.AsAppError(err)

	resp := ErrorResponse{
		Error:   appErr.Message,
		Details: appErr.Details,
	}
	if appErr.Code == apperrors.CodeInternal {
		resp = ErrorResponse{Error: "Internal server error"}
	}

	WriteJSON(w, appErr.StatusCode(), resp)
}

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, SuccessResponse{Data: data})
}

func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, SuccessResponse{Data: data})
}

func WriteMessage(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusOK, MessageResponse{Message: message})
}

func WriteList(w http.ResponseWriter, data any, count int) {
	WriteJSON(w, http.StatusOK, ListResponse{Data: data, Count: count})
}
