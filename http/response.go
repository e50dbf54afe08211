package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sagarc03/sigv4auth"
)

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errCode,
		Message: message,
	}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// HandleError writes appropriate error response based on error type.
// Store failures are reported without their cause so that backend details do
// not reach clients.
func HandleError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrBadRequest) {
		WriteError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	slog.Error("request error", "error", err)

	if errors.Is(err, sigv4auth.ErrResolverUnavailable) {
		WriteError(w, http.StatusServiceUnavailable, "unavailable", "Credential store unavailable")
		return
	}

	WriteError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}
