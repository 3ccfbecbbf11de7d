package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"fintrack/internal/core"
)

// Envelope is the wire shape of every API response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   any    `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondOK(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

func respondCreated(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusCreated, Envelope{Success: true, Message: message, Data: data})
}

func respondFail(w http.ResponseWriter, status int, message string, detail any) {
	writeJSON(w, status, Envelope{Success: false, Message: message, Error: detail})
}

// respondError is the single place domain failures translate to HTTP.
// Validation errors itemize their field messages, missing ids map to
// 404, and everything else becomes a generic 500 with the detail kept
// server-side.
func respondError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		respondFail(w, http.StatusBadRequest, "Validation failed", verr.Fields)
	case errors.Is(err, core.ErrNotFound):
		respondFail(w, http.StatusNotFound, "Transaction not found", nil)
	default:
		slog.ErrorContext(r.Context(), fallback,
			"error", err,
			"method", r.Method,
			"path", r.URL.Path)
		respondFail(w, http.StatusInternalServerError, fallback, nil)
	}
}
