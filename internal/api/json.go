package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/infinity/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error" validate:"required"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// writeDomainError maps economy errors onto HTTP statuses. Anything not
// matched is an internal error and gets logged.
func writeDomainError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrNotOwner):
		writeJSON(w, http.StatusForbidden, errorBody("only the owner can do this"))
	case errors.Is(err, apperr.ErrNotListed):
		writeJSON(w, http.StatusConflict, errorBody("world is not listed for sale"))
	case errors.Is(err, apperr.ErrInsufficientBalance):
		writeJSON(w, http.StatusPaymentRequired, errorBody("insufficient balance"))
	case errors.Is(err, apperr.ErrNotPending):
		writeJSON(w, http.StatusConflict, errorBody("trade offer is no longer pending"))
	case errors.Is(err, apperr.ErrAlreadyCollaborator):
		writeJSON(w, http.StatusConflict, errorBody("already a collaborator"))
	case errors.Is(err, apperr.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorBody("already exists"))
	case errors.Is(err, apperr.ErrGeneration):
		writeJSON(w, http.StatusBadGateway, errorBody("Failed to create website. Please try again."))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}
