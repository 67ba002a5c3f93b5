package server

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/jrsteele09/chatcraft-server/internal/errors"
)

const contentTypeJSON = "application/json; charset=utf-8"

type messageResponse struct {
	Message string `json:"message"`
	URL     string `json:"url,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Message: message})
}

// statusForError maps the sentinel errors to HTTP statuses.
func statusForError(err error) int {
	switch {
	case apperrors.Is(err, apperrors.ErrInvalidURL), apperrors.Is(err, apperrors.ErrInvalidRequest):
		return http.StatusBadRequest
	case apperrors.Is(err, apperrors.ErrBodyTooLarge):
		return http.StatusRequestEntityTooLarge
	case apperrors.Is(err, apperrors.ErrUnauthenticated), apperrors.Is(err, apperrors.ErrInvalidToken):
		return http.StatusUnauthorized
	case apperrors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden
	case apperrors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case apperrors.Is(err, apperrors.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes err as {message} with its mapped status. Internal
// errors are not echoed to the client.
func writeError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		writeMessage(w, status, "internal error")
		return
	}
	writeMessage(w, status, err.Error())
}
