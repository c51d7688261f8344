package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/toolindex/toolindex-api/internal/intake"
	"github.com/toolindex/toolindex-api/internal/repository"
)

// writeJSON writes the response envelope. Every payload carries the success
// flag clients key off of.
func writeJSON(w http.ResponseWriter, status int, payload map[string]interface{}) {
	if payload == nil {
		payload = map[string]interface{}{}
	}
	if _, ok := payload["success"]; !ok {
		payload["success"] = status < http.StatusBadRequest
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"message": message,
	})
}

// writeServiceError maps service errors to client responses. Datastore detail
// stays in the server log; the client gets a generic message.
func writeServiceError(w http.ResponseWriter, logger zerolog.Logger, err error, genericMessage string) {
	var validationErr *intake.ValidationError
	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, validationErr.Error())
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, context.DeadlineExceeded):
		logger.Error().Err(err).Msg("datastore timeout")
		writeError(w, http.StatusGatewayTimeout, "Datastore timeout")
	default:
		logger.Error().Err(err).Msg(genericMessage)
		writeError(w, http.StatusInternalServerError, genericMessage)
	}
}

// NotFound is the JSON 404 for unmatched routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "Endpoint not found")
}

// MethodNotAllowed is the JSON 405 for matched paths with the wrong verb.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
}
