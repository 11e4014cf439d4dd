package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcdev12/dreamteams/go/internal/catalog"
	"github.com/mcdev12/dreamteams/go/internal/roster"
	"github.com/mcdev12/dreamteams/go/internal/session"
	"github.com/rs/zerolog/log"
)

var errBadRequest = errors.New("bad request")

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var authErr *session.AuthError
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, session.ErrMissingCredentials),
		errors.Is(err, roster.ErrNameRequired),
		errors.Is(err, roster.ErrTermsNotAccepted):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrNoSession),
		errors.Is(err, roster.ErrNoSession):
		return http.StatusUnauthorized
	case errors.Is(err, roster.ErrTeamNotFound),
		errors.Is(err, catalog.ErrCharacterNotFound):
		return http.StatusNotFound
	case errors.Is(err, roster.ErrTeamLimitReached),
		errors.Is(err, roster.ErrTeamFull),
		errors.Is(err, roster.ErrTeamNotPersisted),
		errors.Is(err, roster.ErrAlreadyMember),
		errors.Is(err, roster.ErrNotMember),
		errors.Is(err, roster.ErrSuperseded),
		errors.Is(err, catalog.ErrSuperseded):
		return http.StatusConflict
	case errors.As(err, &authErr):
		return http.StatusUnauthorized
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	event := log.Warn()
	if status >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Msg("request failed")

	writeJSON(w, status, errorResponse{Error: err.Error()})
}
