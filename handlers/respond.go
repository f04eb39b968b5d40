package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"p9e.in/sitecore/pkg/apperr"
)

// errorBody is the JSON form of every failed request.
type errorBody struct {
	Error       string `json:"error"`
	Entity      string `json:"entity,omitempty"`
	Field       string `json:"field,omitempty"`
	Message     string `json:"message"`
	CommittedID string `json:"committedId,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}

// writeError maps an engine error to its status and body. Internal and
// partial failures are logged; caller mistakes are not.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	ae := apperr.As(err)
	status := ae.HTTPStatus()
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
	}

	msg := ae.Message
	if ae.Kind == apperr.KindInternal {
		msg = "Server error"
	}
	writeJSON(w, status, errorBody{
		Error:       string(ae.Kind),
		Entity:      ae.Entity,
		Field:       ae.Field,
		Message:     msg,
		CommittedID: ae.CommittedID,
	})
}

func badRequest(w http.ResponseWriter, field, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{
		Error:   string(apperr.KindValidation),
		Field:   field,
		Message: msg,
	})
}

// decodeJSON reads the body into v, answering 400 itself on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &syntaxErr):
			badRequest(w, "", "Invalid JSON")
		case errors.As(err, &typeErr):
			badRequest(w, typeErr.Field, "has the wrong type")
		default:
			badRequest(w, "", "Invalid request body: "+err.Error())
		}
		return false
	}
	return true
}

// pathID parses the named mux variable as a UUID.
func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		badRequest(w, name, "must be a valid id")
		return uuid.Nil, false
	}
	return id, true
}

// queryID parses an optional UUID query parameter.
func queryID(w http.ResponseWriter, r *http.Request, name string) (*uuid.UUID, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		badRequest(w, name, "must be a valid id")
		return nil, false
	}
	return &id, true
}
