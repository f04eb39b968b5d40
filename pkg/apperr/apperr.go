// Package apperr defines the error kinds surfaced by the engine. Every error
// names the entity and, where relevant, the field the caller has to correct.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure.
type Kind string

const (
	KindValidation     Kind = "validation_error"
	KindNotFound       Kind = "not_found"
	KindConflict       Kind = "conflict"
	KindPartialFailure Kind = "partial_failure"
	KindForbidden      Kind = "forbidden"
	KindInternal       Kind = "internal"
)

// Error is the engine's error value.
type Error struct {
	Kind    Kind
	Entity  string
	Field   string
	Message string
	// ID of a document that was committed before the failure, if any
	CommittedID string
	Err         error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", e.Field, msg)
	}
	if e.Entity != "" {
		msg = fmt.Sprintf("%s %s", e.Entity, msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on kind so callers can write errors.Is(err, apperr.ErrNotFound).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Entity == "" && t.Field == "" && t.Message == ""
}

// HTTPStatus maps the kind to a response status code.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// Sentinels for errors.Is.
var (
	ErrValidation     = &Error{Kind: KindValidation}
	ErrNotFound       = &Error{Kind: KindNotFound}
	ErrConflict       = &Error{Kind: KindConflict}
	ErrPartialFailure = &Error{Kind: KindPartialFailure}
	ErrForbidden      = &Error{Kind: KindForbidden}
	ErrInternal       = &Error{Kind: KindInternal}
)

func Validation(entity, field, msg string) *Error {
	return &Error{Kind: KindValidation, Entity: entity, Field: field, Message: msg}
}

func NotFound(entity, id string) *Error {
	return &Error{Kind: KindNotFound, Entity: entity, Message: fmt.Sprintf("%q not found", id)}
}

func Conflict(entity, field, value string) *Error {
	return &Error{Kind: KindConflict, Entity: entity, Field: field, Message: fmt.Sprintf("%q already exists", value)}
}

func Forbidden(entity, msg string) *Error {
	return &Error{Kind: KindForbidden, Entity: entity, Message: msg}
}

// PartialFailure reports that committedID was written but a follow-up write
// to entity failed. Nothing is rolled back.
func PartialFailure(entity, committedID string, err error) *Error {
	return &Error{
		Kind:        KindPartialFailure,
		Entity:      entity,
		Message:     "follow-up write failed after the first document was committed",
		CommittedID: committedID,
		Err:         err,
	}
}

func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// As extracts an *Error, wrapping anything else as internal.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal("unexpected error", err)
}
