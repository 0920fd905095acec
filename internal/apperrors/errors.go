// Package apperrors defines the recoverable, user-facing error taxonomy
// shared by the chat services. Callers classify with errors.Is and map to
// HTTP status codes via HTTPStatus.
package apperrors

import (
	"errors"
	"net/http"
)

var (
	// ErrNotFound - chat, application, tournament or message missing.
	ErrNotFound = errors.New("not found")
	// ErrForbidden - caller is not a participant, or not the correct party
	// for the action.
	ErrForbidden = errors.New("forbidden")
	// ErrChatLocked - message posted to a terminated tryout chat.
	ErrChatLocked = errors.New("chat locked")
	// ErrInvalidTransition - lifecycle operation attempted from the wrong
	// state, including the lost half of a terminal-transition race.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrValidation - missing required input or malformed identifiers.
	ErrValidation = errors.New("validation error")
)

// HTTPStatus maps a service error to the status code reported to the
// caller. Unrecognized errors are surfaced as a generic transient failure.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrChatLocked):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
