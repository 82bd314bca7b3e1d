package domain

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrPermissionDeny   = errors.New("permission denied")
	ErrSessionExpired   = errors.New("session expired, please log in again")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrTransport        = errors.New("request failed")
)

// APIError is returned for every non-2xx response of the remote API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Status == http.StatusUnauthorized {
		return ErrSessionExpired.Error()
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return ErrSessionExpired
	case http.StatusForbidden:
		return ErrPermissionDeny
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnprocessableEntity, http.StatusBadRequest:
		return ErrInvalidInput
	default:
		return nil
	}
}
