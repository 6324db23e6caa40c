package backend

import (
	"errors"
	"net/http"
)

// Errors surfaced by backend service calls.
var (
	// ErrUnavailable indicates the service could not be reached or failed internally.
	ErrUnavailable = errors.New("backend service unavailable")
	// ErrTimeout indicates the transport deadline elapsed before a response arrived.
	ErrTimeout = errors.New("backend request timed out")
	// ErrValidation indicates the service rejected the request payload.
	ErrValidation = errors.New("backend rejected request")
	// ErrRunNotFound indicates the referenced run is unknown to the service.
	ErrRunNotFound = errors.New("run not found")
)

// MapHTTPStatus maps backend client errors to HTTP status codes for pass-through responses.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrValidation) {
		return http.StatusUnprocessableEntity
	}
	if errors.Is(err, ErrRunNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrTimeout) {
		return http.StatusGatewayTimeout
	}
	if errors.Is(err, ErrUnavailable) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
