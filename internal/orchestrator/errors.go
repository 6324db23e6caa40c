package orchestrator

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Jayden3422/voice-assistant/internal/backend"
)

// Device and capture errors. These recover locally: the capture site resets
// to idle and a transient notice is surfaced; the workflow never aborts.
var (
	ErrDeviceUnavailable = errors.New("audio capture device unavailable")
	ErrPermissionDenied  = errors.New("audio capture permission denied")
	ErrAlreadyOwned      = errors.New("capture device already owned")
	ErrNotRecording      = errors.New("no active recording")
	ErrEncoding          = errors.New("audio encoding failed")
)

// ErrAlreadyRecording is the ownership denial seen from the site that asked;
// it belongs to the ErrAlreadyOwned family.
var ErrAlreadyRecording = fmt.Errorf("%w: recording in progress", ErrAlreadyOwned)

// Request and execution errors.
var (
	ErrValidation     = errors.New("invalid request")
	ErrEmptyInput     = errors.New("empty input")
	ErrUnavailable    = errors.New("service unavailable")
	ErrTimeout        = errors.New("request timed out")
	ErrNoActiveRun    = errors.New("no active run")
	ErrPartialFailure = errors.New("one or more actions did not complete")
	ErrNotBlocked     = errors.New("action is not blocked")
)

// ErrSuperseded marks a response that arrived after a newer request was
// issued. It is discarded on arrival and never surfaced as a failure notice.
var ErrSuperseded = errors.New("response superseded by a newer request")

// mapBackendError translates backend client errors into the orchestrator taxonomy.
func mapBackendError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, backend.ErrTimeout):
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	case errors.Is(err, backend.ErrValidation):
		return fmt.Errorf("%w: %v", ErrValidation, err)
	case errors.Is(err, backend.ErrRunNotFound):
		return fmt.Errorf("%w: %v", ErrNoActiveRun, err)
	case errors.Is(err, backend.ErrUnavailable):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	default:
		return err
	}
}

// MapHTTPStatus maps orchestrator errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrEmptyInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrDeviceUnavailable), errors.Is(err, ErrPermissionDenied):
		return http.StatusConflict
	case errors.Is(err, ErrAlreadyOwned), errors.Is(err, ErrNotRecording):
		return http.StatusConflict
	case errors.Is(err, ErrNoActiveRun), errors.Is(err, ErrNotBlocked):
		return http.StatusConflict
	case errors.Is(err, ErrEncoding):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, ErrUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, ErrSuperseded):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
