package sessions

import (
	"errors"
	"net/http"

	"github.com/Jayden3422/voice-assistant/internal/orchestrator"
)

// Domain errors for session operations.
var (
	ErrNotFound = errors.New("session not found")
)

// MapHTTPStatus maps session and workflow errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	return orchestrator.MapHTTPStatus(err)
}
