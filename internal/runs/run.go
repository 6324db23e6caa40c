// Package runs implements the analysis run audit domain. It stores every
// analysis issued against the extraction backend together with its eventual
// execution results or failure cause, and exposes query endpoints over the
// stored history.
package runs

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Run statuses. A run is recorded as analyzed when the backend returns a
// result set, promoted to executed once its actions have been confirmed, and
// recorded as failed when the analysis itself errors.
const (
	StatusAnalyzed = "analyzed"
	StatusExecuted = "executed"
	StatusFailed   = "failed"
)

// Run represents a stored analysis run. It mirrors the runs table schema;
// structured backend payloads are kept as raw JSON columns.
type Run struct {
	ID         string          `json:"id"`
	SessionID  uuid.UUID       `json:"session_id"`
	Mode       string          `json:"mode"`
	Locale     string          `json:"locale"`
	Status     string          `json:"status"`
	Transcript string          `json:"transcript"`
	Extracted  json.RawMessage `json:"extracted"`
	Evidence   json.RawMessage `json:"evidence"`
	Reply      json.RawMessage `json:"reply"`
	Actions    json.RawMessage `json:"actions"`
	Results    json.RawMessage `json:"results"`
	Error      *string         `json:"error"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// RecordCommand carries the data needed to record a completed analysis.
// ID is the backend-issued run identifier; when empty a new one is generated.
type RecordCommand struct {
	ID         string
	SessionID  uuid.UUID
	Mode       string
	Locale     string
	Transcript string
	Extracted  json.RawMessage
	Evidence   json.RawMessage
	Reply      json.RawMessage
	Actions    json.RawMessage
}

// FailureCommand carries the data needed to record a failed analysis.
type FailureCommand struct {
	SessionID uuid.UUID
	Mode      string
	Locale    string
	Cause     string
}
