package runs

import (
	"net/url"

	"github.com/google/uuid"

	"github.com/Jayden3422/voice-assistant/pkg/query"
	"github.com/Jayden3422/voice-assistant/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "runs", "r").
	Project("id", "ID").
	Project("session_id", "SessionID").
	Project("mode", "Mode").
	Project("locale", "Locale").
	Project("status", "Status").
	Project("transcript", "Transcript").
	Project("extracted", "Extracted").
	Project("evidence", "Evidence").
	Project("reply", "Reply").
	Project("actions", "Actions").
	Project("results", "Results").
	Project("error", "Error").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for run queries.
// Nil fields are ignored. All fields use exact matching.
type Filters struct {
	SessionID *uuid.UUID `json:"session_id,omitempty"`
	Status    *string    `json:"status,omitempty"`
	Mode      *string    `json:"mode,omitempty"`
	Locale    *string    `json:"locale,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("SessionID", f.SessionID).
		WhereEquals("Status", f.Status).
		WhereEquals("Mode", f.Mode).
		WhereEquals("Locale", f.Locale)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("session_id"); s != "" {
		if id, err := uuid.Parse(s); err == nil {
			f.SessionID = &id
		}
	}

	if s := values.Get("status"); s != "" {
		f.Status = &s
	}

	if m := values.Get("mode"); m != "" {
		f.Mode = &m
	}

	if l := values.Get("locale"); l != "" {
		f.Locale = &l
	}

	return f
}

func scanRun(s repository.Scanner) (Run, error) {
	var r Run
	var extracted, evidence, reply, actions, results []byte

	err := s.Scan(
		&r.ID,
		&r.SessionID,
		&r.Mode,
		&r.Locale,
		&r.Status,
		&r.Transcript,
		&extracted,
		&evidence,
		&reply,
		&actions,
		&results,
		&r.Error,
		&r.CreatedAt,
		&r.UpdatedAt,
	)

	if err != nil {
		return r, err
	}

	r.Extracted = extracted
	r.Evidence = evidence
	r.Reply = reply
	r.Actions = actions
	r.Results = results

	return r, nil
}
