package runs_test

import (
	"net/url"
	"testing"

	"github.com/google/uuid"

	"github.com/Jayden3422/voice-assistant/internal/runs"
)

func TestFiltersFromQuery(t *testing.T) {
	sessionID := uuid.New()

	tests := []struct {
		name   string
		values url.Values
		check  func(t *testing.T, f runs.Filters)
	}{
		{
			name:   "empty values",
			values: url.Values{},
			check: func(t *testing.T, f runs.Filters) {
				if f.SessionID != nil || f.Status != nil || f.Mode != nil || f.Locale != nil {
					t.Errorf("filters = %+v, want all nil", f)
				}
			},
		},
		{
			name: "all fields",
			values: url.Values{
				"session_id": {sessionID.String()},
				"status":     {"executed"},
				"mode":       {"audio"},
				"locale":     {"zh"},
			},
			check: func(t *testing.T, f runs.Filters) {
				if f.SessionID == nil || *f.SessionID != sessionID {
					t.Errorf("session_id = %v, want %s", f.SessionID, sessionID)
				}
				if f.Status == nil || *f.Status != "executed" {
					t.Errorf("status = %v, want executed", f.Status)
				}
				if f.Mode == nil || *f.Mode != "audio" {
					t.Errorf("mode = %v, want audio", f.Mode)
				}
				if f.Locale == nil || *f.Locale != "zh" {
					t.Errorf("locale = %v, want zh", f.Locale)
				}
			},
		},
		{
			name:   "malformed session id ignored",
			values: url.Values{"session_id": {"not-a-uuid"}},
			check: func(t *testing.T, f runs.Filters) {
				if f.SessionID != nil {
					t.Errorf("session_id = %v, want nil", f.SessionID)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, runs.FiltersFromQuery(tt.values))
		})
	}
}
