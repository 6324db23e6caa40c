package orchestrator

import "github.com/google/uuid"

// Snapshot is a point-in-time view of the orchestrator for clients.
type Snapshot struct {
	SessionID  uuid.UUID               `json:"session_id"`
	Locale     string                  `json:"locale"`
	Input      string                  `json:"input"`
	Processing bool                    `json:"processing"`
	Capture    map[SiteID]CaptureState `json:"capture"`
	Run        *AnalysisRun            `json:"run,omitempty"`
	Previews   []ActionPreview         `json:"previews,omitempty"`
	Results    []ExecutionResult       `json:"results,omitempty"`
	Drafts     map[int]RescheduleDraft `json:"drafts,omitempty"`
	Notice     *Notice                 `json:"notice,omitempty"`
}

// Snapshot captures the current workflow state.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	capture := make(map[SiteID]CaptureState, len(o.sites))
	for site, sess := range o.sites {
		capture[site] = sess.state
	}

	drafts := make(map[int]RescheduleDraft, len(o.drafts))
	for i, d := range o.drafts {
		drafts[i] = *d
	}

	snap := Snapshot{
		SessionID:  o.id,
		Locale:     o.locale,
		Input:      o.input,
		Processing: o.processing,
		Capture:    capture,
		Run:        o.run,
		Results:    append([]ExecutionResult(nil), o.results...),
		Drafts:     drafts,
		Notice:     o.notice,
	}
	if o.registry != nil {
		snap.Previews = o.registry.Previews()
	}
	return snap
}
