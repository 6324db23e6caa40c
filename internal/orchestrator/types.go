package orchestrator

import (
	"strconv"
	"strings"

	"github.com/Jayden3422/voice-assistant/internal/backend"
)

// SiteID identifies a place in the workflow where audio may be recorded:
// the primary input, or one site per blocked action needing correction.
type SiteID string

// SitePrimary is the capture site backing the primary request input.
const SitePrimary SiteID = "primary"

const actionSitePrefix = "action/"

// ActionSite returns the capture site for the blocked action at index.
func ActionSite(index int) SiteID {
	return SiteID(actionSitePrefix + strconv.Itoa(index))
}

// ActionIndex returns the blocked-action index this site belongs to,
// or false for the primary site.
func (s SiteID) ActionIndex() (int, bool) {
	rest, ok := strings.CutPrefix(string(s), actionSitePrefix)
	if !ok {
		return 0, false
	}
	idx, err := strconv.Atoi(rest)
	if err != nil || idx < 0 {
		return 0, false
	}
	return idx, true
}

// ParseSiteID converts an external site reference ("primary" or a
// non-negative action index) into a SiteID.
func ParseSiteID(raw string) (SiteID, bool) {
	if raw == string(SitePrimary) {
		return SitePrimary, true
	}
	idx, err := strconv.Atoi(raw)
	if err != nil || idx < 0 {
		return "", false
	}
	return ActionSite(idx), true
}

// CaptureState is the lifecycle state of one capture site.
type CaptureState string

// Capture site states.
const (
	CaptureIdle      CaptureState = "idle"
	CaptureAcquiring CaptureState = "acquiring"
	CaptureRecording CaptureState = "recording"
	CaptureStopping  CaptureState = "stopping"
	CaptureCompleted CaptureState = "completed"
	CaptureError     CaptureState = "error"
)

// AudioArtifact holds the finalized bytes of one completed capture session.
// It is produced once, handed off once, then discarded.
type AudioArtifact struct {
	Data     []byte
	Encoding string
}

// ExecStatus is the outcome status of one submitted action.
type ExecStatus string

// Execution result statuses.
const (
	ExecSuccess ExecStatus = "success"
	ExecFailed  ExecStatus = "failed"
	ExecBlocked ExecStatus = "blocked"
	ExecSkipped ExecStatus = "skipped"
)

// ExecutionResult is the recorded outcome of one submitted action,
// positionally matched to the submitted list.
type ExecutionResult struct {
	ActionType string         `json:"action_type"`
	Status     ExecStatus     `json:"status"`
	Result     map[string]any `json:"result,omitempty"`
}

// AnalysisRun is the result of one extraction. It is wholesale-replaced,
// never merged, by each later successful analyze. RunID is immutable once
// assigned.
type AnalysisRun struct {
	RunID      string             `json:"run_id"`
	Transcript string             `json:"transcript,omitempty"`
	Extracted  backend.Extracted  `json:"extracted"`
	Evidence   []backend.Evidence `json:"evidence,omitempty"`
	ReplyDraft backend.ReplyDraft `json:"reply_draft"`
}

// RescheduleDraft is the in-progress correction for one blocked action.
type RescheduleDraft struct {
	Text       string `json:"text"`
	Submitting bool   `json:"submitting"`
}

// NoticeKind classifies a user-facing notice.
type NoticeKind string

// Notice kinds.
const (
	NoticeSuccess NoticeKind = "success"
	NoticeWarning NoticeKind = "warning"
	NoticeError   NoticeKind = "error"
)

// Notice is a transient, recoverable user-facing message. A new notice
// replaces the previous one.
type Notice struct {
	Kind NoticeKind `json:"kind"`
	Text string     `json:"text"`
}

func runFromResponse(resp *backend.AnalyzeResponse) *AnalysisRun {
	return &AnalysisRun{
		RunID:      resp.RunID,
		Transcript: resp.Transcript,
		Extracted:  resp.Extracted,
		Evidence:   resp.Evidence,
		ReplyDraft: resp.ReplyDraft,
	}
}
