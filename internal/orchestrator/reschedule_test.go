package orchestrator_test

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/Jayden3422/voice-assistant/internal/backend"
	"github.com/Jayden3422/voice-assistant/internal/orchestrator"
)

// blockOrchestrator analyzes, confirms with the calendar action blocked, and
// leaves index 0 eligible for recovery.
func blockOrchestrator(t *testing.T, o *orchestrator.Orchestrator, svc *fakeBackend) {
	t.Helper()

	analyzeWithActions(t, o, svc, calendarActions())

	svc.mu.Lock()
	svc.confirmFn = confirmStatuses("blocked", "success")
	svc.mu.Unlock()

	if _, err := o.Confirm(context.Background()); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if !o.IsBlocked(0) {
		t.Fatal("calendar action not blocked")
	}
}

func TestRescheduleRequiresBlocked(t *testing.T) {
	svc := &fakeBackend{}
	o := newOrchestrator(t, svc)

	if err := o.SetRescheduleText(0, "move it"); !errors.Is(err, orchestrator.ErrNotBlocked) {
		t.Errorf("set draft: got %v, want ErrNotBlocked", err)
	}
	err := o.SubmitReschedule(context.Background(), 0, backend.ModeText, "move it")
	if !errors.Is(err, orchestrator.ErrNotBlocked) {
		t.Errorf("submit: got %v, want ErrNotBlocked", err)
	}
}

func TestRescheduleDraftIndependence(t *testing.T) {
	svc := &fakeBackend{}
	o := newOrchestrator(t, svc)

	meetings := []backend.Action{
		{
			ActionType: "create_meeting",
			Confidence: 0.9,
			Payload:    map[string]any{"title": "Project sync", "date": "2025-06-02"},
		},
		{
			ActionType: "create_meeting",
			Confidence: 0.8,
			Payload:    map[string]any{"title": "Sprint retro", "date": "2025-06-03"},
		},
	}
	analyzeWithActions(t, o, svc, meetings)

	svc.mu.Lock()
	svc.confirmFn = confirmStatuses("blocked", "blocked")
	svc.mu.Unlock()
	if _, err := o.Confirm(context.Background()); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	if err := o.SetRescheduleText(0, "move to friday"); err != nil {
		t.Fatalf("set draft 0 failed: %v", err)
	}
	if err := o.SetRescheduleText(1, "push by an hour"); err != nil {
		t.Fatalf("set draft 1 failed: %v", err)
	}

	if got := o.Draft(0).Text; got != "move to friday" {
		t.Errorf("draft 0 = %q", got)
	}
	if got := o.Draft(1).Text; got != "push by an hour" {
		t.Errorf("draft 1 = %q", got)
	}
}

// Recovery is scoped to blocked calendar actions; a blocked action of any
// other type never unlocks the flow, the adjust-time service would reject it.
func TestRescheduleRequiresCalendarAction(t *testing.T) {
	svc := &fakeBackend{}
	o := newOrchestrator(t, svc)
	ctx := context.Background()

	analyzeWithActions(t, o, svc, calendarActions())

	svc.mu.Lock()
	svc.confirmFn = confirmStatuses("success", "blocked")
	svc.mu.Unlock()
	if _, err := o.Confirm(ctx); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	if o.IsBlocked(1) {
		t.Error("blocked message action reported as recoverable")
	}
	if err := o.SetRescheduleText(1, "try again later"); !errors.Is(err, orchestrator.ErrNotBlocked) {
		t.Errorf("set draft: got %v, want ErrNotBlocked", err)
	}
	err := o.SubmitReschedule(ctx, 1, backend.ModeText, "try again later")
	if !errors.Is(err, orchestrator.ErrNotBlocked) {
		t.Errorf("submit: got %v, want ErrNotBlocked", err)
	}
	if err := o.StartCapture(ctx, orchestrator.ActionSite(1)); !errors.Is(err, orchestrator.ErrNotBlocked) {
		t.Errorf("capture start: got %v, want ErrNotBlocked", err)
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	if len(svc.adjustReqs) != 0 {
		t.Error("backend called for an ineligible action")
	}
}

func TestRescheduleEmptyCorrection(t *testing.T) {
	svc := &fakeBackend{}
	o := newOrchestrator(t, svc)

	blockOrchestrator(t, o, svc)

	err := o.SubmitReschedule(context.Background(), 0, backend.ModeText, "   ")
	if !errors.Is(err, orchestrator.ErrEmptyInput) {
		t.Errorf("got %v, want ErrEmptyInput", err)
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	if len(svc.adjustReqs) != 0 {
		t.Error("backend called for an empty correction")
	}
}

// A resolved correction merges into the primary input as a normalized
// instruction line and triggers a fresh analyze of the merged text.
func TestRescheduleMergesAndReanalyzes(t *testing.T) {
	svc := &fakeBackend{}
	o := newOrchestrator(t, svc)

	blockOrchestrator(t, o, svc)

	svc.mu.Lock()
	svc.adjustFn = func(req backend.AdjustRequest) (*backend.AdjustResponse, error) {
		return &backend.AdjustResponse{
			Action: &backend.Action{
				ActionType: "create_meeting",
				Payload: map[string]any{
					"title":      "Project sync",
					"date":       "2025-06-03",
					"start_time": "10:00",
					"end_time":   "10:30",
					"timezone":   "America/Toronto",
				},
			},
		}, nil
	}
	analyzeCalls := len(svc.analyzeReqs)
	svc.mu.Unlock()

	if err := o.SetRescheduleText(0, "move it to tomorrow morning"); err != nil {
		t.Fatalf("set draft failed: %v", err)
	}
	if err := o.SubmitReschedule(context.Background(), 0, backend.ModeText, ""); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	wantLine := `Reschedule update: move "Project sync" to 2025-06-03 10:00-10:30 (Timezone: America/Toronto).`
	input := o.Input()
	if !strings.HasSuffix(input, wantLine) {
		t.Errorf("input = %q, want normalized line appended", input)
	}
	if !strings.Contains(input, "\n") {
		t.Error("normalized line not separated from the original input")
	}

	svc.mu.Lock()
	if len(svc.adjustReqs) != 1 {
		t.Fatalf("adjust calls = %d, want 1", len(svc.adjustReqs))
	}
	if got := svc.adjustReqs[0].Text; got != "move it to tomorrow morning" {
		t.Errorf("submitted draft text = %q", got)
	}
	newAnalyzes := len(svc.analyzeReqs) - analyzeCalls
	merged := svc.analyzeReqs[len(svc.analyzeReqs)-1].Text
	svc.mu.Unlock()

	if newAnalyzes != 1 {
		t.Fatalf("re-analyze calls = %d, want 1", newAnalyzes)
	}
	if merged != input {
		t.Errorf("re-analyze text %q does not match merged input %q", merged, input)
	}

	if o.Draft(0) != nil {
		t.Error("draft survived a successful submit")
	}
}

func TestRescheduleFallsBackToUserText(t *testing.T) {
	svc := &fakeBackend{}
	o := newOrchestrator(t, svc)

	blockOrchestrator(t, o, svc)

	svc.mu.Lock()
	svc.adjustFn = func(backend.AdjustRequest) (*backend.AdjustResponse, error) {
		return &backend.AdjustResponse{UserText: "  move the sync to friday  "}, nil
	}
	svc.mu.Unlock()

	if err := o.SubmitReschedule(context.Background(), 0, backend.ModeText, "move it"); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if !strings.HasSuffix(o.Input(), "move the sync to friday") {
		t.Errorf("input = %q, want trimmed user text appended", o.Input())
	}
}

func TestRescheduleFailureKeepsDraft(t *testing.T) {
	svc := &fakeBackend{}
	o := newOrchestrator(t, svc)

	blockOrchestrator(t, o, svc)

	svc.mu.Lock()
	svc.adjustFn = func(backend.AdjustRequest) (*backend.AdjustResponse, error) {
		return nil, backend.ErrTimeout
	}
	svc.mu.Unlock()

	if err := o.SetRescheduleText(0, "move it to friday"); err != nil {
		t.Fatalf("set draft failed: %v", err)
	}

	err := o.SubmitReschedule(context.Background(), 0, backend.ModeText, "")
	if !errors.Is(err, orchestrator.ErrTimeout) {
		t.Fatalf("got %v, want ErrTimeout", err)
	}

	draft := o.Draft(0)
	if draft == nil || draft.Text != "move it to friday" {
		t.Errorf("draft = %+v, want preserved text", draft)
	}
	if draft != nil && draft.Submitting {
		t.Error("draft still marked submitting after failure")
	}

	notice := o.Notice()
	if notice == nil || notice.Kind != orchestrator.NoticeError {
		t.Errorf("notice = %+v, want error notice", notice)
	}
}

// A captured correction runs through the same flow with transport-encoded
// audio.
func TestRescheduleCaptureFlow(t *testing.T) {
	svc := &fakeBackend{}
	o := newOrchestrator(t, svc)
	ctx := context.Background()

	blockOrchestrator(t, o, svc)

	svc.mu.Lock()
	svc.adjustFn = func(backend.AdjustRequest) (*backend.AdjustResponse, error) {
		return &backend.AdjustResponse{UserText: "move it to friday"}, nil
	}
	svc.mu.Unlock()

	site := orchestrator.ActionSite(0)
	if err := o.StartCapture(ctx, site); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := o.AppendAudio(site, webmHeader); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if err := o.StopCapture(ctx, site); err != nil {
		t.Fatalf("stop failed: %v", err)
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	if len(svc.adjustReqs) != 1 {
		t.Fatalf("adjust calls = %d, want 1", len(svc.adjustReqs))
	}
	req := svc.adjustReqs[0]
	if req.Mode != backend.ModeAudio {
		t.Errorf("mode = %s, want audio", req.Mode)
	}
	if req.AudioBase64 != base64.StdEncoding.EncodeToString(webmHeader) {
		t.Error("correction audio not transport-encoded")
	}
	if req.Action.ActionType != "create_meeting" {
		t.Errorf("submitted action = %+v, want the blocked calendar action", req.Action)
	}
}
