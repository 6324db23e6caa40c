package orchestrator

import (
	"context"
	"fmt"

	"github.com/Jayden3422/voice-assistant/internal/backend"
)

const calendarActionType = "create_meeting"

// ConfirmOutcome carries the per-action execution results for one confirm
// call plus the user-facing notice derived from them. Partial is
// ErrPartialFailure (wrapped) when any executed action failed or was
// blocked; blocked calendar actions become eligible for recovery.
type ConfirmOutcome struct {
	RunID   string            `json:"run_id"`
	Results []ExecutionResult `json:"results"`
	Notice  Notice            `json:"notice"`
	Partial error             `json:"-"`
}

// Toggle flips the enabled flag of the action at index.
func (o *Orchestrator) Toggle(index int, enabled bool) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.registry == nil {
		return ErrNoActiveRun
	}
	o.registry.Toggle(index, enabled)
	return nil
}

// EditPayloadField replaces one payload field of the action at index from
// its textual form. Stale indices are silent no-ops.
func (o *Orchestrator) EditPayloadField(index int, field, raw string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.registry == nil {
		return ErrNoActiveRun
	}
	_, err := o.registry.EditPayloadField(index, field, raw)
	return err
}

// Previews returns the current editable action list.
func (o *Orchestrator) Previews() []ActionPreview {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.registry == nil {
		return nil
	}
	return o.registry.Previews()
}

// Confirm submits the finalized action list for execution. It requires a
// run id, which exists only after a successful analyze. The serialized list
// always reflects the registry's current edits — never a cached copy — and
// includes skipped entries; honoring skip is the execution service's job.
// One result returns per submitted action, in order.
func (o *Orchestrator) Confirm(ctx context.Context) (*ConfirmOutcome, error) {
	o.mu.Lock()
	if o.run == nil || o.run.RunID == "" {
		o.mu.Unlock()
		return nil, ErrNoActiveRun
	}
	runID := o.run.RunID
	actions := o.registry.SerializeForConfirmation()
	o.mu.Unlock()

	resp, err := o.backend.Confirm(ctx, backend.ConfirmRequest{
		RunID:   runID,
		Actions: actions,
	})

	o.mu.Lock()
	defer o.mu.Unlock()

	if err != nil {
		mapped := mapBackendError(err)
		o.setNotice(NoticeError, confirmFailedText(o.locale, mapped))
		o.logger.Warn("confirm failed", "run_id", runID, "error", err)
		return nil, mapped
	}

	if o.run == nil || o.run.RunID != runID {
		// The run was replaced while the call was in flight.
		o.logger.Info("confirm response discarded", "run_id", runID)
		return nil, ErrSuperseded
	}

	if len(resp.Results) != len(actions) {
		return nil, fmt.Errorf("%w: got %d results for %d actions",
			ErrUnavailable, len(resp.Results), len(actions))
	}

	results := make([]ExecutionResult, len(resp.Results))
	for i, r := range resp.Results {
		results[i] = ExecutionResult{
			ActionType: r.ActionType,
			Status:     ExecStatus(r.Status),
			Result:     r.Result,
		}
	}
	o.results = results

	outcome := &ConfirmOutcome{
		RunID:   runID,
		Results: results,
		Notice:  o.confirmNotice(results),
	}
	if blocked := incompleteIndices(results); len(blocked) > 0 {
		outcome.Partial = fmt.Errorf("%w: indices %v", ErrPartialFailure, blocked)
	}
	o.notice = &outcome.Notice

	o.logger.Info("confirm complete", "run_id", runID, "results", len(results))
	o.recordExecution(runID, results)

	return outcome, nil
}

// confirmNotice builds the user-facing notice for a result set: a distinct
// calendar warning when a calendar action failed or was blocked, otherwise
// a uniform success notice (with the localized calendar confirmation line
// when a calendar action succeeded). Must be called with the mutex held.
func (o *Orchestrator) confirmNotice(results []ExecutionResult) Notice {
	calendarLine := ""
	for i, r := range results {
		if r.ActionType != calendarActionType {
			continue
		}
		switch r.Status {
		case ExecBlocked, ExecFailed:
			return Notice{Kind: NoticeWarning, Text: calendarWarningText(o.locale)}
		case ExecSuccess:
			if action, ok := o.registry.At(i); ok && calendarLine == "" {
				calendarLine = calendarConfirmationText(o.locale, action.Payload)
			}
		}
	}

	if anyFailed(results) {
		return Notice{Kind: NoticeWarning, Text: executionWarningText(o.locale)}
	}
	return Notice{Kind: NoticeSuccess, Text: executionSuccessText(o.locale, calendarLine)}
}

// recordExecution audits the outcome. Must be called with the mutex held.
func (o *Orchestrator) recordExecution(runID string, results []ExecutionResult) {
	if o.audit == nil {
		return
	}
	go func() {
		if err := o.audit.RecordExecution(context.Background(), runID, results); err != nil {
			o.logger.Warn("execution audit failed", "run_id", runID, "error", err)
		}
	}()
}

func incompleteIndices(results []ExecutionResult) []int {
	var out []int
	for i, r := range results {
		if r.Status == ExecBlocked || r.Status == ExecFailed {
			out = append(out, i)
		}
	}
	return out
}

func anyFailed(results []ExecutionResult) bool {
	for _, r := range results {
		if r.Status == ExecFailed || r.Status == ExecBlocked {
			return true
		}
	}
	return false
}
