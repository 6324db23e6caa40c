package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/Jayden3422/voice-assistant/internal/backend"
)

// DefaultTimezone is assumed when an adjusted calendar action carries none.
const DefaultTimezone = "America/Toronto"

// SetRescheduleText updates the correction draft for the blocked action at
// index, creating the draft on first interaction. Each draft is independent
// of every other index and of the primary capture site.
func (o *Orchestrator) SetRescheduleText(index int, text string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.requireBlockedLocked(index); err != nil {
		return err
	}

	o.draftLocked(index).Text = text
	return nil
}

// Draft returns the reschedule draft for index, or nil if none exists.
func (o *Orchestrator) Draft(index int) *RescheduleDraft {
	o.mu.Lock()
	defer o.mu.Unlock()

	if d, ok := o.drafts[index]; ok {
		copied := *d
		return &copied
	}
	return nil
}

// SubmitReschedule resolves a correction instruction for the blocked action
// at index and merges it back into the primary request. Mode text submits
// payload (or the draft's buffer when payload is empty); mode audio submits
// transport-encoded audio.
func (o *Orchestrator) SubmitReschedule(ctx context.Context, index int, mode, payload string) error {
	return o.submitReschedule(ctx, index, mode, payload)
}

func (o *Orchestrator) submitReschedule(ctx context.Context, index int, mode, payload string) error {
	o.mu.Lock()

	if err := o.requireBlockedLocked(index); err != nil {
		o.mu.Unlock()
		return err
	}

	action, ok := o.registry.action(index)
	if !ok {
		o.mu.Unlock()
		return fmt.Errorf("%w: no action at index %d", ErrValidation, index)
	}

	req := backend.AdjustRequest{
		Mode:   mode,
		Locale: o.locale,
		Action: action,
	}
	switch mode {
	case backend.ModeText:
		text := payload
		if text == "" {
			text = o.draftLocked(index).Text
		}
		if strings.TrimSpace(text) == "" {
			o.mu.Unlock()
			return fmt.Errorf("%w: correction text is required", ErrEmptyInput)
		}
		req.Text = text
	case backend.ModeAudio:
		if payload == "" {
			o.mu.Unlock()
			return fmt.Errorf("%w: correction recording is required", ErrEmptyInput)
		}
		req.AudioBase64 = payload
	default:
		o.mu.Unlock()
		return fmt.Errorf("%w: mode must be %q or %q", ErrValidation, backend.ModeText, backend.ModeAudio)
	}

	draft := o.draftLocked(index)
	draft.Submitting = true
	locale := o.locale
	o.mu.Unlock()

	resp, err := o.backend.AdjustTime(ctx, req)

	o.mu.Lock()

	if err != nil {
		mapped := mapBackendError(err)
		if d, ok := o.drafts[index]; ok {
			d.Submitting = false
		}
		o.setNotice(NoticeError, rescheduleFailedText(o.locale, mapped))
		o.logger.Warn("reschedule failed", "index", index, "error", err)
		o.mu.Unlock()
		return mapped
	}

	line := normalizedInstruction(locale, resp)
	if line == "" {
		if d, ok := o.drafts[index]; ok {
			d.Submitting = false
		}
		o.mu.Unlock()
		return fmt.Errorf("%w: correction resolved to nothing", ErrEmptyInput)
	}

	// Merge the normalized line into the primary request and clear the
	// draft; the re-analyze below closes the loop.
	if o.input != "" {
		o.input += "\n"
	}
	o.input += line
	delete(o.drafts, index)

	o.logger.Info("reschedule merged", "index", index, "line", line)
	o.mu.Unlock()

	return o.AnalyzeText(ctx)
}

// draftLocked returns the draft for index, creating it lazily. Must be
// called with the mutex held, after a blocked-status check.
func (o *Orchestrator) draftLocked(index int) *RescheduleDraft {
	if d, ok := o.drafts[index]; ok {
		return d
	}
	d := &RescheduleDraft{}
	o.drafts[index] = d
	return d
}

// normalizedInstruction renders the adjusted action through the locale
// template; when the service returned no structured action, the raw
// returned text is the fallback.
func normalizedInstruction(locale string, resp *backend.AdjustResponse) string {
	if resp.Action != nil {
		return rescheduleLineText(locale, resp.Action.Payload)
	}
	return strings.TrimSpace(resp.UserText)
}
