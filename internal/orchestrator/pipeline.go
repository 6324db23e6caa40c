package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/Jayden3422/voice-assistant/internal/backend"
)

// analyzeInput is one issue of the analysis pipeline.
type analyzeInput struct {
	mode  string // backend.ModeText or backend.ModeAudio
	text  string
	audio string
}

// AnalyzeText runs a text analyze over the current primary input.
func (o *Orchestrator) AnalyzeText(ctx context.Context) error {
	o.mu.Lock()
	text := o.input
	o.mu.Unlock()

	return o.analyze(ctx, analyzeInput{mode: backend.ModeText, text: text})
}

// analyze submits one extraction request and applies the result under the
// pipeline's ordering guarantee: every call is tagged with a monotonically
// increasing sequence number at issue time, and only the response matching
// the highest number issued so far is applied to the visible run. The
// transport does not provide this ordering; overlapping calls must not let
// a stale response silently overwrite a newer one.
func (o *Orchestrator) analyze(ctx context.Context, in analyzeInput) error {
	if err := validateAnalyzeInput(in); err != nil {
		return err
	}

	o.mu.Lock()
	o.issued++
	seq := o.issued
	o.processing = true
	o.notice = nil
	locale := o.locale
	o.mu.Unlock()

	resp, err := o.backend.Analyze(ctx, backend.AnalyzeRequest{
		Mode:        in.mode,
		Locale:      locale,
		Text:        in.text,
		AudioBase64: in.audio,
	})

	o.mu.Lock()
	defer o.mu.Unlock()

	if seq != o.issued {
		// A newer analyze was issued while this one was in flight. The
		// response is discarded on arrival; the newer call owns the
		// processing flag and the visible run.
		o.logger.Info("analyze response discarded", "seq", seq, "latest", o.issued)
		return ErrSuperseded
	}

	o.processing = false

	if err != nil {
		mapped := mapBackendError(err)
		o.setNotice(NoticeError, analyzeFailedText(o.locale, mapped))
		o.logger.Warn("analyze failed", "seq", seq, "mode", in.mode, "error", err)
		o.recordFailure(in.mode, mapped)
		return mapped
	}

	o.applyRun(seq, in.mode, resp)
	return nil
}

// applyRun wholesale-replaces the visible run, reinitializes the action
// preview registry with every action enabled, and clears reschedule drafts
// and stale execution results. Must be called with the mutex held.
func (o *Orchestrator) applyRun(seq uint64, mode string, resp *backend.AnalyzeResponse) {
	o.run = runFromResponse(resp)
	o.registry = NewRegistry(resp.ActionsPreview)
	o.results = nil
	o.drafts = make(map[int]*RescheduleDraft)

	o.logger.Info("analysis run applied",
		"seq", seq,
		"run_id", o.run.RunID,
		"actions", o.registry.Len(),
	)

	if o.audit != nil {
		run := o.run
		previews := o.registry.Previews()
		locale := o.locale
		go func() {
			if err := o.audit.RecordRun(context.Background(), o.id, mode, locale, run, previews); err != nil {
				o.logger.Warn("run audit failed", "run_id", run.RunID, "error", err)
			}
		}()
	}
}

// recordFailure audits a failed analyze. Must be called with the mutex held.
func (o *Orchestrator) recordFailure(mode string, cause error) {
	if o.audit == nil {
		return
	}
	go func() {
		if err := o.audit.RecordFailure(context.Background(), o.id, mode, cause); err != nil {
			o.logger.Warn("failure audit failed", "error", err)
		}
	}()
}

func validateAnalyzeInput(in analyzeInput) error {
	switch in.mode {
	case backend.ModeText:
		if strings.TrimSpace(in.text) == "" {
			return fmt.Errorf("%w: text is required", ErrEmptyInput)
		}
	case backend.ModeAudio:
		if in.audio == "" {
			return fmt.Errorf("%w: recording contained no audio", ErrEmptyInput)
		}
	default:
		return fmt.Errorf("%w: mode must be %q or %q", ErrValidation, backend.ModeText, backend.ModeAudio)
	}
	return nil
}
