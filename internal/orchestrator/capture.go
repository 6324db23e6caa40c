package orchestrator

import (
	"context"
	"fmt"
)

// captureSession is the per-site state machine around one recording:
// idle → acquiring → recording → stopping → completed → idle, with
// acquiring|recording → error → idle on failure. The terminal continuation
// fires at most once, on the completed transition.
type captureSession struct {
	site  SiteID
	state CaptureState
	rec   Recorder
}

// StartCapture opens a recording session at site. It fails with
// ErrDeviceUnavailable when the capture capability is absent,
// ErrPermissionDenied when access is declined, and ErrAlreadyOwned /
// ErrAlreadyRecording when the arbiter refuses ownership. A refusal is
// surfaced immediately, never queued.
func (o *Orchestrator) StartCapture(ctx context.Context, site SiteID) error {
	if idx, ok := site.ActionIndex(); ok {
		if err := o.requireBlocked(idx); err != nil {
			return err
		}
	}

	o.mu.Lock()
	if sess, ok := o.sites[site]; ok && sess.state != CaptureIdle {
		o.mu.Unlock()
		return ErrAlreadyRecording
	}

	if err := o.arbiter.Acquire(site); err != nil {
		o.mu.Unlock()
		return err
	}

	sess := &captureSession{site: site, state: CaptureAcquiring}
	o.sites[site] = sess
	o.mu.Unlock()

	// Device access suspends; the arbiter already fences other sites out.
	rec, err := o.device.Acquire(ctx)

	o.mu.Lock()
	defer o.mu.Unlock()

	// A reset may have torn the session down while device access was
	// suspended; its arbiter ownership and sites entry are already gone.
	if o.sites[site] != sess {
		if err == nil {
			rec.Finalize()
		}
		return ErrNotRecording
	}

	if err != nil {
		sess.state = CaptureError
		o.arbiter.Release(site)
		delete(o.sites, site)
		o.setNotice(NoticeError, captureFailedText(o.locale))
		o.logger.Warn("capture start failed", "site", site, "error", err)
		return err
	}

	sess.rec = rec
	sess.state = CaptureRecording
	o.logger.Info("capture started", "site", site)
	return nil
}

// AppendAudio buffers a captured chunk for the recording site.
func (o *Orchestrator) AppendAudio(site SiteID, chunk []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	sess, ok := o.sites[site]
	if !ok || sess.state != CaptureRecording {
		return ErrNotRecording
	}

	return sess.rec.Write(chunk)
}

// StopCapture finalizes the recording at site into an AudioArtifact,
// releases device ownership, and invokes the site's continuation exactly
// once: the transcode-and-analyze path for the primary site, the reschedule
// path for an indexed site. Stopping an idle site fails with ErrNotRecording
// and changes no state, so repeated stops are safe no-ops.
func (o *Orchestrator) StopCapture(ctx context.Context, site SiteID) error {
	o.mu.Lock()

	sess, ok := o.sites[site]
	if !ok || sess.state != CaptureRecording {
		o.mu.Unlock()
		return ErrNotRecording
	}

	sess.state = CaptureStopping
	artifact := sess.rec.Finalize()
	o.arbiter.Release(site)
	sess.state = CaptureCompleted
	delete(o.sites, site)
	o.mu.Unlock()

	o.logger.Info("capture completed", "site", site, "bytes", len(artifact.Data))
	o.archiveArtifact(site, artifact)

	if idx, isAction := site.ActionIndex(); isAction {
		return o.handleRescheduleArtifact(ctx, idx, artifact)
	}
	return o.handlePrimaryArtifact(ctx, artifact)
}

// CaptureState reports the current state of site; sites without an open
// session are idle.
func (o *Orchestrator) CaptureState(site SiteID) CaptureState {
	o.mu.Lock()
	defer o.mu.Unlock()

	if sess, ok := o.sites[site]; ok {
		return sess.state
	}
	return CaptureIdle
}

// handlePrimaryArtifact transcodes the finalized primary recording and runs
// an audio analyze. A zero-length artifact is not a crash; the pipeline maps
// it to ErrEmptyInput.
func (o *Orchestrator) handlePrimaryArtifact(ctx context.Context, artifact AudioArtifact) error {
	encoded, err := EncodeArtifact(artifact)
	if err != nil {
		o.mu.Lock()
		o.setNotice(NoticeError, encodingFailedText(o.locale))
		o.mu.Unlock()
		return err
	}

	return o.analyze(ctx, analyzeInput{mode: "audio", audio: encoded})
}

// handleRescheduleArtifact transcodes a correction recording and submits it
// through the reschedule flow for the blocked action at index.
func (o *Orchestrator) handleRescheduleArtifact(ctx context.Context, index int, artifact AudioArtifact) error {
	encoded, err := EncodeArtifact(artifact)
	if err != nil {
		o.mu.Lock()
		o.setNotice(NoticeError, encodingFailedText(o.locale))
		o.mu.Unlock()
		return err
	}
	if encoded == "" {
		return fmt.Errorf("%w: empty correction recording", ErrEmptyInput)
	}

	return o.submitReschedule(ctx, index, "audio", encoded)
}

// requireBlocked verifies that index refers to a calendar action whose
// latest execution result is blocked; only those are eligible for recovery.
// The adjust-time service rejects every other action type, so the check
// fails here instead of round-tripping.
func (o *Orchestrator) requireBlocked(index int) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.requireBlockedLocked(index)
}

func (o *Orchestrator) requireBlockedLocked(index int) error {
	if index < 0 || index >= len(o.results) {
		return fmt.Errorf("%w: no result at index %d", ErrNotBlocked, index)
	}
	if o.results[index].Status != ExecBlocked {
		return fmt.Errorf("%w: index %d is %s", ErrNotBlocked, index, o.results[index].Status)
	}
	if o.results[index].ActionType != calendarActionType {
		return fmt.Errorf("%w: index %d is not a calendar action", ErrNotBlocked, index)
	}
	return nil
}

// IsBlocked reports whether the action at index is eligible for recovery.
func (o *Orchestrator) IsBlocked(index int) bool {
	return o.requireBlocked(index) == nil
}
