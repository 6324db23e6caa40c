package sessions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/Jayden3422/voice-assistant/internal/orchestrator"
	"github.com/Jayden3422/voice-assistant/internal/runs"
	"github.com/Jayden3422/voice-assistant/pkg/storage"
)

// auditRecorder adapts the runs system to the orchestrator's audit contract.
type auditRecorder struct {
	runs   runs.System
	locale string
}

func (a *auditRecorder) RecordRun(
	ctx context.Context,
	session uuid.UUID,
	mode, locale string,
	run *orchestrator.AnalysisRun,
	previews []orchestrator.ActionPreview,
) error {
	cmd := runs.RecordCommand{
		ID:         run.RunID,
		SessionID:  session,
		Mode:       mode,
		Locale:     locale,
		Transcript: run.Transcript,
	}

	var err error
	if cmd.Extracted, err = json.Marshal(run.Extracted); err != nil {
		return fmt.Errorf("marshal extracted: %w", err)
	}
	if cmd.Evidence, err = json.Marshal(run.Evidence); err != nil {
		return fmt.Errorf("marshal evidence: %w", err)
	}
	if cmd.Reply, err = json.Marshal(run.ReplyDraft); err != nil {
		return fmt.Errorf("marshal reply: %w", err)
	}
	if cmd.Actions, err = json.Marshal(previews); err != nil {
		return fmt.Errorf("marshal actions: %w", err)
	}

	_, err = a.runs.Record(ctx, cmd)
	return err
}

func (a *auditRecorder) RecordExecution(
	ctx context.Context,
	runID string,
	results []orchestrator.ExecutionResult,
) error {
	raw, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}

	_, err = a.runs.RecordExecution(ctx, runID, raw)
	return err
}

func (a *auditRecorder) RecordFailure(
	ctx context.Context,
	session uuid.UUID,
	mode string,
	cause error,
) error {
	_, err := a.runs.RecordFailure(ctx, runs.FailureCommand{
		SessionID: session,
		Mode:      mode,
		Locale:    a.locale,
		Cause:     cause.Error(),
	})
	return err
}

// artifactArchive adapts blob storage to the orchestrator's artifact contract.
// Keys group artifacts by session and capture site.
type artifactArchive struct {
	storage storage.System
}

func (s *artifactArchive) SaveArtifact(
	ctx context.Context,
	session uuid.UUID,
	site orchestrator.SiteID,
	artifact orchestrator.AudioArtifact,
) error {
	key := fmt.Sprintf("sessions/%s/%s/%s", session, site, uuid.NewString())
	return s.storage.Upload(ctx, key, bytes.NewReader(artifact.Data), artifact.Encoding)
}
