package orchestrator_test

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"

	"github.com/Jayden3422/voice-assistant/internal/backend"
	"github.com/Jayden3422/voice-assistant/internal/orchestrator"
)

func TestCaptureLifecycle(t *testing.T) {
	svc := &fakeBackend{}
	o := newOrchestrator(t, svc)
	ctx := context.Background()

	if got := o.CaptureState(orchestrator.SitePrimary); got != orchestrator.CaptureIdle {
		t.Fatalf("initial state = %s, want idle", got)
	}

	if err := o.StartCapture(ctx, orchestrator.SitePrimary); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if got := o.CaptureState(orchestrator.SitePrimary); got != orchestrator.CaptureRecording {
		t.Fatalf("state = %s, want recording", got)
	}

	if err := o.AppendAudio(orchestrator.SitePrimary, webmHeader); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	if err := o.StopCapture(ctx, orchestrator.SitePrimary); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if got := o.CaptureState(orchestrator.SitePrimary); got != orchestrator.CaptureIdle {
		t.Errorf("state after stop = %s, want idle", got)
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	if len(svc.analyzeReqs) != 1 {
		t.Fatalf("analyze calls = %d, want 1", len(svc.analyzeReqs))
	}
	req := svc.analyzeReqs[0]
	if req.Mode != backend.ModeAudio {
		t.Errorf("mode = %s, want audio", req.Mode)
	}
	if req.AudioBase64 != base64.StdEncoding.EncodeToString(webmHeader) {
		t.Errorf("audio payload not transport-encoded from the artifact")
	}
}

// Exactly one capture session may hold the device. The primary site holding
// it refuses a second start from any site; an action site becomes startable
// only after the primary stops.
func TestSingleRecorderInvariant(t *testing.T) {
	svc := &fakeBackend{}
	o := newOrchestrator(t, svc)
	ctx := context.Background()

	analyzeWithActions(t, o, svc, calendarActions())

	svc.mu.Lock()
	svc.confirmFn = confirmStatuses("blocked", "success")
	svc.mu.Unlock()
	if _, err := o.Confirm(ctx); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	if err := o.StartCapture(ctx, orchestrator.SitePrimary); err != nil {
		t.Fatalf("primary start failed: %v", err)
	}

	err := o.StartCapture(ctx, orchestrator.ActionSite(0))
	if !errors.Is(err, orchestrator.ErrAlreadyOwned) {
		t.Fatalf("action start while primary records: got %v, want ErrAlreadyOwned", err)
	}

	if err := o.StartCapture(ctx, orchestrator.SitePrimary); !errors.Is(err, orchestrator.ErrAlreadyRecording) {
		t.Fatalf("restart of recording site: got %v, want ErrAlreadyRecording", err)
	}

	// An empty recording frees the device without issuing an analyze, so
	// the blocked result set survives.
	if err := o.StopCapture(ctx, orchestrator.SitePrimary); !errors.Is(err, orchestrator.ErrEmptyInput) {
		t.Fatalf("stop of empty recording: got %v, want ErrEmptyInput", err)
	}

	// Device free again; the blocked action's site may record now.
	if err := o.StartCapture(ctx, orchestrator.ActionSite(0)); err != nil {
		t.Errorf("action start after primary stopped: %v", err)
	}
}

func TestStopIdempotent(t *testing.T) {
	svc := &fakeBackend{}
	o := newOrchestrator(t, svc)
	ctx := context.Background()

	if err := o.StopCapture(ctx, orchestrator.SitePrimary); !errors.Is(err, orchestrator.ErrNotRecording) {
		t.Fatalf("stop while idle: got %v, want ErrNotRecording", err)
	}

	if err := o.StartCapture(ctx, orchestrator.SitePrimary); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := o.AppendAudio(orchestrator.SitePrimary, webmHeader); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if err := o.StopCapture(ctx, orchestrator.SitePrimary); err != nil {
		t.Fatalf("stop failed: %v", err)
	}

	if err := o.StopCapture(ctx, orchestrator.SitePrimary); !errors.Is(err, orchestrator.ErrNotRecording) {
		t.Fatalf("second stop: got %v, want ErrNotRecording", err)
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	if len(svc.analyzeReqs) != 1 {
		t.Errorf("analyze calls = %d, want exactly 1 continuation", len(svc.analyzeReqs))
	}
}

func TestAppendWhileNotRecording(t *testing.T) {
	svc := &fakeBackend{}
	o := newOrchestrator(t, svc)

	err := o.AppendAudio(orchestrator.SitePrimary, webmHeader)
	if !errors.Is(err, orchestrator.ErrNotRecording) {
		t.Errorf("got %v, want ErrNotRecording", err)
	}
}

func TestStartCaptureDeviceErrors(t *testing.T) {
	tests := []struct {
		name   string
		device orchestrator.Device
		want   error
	}{
		{"unavailable", orchestrator.NewUnavailableDevice(), orchestrator.ErrDeviceUnavailable},
		{"denied", orchestrator.NewDeniedDevice(), orchestrator.ErrPermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := orchestrator.New(orchestrator.Options{
				ID:      uuid.New(),
				Backend: &fakeBackend{},
				Device:  tt.device,
				Locale:  "en",
				Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
			})

			err := o.StartCapture(context.Background(), orchestrator.SitePrimary)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
			if got := o.CaptureState(orchestrator.SitePrimary); got != orchestrator.CaptureIdle {
				t.Errorf("state = %s, want idle after failed start", got)
			}
			if o.Notice() == nil {
				t.Error("no notice surfaced for failed start")
			}

			// The site must be recoverable: the arbiter did not leak
			// ownership to the failed attempt.
			if err := o.StartCapture(context.Background(), orchestrator.SitePrimary); !errors.Is(err, tt.want) {
				t.Errorf("retry: got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEmptyRecordingMapsToEmptyInput(t *testing.T) {
	svc := &fakeBackend{}
	o := newOrchestrator(t, svc)
	ctx := context.Background()

	if err := o.StartCapture(ctx, orchestrator.SitePrimary); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	err := o.StopCapture(ctx, orchestrator.SitePrimary)
	if !errors.Is(err, orchestrator.ErrEmptyInput) {
		t.Fatalf("got %v, want ErrEmptyInput", err)
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	if len(svc.analyzeReqs) != 0 {
		t.Errorf("backend called for an empty recording")
	}
}

func TestMalformedRecordingFailsEncoding(t *testing.T) {
	svc := &fakeBackend{}
	o := newOrchestrator(t, svc)
	ctx := context.Background()

	if err := o.StartCapture(ctx, orchestrator.SitePrimary); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := o.AppendAudio(orchestrator.SitePrimary, []byte("plainly not audio")); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	err := o.StopCapture(ctx, orchestrator.SitePrimary)
	if !errors.Is(err, orchestrator.ErrEncoding) {
		t.Fatalf("got %v, want ErrEncoding", err)
	}

	notice := o.Notice()
	if notice == nil || notice.Kind != orchestrator.NoticeError {
		t.Errorf("notice = %+v, want error notice", notice)
	}

	// State machine recovered; a new capture is possible.
	if err := o.StartCapture(ctx, orchestrator.SitePrimary); err != nil {
		t.Errorf("capture after encoding failure: %v", err)
	}
}

func TestActionCaptureRequiresBlocked(t *testing.T) {
	svc := &fakeBackend{}
	o := newOrchestrator(t, svc)
	ctx := context.Background()

	analyzeWithActions(t, o, svc, calendarActions())

	err := o.StartCapture(ctx, orchestrator.ActionSite(0))
	if !errors.Is(err, orchestrator.ErrNotBlocked) {
		t.Errorf("got %v, want ErrNotBlocked before any execution", err)
	}

	svc.mu.Lock()
	svc.confirmFn = confirmStatuses("success", "success")
	svc.mu.Unlock()
	if _, err := o.Confirm(ctx); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	err = o.StartCapture(ctx, orchestrator.ActionSite(0))
	if !errors.Is(err, orchestrator.ErrNotBlocked) {
		t.Errorf("got %v, want ErrNotBlocked for a successful action", err)
	}
}

// gatedDevice suspends Acquire until granted, exposing the window between
// a start request and the device grant.
type gatedDevice struct {
	entered chan struct{}
	grant   chan struct{}
}

func (d *gatedDevice) Acquire(context.Context) (orchestrator.Recorder, error) {
	d.entered <- struct{}{}
	<-d.grant
	return nullRecorder{}, nil
}

type nullRecorder struct{}

func (nullRecorder) Write([]byte) error { return nil }

func (nullRecorder) Finalize() orchestrator.AudioArtifact {
	return orchestrator.AudioArtifact{}
}

// A reset while device access is suspended tears the session down; the
// continuation must not resurrect it as a recording orphan.
func TestResetDuringDeviceAcquire(t *testing.T) {
	dev := &gatedDevice{entered: make(chan struct{}, 2), grant: make(chan struct{})}
	o := orchestrator.New(orchestrator.Options{
		ID:      uuid.New(),
		Backend: &fakeBackend{},
		Device:  dev,
		Locale:  "en",
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	ctx := context.Background()

	errc := make(chan error, 1)
	go func() {
		errc <- o.StartCapture(ctx, orchestrator.SitePrimary)
	}()

	<-dev.entered
	o.Reset()
	close(dev.grant)

	if err := <-errc; !errors.Is(err, orchestrator.ErrNotRecording) {
		t.Fatalf("start across reset: got %v, want ErrNotRecording", err)
	}
	if got := o.CaptureState(orchestrator.SitePrimary); got != orchestrator.CaptureIdle {
		t.Errorf("state = %s, want idle after reset", got)
	}

	// Ownership did not leak to the torn-down session; the site starts again.
	if err := o.StartCapture(ctx, orchestrator.SitePrimary); err != nil {
		t.Errorf("start after reset: %v", err)
	}
	<-dev.entered
}

func TestRecorderSizeLimit(t *testing.T) {
	o := orchestrator.New(orchestrator.Options{
		ID:      uuid.New(),
		Backend: &fakeBackend{},
		Device:  orchestrator.NewBufferDevice("audio/webm", 8),
		Locale:  "en",
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	ctx := context.Background()

	if err := o.StartCapture(ctx, orchestrator.SitePrimary); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := o.AppendAudio(orchestrator.SitePrimary, webmHeader); err != nil {
		t.Fatalf("append within limit failed: %v", err)
	}

	err := o.AppendAudio(orchestrator.SitePrimary, make([]byte, 16))
	if !errors.Is(err, orchestrator.ErrValidation) {
		t.Errorf("got %v, want ErrValidation past the size limit", err)
	}
}
