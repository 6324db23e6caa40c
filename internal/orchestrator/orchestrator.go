// Package orchestrator coordinates the dictation-to-execution workflow:
// exclusive audio capture, analysis of text or audio into proposed actions,
// action editing and confirmation, and recovery of blocked actions through
// merged correction instructions.
//
// One Orchestrator is owned by the view (client session) that instantiates
// it. All state mutation happens under a single mutex; the only shared
// physical resource, the capture device, is arbitrated separately so a
// second capture site can be refused without touching workflow state.
package orchestrator

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/Jayden3422/voice-assistant/internal/backend"
)

// ArtifactStore archives finalized audio artifacts. Implementations are
// best-effort; archive failures never interrupt the workflow.
type ArtifactStore interface {
	SaveArtifact(ctx context.Context, session uuid.UUID, site SiteID, artifact AudioArtifact) error
}

// AuditTrail records completed and failed runs for later inspection.
type AuditTrail interface {
	RecordRun(ctx context.Context, session uuid.UUID, mode, locale string, run *AnalysisRun, previews []ActionPreview) error
	RecordExecution(ctx context.Context, runID string, results []ExecutionResult) error
	RecordFailure(ctx context.Context, session uuid.UUID, mode string, cause error) error
}

// Options configures a new Orchestrator.
type Options struct {
	ID      uuid.UUID
	Backend backend.Service
	Device  Device
	Locale  string
	Logger  *slog.Logger

	// Optional collaborators.
	Artifacts ArtifactStore
	Audit     AuditTrail
}

// Orchestrator is the workflow context for one client session.
type Orchestrator struct {
	id        uuid.UUID
	logger    *slog.Logger
	backend   backend.Service
	device    Device
	artifacts ArtifactStore
	audit     AuditTrail
	arbiter   *Arbiter

	mu         sync.Mutex
	locale     string
	input      string
	processing bool
	issued     uint64
	sites      map[SiteID]*captureSession
	run        *AnalysisRun
	registry   *Registry
	results    []ExecutionResult
	drafts     map[int]*RescheduleDraft
	notice     *Notice
}

// New creates an Orchestrator with empty workflow state.
func New(opts Options) *Orchestrator {
	return &Orchestrator{
		id:        opts.ID,
		logger:    opts.Logger.With("system", "orchestrator", "session", opts.ID),
		backend:   opts.Backend,
		device:    opts.Device,
		artifacts: opts.Artifacts,
		audit:     opts.Audit,
		arbiter:   NewArbiter(),
		locale:    normalizeLocale(opts.Locale),
		sites:     make(map[SiteID]*captureSession),
		drafts:    make(map[int]*RescheduleDraft),
	}
}

// ID returns the owning session's identity.
func (o *Orchestrator) ID() uuid.UUID {
	return o.id
}

// SetInput replaces the primary text input.
func (o *Orchestrator) SetInput(text string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.input = text
}

// Input returns the current primary text input.
func (o *Orchestrator) Input() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.input
}

// SetLocale updates the locale hint used for notices and backend calls.
func (o *Orchestrator) SetLocale(locale string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.locale = normalizeLocale(locale)
}

// Reset returns the orchestrator to its initial state: active capture is
// abandoned, arbiter ownership released, and the issued counter advanced so
// any response still in flight is discarded on arrival.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()

	for site, sess := range o.sites {
		if sess.state == CaptureAcquiring || sess.state == CaptureRecording {
			o.arbiter.Release(site)
		}
	}

	o.input = ""
	o.processing = false
	o.issued++
	o.sites = make(map[SiteID]*captureSession)
	o.run = nil
	o.registry = nil
	o.results = nil
	o.drafts = make(map[int]*RescheduleDraft)
	o.notice = nil

	o.logger.Info("orchestrator reset")
}

// Run returns the visible analysis run, or nil before the first success.
func (o *Orchestrator) Run() *AnalysisRun {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.run
}

// Results returns the latest execution results.
func (o *Orchestrator) Results() []ExecutionResult {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]ExecutionResult, len(o.results))
	copy(out, o.results)
	return out
}

// Notice returns the current transient notice, or nil.
func (o *Orchestrator) Notice() *Notice {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.notice
}

// Processing reports whether an analyze call is pending application.
func (o *Orchestrator) Processing() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.processing
}

// setNotice must be called with the mutex held.
func (o *Orchestrator) setNotice(kind NoticeKind, text string) {
	o.notice = &Notice{Kind: kind, Text: text}
}

// archiveArtifact uploads the finalized artifact in the background. The
// handoff already happened; failures only get logged.
func (o *Orchestrator) archiveArtifact(site SiteID, artifact AudioArtifact) {
	if o.artifacts == nil || len(artifact.Data) == 0 {
		return
	}

	go func() {
		if err := o.artifacts.SaveArtifact(context.Background(), o.id, site, artifact); err != nil {
			o.logger.Warn("artifact archive failed", "site", site, "error", err)
		}
	}()
}
