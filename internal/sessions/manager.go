package sessions

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/Jayden3422/voice-assistant/internal/backend"
	"github.com/Jayden3422/voice-assistant/internal/orchestrator"
	"github.com/Jayden3422/voice-assistant/internal/runs"
	"github.com/Jayden3422/voice-assistant/pkg/storage"
)

// Options configures the session manager.
type Options struct {
	Backend backend.Service
	Logger  *slog.Logger

	// Optional collaborators; nil disables the corresponding concern.
	Runs    runs.System
	Storage storage.System

	Locale          string
	CaptureDisabled bool
	Encoding        string
	MaxArtifactSize int64
	MaxChunkSize    int64
}

type manager struct {
	backend   backend.Service
	logger    *slog.Logger
	audit     orchestrator.AuditTrail
	artifacts orchestrator.ArtifactStore

	locale          string
	captureDisabled bool
	encoding        string
	maxArtifactSize int64
	maxChunkSize    int64

	mu       sync.RWMutex
	sessions map[uuid.UUID]*orchestrator.Orchestrator
}

// New creates a session manager implementing the System interface.
func New(opts Options) System {
	m := &manager{
		backend:         opts.Backend,
		logger:          opts.Logger.With("system", "sessions"),
		locale:          opts.Locale,
		captureDisabled: opts.CaptureDisabled,
		encoding:        opts.Encoding,
		maxArtifactSize: opts.MaxArtifactSize,
		maxChunkSize:    opts.MaxChunkSize,
		sessions:        make(map[uuid.UUID]*orchestrator.Orchestrator),
	}

	if opts.Runs != nil {
		m.audit = &auditRecorder{runs: opts.Runs, locale: opts.Locale}
	}
	if opts.Storage != nil {
		m.artifacts = &artifactArchive{storage: opts.Storage}
	}

	return m
}

func (m *manager) Handler() *Handler {
	return NewHandler(m, m.logger, m.maxChunkSize)
}

func (m *manager) Create(locale string) *orchestrator.Orchestrator {
	if locale == "" {
		locale = m.locale
	}

	id := uuid.New()
	o := orchestrator.New(orchestrator.Options{
		ID:        id,
		Backend:   m.backend,
		Device:    m.newDevice(),
		Locale:    locale,
		Logger:    m.logger,
		Artifacts: m.artifacts,
		Audit:     m.audit,
	})

	m.mu.Lock()
	m.sessions[id] = o
	m.mu.Unlock()

	m.logger.Info("session created", "session", id, "locale", locale)
	return o
}

func (m *manager) Get(id uuid.UUID) (*orchestrator.Orchestrator, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	o, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return o, nil
}

func (m *manager) Delete(id uuid.UUID) error {
	m.mu.Lock()
	o, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return ErrNotFound
	}

	o.Reset()
	m.logger.Info("session deleted", "session", id)
	return nil
}

// CloseAll resets and discards every session. Used during shutdown so active
// captures release the device and in-flight responses are discarded.
func (m *manager) CloseAll(ctx context.Context) error {
	m.mu.Lock()
	active := m.sessions
	m.sessions = make(map[uuid.UUID]*orchestrator.Orchestrator)
	m.mu.Unlock()

	for id, o := range active {
		if err := ctx.Err(); err != nil {
			return err
		}
		o.Reset()
		m.logger.Info("session closed", "session", id)
	}
	return nil
}

func (m *manager) newDevice() orchestrator.Device {
	if m.captureDisabled {
		return orchestrator.NewUnavailableDevice()
	}
	return orchestrator.NewBufferDevice(m.encoding, m.maxArtifactSize)
}
