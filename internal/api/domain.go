package api

import (
	"github.com/Jayden3422/voice-assistant/internal/config"
	"github.com/Jayden3422/voice-assistant/internal/runs"
	"github.com/Jayden3422/voice-assistant/internal/sessions"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Sessions sessions.System
	Runs     runs.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(cfg *config.Config, runtime *Runtime) *Domain {
	runsSystem := runs.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
	)

	sessionsSystem := sessions.New(sessions.Options{
		Backend:         runtime.Backend,
		Logger:          runtime.Logger,
		Runs:            runsSystem,
		Storage:         runtime.Storage,
		Locale:          cfg.Locale,
		CaptureDisabled: cfg.Capture.Disabled,
		Encoding:        cfg.Capture.Encoding,
		MaxArtifactSize: cfg.Capture.MaxArtifactSizeBytes(),
		MaxChunkSize:    cfg.API.MaxChunkSizeBytes(),
	})

	return &Domain{
		Sessions: sessionsSystem,
		Runs:     runsSystem,
	}
}
