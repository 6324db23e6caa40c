// Package sessions manages the pool of per-client orchestrators and exposes
// the workflow over HTTP. Each connected client owns exactly one
// orchestrator; the manager also adapts the run audit store and blob storage
// into the orchestrator's collaborator interfaces.
package sessions

import (
	"context"

	"github.com/google/uuid"

	"github.com/Jayden3422/voice-assistant/internal/orchestrator"
)

// System defines the public contract for session management.
type System interface {
	Handler() *Handler

	Create(locale string) *orchestrator.Orchestrator
	Get(id uuid.UUID) (*orchestrator.Orchestrator, error)
	Delete(id uuid.UUID) error
	CloseAll(ctx context.Context) error
}
