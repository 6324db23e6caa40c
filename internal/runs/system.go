package runs

import (
	"context"
	"encoding/json"

	"github.com/Jayden3422/voice-assistant/pkg/pagination"
)

// System defines the public contract for run audit domain operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Run], error)

	Find(ctx context.Context, id string) (*Run, error)
	Record(ctx context.Context, cmd RecordCommand) (*Run, error)
	RecordExecution(ctx context.Context, id string, results json.RawMessage) (*Run, error)
	RecordFailure(ctx context.Context, cmd FailureCommand) (*Run, error)
}
