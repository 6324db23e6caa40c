package runs

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Jayden3422/voice-assistant/pkg/pagination"
	"github.com/Jayden3422/voice-assistant/pkg/query"
	"github.com/Jayden3422/voice-assistant/pkg/repository"
)

const returning = `id, session_id, mode, locale, status, transcript,
			  extracted, evidence, reply, actions, results, error,
			  created_at, updated_at`

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a run repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "runs"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Run], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Transcript")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count runs: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanRun)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id string) (*Run, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	run, err := repository.QueryOne(ctx, r.db, q, args, scanRun)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &run, nil
}

func (r *repo) Record(ctx context.Context, cmd RecordCommand) (*Run, error) {
	id := cmd.ID
	if id == "" {
		id = uuid.NewString()
	}

	// Re-analysis in the same backend run reuses the run id; the latest
	// result wins.
	upsertQ := `
		INSERT INTO runs(
			id, session_id, mode, locale, status, transcript,
			extracted, evidence, reply, actions
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			mode = EXCLUDED.mode,
			locale = EXCLUDED.locale,
			status = EXCLUDED.status,
			transcript = EXCLUDED.transcript,
			extracted = EXCLUDED.extracted,
			evidence = EXCLUDED.evidence,
			reply = EXCLUDED.reply,
			actions = EXCLUDED.actions,
			results = NULL,
			error = NULL,
			updated_at = NOW()
		RETURNING ` + returning

	upsertArgs := []any{
		id,
		cmd.SessionID,
		cmd.Mode,
		cmd.Locale,
		StatusAnalyzed,
		cmd.Transcript,
		rawOrEmpty(cmd.Extracted),
		rawOrEmpty(cmd.Evidence),
		rawOrEmpty(cmd.Reply),
		rawOrEmpty(cmd.Actions),
	}

	run, err := repository.QueryOne(ctx, r.db, upsertQ, upsertArgs, scanRun)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("run recorded",
		"id", run.ID,
		"session_id", run.SessionID,
		"mode", run.Mode,
	)
	return &run, nil
}

func (r *repo) RecordExecution(ctx context.Context, id string, results json.RawMessage) (*Run, error) {
	updateQ := `
		UPDATE runs
		SET status = $1, results = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING ` + returning

	run, err := repository.QueryOne(ctx, r.db, updateQ,
		[]any{StatusExecuted, rawOrEmpty(results), id},
		scanRun,
	)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("run execution recorded", "id", run.ID)
	return &run, nil
}

func (r *repo) RecordFailure(ctx context.Context, cmd FailureCommand) (*Run, error) {
	insertQ := `
		INSERT INTO runs(id, session_id, mode, locale, status, error)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + returning

	insertArgs := []any{
		uuid.NewString(),
		cmd.SessionID,
		cmd.Mode,
		cmd.Locale,
		StatusFailed,
		cmd.Cause,
	}

	run, err := repository.QueryOne(ctx, r.db, insertQ, insertArgs, scanRun)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("run failure recorded",
		"id", run.ID,
		"session_id", run.SessionID,
		"cause", cmd.Cause,
	)
	return &run, nil
}

func rawOrEmpty(raw json.RawMessage) []byte {
	if len(raw) == 0 {
		return []byte("null")
	}
	return raw
}
