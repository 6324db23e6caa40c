package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

// MapError translates database errors to domain errors: sql.ErrNoRows to
// notFound, a PostgreSQL unique violation to duplicate. Anything else is
// returned unchanged.
func MapError(err, notFound, duplicate error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return duplicate
	}

	return err
}
