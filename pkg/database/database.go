// Package database provides PostgreSQL connection management with lifecycle
// coordination.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Jayden3422/voice-assistant/pkg/lifecycle"
)

// System manages the connection pool and its lifecycle hooks.
type System interface {
	// Connection returns the underlying pool.
	Connection() *sql.DB
	// Start registers startup (ping) and shutdown (close) hooks.
	Start(lc *lifecycle.Coordinator) error
}

type system struct {
	pool        *sql.DB
	logger      *slog.Logger
	connTimeout time.Duration
}

// New opens the pool from cfg without establishing a connection; the first
// connection happens in the startup hook.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	pool, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pool.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	return &system{
		pool:        pool,
		logger:      logger.With("system", "database"),
		connTimeout: cfg.ConnTimeoutDuration(),
	}, nil
}

func (s *system) Connection() *sql.DB {
	return s.pool
}

func (s *system) Start(lc *lifecycle.Coordinator) error {
	s.logger.Info("starting database system")

	lc.OnStartup(func() {
		ctx, cancel := context.WithTimeout(lc.Context(), s.connTimeout)
		defer cancel()

		if err := s.pool.PingContext(ctx); err != nil {
			s.logger.Error("database ping failed", "error", err)
			return
		}
		s.logger.Info("database connection established")
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()

		if err := s.pool.Close(); err != nil {
			s.logger.Error("database close failed", "error", err)
			return
		}
		s.logger.Info("database connection closed")
	})

	return nil
}
