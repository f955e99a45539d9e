// Package sqlite implements storage.Storage on an embedded SQLite database.
// It backs the local environment and the test suites.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	moderncsqlite "modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"

	"github.com/adanyl0v/go-task-tracker/internal/storage"
)

var _ storage.Storage = (*Storage)(nil)

// Storage implements storage.Storage using a SQLite database file.
type Storage struct {
	logger zerolog.Logger
	db     *sqlx.DB
}

// New opens (or creates) the database at path, enables foreign keys and WAL
// mode on every connection, and runs any pending schema migrations.
func New(logger zerolog.Logger, path string) (*Storage, error) {
	dsn := path + "?_pragma=foreign_keys(1)" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=journal_mode(WAL)" +
		"&_time_format=sqlite"

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	s := &Storage{
		logger: logger,
		db:     db,
	}
	if err := s.runMigrations(); err != nil {
		logger.Error().
			Err(err).
			Str("path", path).
			Msg("failed to run sqlite migrations")
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	logger.Debug().
		Str("path", path).
		Msg("opened sqlite database")
	return s, nil
}

// Close closes the underlying database connection.
func (s *Storage) Close() error {
	return s.db.Close()
}

// translateError maps database/sql and sqlite constraint errors onto
// storage sentinels, keeping the driver error in the chain.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %w", storage.ErrNotFound, err)
	}

	var sqliteErr *moderncsqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlitelib.SQLITE_CONSTRAINT_UNIQUE, sqlitelib.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%w: %w", storage.ErrAlreadyExists, err)
		case sqlitelib.SQLITE_CONSTRAINT_FOREIGNKEY:
			return fmt.Errorf("%w: %w", storage.ErrInvalidReference, err)
		}
	}
	return err
}

// withTx runs fn inside a transaction and commits when fn succeeds.
func (s *Storage) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to begin transaction")
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to commit transaction")
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// logFailure starts an error event for err, or a debug event when err is a
// missing row or a constraint violation the caller handles.
func (s *Storage) logFailure(err error) *zerolog.Event {
	if errors.Is(err, storage.ErrNotFound) ||
		errors.Is(err, storage.ErrAlreadyExists) ||
		errors.Is(err, storage.ErrInvalidReference) {
		return s.logger.Debug().Err(err)
	}
	return s.logger.Error().Err(err)
}
