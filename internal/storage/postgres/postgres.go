// Package postgres implements storage.Storage on top of a pgx pool.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-task-tracker/internal/storage"
)

var _ storage.Storage = (*Storage)(nil)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Storage struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
}

func New(logger zerolog.Logger, pgPool *pgxpool.Pool) *Storage {
	return &Storage{
		logger: logger,
		pgPool: pgPool,
	}
}

func (s *Storage) Close() error {
	s.pgPool.Close()
	return nil
}

// translateError maps driver errors onto storage sentinels.
func translateError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return storage.ErrAlreadyExists
		case pgerrcode.ForeignKeyViolation:
			return storage.ErrInvalidReference
		}
	}
	return err
}
