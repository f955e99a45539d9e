package postgres

import (
	"context"
	"fmt"
)

type migration struct {
	version int
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS users (
	id         BIGSERIAL PRIMARY KEY,
	name       VARCHAR(255) NOT NULL,
	email      VARCHAR(255) NOT NULL UNIQUE,
	password   VARCHAR(255) NOT NULL,
	role       VARCHAR(16)  NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'user')),
	created_at TIMESTAMPTZ  NOT NULL,
	updated_at TIMESTAMPTZ  NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
	id          BIGSERIAL PRIMARY KEY,
	title       VARCHAR(255) NOT NULL,
	description TEXT         NOT NULL,
	created_by  BIGINT       NOT NULL REFERENCES users (id),
	created_at  TIMESTAMPTZ  NOT NULL,
	updated_at  TIMESTAMPTZ  NOT NULL
);

CREATE TABLE IF NOT EXISTS task_lists (
	id          BIGSERIAL PRIMARY KEY,
	title       VARCHAR(255) NOT NULL,
	description TEXT,
	task_id     BIGINT       NOT NULL REFERENCES tasks (id) ON DELETE CASCADE,
	user_id     BIGINT       NOT NULL REFERENCES users (id),
	completed   BOOLEAN      NOT NULL DEFAULT FALSE,
	created_at  TIMESTAMPTZ  NOT NULL,
	updated_at  TIMESTAMPTZ  NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	user_id    BIGINT      NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	expires_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tasks_created_at ON tasks (created_at DESC, id DESC);
CREATE INDEX IF NOT EXISTS idx_task_lists_task_id ON task_lists (task_id);
CREATE INDEX IF NOT EXISTS idx_task_lists_user_id ON task_lists (user_id, created_at DESC, id DESC);
CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions (user_id);
`,
	},
}

// Migrate applies every migration newer than the recorded schema version.
func (s *Storage) Migrate(ctx context.Context) error {
	const createVersionTableQuery = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
)
`
	_, err := s.pgPool.Exec(ctx, createVersionTableQuery)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to create schema_version table")
		return err
	}

	var currentVersion int
	const selectVersionQuery = `
SELECT COALESCE(MAX(version), 0)
FROM schema_version
`
	err = s.pgPool.QueryRow(ctx, selectVersionQuery).Scan(&currentVersion)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to read schema version")
		return err
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		err = s.applyMigration(ctx, m)
		if err != nil {
			s.logger.Error().
				Err(err).
				Int("version", m.version).
				Msg("failed to apply migration")
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
		s.logger.Info().
			Int("version", m.version).
			Msg("applied migration")
	}
	return nil
}

func (s *Storage) applyMigration(ctx context.Context, m migration) error {
	tx, err := s.pgPool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, m.sql)
	if err != nil {
		return err
	}

	const insertVersionQuery = `
INSERT INTO schema_version (version)
VALUES ($1)
`
	_, err = tx.Exec(ctx, insertVersionQuery, m.version)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}
