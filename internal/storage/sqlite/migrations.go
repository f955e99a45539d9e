package sqlite

import "fmt"

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT     NOT NULL,
	email      TEXT     NOT NULL UNIQUE,
	password   TEXT     NOT NULL,
	role       TEXT     NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'user')),
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	title       TEXT     NOT NULL,
	description TEXT     NOT NULL,
	created_by  INTEGER  NOT NULL REFERENCES users (id),
	created_at  DATETIME NOT NULL,
	updated_at  DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS task_lists (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	title       TEXT     NOT NULL,
	description TEXT,
	task_id     INTEGER  NOT NULL REFERENCES tasks (id) ON DELETE CASCADE,
	user_id     INTEGER  NOT NULL REFERENCES users (id),
	completed   INTEGER  NOT NULL DEFAULT 0,
	created_at  DATETIME NOT NULL,
	updated_at  DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	user_id    INTEGER  NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	expires_at DATETIME NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tasks_created_at ON tasks (created_at, id);
CREATE INDEX IF NOT EXISTS idx_task_lists_task_id ON task_lists (task_id);
CREATE INDEX IF NOT EXISTS idx_task_lists_user_id ON task_lists (user_id, created_at, id);
CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions (user_id);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *Storage) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}
