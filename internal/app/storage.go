package app

import (
	"context"

	"github.com/adanyl0v/go-task-tracker/internal/config"
	"github.com/adanyl0v/go-task-tracker/internal/storage"
	"github.com/adanyl0v/go-task-tracker/internal/storage/postgres"
	"github.com/adanyl0v/go-task-tracker/internal/storage/sqlite"
)

var (
	globalStorage storage.Storage
	// globalSessionStorage is globalStorage unless redis is configured.
	globalSessionStorage storage.SessionStorage
)

// MustOpenStorage opens the configured relational store and brings its
// schema up to date.
func MustOpenStorage() {
	cfg := config.Global()

	switch cfg.Storage.Driver {
	case config.StorageDriverPostgres:
		pg := postgres.New(globalLogger, mustConnectPostgres())
		if err := pg.Migrate(context.Background()); err != nil {
			_ = pg.Close()
			globalLogger.Error().
				Err(err).
				Msg("failed to migrate postgres")
			panic(err)
		}
		globalStorage = pg
	case config.StorageDriverSQLite:
		s, err := sqlite.New(globalLogger, cfg.Storage.SQLitePath)
		if err != nil {
			globalLogger.Error().
				Err(err).
				Str("path", cfg.Storage.SQLitePath).
				Msg("failed to open sqlite")
			panic(err)
		}
		globalLogger.Info().
			Str("path", cfg.Storage.SQLitePath).
			Msg("opened sqlite")
		globalStorage = s
	}

	globalSessionStorage = globalStorage
}

func CloseStorage() {
	if err := globalStorage.Close(); err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to close storage")
		return
	}
	globalLogger.Info().Msg("closed storage")
}
