package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvReader(t *testing.T) {
	t.Run("sqlite defaults", func(t *testing.T) {
		t.Setenv("ENV", EnvLocal)
		t.Setenv("JWT_SIGNING_KEY", "secret")
		t.Setenv("STORAGE_DRIVER", StorageDriverSQLite)

		cfg, err := NewEnvReader().Read()
		require.NoError(t, err)

		assert.Equal(t, "8000", cfg.HTTP.Port)
		assert.Equal(t, "tracker.db", cfg.Storage.SQLitePath)
		assert.Equal(t, "go-task-tracker", cfg.JWT.Issuer)
		assert.Equal(t, "session:", cfg.Redis.SessionPrefix)
	})

	t.Run("missing signing key", func(t *testing.T) {
		t.Setenv("ENV", EnvLocal)
		t.Setenv("JWT_SIGNING_KEY", "secret")
		t.Setenv("STORAGE_DRIVER", StorageDriverSQLite)
		require.NoError(t, os.Unsetenv("JWT_SIGNING_KEY"))

		_, err := NewEnvReader().Read()
		assert.Error(t, err)
	})
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Env:     EnvProd,
			JWT:     JWTConfig{SigningKey: "k", TokenTTL: 1},
			Storage: StorageConfig{Driver: StorageDriverPostgres},
			Postgres: PostgresConfig{
				Host:     "localhost",
				Username: "tracker",
				Database: "tracker",
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr bool
	}{
		{name: "valid postgres", mutate: func(*Config) {}},
		{name: "unknown env", mutate: func(cfg *Config) { cfg.Env = "staging" }, wantErr: true},
		{name: "postgres without host", mutate: func(cfg *Config) { cfg.Postgres.Host = "" }, wantErr: true},
		{name: "unknown driver", mutate: func(cfg *Config) { cfg.Storage.Driver = "mysql" }, wantErr: true},
		{name: "non-positive ttl", mutate: func(cfg *Config) { cfg.JWT.TokenTTL = 0 }, wantErr: true},
		{
			name: "sqlite ignores postgres",
			mutate: func(cfg *Config) {
				cfg.Storage = StorageConfig{Driver: StorageDriverSQLite, SQLitePath: "x.db"}
				cfg.Postgres = PostgresConfig{}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPostgresURL(t *testing.T) {
	cfg := PostgresConfig{
		Host:     "db",
		Port:     5432,
		Username: "u",
		Password: "p",
		Database: "tracker",
		SSLMode:  "disable",
	}
	assert.Equal(t, "postgres://u:p@db:5432/tracker?sslmode=disable", cfg.URL())
}
