package config

import (
	"fmt"
	"time"
)

const (
	EnvDev   = "dev"
	EnvProd  = "prod"
	EnvLocal = "local"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverSQLite   = "sqlite"
)

var globalConfig *Config

func Global() *Config {
	return globalConfig
}

func SetGlobal(cfg *Config) {
	globalConfig = cfg
}

type Config struct {
	Env      string `env:"ENV" env-required:"true"`
	HTTP     HTTPConfig
	JWT      JWTConfig
	Storage  StorageConfig
	Postgres PostgresConfig
	Redis    RedisConfig
}

type HTTPConfig struct {
	Host              string        `env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port              string        `env:"HTTP_PORT" env-default:"8000"`
	ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"5s"`
	ShutdownTimeout   time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

type JWTConfig struct {
	Issuer     string        `env:"JWT_ISSUER" env-default:"go-task-tracker"`
	SigningKey string        `env:"JWT_SIGNING_KEY" env-required:"true"`
	TokenTTL   time.Duration `env:"JWT_TOKEN_TTL" env-default:"24h"`
}

type StorageConfig struct {
	Driver     string `env:"STORAGE_DRIVER" env-default:"postgres"`
	SQLitePath string `env:"SQLITE_PATH" env-default:"tracker.db"`
}

// PostgresConfig is only validated when the postgres driver is selected,
// so none of its fields are marked env-required.
type PostgresConfig struct {
	Host           string        `env:"POSTGRES_HOST"`
	Port           int           `env:"POSTGRES_PORT" env-default:"5432"`
	Username       string        `env:"POSTGRES_USERNAME"`
	Password       string        `env:"POSTGRES_PASSWORD"`
	Database       string        `env:"POSTGRES_DATABASE"`
	SSLMode        string        `env:"POSTGRES_SSL_MODE" env-default:"disable"`
	ConnectTimeout time.Duration `env:"POSTGRES_CONNECT_TIMEOUT" env-default:"10s"`
	PingTimeout    time.Duration `env:"POSTGRES_PING_TIMEOUT" env-default:"10s"`
}

func (c PostgresConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Username, c.Password, c.Host,
		c.Port, c.Database, c.SSLMode)
}

// RedisConfig enables the redis session backend when URL is set.
type RedisConfig struct {
	URL           string        `env:"REDIS_URL"`
	SessionPrefix string        `env:"REDIS_SESSION_PREFIX" env-default:"session:"`
	DialTimeout   time.Duration `env:"REDIS_DIAL_TIMEOUT" env-default:"5s"`
}

func (c *Config) Validate() error {
	switch c.Env {
	case EnvDev, EnvProd, EnvLocal:
	default:
		return fmt.Errorf("unknown env: %s", c.Env)
	}

	switch c.Storage.Driver {
	case StorageDriverPostgres:
		if c.Postgres.Host == "" || c.Postgres.Username == "" || c.Postgres.Database == "" {
			return fmt.Errorf("postgres driver requires POSTGRES_HOST, POSTGRES_USERNAME and POSTGRES_DATABASE")
		}
	case StorageDriverSQLite:
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("sqlite driver requires SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unknown storage driver: %s", c.Storage.Driver)
	}

	if c.JWT.SigningKey == "" {
		return fmt.Errorf("JWT_SIGNING_KEY must not be empty")
	}
	if c.JWT.TokenTTL <= 0 {
		return fmt.Errorf("JWT_TOKEN_TTL must be positive")
	}
	return nil
}
