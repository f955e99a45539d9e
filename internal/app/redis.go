package app

import (
	"context"

	goredis "github.com/redis/go-redis/v9"

	"github.com/adanyl0v/go-task-tracker/internal/config"
	redisstorage "github.com/adanyl0v/go-task-tracker/internal/storage/redis"
)

var globalRedisClient *goredis.Client

// MustConnectRedis moves session storage to redis when REDIS_URL is set.
// It must run after MustOpenStorage.
func MustConnectRedis() {
	cfg := config.Global().Redis
	if cfg.URL == "" {
		globalLogger.Info().Msg("redis disabled, keeping sessions in storage")
		return
	}

	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to parse redis url")
		panic(err)
	}
	opts.DialTimeout = cfg.DialTimeout

	client := goredis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	err = client.Ping(ctx).Err()
	if err != nil {
		_ = client.Close()
		globalLogger.Error().
			Err(err).
			Msg("failed to ping redis")
		panic(err)
	}
	globalLogger.Info().
		Str("addr", opts.Addr).
		Int("db", opts.DB).
		Msg("connected to redis")

	globalRedisClient = client
	globalSessionStorage = redisstorage.NewSessionStorage(globalLogger, client, cfg.SessionPrefix)
}

func DisconnectRedis() {
	if globalRedisClient == nil {
		return
	}
	if err := globalRedisClient.Close(); err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to disconnect from redis")
		return
	}
	globalLogger.Info().Msg("disconnected from redis")
}
