package app

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-task-tracker/internal/config"
)

const serviceName = "go-task-tracker"

var globalLogger zerolog.Logger

// InitDefaultLogger sets up a JSON logger usable before the env is read.
func InitDefaultLogger() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	zerolog.TimestampFieldName = "timestamp"
	zerolog.DurationFieldUnit = time.Millisecond

	globalLogger = zerolog.New(os.Stdout).
		With().
		Timestamp().
		Caller().
		Str("service", serviceName).
		Int("pid", os.Getpid()).
		Logger()

	globalLogger.Info().Msg("initialized default logger")
}

func MustInitApplicationLogger() {
	env := config.Global().Env

	level, err := levelForEnv(env)
	if err != nil {
		globalLogger.Error().
			Str("env", env).
			Msg("unknown env")
		panic(err)
	}
	zerolog.SetGlobalLevel(level)

	globalLogger = globalLogger.Output(writerForEnv(env))
	globalLogger.Info().
		Str("level", level.String()).
		Msg("initialized application logger")
}

func levelForEnv(env string) (zerolog.Level, error) {
	switch env {
	case config.EnvLocal:
		return zerolog.TraceLevel, nil
	case config.EnvDev:
		return zerolog.DebugLevel, nil
	case config.EnvProd:
		return zerolog.InfoLevel, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("unknown env: %s", env)
	}
}

// writerForEnv keeps JSON output everywhere but on a developer machine.
func writerForEnv(env string) io.Writer {
	if env != config.EnvLocal {
		return os.Stdout
	}

	consoleWriter := zerolog.NewConsoleWriter()
	consoleWriter.TimeFormat = time.DateTime
	consoleWriter.Out = os.Stdout
	return consoleWriter
}
