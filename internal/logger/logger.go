package logger

import (
	"io"
	"os"
	"pickleball-sim/internal/config"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// New builds the process logger at the configured level.
func New(cfg *config.Config) zerolog.Logger {
	return SetLevel(os.Stdout, cfg.LogLevel)
}

func SetLevel(w io.Writer, level zerolog.Level) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(w).
		With().
		Timestamp().
		Caller().
		Logger()

	return logger.Level(level)
}

var Module = fx.Provide(New)
