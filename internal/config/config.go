package config

import (
	"fmt"
	"os"
	"pickleball-sim/internal/constants"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	DBPath       string
	ServerPort   string
	LogLevel     zerolog.Level
	TuningSource string
	SimWorkers   int
	MaxBatchSize int

	dotenv bool
}

// Load reads the environment, after a .env file when one exists. It runs
// before the logger is built, so it reports nothing itself; Log does.
func Load() (*Config, error) {
	dotenv := godotenv.Load() == nil

	workers, err := getEnvInt("SIM_WORKERS", constants.DefaultSimWorkers)
	if err != nil {
		return nil, err
	}
	maxBatch, err := getEnvInt("SIM_MAX_BATCH", constants.DefaultMaxBatchSize)
	if err != nil {
		return nil, err
	}

	rawLevel := getEnv("LOG_LEVEL", "info")
	level, err := zerolog.ParseLevel(rawLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", rawLevel, err)
	}

	return &Config{
		DBPath:       getEnv("DB_PATH", "pickleball.db"),
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		LogLevel:     level,
		TuningSource: getEnv("TUNING_SOURCE", ""),
		SimWorkers:   workers,
		MaxBatchSize: maxBatch,
		dotenv:       dotenv,
	}, nil
}

func Log(cfg *Config, logger zerolog.Logger) {
	if !cfg.dotenv {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}
	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Stringer("log_level", cfg.LogLevel).
		Str("tuning_source", cfg.TuningSource).
		Int("sim_workers", cfg.SimWorkers).
		Int("max_batch_size", cfg.MaxBatchSize).
		Msg("configuration loaded")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, raw)
	}
	return v, nil
}

var Module = fx.Options(
	fx.Provide(Load),
	fx.Invoke(Log),
)
