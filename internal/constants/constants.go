package constants

import "time"

const (
	RequestTimeout      = 30 * time.Second
	DatabaseTimeout     = 5 * time.Second
	TuningFetchTimeout  = 10 * time.Second
	BatchRequestTimeout = 2 * time.Minute
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
	DBBatchSize       = 100
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	DefaultSimWorkers   = 8
	DefaultMaxBatchSize = 10000
	HistoryPageLimit    = 50
	MatchPageLimit      = 50
)
