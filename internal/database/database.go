package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"pickleball-sim/internal/config"
	"pickleball-sim/internal/constants"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

const memoryPath = ":memory:"

type pragma struct {
	name, value string
	// fileOnly pragmas are meaningless for an in-memory database.
	fileOnly bool
}

var ledgerPragmas = []pragma{
	{name: "journal_mode", value: "WAL", fileOnly: true},
	{name: "synchronous", value: "NORMAL", fileOnly: true},
	{name: "mmap_size", value: "268435456", fileOnly: true},
	{name: "busy_timeout", value: "5000"},
	{name: "foreign_keys", value: "ON"},
	{name: "cache_size", value: "-16000"},
	{name: "temp_store", value: "MEMORY"},
}

// New opens the rating ledger and brings its schema up to date.
func New(cfg *config.Config, logger zerolog.Logger) (*sql.DB, error) {
	return Open(cfg.DBPath, logger)
}

// Open is New without the config indirection; tests use ":memory:".
func Open(path string, logger zerolog.Logger) (*sql.DB, error) {
	logger = logger.With().Str("component", "database").Logger()
	inMemory := path == memoryPath

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger %s: %w", path, err)
	}

	if inMemory {
		// every connection to :memory: is its own database
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(constants.DBMaxOpenConns)
		db.SetMaxIdleConns(constants.DBMaxIdleConns)
		db.SetConnMaxLifetime(constants.DBConnMaxLifetime)
		db.SetConnMaxIdleTime(constants.DBMaxIdleTime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.DatabaseTimeout)
	defer cancel()

	if err := applyPragmas(ctx, db, inMemory, logger); err != nil {
		db.Close()
		return nil, err
	}
	version, err := migrate(ctx, db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	logger.Info().
		Str("path", path).
		Int64("schema_version", version).
		Msg("rating ledger ready")
	return db, nil
}

func applyPragmas(ctx context.Context, db *sql.DB, inMemory bool, logger zerolog.Logger) error {
	for _, p := range ledgerPragmas {
		if inMemory && p.fileOnly {
			continue
		}
		if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA %s = %s", p.name, p.value)); err != nil {
			return fmt.Errorf("failed to set PRAGMA %s: %w", p.name, err)
		}
		logger.Debug().Str("pragma", p.name).Str("value", p.value).Msg("pragma set")
	}
	return nil
}

// migrate uses a goose provider rather than the package-level goose state,
// so several ledgers can be opened side by side.
func migrate(ctx context.Context, db *sql.DB, logger zerolog.Logger) (int64, error) {
	fsys, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return 0, fmt.Errorf("failed to load migrations: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return 0, fmt.Errorf("failed to create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to run migrations: %w", err)
	}
	for _, r := range results {
		logger.Debug().
			Int64("version", r.Source.Version).
			Dur("took", r.Duration).
			Msg("migration applied")
	}

	version, err := provider.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}
