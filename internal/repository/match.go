package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"pickleball-sim/internal/domain"
	"time"

	"github.com/rs/zerolog"
)

var ErrMatchNotFound = errors.New("match not found")

type MatchRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewMatchRepository(sqlDB *sql.DB, logger zerolog.Logger) *MatchRepository {
	return &MatchRepository{
		db:     sqlDB,
		logger: logger.With().Str("repository", "match").Logger(),
	}
}

// Save stores the summary columns plus the full result document.
func (r *MatchRepository) Save(ctx context.Context, rec *domain.MatchRecord) error {
	return r.save(ctx, r.db, rec)
}

// SaveTx is Save inside a caller-owned transaction.
func (r *MatchRepository) SaveTx(ctx context.Context, tx *sql.Tx, rec *domain.MatchRecord) error {
	return r.save(ctx, tx, rec)
}

func (r *MatchRepository) save(ctx context.Context, db execer, rec *domain.MatchRecord) error {
	doc, err := json.Marshal(rec.Result)
	if err != nil {
		return fmt.Errorf("failed to encode match result: %w", err)
	}

	var seed sql.NullInt64
	if rec.Seed != nil {
		seed = sql.NullInt64{Int64: int64(*rec.Seed), Valid: true}
	}
	var delta sql.NullFloat64
	if rec.Result.DUPRDelta != nil {
		delta = sql.NullFloat64{Float64: *rec.Result.DUPRDelta, Valid: true}
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO match_results (
			id, player_id, opponent_id, match_type, won, resigned, player_games, opponent_games,
			total_points, xp, coins, duration_ms, dupr_delta, seed, result_json, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			dupr_delta = excluded.dupr_delta,
			result_json = excluded.result_json`,
		rec.ID, rec.PlayerID, rec.OpponentID, string(rec.Type),
		rec.Result.Won, rec.Result.Resigned, rec.Result.PlayerGames, rec.Result.OpponentGames,
		rec.Result.TotalPoints(), rec.Result.XP, rec.Result.Coins, rec.Result.Duration.Milliseconds(),
		delta, seed, string(doc), rec.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save match %s: %w", rec.ID, err)
	}
	return nil
}

func (r *MatchRepository) Get(ctx context.Context, id string) (*domain.MatchRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, player_id, opponent_id, match_type, seed, result_json, created_at
		FROM match_results WHERE id = ?`, id)
	rec, err := scanMatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMatchNotFound
	}
	return rec, err
}

func (r *MatchRepository) ListByPlayer(ctx context.Context, playerID string, limit int) ([]domain.MatchRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, player_id, opponent_id, match_type, seed, result_json, created_at
		FROM match_results
		WHERE player_id = ?
		ORDER BY created_at DESC
		LIMIT ?`,
		playerID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	result := []domain.MatchRecord{}
	for rows.Next() {
		rec, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read matches: %w", err)
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMatch(s scanner) (*domain.MatchRecord, error) {
	var (
		rec       domain.MatchRecord
		matchType string
		seed      sql.NullInt64
		doc       string
	)
	if err := s.Scan(&rec.ID, &rec.PlayerID, &rec.OpponentID, &matchType, &seed, &doc, &rec.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan match: %w", err)
	}
	rec.Type = domain.MatchType(matchType)
	if seed.Valid {
		v := uint64(seed.Int64)
		rec.Seed = &v
	}
	if err := json.Unmarshal([]byte(doc), &rec.Result); err != nil {
		return nil, fmt.Errorf("failed to decode match result: %w", err)
	}
	return &rec, nil
}
