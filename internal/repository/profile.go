package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"pickleball-sim/internal/dupr"
	"time"

	"github.com/rs/zerolog"
)

var ErrProfileNotFound = errors.New("profile not found")

type ProfileRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewProfileRepository(sqlDB *sql.DB, logger zerolog.Logger) *ProfileRepository {
	return &ProfileRepository{
		db:     sqlDB,
		logger: logger.With().Str("repository", "profile").Logger(),
	}
}

func (r *ProfileRepository) Get(ctx context.Context, playerID string) (*dupr.Profile, error) {
	var (
		p    = dupr.NewProfile(playerID)
		last sql.NullTime
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT rating, rated_matches, last_rated_match FROM dupr_profiles WHERE player_id = ?`,
		playerID,
	).Scan(&p.Rating, &p.RatedMatches, &last)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if last.Valid {
		p.LastRatedMatch = last.Time
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT opponent_id FROM dupr_opponents WHERE player_id = ?`,
		playerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get opponents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan opponent: %w", err)
		}
		p.Opponents[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read opponents: %w", err)
	}
	return p, nil
}

// GetOrNew returns a fresh default profile for players never rated before.
func (r *ProfileRepository) GetOrNew(ctx context.Context, playerID string) (*dupr.Profile, error) {
	p, err := r.Get(ctx, playerID)
	if errors.Is(err, ErrProfileNotFound) {
		r.logger.Debug().Str("player_id", playerID).Msg("profile not found, starting at default rating")
		return dupr.NewProfile(playerID), nil
	}
	return p, err
}

// Save upserts all profiles in one transaction.
func (r *ProfileRepository) Save(ctx context.Context, profiles ...*dupr.Profile) error {
	if len(profiles) == 0 {
		return nil
	}
	err := InTx(ctx, r.db, func(tx *sql.Tx) error {
		return r.SaveTx(ctx, tx, profiles...)
	})
	if err != nil {
		return err
	}
	r.logger.Debug().Int("count", len(profiles)).Msg("profiles saved")
	return nil
}

// SaveTx is Save inside a caller-owned transaction.
func (r *ProfileRepository) SaveTx(ctx context.Context, tx *sql.Tx, profiles ...*dupr.Profile) error {
	now := time.Now().UTC()
	for _, p := range profiles {
		var last sql.NullTime
		if !p.LastRatedMatch.IsZero() {
			last = sql.NullTime{Time: p.LastRatedMatch.UTC(), Valid: true}
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO dupr_profiles (player_id, rating, rated_matches, last_rated_match, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(player_id) DO UPDATE SET
				rating = excluded.rating,
				rated_matches = excluded.rated_matches,
				last_rated_match = excluded.last_rated_match,
				updated_at = excluded.updated_at`,
			p.PlayerID, p.Rating, p.RatedMatches, last, now, now,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert profile %s: %w", p.PlayerID, err)
		}

		for _, opponent := range p.OpponentIDs() {
			_, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO dupr_opponents (player_id, opponent_id, first_seen) VALUES (?, ?, ?)`,
				p.PlayerID, opponent, now,
			)
			if err != nil {
				return fmt.Errorf("failed to insert opponent: %w", err)
			}
		}
	}
	return nil
}
