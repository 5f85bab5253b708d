package repository

import (
	"context"
	"database/sql"
	"fmt"
	"pickleball-sim/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type RatingHistoryRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewRatingHistoryRepository(sqlDB *sql.DB, logger zerolog.Logger) *RatingHistoryRepository {
	return &RatingHistoryRepository{
		db:     sqlDB,
		logger: logger.With().Str("repository", "rating_history").Logger(),
	}
}

// UpsertBatch writes records keyed by (match, player). Records without an ID
// get a nanoid; the IDs used are written back into the slice.
func (r *RatingHistoryRepository) UpsertBatch(ctx context.Context, records []domain.RatingHistory) error {
	if len(records) == 0 {
		return nil
	}
	return InTx(ctx, r.db, func(tx *sql.Tx) error {
		return r.UpsertBatchTx(ctx, tx, records)
	})
}

// UpsertBatchTx is UpsertBatch inside a caller-owned transaction.
func (r *RatingHistoryRepository) UpsertBatchTx(ctx context.Context, tx *sql.Tx, records []domain.RatingHistory) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO rating_history (
			id, match_id, player_id, opponent_id, rating_before, rating_after,
			delta, k_factor, reliability, unrated, recorded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(match_id, player_id) DO UPDATE SET
			opponent_id = excluded.opponent_id,
			rating_before = excluded.rating_before,
			rating_after = excluded.rating_after,
			delta = excluded.delta,
			k_factor = excluded.k_factor,
			reliability = excluded.reliability,
			unrated = excluded.unrated,
			recorded_at = excluded.recorded_at`)
	if err != nil {
		return fmt.Errorf("failed to prepare rating history upsert: %w", err)
	}
	defer stmt.Close()

	for i := range records {
		record := &records[i]
		if record.ID == "" {
			record.ID, err = gonanoid.New()
			if err != nil {
				return fmt.Errorf("failed to generate nanoid: %w", err)
			}
		}

		_, err := stmt.ExecContext(ctx,
			record.ID, record.MatchID, record.PlayerID, record.OpponentID,
			record.RatingBefore, record.RatingAfter, record.Delta,
			record.KFactor, record.Reliability, record.Unrated, record.RecordedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert rating history: %w", err)
		}
	}
	r.logger.Debug().Int("count", len(records)).Msg("rating history written")
	return nil
}

const historyColumns = `id, match_id, player_id, opponent_id, rating_before, rating_after,
		delta, k_factor, reliability, unrated, recorded_at`

// GetByPlayer returns the newest records first.
func (r *RatingHistoryRepository) GetByPlayer(ctx context.Context, playerID string, limit int) ([]domain.RatingHistory, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+historyColumns+`
		FROM rating_history
		WHERE player_id = ?
		ORDER BY recorded_at DESC, id
		LIMIT ?`,
		playerID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query rating history: %w", err)
	}
	return scanHistory(rows)
}

// GetByMatch returns every record written for a match, one per rated player.
func (r *RatingHistoryRepository) GetByMatch(ctx context.Context, matchID string) ([]domain.RatingHistory, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+historyColumns+`
		FROM rating_history
		WHERE match_id = ?
		ORDER BY player_id`,
		matchID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query rating history: %w", err)
	}
	return scanHistory(rows)
}

func scanHistory(rows *sql.Rows) ([]domain.RatingHistory, error) {
	defer rows.Close()

	result := []domain.RatingHistory{}
	for rows.Next() {
		var h domain.RatingHistory
		err := rows.Scan(
			&h.ID, &h.MatchID, &h.PlayerID, &h.OpponentID, &h.RatingBefore, &h.RatingAfter,
			&h.Delta, &h.KFactor, &h.Reliability, &h.Unrated, &h.RecordedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rating history: %w", err)
		}
		result = append(result, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rating history: %w", err)
	}
	return result, nil
}
