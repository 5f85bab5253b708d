package repository

import (
	"context"
	"database/sql"
	"pickleball-sim/internal/database"
	"pickleball-sim/internal/domain"
	"pickleball-sim/internal/dupr"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestProfileRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewProfileRepository(openTestDB(t), zerolog.Nop())

	_, err := repo.Get(ctx, "ana")
	assert.ErrorIs(t, err, ErrProfileNotFound)

	fresh, err := repo.GetOrNew(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, dupr.NewProfile("ana"), fresh)

	playedAt := time.Date(2025, 5, 4, 18, 30, 0, 0, time.UTC)
	fresh.RecordRatedMatch("bo", 0.12, playedAt)
	fresh.RecordRatedMatch("cy", -0.03, playedAt)
	require.NoError(t, repo.Save(ctx, fresh, dupr.NewProfile("bo")))

	got, err := repo.Get(ctx, "ana")
	require.NoError(t, err)
	assert.InDelta(t, fresh.Rating, got.Rating, 1e-12)
	assert.Equal(t, 2, got.RatedMatches)
	assert.Equal(t, []string{"bo", "cy"}, got.OpponentIDs())
	assert.True(t, playedAt.Equal(got.LastRatedMatch))

	bo, err := repo.Get(ctx, "bo")
	require.NoError(t, err)
	assert.True(t, bo.LastRatedMatch.IsZero())
	assert.Zero(t, bo.UniqueOpponents())

	// saving again updates in place and keeps the opponent set
	got.RecordRatedMatch("bo", 0.05, playedAt.Add(time.Hour))
	require.NoError(t, repo.Save(ctx, got))
	again, err := repo.Get(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, 3, again.RatedMatches)
	assert.Equal(t, 2, again.UniqueOpponents())

	assert.NoError(t, repo.Save(ctx))
}

func TestRatingHistoryRepository(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	profiles := NewProfileRepository(db, zerolog.Nop())
	repo := NewRatingHistoryRepository(db, zerolog.Nop())
	require.NoError(t, profiles.Save(ctx, dupr.NewProfile("ana"), dupr.NewProfile("bo")))

	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	records := []domain.RatingHistory{
		{MatchID: "m1", PlayerID: "ana", OpponentID: "bo", RatingBefore: 3.5, RatingAfter: 3.56, Delta: 0.06, KFactor: 64, RecordedAt: base},
		{MatchID: "m1", PlayerID: "bo", OpponentID: "ana", RatingBefore: 3.5, RatingAfter: 3.44, Delta: -0.06, KFactor: 64, RecordedAt: base},
		{ID: "fixed-id", MatchID: "m2", PlayerID: "ana", OpponentID: "bo", RatingBefore: 3.56, RatingAfter: 3.56, Unrated: true, KFactor: 64, Reliability: 0.2, RecordedAt: base.Add(time.Hour)},
	}
	require.NoError(t, repo.UpsertBatch(ctx, records))
	assert.NotEmpty(t, records[0].ID, "generated ids are written back")
	assert.NotEqual(t, records[0].ID, records[1].ID)
	assert.Equal(t, "fixed-id", records[2].ID)

	history, err := repo.GetByPlayer(ctx, "ana", 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "m2", history[0].MatchID, "newest first")
	assert.True(t, history[0].Unrated)
	assert.Equal(t, 0.2, history[0].Reliability)
	assert.Equal(t, "m1", history[1].MatchID)
	assert.Equal(t, 0.06, history[1].Delta)
	assert.True(t, base.Equal(history[1].RecordedAt))

	// same match and player replaces the row
	fix := []domain.RatingHistory{{MatchID: "m1", PlayerID: "ana", OpponentID: "bo", RatingBefore: 3.5, RatingAfter: 3.58, Delta: 0.08, KFactor: 64, RecordedAt: base}}
	require.NoError(t, repo.UpsertBatch(ctx, fix))
	history, err = repo.GetByPlayer(ctx, "ana", 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 0.08, history[1].Delta)

	limited, err := repo.GetByPlayer(ctx, "ana", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	none, err := repo.GetByPlayer(ctx, "nobody", 10)
	require.NoError(t, err)
	assert.Empty(t, none)

	byMatch, err := repo.GetByMatch(ctx, "m1")
	require.NoError(t, err)
	require.Len(t, byMatch, 2)
	assert.Equal(t, "ana", byMatch[0].PlayerID)
	assert.Equal(t, "bo", byMatch[1].PlayerID)

	assert.NoError(t, repo.UpsertBatch(ctx, nil))
}

func TestInTx_RollsBackEveryWrite(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	profiles := NewProfileRepository(db, zerolog.Nop())
	history := NewRatingHistoryRepository(db, zerolog.Nop())

	err := InTx(ctx, db, func(tx *sql.Tx) error {
		if err := profiles.SaveTx(ctx, tx, dupr.NewProfile("ana")); err != nil {
			return err
		}
		// bo has no profile, so the history write fails
		return history.UpsertBatchTx(ctx, tx, []domain.RatingHistory{
			{MatchID: "m1", PlayerID: "bo", OpponentID: "ana", RecordedAt: time.Now()},
		})
	})
	require.Error(t, err)

	_, err = profiles.Get(ctx, "ana")
	assert.ErrorIs(t, err, ErrProfileNotFound)

	require.NoError(t, InTx(ctx, db, func(tx *sql.Tx) error {
		return profiles.SaveTx(ctx, tx, dupr.NewProfile("ana"))
	}))
	_, err = profiles.Get(ctx, "ana")
	assert.NoError(t, err)
}

func TestRatingHistoryRepository_UnknownPlayer(t *testing.T) {
	repo := NewRatingHistoryRepository(openTestDB(t), zerolog.Nop())
	err := repo.UpsertBatch(context.Background(), []domain.RatingHistory{
		{MatchID: "m1", PlayerID: "ghost", OpponentID: "bo", RecordedAt: time.Now()},
	})
	assert.Error(t, err, "history rows need a profile")
}

func TestMatchRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMatchRepository(openTestDB(t), zerolog.Nop())

	_, err := repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrMatchNotFound)

	seed := uint64(1 << 40)
	delta := 0.042
	first := &domain.MatchRecord{
		ID:         "match-1",
		PlayerID:   "ana",
		OpponentID: "bo",
		Type:       domain.MatchSingles,
		Seed:       &seed,
		Result: domain.MatchResult{
			Won:         true,
			PlayerGames: 1,
			Games:       []domain.GameScore{{Player: 11, Opponent: 7, Points: 18}},
			Player:      domain.SideStats{Aces: 2, Winners: 5, LongestStreak: 4, FinalEnergy: 81.5},
			XP:          100,
			Coins:       10,
			Loot:        &domain.LootRequest{PlayerLevel: 3, OpponentName: "bo", Wager: 10},
			Duration:    9 * time.Minute,
			DUPRDelta:   &delta,
		},
		CreatedAt: time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC),
	}
	second := &domain.MatchRecord{
		ID:         "match-2",
		PlayerID:   "ana",
		OpponentID: "cy",
		Type:       domain.MatchSingles,
		Result:     domain.MatchResult{Resigned: true, Games: []domain.GameScore{}},
		CreatedAt:  first.CreatedAt.Add(time.Hour),
	}
	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, second))

	got, err := repo.Get(ctx, "match-1")
	require.NoError(t, err)
	assert.Equal(t, first.Result, got.Result)
	require.NotNil(t, got.Seed)
	assert.Equal(t, seed, *got.Seed)
	assert.Equal(t, domain.MatchSingles, got.Type)
	assert.True(t, first.CreatedAt.Equal(got.CreatedAt))

	list, err := repo.ListByPlayer(ctx, "ana", 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "match-2", list[0].ID)
	assert.Nil(t, list[0].Seed)
	assert.True(t, list[0].Result.Resigned)

	none, err := repo.ListByPlayer(ctx, "bo", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMatchRepository_SaveStampsCreatedAt(t *testing.T) {
	repo := NewMatchRepository(openTestDB(t), zerolog.Nop())
	rec := &domain.MatchRecord{ID: "m", PlayerID: "ana", OpponentID: "bo", Type: domain.MatchSingles}

	before := time.Now()
	require.NoError(t, repo.Save(context.Background(), rec))
	assert.False(t, rec.CreatedAt.Before(before))
}
