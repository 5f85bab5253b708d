package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"pickleball-sim/internal/constants"
	"pickleball-sim/internal/domain"
	"pickleball-sim/internal/dupr"
	"pickleball-sim/internal/repository"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrNotFound       = errors.New("not found")
)

type RecordMatchRequest struct {
	MatchID     string             `json:"match_id"`
	PlayerID    string             `json:"player_id"`
	OpponentID  string             `json:"opponent_id"`
	Games       []domain.GameScore `json:"games"`
	PointsToWin int                `json:"points_to_win"`
	PlayedAt    time.Time          `json:"played_at"`
}

type RatingChange struct {
	PlayerID    string  `json:"player_id"`
	Before      float64 `json:"before"`
	After       float64 `json:"after"`
	Delta       float64 `json:"delta"`
	KFactor     float64 `json:"k_factor"`
	Reliability float64 `json:"reliability"`
}

type RatingUpdate struct {
	MatchID  string       `json:"match_id"`
	Unrated  bool         `json:"unrated"`
	Player   RatingChange `json:"player"`
	Opponent RatingChange `json:"opponent"`
}

type ProfileView struct {
	PlayerID        string     `json:"player_id"`
	Rating          float64    `json:"rating"`
	RatedMatches    int        `json:"rated_matches"`
	UniqueOpponents int        `json:"unique_opponents"`
	Reliability     float64    `json:"reliability"`
	KFactor         float64    `json:"k_factor"`
	LastRatedMatch  *time.Time `json:"last_rated_match,omitempty"`
}

// RatingService applies DUPR updates to stored profiles. Updates are
// read-modify-write, so they are serialized.
type RatingService struct {
	db       *sql.DB
	profiles *repository.ProfileRepository
	history  *repository.RatingHistoryRepository
	logger   zerolog.Logger
	now      func() time.Time

	mu sync.Mutex
}

func NewRatingService(db *sql.DB, profiles *repository.ProfileRepository, history *repository.RatingHistoryRepository, logger zerolog.Logger) *RatingService {
	return &RatingService{
		db:       db,
		profiles: profiles,
		history:  history,
		logger:   logger.With().Str("service", "rating").Logger(),
		now:      time.Now,
	}
}

// RecordMatch rates a finished match. Recording the same match id again
// returns the stored update without touching either profile.
func (s *RatingService) RecordMatch(ctx context.Context, req RecordMatchRequest) (*RatingUpdate, error) {
	return s.record(ctx, req, nil)
}

// ledgerWrite runs in the same transaction as the rating update.
type ledgerWrite func(ctx context.Context, tx *sql.Tx, update *RatingUpdate) error

func (s *RatingService) record(ctx context.Context, req RecordMatchRequest, also ledgerWrite) (*RatingUpdate, error) {
	if req.PlayerID == "" || req.OpponentID == "" {
		return nil, fmt.Errorf("%w: player and opponent ids are required", ErrInvalidRequest)
	}
	if req.PlayerID == req.OpponentID {
		return nil, fmt.Errorf("%w: a player cannot be rated against themselves", ErrInvalidRequest)
	}
	if req.MatchID == "" {
		return nil, fmt.Errorf("%w: match id is required", ErrInvalidRequest)
	}
	if req.PointsToWin <= 0 {
		req.PointsToWin = domain.DefaultMatchConfig().PointsToWin
	}
	playedAt := req.PlayedAt
	if playedAt.IsZero() {
		playedAt = s.now()
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	prior, err := s.history.GetByMatch(ctx, req.MatchID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up match %s: %w", req.MatchID, err)
	}
	if len(prior) > 0 {
		update, err := storedUpdate(req, prior)
		if err != nil {
			return nil, err
		}
		s.logger.Info().Str("match_id", req.MatchID).Msg("match already rated, returning stored update")
		return update, nil
	}

	player, err := s.profiles.GetOrNew(ctx, req.PlayerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load player profile: %w", err)
	}
	opponent, err := s.profiles.GetOrNew(ctx, req.OpponentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load opponent profile: %w", err)
	}

	update := &RatingUpdate{
		MatchID: req.MatchID,
		Unrated: dupr.ShouldAutoUnrate(player.Rating, opponent.Rating),
	}

	mirrored := make([]domain.GameScore, len(req.Games))
	for i, g := range req.Games {
		mirrored[i] = domain.GameScore{Player: g.Opponent, Opponent: g.Player, Points: g.Points}
	}

	// Both deltas come from the pre-match ratings.
	update.Player = s.change(player, opponent, req.Games, req.PointsToWin, playedAt, update.Unrated)
	update.Opponent = s.change(opponent, player, mirrored, req.PointsToWin, playedAt, update.Unrated)

	if !update.Unrated {
		player.RecordRatedMatch(opponent.PlayerID, update.Player.Delta, playedAt)
		opponent.RecordRatedMatch(player.PlayerID, update.Opponent.Delta, playedAt)
		// Deltas are reported as applied, after clamping.
		update.Player.After, update.Player.Delta = player.Rating, player.Rating-update.Player.Before
		update.Opponent.After, update.Opponent.Delta = opponent.Rating, opponent.Rating-update.Opponent.Before
	}

	records := []domain.RatingHistory{
		historyRecord(req, update.Player, req.OpponentID, update.Unrated, playedAt),
		historyRecord(req, update.Opponent, req.PlayerID, update.Unrated, playedAt),
	}

	err = repository.InTx(ctx, s.db, func(tx *sql.Tx) error {
		// Unrated matches still register first-time players so their
		// history rows have a profile to point at.
		if err := s.profiles.SaveTx(ctx, tx, player, opponent); err != nil {
			return fmt.Errorf("failed to save profiles: %w", err)
		}
		if err := s.history.UpsertBatchTx(ctx, tx, records); err != nil {
			return fmt.Errorf("failed to save rating history: %w", err)
		}
		if also != nil {
			return also(ctx, tx, update)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("match_id", req.MatchID).
		Str("player_id", req.PlayerID).
		Str("opponent_id", req.OpponentID).
		Bool("unrated", update.Unrated).
		Float64("player_delta", update.Player.Delta).
		Float64("opponent_delta", update.Opponent.Delta).
		Msg("match rated")
	return update, nil
}

// storedUpdate rebuilds the update written the first time a match was
// recorded. The replay must name the same two players.
func storedUpdate(req RecordMatchRequest, prior []domain.RatingHistory) (*RatingUpdate, error) {
	byPlayer := make(map[string]domain.RatingHistory, len(prior))
	for _, h := range prior {
		byPlayer[h.PlayerID] = h
	}
	player, okPlayer := byPlayer[req.PlayerID]
	opponent, okOpponent := byPlayer[req.OpponentID]
	if len(prior) != 2 || !okPlayer || !okOpponent {
		return nil, fmt.Errorf("%w: match %s was recorded for other players", ErrInvalidRequest, req.MatchID)
	}
	return &RatingUpdate{
		MatchID:  req.MatchID,
		Unrated:  player.Unrated,
		Player:   storedChange(player),
		Opponent: storedChange(opponent),
	}, nil
}

func storedChange(h domain.RatingHistory) RatingChange {
	return RatingChange{
		PlayerID:    h.PlayerID,
		Before:      h.RatingBefore,
		After:       h.RatingAfter,
		Delta:       h.Delta,
		KFactor:     h.KFactor,
		Reliability: h.Reliability,
	}
}

func (s *RatingService) change(p, opp *dupr.Profile, games []domain.GameScore, pointsToWin int, at time.Time, unrated bool) RatingChange {
	reliability := dupr.Reliability(p, at)
	k := dupr.KFactor(reliability)
	c := RatingChange{
		PlayerID:    p.PlayerID,
		Before:      p.Rating,
		After:       p.Rating,
		KFactor:     k,
		Reliability: reliability,
	}
	if !unrated {
		c.Delta = dupr.MatchRatingChange(p.Rating, opp.Rating, games, pointsToWin, k)
	}
	return c
}

func historyRecord(req RecordMatchRequest, c RatingChange, opponentID string, unrated bool, at time.Time) domain.RatingHistory {
	return domain.RatingHistory{
		MatchID:      req.MatchID,
		PlayerID:     c.PlayerID,
		OpponentID:   opponentID,
		RatingBefore: c.Before,
		RatingAfter:  c.After,
		Delta:        c.After - c.Before,
		KFactor:      c.KFactor,
		Reliability:  c.Reliability,
		Unrated:      unrated,
		RecordedAt:   at,
	}
}

func (s *RatingService) GetProfile(ctx context.Context, playerID string) (*ProfileView, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	p, err := s.profiles.Get(ctx, playerID)
	if errors.Is(err, repository.ErrProfileNotFound) {
		return nil, fmt.Errorf("%w: profile %s", ErrNotFound, playerID)
	}
	if err != nil {
		return nil, err
	}

	reliability := dupr.Reliability(p, s.now())
	view := &ProfileView{
		PlayerID:        p.PlayerID,
		Rating:          p.Rating,
		RatedMatches:    p.RatedMatches,
		UniqueOpponents: p.UniqueOpponents(),
		Reliability:     reliability,
		KFactor:         dupr.KFactor(reliability),
	}
	if !p.LastRatedMatch.IsZero() {
		last := p.LastRatedMatch
		view.LastRatedMatch = &last
	}
	return view, nil
}

func (s *RatingService) GetHistory(ctx context.Context, playerID string, limit int) ([]domain.RatingHistory, error) {
	if limit <= 0 || limit > constants.HistoryPageLimit {
		limit = constants.HistoryPageLimit
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	return s.history.GetByPlayer(ctx, playerID, limit)
}
