package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"pickleball-sim/internal/config"
	"pickleball-sim/internal/constants"
	"pickleball-sim/internal/domain"
	"pickleball-sim/internal/match"
	"pickleball-sim/internal/rally"
	"pickleball-sim/internal/repository"
	"pickleball-sim/internal/tuning"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// MatchSetup names the participants of a match. Exactly one of Singles and
// Doubles must be set, agreeing with Config.Type.
type MatchSetup struct {
	Config  domain.MatchConfig `json:"config"`
	Singles *match.Singles     `json:"singles,omitempty"`
	Doubles *match.Doubles     `json:"doubles,omitempty"`
}

func (m MatchSetup) participants() (match.Participants, error) {
	switch {
	case m.Singles != nil && m.Doubles != nil:
		return nil, fmt.Errorf("%w: both singles and doubles participants given", ErrInvalidRequest)
	case m.Singles != nil:
		return *m.Singles, nil
	case m.Doubles != nil:
		return *m.Doubles, nil
	}
	return nil, fmt.Errorf("%w: participants are required", ErrInvalidRequest)
}

type SimulateRequest struct {
	MatchSetup
	// Seed makes the match reproducible. Without one the system source is used.
	Seed        *uint64            `json:"seed,omitempty"`
	Consumables []match.Consumable `json:"consumables,omitempty"`
	Reputation  int                `json:"reputation,omitempty"`
	// PlayerID and OpponentID are needed to store the match; Rated also
	// updates both DUPR profiles (singles only).
	PlayerID   string `json:"player_id,omitempty"`
	OpponentID string `json:"opponent_id,omitempty"`
	Rated      bool   `json:"rated,omitempty"`
	// Events includes the per-point events in the response.
	Events bool `json:"events,omitempty"`
}

type EventEnvelope struct {
	Kind match.EventKind `json:"kind"`
	Data match.Event     `json:"data"`
}

type SimulateResponse struct {
	MatchID string              `json:"match_id"`
	Result  domain.MatchResult  `json:"result"`
	Points  []domain.MatchPoint `json:"points"`
	Events  []EventEnvelope     `json:"events,omitempty"`
	Rating  *RatingUpdate       `json:"rating,omitempty"`
}

type BatchRequest struct {
	MatchSetup
	Matches int    `json:"matches"`
	Seed    uint64 `json:"seed"`
}

type BatchSummary struct {
	Matches        int           `json:"matches"`
	Wins           int           `json:"wins"`
	WinRate        float64       `json:"win_rate"`
	AverageMargin  float64       `json:"average_margin"`
	AverageRally   float64       `json:"average_rally"`
	AveragePoints  float64       `json:"average_points"`
	AverageElapsed time.Duration `json:"average_elapsed"`
}

type SimulationService struct {
	params  tuning.Params
	matches *repository.MatchRepository
	ratings *RatingService
	loot    match.LootGenerator
	workers int
	maxN    int
	logger  zerolog.Logger
}

func NewSimulationService(cfg *config.Config, params tuning.Params, matches *repository.MatchRepository, ratings *RatingService, logger zerolog.Logger) *SimulationService {
	return &SimulationService{
		params:  params,
		matches: matches,
		ratings: ratings,
		workers: cfg.SimWorkers,
		maxN:    cfg.MaxBatchSize,
		logger:  logger.With().Str("service", "simulation").Logger(),
	}
}

// SetLootGenerator wires an item source for won matches.
func (s *SimulationService) SetLootGenerator(g match.LootGenerator) {
	s.loot = g
}

func (s *SimulationService) newEngine(setup MatchSetup, src rally.RandomSource, opts ...match.Option) (*match.Engine, error) {
	participants, err := setup.participants()
	if err != nil {
		return nil, err
	}
	opts = append([]match.Option{
		match.WithRandomSource(src),
		match.WithTuning(s.params),
		match.WithLogger(s.logger),
	}, opts...)
	if s.loot != nil {
		opts = append(opts, match.WithLootGenerator(s.loot))
	}

	engine, err := match.New(setup.Config, participants, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return engine, nil
}

func (s *SimulationService) SimulateMatch(ctx context.Context, req SimulateRequest) (*SimulateResponse, error) {
	if req.Rated && (req.PlayerID == "" || req.OpponentID == "") {
		return nil, fmt.Errorf("%w: rated matches need player and opponent ids", ErrInvalidRequest)
	}
	if req.Rated && req.Config.Type != domain.MatchSingles {
		return nil, fmt.Errorf("%w: only singles matches are rated", ErrInvalidRequest)
	}

	var src rally.RandomSource = rally.NewSystemSource()
	if req.Seed != nil {
		src = rally.NewSeededSource(*req.Seed)
	}

	engine, err := s.newEngine(req.MatchSetup, src,
		match.WithConsumables(req.Consumables...),
		match.WithReputation(req.Reputation),
	)
	if err != nil {
		return nil, err
	}

	if !req.Events {
		engine.RequestSkip()
	}
	result := engine.RunToCompletion()

	resp := &SimulateResponse{
		MatchID: uuid.New().String(),
		Points:  engine.Points(),
	}
	if req.Events {
		for _, ev := range engine.Events() {
			resp.Events = append(resp.Events, EventEnvelope{Kind: ev.Kind(), Data: ev})
		}
	}

	rec := &domain.MatchRecord{
		ID:         resp.MatchID,
		PlayerID:   req.PlayerID,
		OpponentID: req.OpponentID,
		Type:       req.Config.Type,
		Seed:       req.Seed,
		Result:     result,
	}

	switch {
	case req.Rated:
		// The match row carries the applied delta, so it is written in the
		// rating transaction.
		update, err := s.ratings.record(ctx, RecordMatchRequest{
			MatchID:     resp.MatchID,
			PlayerID:    req.PlayerID,
			OpponentID:  req.OpponentID,
			Games:       result.Games,
			PointsToWin: req.Config.PointsToWin,
		}, func(ctx context.Context, tx *sql.Tx, update *RatingUpdate) error {
			delta := update.Player.Delta
			rec.Result.DUPRDelta = &delta
			if err := s.matches.SaveTx(ctx, tx, rec); err != nil {
				return fmt.Errorf("failed to store match: %w", err)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to rate match: %w", err)
		}
		resp.Rating = update
	case req.PlayerID != "":
		ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
		defer cancel()

		if err := s.matches.Save(ctx, rec); err != nil {
			return nil, fmt.Errorf("failed to store match: %w", err)
		}
	}
	resp.Result = rec.Result

	s.logger.Info().
		Str("match_id", resp.MatchID).
		Bool("won", result.Won).
		Int("points", result.TotalPoints()).
		Bool("rated", req.Rated).
		Msg("match simulated")
	return resp, nil
}

func (s *SimulationService) GetMatch(ctx context.Context, id string) (*domain.MatchRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	rec, err := s.matches.Get(ctx, id)
	if errors.Is(err, repository.ErrMatchNotFound) {
		return nil, fmt.Errorf("%w: match %s", ErrNotFound, id)
	}
	return rec, err
}

// ListMatches returns a player's stored matches, newest first.
func (s *SimulationService) ListMatches(ctx context.Context, playerID string, limit int) ([]domain.MatchRecord, error) {
	if limit <= 0 || limit > constants.MatchPageLimit {
		limit = constants.MatchPageLimit
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	return s.matches.ListByPlayer(ctx, playerID, limit)
}

// RunBatch plays independent matches in parallel, match i seeded with
// Seed+i, so the same request always produces the same summary.
func (s *SimulationService) RunBatch(ctx context.Context, req BatchRequest) (*BatchSummary, error) {
	if req.Matches <= 0 {
		return nil, fmt.Errorf("%w: matches must be positive", ErrInvalidRequest)
	}
	if s.maxN > 0 && req.Matches > s.maxN {
		return nil, fmt.Errorf("%w: at most %d matches per batch", ErrInvalidRequest, s.maxN)
	}
	// Fail fast on a bad setup before starting workers.
	if _, err := s.newEngine(req.MatchSetup, rally.NewSeededSource(req.Seed)); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, constants.BatchRequestTimeout)
	defer cancel()

	results := make([]domain.MatchResult, req.Matches)

	g, gCtx := errgroup.WithContext(ctx)
	workers := s.workers
	if workers <= 0 {
		workers = constants.DefaultSimWorkers
	}
	g.SetLimit(workers)

	start := time.Now()
	for i := 0; i < req.Matches; i++ {
		i := i
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			engine, err := s.newEngine(req.MatchSetup, rally.NewSeededSource(req.Seed+uint64(i)))
			if err != nil {
				return err
			}
			engine.RequestSkip()
			results[i] = engine.RunToCompletion()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			s.logger.Warn().Int("matches", req.Matches).Msg("batch timed out")
		}
		return nil, fmt.Errorf("batch failed: %w", err)
	}

	summary := Summarize(results)
	s.logger.Info().
		Int("matches", summary.Matches).
		Float64("win_rate", summary.WinRate).
		Dur("took", time.Since(start)).
		Msg("batch finished")
	return summary, nil
}

// Summarize folds results into win rate and per-match averages. The margin
// is points won minus points lost from the player's side.
func Summarize(results []domain.MatchResult) *BatchSummary {
	summary := &BatchSummary{Matches: len(results)}
	if len(results) == 0 {
		return summary
	}

	var margin, points, rallyTotal float64
	var rallyCount int
	var elapsed time.Duration
	for _, r := range results {
		if r.Won {
			summary.Wins++
		}
		for _, g := range r.Games {
			margin += float64(g.Player - g.Opponent)
			points += float64(g.Points)
		}
		if r.Player.AverageRally > 0 {
			rallyTotal += r.Player.AverageRally
			rallyCount++
		}
		elapsed += r.Duration
	}

	n := float64(len(results))
	summary.WinRate = float64(summary.Wins) / n
	summary.AverageMargin = margin / n
	summary.AveragePoints = points / n
	if rallyCount > 0 {
		summary.AverageRally = rallyTotal / float64(rallyCount)
	}
	summary.AverageElapsed = elapsed / time.Duration(len(results))
	return summary
}
