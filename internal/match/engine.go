// Package match runs a full match: points into games, games into a match,
// with in-match actions and an event log alongside.
package match

import (
	"fmt"
	"pickleball-sim/internal/constants"
	"pickleball-sim/internal/domain"
	"pickleball-sim/internal/fatigue"
	"pickleball-sim/internal/momentum"
	"pickleball-sim/internal/point"
	"pickleball-sim/internal/rally"
	"pickleball-sim/internal/stats"
	"pickleball-sim/internal/tuning"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type phase int

const (
	phaseIdle phase = iota
	phasePlaying
	phaseFinished
)

type options struct {
	src         rally.RandomSource
	params      tuning.Params
	consumables []Consumable
	reputation  int
	loot        LootGenerator
	scorer      ScorerFactory
	logger      zerolog.Logger
}

type Option func(*options)

func WithRandomSource(src rally.RandomSource) Option {
	return func(o *options) { o.src = src }
}

func WithTuning(params tuning.Params) Option {
	return func(o *options) { o.params = params }
}

func WithConsumables(items ...Consumable) Option {
	return func(o *options) { o.consumables = append(o.consumables, items...) }
}

func WithReputation(reputation int) Option {
	return func(o *options) { o.reputation = reputation }
}

func WithLootGenerator(g LootGenerator) Option {
	return func(o *options) { o.loot = g }
}

func WithDoublesScorer(f ScorerFactory) Option {
	return func(o *options) { o.scorer = f }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// Engine owns all mutable state of one match. Every exported method takes the
// engine lock, so Step and the actions never interleave.
type Engine struct {
	mu sync.Mutex

	cfg      domain.MatchConfig
	doubles  bool
	sides    [2]point.Team
	names    [2]string
	resolver *point.Resolver
	src      rally.RandomSource
	momentum *momentum.Tracker
	logger   zerolog.Logger

	newScorer ScorerFactory
	scorer    DoublesScorer
	loot      LootGenerator

	phase           phase
	game            int
	gameFirstServer domain.Side
	score           [2]int
	gamePoints      int
	gamesWon        [2]int
	games           []domain.GameScore
	points          []domain.MatchPoint
	levels          [2][]fatigue.Level

	timeoutUsed     bool
	hookUsed        bool
	consumablesUsed int
	inventory       []Consumable
	xpMultiplier    float64
	reputation      int
	reputationDelta int

	skipRequested   bool
	resignRequested bool

	elapsed time.Duration
	events  eventLog
	result  *domain.MatchResult
}

func New(cfg domain.MatchConfig, participants Participants, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid match config: %w", err)
	}
	if err := validateParticipants(cfg, participants); err != nil {
		return nil, fmt.Errorf("invalid participants: %w", err)
	}

	o := options{
		params: tuning.Default(),
		scorer: NewSideOutScorer,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.src == nil {
		o.src = rally.NewSystemSource()
	}
	if err := o.params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tuning: %w", err)
	}

	e := &Engine{
		cfg:          cfg,
		doubles:      cfg.Type == domain.MatchDoubles,
		sides:        buildTeams(participants, o.params.NPCEquipmentScale),
		resolver:     point.NewResolver(rally.NewSimulator(o.src, o.params)),
		src:          o.src,
		momentum:     momentum.NewTracker(),
		logger:       o.logger.With().Str("component", "match").Logger(),
		newScorer:    o.scorer,
		loot:         o.loot,
		inventory:    append([]Consumable(nil), o.consumables...),
		xpMultiplier: 1,
		reputation:   o.reputation,
	}
	for side := range e.sides {
		e.names[side] = teamName(e.sides[side])
		for _, m := range e.sides[side].Members {
			e.levels[side] = append(e.levels[side], m.Fatigue.Level())
		}
	}
	return e, nil
}

// Start emits the opening events. Step calls it on first use; calling it
// again is a no-op.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.start()
}

func (e *Engine) start() {
	if e.phase != phaseIdle {
		return
	}
	e.phase = phasePlaying
	e.emit(MatchStart{
		PlayerName:   e.names[domain.SidePlayer],
		OpponentName: e.names[domain.SideOpponent],
		Config:       e.cfg,
	})
	e.logger.Debug().
		Str("player", e.names[domain.SidePlayer]).
		Str("opponent", e.names[domain.SideOpponent]).
		Str("type", string(e.cfg.Type)).
		Msg("Match started")
	e.startGame(1)
}

// Step plays one point. It reports whether the match is still running
// afterwards. Pending resign requests are honored before the point.
func (e *Engine) Step() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.phase {
	case phaseFinished:
		return false
	case phaseIdle:
		e.start()
	}

	if e.resignRequested {
		e.finish(true)
		return false
	}

	e.playPoint()
	e.closeGameIfOver()
	return e.phase != phaseFinished
}

func (e *Engine) RunToCompletion() domain.MatchResult {
	for e.Step() {
	}
	result, _ := e.Result()
	return result
}

// Result is available once the match has finished.
func (e *Engine) Result() (domain.MatchResult, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.result == nil {
		return domain.MatchResult{}, false
	}
	return *e.result, true
}

func (e *Engine) Finished() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase == phaseFinished
}

// Points returns a copy of the point log so far.
func (e *Engine) Points() []domain.MatchPoint {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]domain.MatchPoint(nil), e.points...)
}

// Events may be called from any goroutine while the match runs.
func (e *Engine) Events() []Event {
	return e.events.since(0)
}

func (e *Engine) EventsSince(n int) []Event {
	return e.events.since(n)
}

func (e *Engine) EventCount() int {
	return e.events.len()
}

func (e *Engine) emit(ev Event) {
	e.events.append(ev)
}

// detailed reports whether per-point events should be written.
func (e *Engine) detailed() bool {
	return !e.skipRequested
}

func (e *Engine) human() *point.Participant {
	return e.sides[domain.SidePlayer].Members[0]
}

func (e *Engine) servingSide() domain.Side {
	if e.doubles {
		return e.scorer.ServingTeam()
	}
	if (e.gamePoints/constants.ServeRotationInterval)%2 == 0 {
		return e.gameFirstServer
	}
	return e.gameFirstServer.Other()
}

func (e *Engine) serverName(side domain.Side, number int) string {
	members := e.sides[side].Members
	if number >= 1 && number <= len(members) {
		return members[number-1].Name
	}
	return members[0].Name
}

func (e *Engine) startGame(n int) {
	e.game = n
	e.score = [2]int{}
	e.gamePoints = 0
	e.timeoutUsed = false
	e.hookUsed = false
	e.momentum.ResetForNewGame()

	e.gameFirstServer = domain.SidePlayer
	if n%2 == 0 {
		e.gameFirstServer = domain.SideOpponent
	}

	number := 1
	if e.doubles {
		e.scorer = e.newScorer(e.cfg, e.gameFirstServer)
		number = e.scorer.ServerNumber()
	}
	e.emit(GameStart{
		Game:        n,
		FirstServer: e.gameFirstServer,
		ServerName:  e.serverName(e.gameFirstServer, number),
	})
}

func (e *Engine) playPoint() {
	server := e.servingSide()
	out := e.resolver.Resolve(point.Input{
		Server:   server,
		Sides:    e.sides,
		Momentum: e.momentum,
		Clutch:   IsClutch(e.cfg, e.score[domain.SidePlayer], e.score[domain.SideOpponent]),
		Doubles:  e.doubles,
	})

	shots := time.Duration(out.Rally.RallyLength*constants.SecondsPerShot) * time.Second
	e.elapsed += shots + constants.SecondsBetweenPoints*time.Second

	e.recordPoint(out.Rally.Winner, out.Rally.Type, out.Rally.RallyLength, server)
	e.syncFatigueLevels()
}

// recordPoint appends to the log and advances score, serve and momentum.
func (e *Engine) recordPoint(winner domain.Side, typ domain.PointType, rallyLength int, server domain.Side) {
	e.gamePoints++

	mp := domain.MatchPoint{
		Game:        e.game,
		Number:      len(e.points) + 1,
		Winner:      winner,
		Type:        typ,
		RallyLength: rallyLength,
		Server:      server,
	}

	var sideOut *SideOutEvent
	var display string
	if e.doubles {
		mp.ServerNumber = e.scorer.ServerNumber()
		outcome := e.scorer.RecordPoint(winner == server)
		e.score = [2]int{e.scorer.PlayerScore(), e.scorer.OpponentScore()}
		if outcome.Kind == SideOut {
			mp.SideOut = true
			serving := e.scorer.ServingTeam()
			sideOut = &SideOutEvent{
				ServingSide:  serving,
				ServerNumber: outcome.NewServer,
				ServerName:   e.serverName(serving, outcome.NewServer),
			}
		}
		display = e.scorer.ScoreDisplay()
	} else {
		e.score[winner]++
		display = fmt.Sprintf("%d-%d", e.score[domain.SidePlayer], e.score[domain.SideOpponent])
	}
	mp.PlayerScore = e.score[domain.SidePlayer]
	mp.OpponentScore = e.score[domain.SideOpponent]
	e.points = append(e.points, mp)

	streak, _ := e.momentum.RecordPoint(winner)

	if !e.detailed() {
		return
	}
	e.emit(PointPlayed{Point: mp, WinnerName: e.names[winner], ScoreDisplay: display})
	if sideOut != nil {
		e.emit(*sideOut)
	}
	if streak >= constants.StreakAlertMin {
		e.emit(StreakAlert{Side: winner, Name: e.names[winner], Streak: streak})
	}
}

// syncFatigueLevels warns once each time a participant drops into a worse
// fatigue band. Levels are tracked even while skipping so that turning skip
// on does not queue stale warnings.
func (e *Engine) syncFatigueLevels() {
	for side := range e.sides {
		for i, m := range e.sides[side].Members {
			level := m.Fatigue.Level()
			prev := e.levels[side][i]
			e.levels[side][i] = level
			if level <= prev || !e.detailed() {
				continue
			}
			e.emit(FatigueWarning{
				Side:   domain.Side(side),
				Name:   m.Name,
				Energy: m.Fatigue.Energy(),
				Level:  level,
			})
		}
	}
}

func (e *Engine) gameOver() bool {
	if e.doubles {
		return e.scorer.IsGameOver()
	}
	return GameOver(e.cfg, e.score[domain.SidePlayer], e.score[domain.SideOpponent])
}

func (e *Engine) closeGameIfOver() {
	if e.phase != phasePlaying || !e.gameOver() {
		return
	}

	gs := domain.GameScore{
		Player:   e.score[domain.SidePlayer],
		Opponent: e.score[domain.SideOpponent],
		Points:   e.gamePoints,
	}
	e.games = append(e.games, gs)
	winner := gs.Winner()
	e.gamesWon[winner]++

	e.emit(GameEnd{
		Game:          e.game,
		Winner:        winner,
		WinnerName:    e.names[winner],
		Score:         gs,
		PlayerGames:   e.gamesWon[domain.SidePlayer],
		OpponentGames: e.gamesWon[domain.SideOpponent],
	})
	e.logger.Debug().
		Int("game", e.game).
		Int("player", gs.Player).
		Int("opponent", gs.Opponent).
		Msg("Game finished")

	if e.gamesWon[winner] >= e.cfg.GamesToWin {
		e.finish(false)
		return
	}

	for side := range e.sides {
		for _, m := range e.sides[side].Members {
			m.Fatigue.RestBetweenGames()
		}
	}
	e.syncFatigueLevels()
	e.elapsed += constants.SecondsBetweenGames * time.Second
	e.startGame(e.game + 1)
}

func (e *Engine) finish(resigned bool) {
	if resigned && e.gamePoints > 0 {
		// The unfinished game stays in the tally so every logged point is
		// accounted for in some game.
		e.games = append(e.games, domain.GameScore{
			Player:   e.score[domain.SidePlayer],
			Opponent: e.score[domain.SideOpponent],
			Points:   e.gamePoints,
		})
	}

	result := e.assembleResult(resigned)
	e.result = &result
	e.phase = phaseFinished

	for side := range e.sides {
		for _, m := range e.sides[side].Members {
			m.Boosts = stats.Boosts{}
		}
	}

	if resigned {
		e.emit(Resigned{
			Game:          e.game,
			PlayerScore:   e.score[domain.SidePlayer],
			OpponentScore: e.score[domain.SideOpponent],
		})
	}
	e.emit(MatchEnd{
		Won:           result.Won,
		Resigned:      result.Resigned,
		PlayerGames:   result.PlayerGames,
		OpponentGames: result.OpponentGames,
		XP:            result.XP,
		Coins:         result.Coins,
	})
	e.logger.Debug().
		Bool("won", result.Won).
		Bool("resigned", resigned).
		Int("points", len(e.points)).
		Dur("duration", result.Duration).
		Msg("Match finished")
}
