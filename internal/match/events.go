package match

import (
	"pickleball-sim/internal/domain"
	"pickleball-sim/internal/fatigue"
	"sync"
)

type EventKind string

const (
	KindMatchStart      EventKind = "match_start"
	KindGameStart       EventKind = "game_start"
	KindPointPlayed     EventKind = "point_played"
	KindStreakAlert     EventKind = "streak_alert"
	KindFatigueWarning  EventKind = "fatigue_warning"
	KindTimeoutCalled   EventKind = "timeout_called"
	KindConsumableUsed  EventKind = "consumable_used"
	KindHookCallAttempt EventKind = "hook_call_attempt"
	KindSideOut         EventKind = "side_out"
	KindGameEnd         EventKind = "game_end"
	KindResigned        EventKind = "resigned"
	KindMatchEnd        EventKind = "match_end"
)

type Event interface {
	Kind() EventKind
}

type MatchStart struct {
	PlayerName   string             `json:"player_name"`
	OpponentName string             `json:"opponent_name"`
	Config       domain.MatchConfig `json:"config"`
}

type GameStart struct {
	Game        int         `json:"game"`
	FirstServer domain.Side `json:"first_server"`
	ServerName  string      `json:"server_name"`
}

type PointPlayed struct {
	Point        domain.MatchPoint `json:"point"`
	WinnerName   string            `json:"winner_name"`
	ScoreDisplay string            `json:"score_display"`
}

type StreakAlert struct {
	Side   domain.Side `json:"side"`
	Name   string      `json:"name"`
	Streak int         `json:"streak"`
}

type FatigueWarning struct {
	Side   domain.Side   `json:"side"`
	Name   string        `json:"name"`
	Energy float64       `json:"energy"`
	Level  fatigue.Level `json:"level"`
}

type TimeoutCalled struct {
	Game           int     `json:"game"`
	BrokenStreak   int     `json:"broken_streak"`
	EnergyRestored float64 `json:"energy_restored"`
	PlayerEnergy   float64 `json:"player_energy"`
}

type ConsumableUsed struct {
	Item      Consumable `json:"item"`
	Remaining int        `json:"remaining"`
}

type HookCallAttempt struct {
	Game             int     `json:"game"`
	Success          bool    `json:"success"`
	Chance           float64 `json:"chance"`
	ReputationChange int     `json:"reputation_change"`
}

type SideOutEvent struct {
	ServingSide  domain.Side `json:"serving_side"`
	ServerNumber int         `json:"server_number"`
	ServerName   string      `json:"server_name"`
}

type GameEnd struct {
	Game          int              `json:"game"`
	Winner        domain.Side      `json:"winner"`
	WinnerName    string           `json:"winner_name"`
	Score         domain.GameScore `json:"score"`
	PlayerGames   int              `json:"player_games"`
	OpponentGames int              `json:"opponent_games"`
}

type Resigned struct {
	Game          int `json:"game"`
	PlayerScore   int `json:"player_score"`
	OpponentScore int `json:"opponent_score"`
}

type MatchEnd struct {
	Won           bool `json:"won"`
	Resigned      bool `json:"resigned"`
	PlayerGames   int  `json:"player_games"`
	OpponentGames int  `json:"opponent_games"`
	XP            int  `json:"xp"`
	Coins         int  `json:"coins"`
}

func (MatchStart) Kind() EventKind      { return KindMatchStart }
func (GameStart) Kind() EventKind       { return KindGameStart }
func (PointPlayed) Kind() EventKind     { return KindPointPlayed }
func (StreakAlert) Kind() EventKind     { return KindStreakAlert }
func (FatigueWarning) Kind() EventKind  { return KindFatigueWarning }
func (TimeoutCalled) Kind() EventKind   { return KindTimeoutCalled }
func (ConsumableUsed) Kind() EventKind  { return KindConsumableUsed }
func (HookCallAttempt) Kind() EventKind { return KindHookCallAttempt }
func (SideOutEvent) Kind() EventKind    { return KindSideOut }
func (GameEnd) Kind() EventKind         { return KindGameEnd }
func (Resigned) Kind() EventKind        { return KindResigned }
func (MatchEnd) Kind() EventKind        { return KindMatchEnd }

// eventLog is append-only. The engine is its single writer; readers may poll
// it from other goroutines while the match runs.
type eventLog struct {
	mu     sync.RWMutex
	events []Event
}

func (l *eventLog) append(e Event) {
	l.mu.Lock()
	l.events = append(l.events, e)
	l.mu.Unlock()
}

func (l *eventLog) since(n int) []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if n < 0 {
		n = 0
	}
	if n >= len(l.events) {
		return nil
	}
	out := make([]Event, len(l.events)-n)
	copy(out, l.events[n:])
	return out
}

func (l *eventLog) len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}
