package domain

import (
	"errors"
	"fmt"
	"time"
)

type Side int

const (
	SidePlayer Side = iota
	SideOpponent
)

func (s Side) Other() Side {
	if s == SidePlayer {
		return SideOpponent
	}
	return SidePlayer
}

func (s Side) String() string {
	if s == SidePlayer {
		return "player"
	}
	return "opponent"
}

func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Side) UnmarshalText(text []byte) error {
	switch string(text) {
	case "player":
		*s = SidePlayer
	case "opponent":
		*s = SideOpponent
	default:
		return fmt.Errorf("unknown side %q", string(text))
	}
	return nil
}

type PointType string

const (
	PointAce           PointType = "ace"
	PointWinner        PointType = "winner"
	PointUnforcedError PointType = "unforced_error"
	PointForcedError   PointType = "forced_error"
	PointRally         PointType = "rally"
	// PointHookCall is a point decided by a line-call challenge rather than a rally.
	PointHookCall PointType = "hook_call"
)

type MatchType string

const (
	MatchSingles MatchType = "singles"
	MatchDoubles MatchType = "doubles"
)

type MatchConfig struct {
	PointsToWin int       `json:"points_to_win"`
	WinByTwo    bool      `json:"win_by_two"`
	GamesToWin  int       `json:"games_to_win"`
	Type        MatchType `json:"type"`
	Wager       int       `json:"wager"`
	// MaxPoints ends a game outright once either side reaches it. Zero disables the override.
	MaxPoints int `json:"max_points"`
}

func DefaultMatchConfig() MatchConfig {
	return MatchConfig{
		PointsToWin: 11,
		WinByTwo:    true,
		GamesToWin:  1,
		Type:        MatchSingles,
		MaxPoints:   21,
	}
}

func (c MatchConfig) Validate() error {
	if c.PointsToWin <= 0 {
		return errors.New("points to win must be positive")
	}
	if c.GamesToWin <= 0 {
		return errors.New("games to win must be positive")
	}
	if c.Type != MatchSingles && c.Type != MatchDoubles {
		return fmt.Errorf("unknown match type %q", c.Type)
	}
	if c.Wager < 0 {
		return errors.New("wager cannot be negative")
	}
	if c.MaxPoints != 0 && c.MaxPoints < c.PointsToWin {
		return fmt.Errorf("max points %d is below points to win %d", c.MaxPoints, c.PointsToWin)
	}
	return nil
}

// MatchPoint is one resolved point in the match log. Records are never mutated.
type MatchPoint struct {
	Game          int       `json:"game"`
	Number        int       `json:"number"`
	Winner        Side      `json:"winner"`
	Type          PointType `json:"type"`
	RallyLength   int       `json:"rally_length"`
	Server        Side      `json:"server"`
	PlayerScore   int       `json:"player_score"`
	OpponentScore int       `json:"opponent_score"`
	ServerNumber  int       `json:"server_number,omitempty"`
	SideOut       bool      `json:"side_out,omitempty"`
}

type GameScore struct {
	Player   int `json:"player"`
	Opponent int `json:"opponent"`
	Points   int `json:"points"`
}

func (g GameScore) Winner() Side {
	if g.Player > g.Opponent {
		return SidePlayer
	}
	return SideOpponent
}

type SideStats struct {
	Aces          int     `json:"aces"`
	Winners       int     `json:"winners"`
	Errors        int     `json:"errors"`
	LongestRally  int     `json:"longest_rally"`
	AverageRally  float64 `json:"average_rally"`
	LongestStreak int     `json:"longest_streak"`
	FinalEnergy   float64 `json:"final_energy"`
}

type LootRequest struct {
	PlayerLevel  int    `json:"player_level"`
	OpponentName string `json:"opponent_name"`
	Wager        int    `json:"wager"`
}

type LootItem struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Rarity Rarity `json:"rarity"`
}

// MatchResult is assembled exactly once when a match finishes.
type MatchResult struct {
	Won             bool          `json:"won"`
	Resigned        bool          `json:"resigned"`
	PlayerGames     int           `json:"player_games"`
	OpponentGames   int           `json:"opponent_games"`
	Games           []GameScore   `json:"games"`
	Player          SideStats     `json:"player"`
	Opponent        SideStats     `json:"opponent"`
	XP              int           `json:"xp"`
	Coins           int           `json:"coins"`
	Loot            *LootRequest  `json:"loot,omitempty"`
	LootGranted     []LootItem    `json:"loot_granted,omitempty"`
	Duration        time.Duration `json:"duration"`
	ReputationDelta int           `json:"reputation_delta"`
	DUPRDelta       *float64      `json:"dupr_delta,omitempty"`
}

func (r MatchResult) TotalPoints() int {
	total := 0
	for _, g := range r.Games {
		total += g.Points
	}
	return total
}
