package match

import (
	"fmt"
	"pickleball-sim/internal/constants"
	"pickleball-sim/internal/domain"
)

// GameOver applies win-by-two (when configured) and the absolute max-point
// override.
func GameOver(cfg domain.MatchConfig, a, b int) bool {
	if cfg.MaxPoints > 0 && (a >= cfg.MaxPoints || b >= cfg.MaxPoints) {
		return true
	}
	lead, trail := a, b
	if b > a {
		lead, trail = b, a
	}
	if lead < cfg.PointsToWin {
		return false
	}
	if cfg.WinByTwo {
		return lead-trail >= 2
	}
	return lead > trail
}

// IsClutch reports whether both sides are within two points of the target.
func IsClutch(cfg domain.MatchConfig, a, b int) bool {
	edge := cfg.PointsToWin - constants.ClutchWindow
	return a >= edge && b >= edge
}

type ScoreOutcomeKind int

const (
	Scored ScoreOutcomeKind = iota
	ServerRotation
	SideOut
)

type ScoreOutcome struct {
	Kind ScoreOutcomeKind
	// NewServer is the serving team's server number after a side out.
	NewServer int
}

// DoublesScorer keeps side-out score for one doubles game.
type DoublesScorer interface {
	RecordPoint(winnerIsServingTeam bool) ScoreOutcome
	IsGameOver() bool
	PlayerScore() int
	OpponentScore() int
	ServingTeam() domain.Side
	ServerNumber() int
	ScoreDisplay() string
}

type ScorerFactory func(cfg domain.MatchConfig, firstServer domain.Side) DoublesScorer

// SideOutScorer is traditional doubles scoring: only the serving team
// scores, each team gets two servers, and the opening serve of a game starts
// on the second server ("0-0-2").
type SideOutScorer struct {
	cfg     domain.MatchConfig
	score   [2]int
	serving domain.Side
	server  int
}

func NewSideOutScorer(cfg domain.MatchConfig, firstServer domain.Side) DoublesScorer {
	return &SideOutScorer{cfg: cfg, serving: firstServer, server: 2}
}

func (s *SideOutScorer) RecordPoint(winnerIsServingTeam bool) ScoreOutcome {
	if winnerIsServingTeam {
		s.score[s.serving]++
		return ScoreOutcome{Kind: Scored}
	}
	if s.server == 1 {
		s.server = 2
		return ScoreOutcome{Kind: ServerRotation}
	}
	s.serving = s.serving.Other()
	s.server = 1
	return ScoreOutcome{Kind: SideOut, NewServer: s.server}
}

func (s *SideOutScorer) IsGameOver() bool {
	return GameOver(s.cfg, s.score[domain.SidePlayer], s.score[domain.SideOpponent])
}

func (s *SideOutScorer) PlayerScore() int { return s.score[domain.SidePlayer] }

func (s *SideOutScorer) OpponentScore() int { return s.score[domain.SideOpponent] }

func (s *SideOutScorer) ServingTeam() domain.Side { return s.serving }

func (s *SideOutScorer) ServerNumber() int { return s.server }

func (s *SideOutScorer) ScoreDisplay() string {
	return fmt.Sprintf("%d-%d-%d", s.score[s.serving], s.score[s.serving.Other()], s.server)
}
