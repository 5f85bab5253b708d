package momentum

import (
	"pickleball-sim/internal/constants"
	"pickleball-sim/internal/domain"
)

// Tracker counts consecutive points per side. One tracker lives for a whole
// match and is reset, not replaced, between games.
type Tracker struct {
	current [2]int
	longest [2]int
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// RecordPoint credits winner and zeroes the other side. The new streak is
// reported only once it reaches two.
func (t *Tracker) RecordPoint(winner domain.Side) (int, bool) {
	t.current[winner]++
	t.current[winner.Other()] = 0
	if t.current[winner] > t.longest[winner] {
		t.longest[winner] = t.current[winner]
	}
	if t.current[winner] >= constants.MomentumStreakReportMin {
		return t.current[winner], true
	}
	return 0, false
}

func (t *Tracker) Streak(side domain.Side) int { return t.current[side] }

func (t *Tracker) Longest(side domain.Side) int { return t.longest[side] }

// Modifier is the own-streak bonus plus the opponent-streak penalty.
func (t *Tracker) Modifier(side domain.Side) float64 {
	return bonus(t.current[side]) + penalty(t.current[side.Other()])
}

func bonus(streak int) float64 {
	table := constants.MomentumBonusTable
	if streak >= len(table) {
		streak = len(table) - 1
	}
	return table[streak]
}

func penalty(streak int) float64 {
	table := constants.MomentumPenaltyTable
	if streak >= len(table) {
		streak = len(table) - 1
	}
	return table[streak]
}

func (t *Tracker) ResetStreak(side domain.Side) {
	t.current[side] = 0
}

func (t *Tracker) ResetForNewGame() {
	t.current = [2]int{}
}
