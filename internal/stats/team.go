package stats

import (
	"math"
	"pickleball-sim/internal/domain"
)

type TeamSynergy struct {
	Name       string  `json:"name,omitempty"`
	Multiplier float64 `json:"multiplier"`
}

// Member is one doubles player before equipment is applied.
type Member struct {
	Base      domain.PlayerStats
	Equipment []domain.Equipment
	Level     int
}

// Composite runs each member through EffectiveStats, then merges them.
func Composite(a, b Member, synergy TeamSynergy) domain.PlayerStats {
	return CompositeEffective(
		EffectiveStats(a.Base, a.Equipment, a.Level),
		EffectiveStats(b.Base, b.Equipment, b.Level),
		synergy,
	)
}

// CompositeEffective merges two already-adjusted stat lines: floor average per
// stat, then scaled by the synergy multiplier and rounded.
func CompositeEffective(a, b domain.PlayerStats, synergy TeamSynergy) domain.PlayerStats {
	return a.Map(func(stat domain.StatType, v int) int {
		avg := (v + b.Get(stat)) / 2
		return int(math.Round(float64(avg) * synergy.Multiplier))
	})
}
