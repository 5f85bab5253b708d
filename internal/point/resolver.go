// Package point is the seam where equipment, fatigue and momentum meet
// before the rally simulator consults its random source.
package point

import (
	"pickleball-sim/internal/constants"
	"pickleball-sim/internal/domain"
	"pickleball-sim/internal/fatigue"
	"pickleball-sim/internal/momentum"
	"pickleball-sim/internal/rally"
	"pickleball-sim/internal/stats"
)

type Participant struct {
	Name      string
	Base      domain.PlayerStats
	Equipment []domain.Equipment
	Level     int
	Boosts    stats.Boosts
	Fatigue   *fatigue.Model
}

// Effective is the participant's stat line after equipment, boosts and fatigue.
func (p *Participant) Effective() domain.PlayerStats {
	s := stats.EffectiveStats(p.Base, p.Equipment, p.Level)
	s = stats.ApplyBoosts(s, p.Boosts)
	return stats.ApplyFatigue(s, p.Fatigue.Energy())
}

// Team is one side of the net: a single player, or two players plus synergy.
type Team struct {
	Members []*Participant
	Synergy stats.TeamSynergy
}

type Input struct {
	Server   domain.Side
	Sides    [2]Team
	Momentum *momentum.Tracker
	Clutch   bool
	Doubles  bool
}

type Outcome struct {
	Rally  rally.Result
	Energy [2][]float64
}

type Resolver struct {
	sim *rally.Simulator
}

func NewResolver(sim *rally.Simulator) *Resolver {
	return &Resolver{sim: sim}
}

// Prepare returns both sides' fully adjusted stat lines without consuming randomness.
func (r *Resolver) Prepare(in Input) [2]domain.PlayerStats {
	var out [2]domain.PlayerStats
	for _, side := range []domain.Side{domain.SidePlayer, domain.SideOpponent} {
		team := in.Sides[side]
		var s domain.PlayerStats
		if len(team.Members) >= 2 {
			s = stats.CompositeEffective(team.Members[0].Effective(), team.Members[1].Effective(), team.Synergy)
		} else {
			s = team.Members[0].Effective()
		}

		if in.Momentum != nil {
			s = stats.ApplyMomentum(s, in.Momentum.Modifier(side))
		}
		if in.Clutch {
			s = stats.ApplyMomentum(s, ClutchModifier(s.Clutch))
		}
		out[side] = s
	}
	return out
}

// ClutchModifier is a small signed nudge centered on an average clutch stat.
func ClutchModifier(clutch int) float64 {
	return (float64(clutch) - constants.ClutchPivot) / constants.ClutchModDivisor
}

// Resolve runs one point end to end and drains every participant's energy by
// the rally length.
func (r *Resolver) Resolve(in Input) Outcome {
	adjusted := r.Prepare(in)
	result := r.sim.SimulatePoint(in.Server, adjusted[domain.SidePlayer], adjusted[domain.SideOpponent], in.Doubles)

	out := Outcome{Rally: result}
	for side := range in.Sides {
		for _, member := range in.Sides[side].Members {
			out.Energy[side] = append(out.Energy[side], member.Fatigue.Drain(result.RallyLength))
		}
	}
	return out
}
