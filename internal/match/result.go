package match

import (
	"math"
	"pickleball-sim/internal/constants"
	"pickleball-sim/internal/domain"
)

func (e *Engine) assembleResult(resigned bool) domain.MatchResult {
	won := !resigned && e.gamesWon[domain.SidePlayer] >= e.cfg.GamesToWin

	r := domain.MatchResult{
		Won:             won,
		Resigned:        resigned,
		PlayerGames:     e.gamesWon[domain.SidePlayer],
		OpponentGames:   e.gamesWon[domain.SideOpponent],
		Games:           append([]domain.GameScore(nil), e.games...),
		Duration:        e.elapsed,
		ReputationDelta: e.reputationDelta,
	}

	sides := FoldSideStats(e.points)
	for side := range sides {
		sides[side].LongestStreak = e.momentum.Longest(domain.Side(side))
		sides[side].FinalEnergy = e.teamEnergy(domain.Side(side))
	}
	r.Player, r.Opponent = sides[domain.SidePlayer], sides[domain.SideOpponent]

	xp := constants.BaseXP
	if won {
		xp += constants.WinBonus
	}
	r.XP = int(math.Round(float64(xp) * e.xpMultiplier))

	if won {
		if e.cfg.Wager > 0 {
			r.Coins = e.cfg.Wager
		}
		req := domain.LootRequest{
			PlayerLevel:  e.human().Level,
			OpponentName: e.names[domain.SideOpponent],
			Wager:        e.cfg.Wager,
		}
		r.Loot = &req
		if e.loot != nil {
			r.LootGranted = e.loot.Generate(req)
		}
	}
	return r
}

func (e *Engine) teamEnergy(side domain.Side) float64 {
	members := e.sides[side].Members
	total := 0.0
	for _, m := range members {
		total += m.Fatigue.Energy()
	}
	return total / float64(len(members))
}

// FoldSideStats aggregates the point log per side. Errors are charged to the
// side that lost the point; aces and winners to the side that won it. Hook
// call points have no rally and are left out of the rally figures.
func FoldSideStats(points []domain.MatchPoint) [2]domain.SideStats {
	var out [2]domain.SideStats
	var rallyTotal, rallyCount [2]int

	for _, p := range points {
		w, l := p.Winner, p.Winner.Other()
		switch p.Type {
		case domain.PointAce:
			out[w].Aces++
		case domain.PointWinner:
			out[w].Winners++
		case domain.PointUnforcedError, domain.PointForcedError:
			out[l].Errors++
		}

		if p.Type == domain.PointHookCall {
			continue
		}
		for _, side := range []domain.Side{domain.SidePlayer, domain.SideOpponent} {
			rallyTotal[side] += p.RallyLength
			rallyCount[side]++
			if p.RallyLength > out[side].LongestRally {
				out[side].LongestRally = p.RallyLength
			}
		}
	}

	for side := range out {
		if rallyCount[side] > 0 {
			out[side].AverageRally = float64(rallyTotal[side]) / float64(rallyCount[side])
		}
	}
	return out
}
