package rally

import (
	"math"
	"pickleball-sim/internal/constants"
	"pickleball-sim/internal/domain"
	"pickleball-sim/internal/tuning"
)

type Result struct {
	Winner      domain.Side      `json:"winner"`
	Type        domain.PointType `json:"type"`
	RallyLength int              `json:"rally_length"`
}

// Simulator resolves a single point from two fully adjusted stat lines.
// It holds no state besides its random source.
type Simulator struct {
	src         RandomSource
	sensitivity float64
	curves      [domain.StatCount]tuning.Curve
}

func NewSimulator(src RandomSource, params tuning.Params) *Simulator {
	s := &Simulator{src: src, sensitivity: params.Sensitivity}
	if s.sensitivity <= 0 {
		s.sensitivity = 1
	}
	for _, stat := range domain.AllStats() {
		s.curves[stat] = params.Curve(stat)
	}
	return s
}

func clamp(lo, hi, v float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

type matchup struct {
	sim   *Simulator
	stats [2]domain.PlayerStats
}

func (m matchup) v(side domain.Side, stat domain.StatType) float64 {
	return m.sim.curves[stat].Apply(m.stats[side].Get(stat))
}

func (m matchup) avg(side domain.Side, stats ...domain.StatType) float64 {
	total := 0.0
	for _, st := range stats {
		total += m.v(side, st)
	}
	return total / float64(len(stats))
}

func (m matchup) attack(side domain.Side) float64 {
	return 0.4*m.v(side, domain.StatPower) + 0.3*m.v(side, domain.StatAccuracy) + 0.3*m.v(side, domain.StatSpin)
}

func (m matchup) defense(side domain.Side) float64 {
	return 0.35*m.v(side, domain.StatDefense) +
		0.25*m.v(side, domain.StatReflexes) +
		0.2*m.v(side, domain.StatPositioning) +
		0.2*m.v(side, domain.StatSpeed)
}

func (s *Simulator) roll(p float64) bool {
	return s.src.Float64() < p
}

// SimulatePoint plays serve, dink (doubles only) and rally phases in order.
// Every probability is clamped and the rally has a hard shot cap, so it
// always terminates.
func (s *Simulator) SimulatePoint(server domain.Side, player, opponent domain.PlayerStats, doubles bool) Result {
	m := matchup{sim: s, stats: [2]domain.PlayerStats{player, opponent}}
	receiver := server.Other()
	sens := s.sensitivity

	ace := clamp(constants.AceMin, constants.AceMax,
		constants.AceBase+sens*(m.v(server, domain.StatPower)*constants.AceStatScale-m.v(receiver, domain.StatReflexes)*constants.AceStatScale))
	if s.roll(ace) {
		return Result{Winner: server, Type: domain.PointAce, RallyLength: 1}
	}

	length := 1
	attacker := receiver

	if doubles {
		for i, n := 0, s.dinkCount(m); i < n; i++ {
			length++
			if res, done := s.dinkExchange(m, attacker); done {
				res.RallyLength = length
				return res
			}
			attacker = attacker.Other()
		}
	}

	maxShots := maxRallyShots(player, opponent)
	for shot := 1; shot <= maxShots; shot++ {
		length++
		if res, done := s.rallyShot(m, attacker, shot); done {
			res.RallyLength = length
			return res
		}
		attacker = attacker.Other()
	}

	diff := player.Average() - opponent.Average()
	pPlayer := clamp(constants.CapFlipMin, constants.CapFlipMax, 0.5+diff/200*sens)
	winner := domain.SideOpponent
	if s.roll(pPlayer) {
		winner = domain.SidePlayer
	}
	return Result{Winner: winner, Type: domain.PointRally, RallyLength: length}
}

func (s *Simulator) dinkCount(m matchup) int {
	soft := func(side domain.Side) float64 {
		return m.avg(side, domain.StatAccuracy, domain.StatSpin, domain.StatFocus, domain.StatConsistency)
	}
	avgSoft := (soft(domain.SidePlayer) + soft(domain.SideOpponent)) / 2
	span := float64(constants.DinkMaxShots - constants.DinkMinShots)
	n := constants.DinkMinShots + int(avgSoft/domain.MaxStatValue*span)
	if n < constants.DinkMinShots {
		return constants.DinkMinShots
	}
	if n > constants.DinkMaxShots {
		return constants.DinkMaxShots
	}
	return n
}

func (s *Simulator) dinkExchange(m matchup, attacker domain.Side) (Result, bool) {
	defender := attacker.Other()
	sens := s.sensitivity

	att := m.avg(attacker, domain.StatAccuracy, domain.StatSpin, domain.StatFocus)
	def := m.avg(defender, domain.StatConsistency, domain.StatFocus, domain.StatPositioning)
	winner := clamp(constants.DinkWinnerMin, constants.DinkWinnerMax,
		constants.DinkWinnerBase+sens*constants.DinkWinnerScale*(att-def))
	if s.roll(winner) {
		return Result{Winner: attacker, Type: domain.PointWinner}, true
	}

	steadiness := m.avg(attacker, domain.StatConsistency, domain.StatFocus)
	unforced := clamp(constants.DinkErrorMin, constants.DinkErrorMax,
		constants.DinkErrorBase+sens*constants.DinkErrorScale*(constants.StatPivot-steadiness))
	if s.roll(unforced) {
		return Result{Winner: defender, Type: domain.PointUnforcedError}, true
	}

	if s.roll(constants.DinkForcedErrorFixed) {
		return Result{Winner: attacker, Type: domain.PointForcedError}, true
	}
	return Result{}, false
}

func (s *Simulator) rallyShot(m matchup, attacker domain.Side, shot int) (Result, bool) {
	defender := attacker.Other()
	sens := s.sensitivity
	n := float64(shot)

	winner := clamp(constants.WinnerMin, constants.WinnerMax,
		constants.WinnerBase+sens*constants.WinnerScale*(m.attack(attacker)-m.defense(defender))+constants.WinnerShotBonus*n)
	if s.roll(winner) {
		return Result{Winner: attacker, Type: domain.PointWinner}, true
	}

	control := m.avg(attacker, domain.StatConsistency, domain.StatAccuracy)
	unforced := clamp(constants.UnforcedErrorMin, constants.UnforcedErrorMax,
		constants.UnforcedErrorBase+sens*constants.UnforcedErrorScale*(constants.StatPivot-control)+constants.UnforcedErrorShotPenalty*n)
	if s.roll(unforced) {
		return Result{Winner: defender, Type: domain.PointUnforcedError}, true
	}

	pressure := m.avg(attacker, domain.StatPower, domain.StatSpin)
	resistance := m.avg(defender, domain.StatDefense, domain.StatReflexes)
	forced := clamp(constants.ForcedErrorMin, constants.ForcedErrorMax,
		constants.ForcedErrorBase+sens*constants.ForcedErrorScale*(pressure-resistance))
	if s.roll(forced) {
		return Result{Winner: attacker, Type: domain.PointForcedError}, true
	}
	return Result{}, false
}

// maxRallyShots is 5 + avgDefense/10, clamped to the global rally bounds.
func maxRallyShots(player, opponent domain.PlayerStats) int {
	avgDefense := (player.Defense + opponent.Defense) / 2
	n := constants.RallyBaseLength + avgDefense/10
	if n < constants.RallyMinLength {
		return constants.RallyMinLength
	}
	if n > constants.RallyMaxLength {
		return constants.RallyMaxLength
	}
	return n
}
