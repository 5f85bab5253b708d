package fatigue

import (
	"math"
	"pickleball-sim/internal/constants"
)

type Level int

const (
	Fresh Level = iota
	Mild
	Moderate
	Severe
)

func (l Level) String() string {
	switch l {
	case Fresh:
		return "fresh"
	case Mild:
		return "mild"
	case Moderate:
		return "moderate"
	default:
		return "severe"
	}
}

func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Model tracks one participant's energy over a match. It is not safe for
// concurrent use; the match engine owns it.
type Model struct {
	energy  float64
	stamina int
}

func New(stamina int, startingEnergy float64) *Model {
	return &Model{
		energy:  clampEnergy(startingEnergy),
		stamina: stamina,
	}
}

func clampEnergy(e float64) float64 {
	return math.Max(0, math.Min(constants.MaxEnergy, e))
}

func (m *Model) Energy() float64 { return m.energy }

func (m *Model) Stamina() int { return m.stamina }

// DrainFor returns the energy a rally of the given length costs at this stamina.
func DrainFor(stamina, rallyLength int) float64 {
	length := float64(rallyLength)
	extra := math.Max(0, float64(rallyLength-constants.LongRallyThreshold))
	raw := constants.BaseDrainPerShot*length + constants.LongRallyDrainBonus*extra
	reduction := 1 - float64(stamina)*constants.StaminaDrainFactor
	return math.Max(constants.MinDrainPerPoint, raw*reduction)
}

func (m *Model) Drain(rallyLength int) float64 {
	m.energy = math.Max(0, m.energy-DrainFor(m.stamina, rallyLength))
	return m.energy
}

func (m *Model) RestBetweenGames() float64 {
	return m.Restore(constants.RestBetweenGamesGain)
}

func (m *Model) Restore(amount float64) float64 {
	if amount <= 0 {
		return m.energy
	}
	m.energy = clampEnergy(m.energy + amount)
	return m.energy
}

func (m *Model) Level() Level {
	return LevelFor(m.energy)
}

func LevelFor(energy float64) Level {
	switch {
	case energy > constants.FatigueMildThreshold:
		return Fresh
	case energy > constants.FatigueModThreshold:
		return Mild
	case energy > constants.FatigueSevereThreshold:
		return Moderate
	default:
		return Severe
	}
}
