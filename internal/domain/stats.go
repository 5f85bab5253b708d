package domain

import "fmt"

const (
	MinStatValue = 1
	MaxStatValue = 99
)

type StatType int

const (
	StatPower StatType = iota
	StatAccuracy
	StatSpin
	StatSpeed
	StatDefense
	StatReflexes
	StatPositioning
	StatClutch
	StatFocus
	StatStamina
	StatConsistency

	StatCount = 11
)

var statNames = [StatCount]string{
	"power",
	"accuracy",
	"spin",
	"speed",
	"defense",
	"reflexes",
	"positioning",
	"clutch",
	"focus",
	"stamina",
	"consistency",
}

func AllStats() []StatType {
	out := make([]StatType, StatCount)
	for i := range out {
		out[i] = StatType(i)
	}
	return out
}

func (s StatType) String() string {
	if s < 0 || int(s) >= StatCount {
		return fmt.Sprintf("stat(%d)", int(s))
	}
	return statNames[s]
}

func (s StatType) Valid() bool {
	return s >= 0 && int(s) < StatCount
}

func ParseStatType(name string) (StatType, error) {
	for i, n := range statNames {
		if n == name {
			return StatType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown stat %q", name)
}

func (s StatType) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *StatType) UnmarshalText(text []byte) error {
	parsed, err := ParseStatType(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// PlayerStats is an immutable stat line. Derive new values with With or Map.
type PlayerStats struct {
	Power       int `json:"power"`
	Accuracy    int `json:"accuracy"`
	Spin        int `json:"spin"`
	Speed       int `json:"speed"`
	Defense     int `json:"defense"`
	Reflexes    int `json:"reflexes"`
	Positioning int `json:"positioning"`
	Clutch      int `json:"clutch"`
	Focus       int `json:"focus"`
	Stamina     int `json:"stamina"`
	Consistency int `json:"consistency"`
}

// UniformStats returns a stat line with every attribute set to v (clamped).
func UniformStats(v int) PlayerStats {
	var s PlayerStats
	for _, st := range AllStats() {
		s = s.With(st, v)
	}
	return s
}

func ClampStat(v int) int {
	if v < MinStatValue {
		return MinStatValue
	}
	if v > MaxStatValue {
		return MaxStatValue
	}
	return v
}

func (p PlayerStats) Get(stat StatType) int {
	switch stat {
	case StatPower:
		return p.Power
	case StatAccuracy:
		return p.Accuracy
	case StatSpin:
		return p.Spin
	case StatSpeed:
		return p.Speed
	case StatDefense:
		return p.Defense
	case StatReflexes:
		return p.Reflexes
	case StatPositioning:
		return p.Positioning
	case StatClutch:
		return p.Clutch
	case StatFocus:
		return p.Focus
	case StatStamina:
		return p.Stamina
	case StatConsistency:
		return p.Consistency
	}
	return 0
}

// With returns a copy with stat set to v, clamped to the legal range.
func (p PlayerStats) With(stat StatType, v int) PlayerStats {
	v = ClampStat(v)
	switch stat {
	case StatPower:
		p.Power = v
	case StatAccuracy:
		p.Accuracy = v
	case StatSpin:
		p.Spin = v
	case StatSpeed:
		p.Speed = v
	case StatDefense:
		p.Defense = v
	case StatReflexes:
		p.Reflexes = v
	case StatPositioning:
		p.Positioning = v
	case StatClutch:
		p.Clutch = v
	case StatFocus:
		p.Focus = v
	case StatStamina:
		p.Stamina = v
	case StatConsistency:
		p.Consistency = v
	}
	return p
}

// Map applies fn to every stat and returns the clamped result.
func (p PlayerStats) Map(fn func(stat StatType, v int) int) PlayerStats {
	out := p
	for _, st := range AllStats() {
		out = out.With(st, fn(st, p.Get(st)))
	}
	return out
}

// Clamped returns p with every stat forced into [MinStatValue, MaxStatValue].
func (p PlayerStats) Clamped() PlayerStats {
	return p.Map(func(_ StatType, v int) int { return v })
}

func (p PlayerStats) Average() float64 {
	total := 0
	for _, st := range AllStats() {
		total += p.Get(st)
	}
	return float64(total) / StatCount
}
