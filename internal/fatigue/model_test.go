package fatigue

import (
	"pickleball-sim/internal/constants"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDrainFor(t *testing.T) {
	tests := []struct {
		name        string
		stamina     int
		rallyLength int
		want        float64
	}{
		{name: "short rally", stamina: 50, rallyLength: 4, want: 0.45},
		{name: "long rally bonus", stamina: 50, rallyLength: 10, want: 1.5},
		{name: "floor applies", stamina: 99, rallyLength: 1, want: constants.MinDrainPerPoint},
		{name: "zero length still drains", stamina: 50, rallyLength: 0, want: constants.MinDrainPerPoint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, DrainFor(tt.stamina, tt.rallyLength), 1e-9)
		})
	}
}

func TestDrain_NeverNegative(t *testing.T) {
	m := New(1, constants.MaxEnergy)
	for i := 0; i < 500; i++ {
		energy := m.Drain(30)
		assert.GreaterOrEqual(t, energy, 0.0)
	}
	assert.Equal(t, 0.0, m.Energy())
	assert.Equal(t, Severe, m.Level())
}

func TestRestoreCapped(t *testing.T) {
	m := New(50, 95)
	assert.Equal(t, constants.MaxEnergy, m.RestBetweenGames())

	m = New(50, 30)
	assert.Equal(t, 40.0, m.RestBetweenGames())
	assert.Equal(t, 55.0, m.Restore(15))
	assert.Equal(t, 55.0, m.Restore(-10), "negative restores are ignored")
	assert.Equal(t, constants.MaxEnergy, m.Restore(1000))
}

func TestNewClampsStartingEnergy(t *testing.T) {
	assert.Equal(t, constants.MaxEnergy, New(50, 250).Energy())
	assert.Equal(t, 0.0, New(50, -5).Energy())
	assert.Equal(t, 50, New(50, 10).Stamina())
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		energy float64
		want   Level
	}{
		{energy: 100, want: Fresh},
		{energy: 70.01, want: Fresh},
		{energy: 70, want: Mild},
		{energy: 40.5, want: Mild},
		{energy: 40, want: Moderate},
		{energy: 20, want: Severe},
		{energy: 0, want: Severe},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelFor(tt.energy), "energy %v", tt.energy)
	}
	assert.Equal(t, "moderate", Moderate.String())
}
