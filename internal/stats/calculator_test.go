package stats

import (
	"pickleball-sim/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDiminishingReturns(t *testing.T) {
	tests := []struct {
		name  string
		base  int
		bonus int
		want  int
	}{
		{name: "full rate below 60", base: 40, bonus: 10, want: 50},
		{name: "crosses into reduced band", base: 50, bonus: 20, want: 67},
		{name: "crosses into minimal band", base: 70, bonus: 20, want: 82},
		{name: "minimal band only", base: 85, bonus: 10, want: 89},
		{name: "zero bonus keeps base", base: 45, bonus: 0, want: 45},
		{name: "negative bonus keeps base", base: 45, bonus: -20, want: 45},
		{name: "huge stack capped", base: 90, bonus: 1000, want: 99},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ApplyDiminishingReturns(tt.base, tt.bonus))
		})
	}
}

func TestApplyDiminishingReturns_NeverAbove99(t *testing.T) {
	for base := domain.MinStatValue; base <= domain.MaxStatValue; base += 7 {
		for bonus := 0; bonus <= 5000; bonus += 250 {
			assert.LessOrEqual(t, ApplyDiminishingReturns(base, bonus), domain.MaxStatValue)
		}
	}
}

func TestEffectiveStats_EquipmentStackCapped(t *testing.T) {
	var items []domain.Equipment
	for i := 0; i < 6; i++ {
		items = append(items, domain.Equipment{
			Bonuses:         map[domain.StatType]int{domain.StatPower: 500},
			LevelMultiplier: 3,
		})
	}

	got := EffectiveStats(domain.UniformStats(95), items, 1)
	assert.Equal(t, domain.MaxStatValue, got.Power)
	assert.Equal(t, 95, got.Accuracy)
}

func TestBonusTotals(t *testing.T) {
	set := []domain.SetBonusTier{
		{Pieces: 2, Bonuses: map[domain.StatType]int{domain.StatPower: 3}},
		{Pieces: 4, Bonuses: map[domain.StatType]int{domain.StatPower: 10}},
	}
	items := []domain.Equipment{
		{
			Bonuses:         map[domain.StatType]int{domain.StatPower: 10},
			LevelMultiplier: 1.5,
			SetID:           "court-king",
			SetBonuses:      set,
		},
		{
			Bonuses:    map[domain.StatType]int{domain.StatSpin: 4},
			SetID:      "court-king",
			SetBonuses: set,
			Traits: []domain.Trait{
				{Name: "heavy", Deltas: map[domain.StatType]int{domain.StatSpeed: -2, domain.StatPower: 1}},
			},
		},
		{
			Bonuses:       map[domain.StatType]int{domain.StatDefense: 50},
			RequiredLevel: 5,
		},
	}

	totals := BonusTotals(items, 3)
	assert.Equal(t, 15+1+3, totals[domain.StatPower])
	assert.Equal(t, 4, totals[domain.StatSpin])
	assert.Equal(t, -2, totals[domain.StatSpeed])
	assert.Equal(t, 0, totals[domain.StatDefense], "item above player level must be ignored")

	totals = BonusTotals(items, 5)
	assert.Equal(t, 50, totals[domain.StatDefense])
}

func TestApplyFatigue(t *testing.T) {
	base := domain.UniformStats(60)

	assert.Equal(t, base, ApplyFatigue(base, 100), "no change above the mild threshold")
	assert.Equal(t, base, ApplyFatigue(base, 71))

	tests := []struct {
		energy float64
		want   int
	}{
		{energy: 50, want: 57},
		{energy: 30, want: 53},
		{energy: 10, want: 48},
		{energy: 0, want: 48},
	}
	for _, tt := range tests {
		got := ApplyFatigue(base, tt.energy)
		assert.Equal(t, tt.want, got.Power, "energy %v", tt.energy)
		assert.Equal(t, 60, got.Stamina, "stamina is never reduced")
	}

	low := ApplyFatigue(domain.UniformStats(1), 0)
	assert.Equal(t, domain.MinStatValue, low.Power)
}

func TestApplyMomentum(t *testing.T) {
	base := domain.UniformStats(50)

	assert.Equal(t, base, ApplyMomentum(base, 0))

	up := ApplyMomentum(base, 0.10)
	assert.Equal(t, 55, up.Power)
	assert.Equal(t, 55, up.Consistency)
	assert.Equal(t, 50, up.Defense, "defense is not a momentum stat")

	down := ApplyMomentum(base, -0.04)
	assert.Equal(t, 48, down.Accuracy)
}

func TestApplyBoosts(t *testing.T) {
	var boosts Boosts
	assert.True(t, boosts.IsZero())

	boosts[domain.StatPower] = 5
	boosts[domain.StatFocus] = 200

	got := ApplyBoosts(domain.UniformStats(50), boosts)
	assert.Equal(t, 55, got.Power)
	assert.Equal(t, domain.MaxStatValue, got.Focus)
	assert.Equal(t, 50, got.Spin)
}

func TestScaleEquipment(t *testing.T) {
	items := []domain.Equipment{{LevelMultiplier: 0}, {LevelMultiplier: 2}}

	scaled := ScaleEquipment(items, 0.5)
	require.Len(t, scaled, 2)
	assert.Equal(t, 0.5, scaled[0].LevelMultiplier)
	assert.Equal(t, 1.0, scaled[1].LevelMultiplier)
	assert.Equal(t, 2.0, items[1].LevelMultiplier, "input must not be modified")
}

func TestCompositeEffective(t *testing.T) {
	a := domain.UniformStats(61)
	b := domain.UniformStats(50)

	even := CompositeEffective(a, b, TeamSynergy{Multiplier: 1})
	assert.Equal(t, 55, even.Power)

	boosted := CompositeEffective(a, b, TeamSynergy{Multiplier: 1.1})
	assert.Equal(t, 61, boosted.Power)

	team := Composite(Member{Base: a}, Member{Base: b}, TeamSynergy{Multiplier: 1})
	assert.Equal(t, even, team)
}
