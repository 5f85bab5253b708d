package match

import (
	"pickleball-sim/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestTimeout(t *testing.T) {
	e := newSingles(t, domain.DefaultMatchConfig(), competitor("ana", 50), competitor("bo", 50),
		WithRandomSource(&stubSource{v: 0.999}))

	_, err := e.RequestTimeout()
	assert.ErrorIs(t, err, ErrMatchNotInProgress)

	e.Start()
	e.Step()
	e.Step()
	assert.False(t, e.CanTimeout())
	_, err = e.RequestTimeout()
	assert.ErrorIs(t, err, ErrNoOpponentMomentum)

	e.Step()
	require.Equal(t, 3, e.OpponentCurrentStreak())
	require.True(t, e.CanTimeout())

	ev, err := e.RequestTimeout()
	require.NoError(t, err)
	assert.Equal(t, TimeoutCalled{Game: 1, BrokenStreak: 3, EnergyRestored: 15, PlayerEnergy: 100}, ev)
	assert.Zero(t, e.OpponentCurrentStreak())
	assert.Equal(t, ev, e.Events()[e.EventCount()-1])

	e.Step()
	e.Step()
	e.Step()
	_, err = e.RequestTimeout()
	assert.ErrorIs(t, err, ErrTimeoutUsed)

	e.RunToCompletion()
	_, err = e.RequestTimeout()
	assert.ErrorIs(t, err, ErrMatchNotInProgress)
}

func TestRequestTimeout_ResetsEachGame(t *testing.T) {
	cfg := domain.DefaultMatchConfig()
	cfg.GamesToWin = 2
	e := newSingles(t, cfg, competitor("ana", 50), competitor("bo", 50), WithRandomSource(&stubSource{v: 0.999}))

	for i := 0; i < 3; i++ {
		e.Step()
	}
	_, err := e.RequestTimeout()
	require.NoError(t, err)

	// finish game one, then build a new run in game two
	for len(e.Points()) < 11+3 {
		e.Step()
	}
	_, err = e.RequestTimeout()
	assert.NoError(t, err)
}

func TestRequestHookCall(t *testing.T) {
	t.Run("caught", func(t *testing.T) {
		e := newSingles(t, domain.DefaultMatchConfig(), competitor("ana", 50), competitor("bo", 50),
			WithRandomSource(&stubSource{v: 0.999}))
		e.Start()

		_, err := e.RequestHookCall()
		assert.ErrorIs(t, err, ErrHookTooEarly)
		assert.False(t, e.CanHookCall())

		e.Step()
		require.True(t, e.CanHookCall())
		ev, err := e.RequestHookCall()
		require.NoError(t, err)
		assert.Equal(t, HookCallAttempt{Game: 1, Success: false, Chance: 0.15, ReputationChange: -5}, ev)

		points := e.Points()
		require.Len(t, points, 2)
		assert.Equal(t, domain.PointHookCall, points[1].Type)
		assert.Equal(t, domain.SideOpponent, points[1].Winner)
		assert.Zero(t, points[1].RallyLength)

		_, err = e.RequestHookCall()
		assert.ErrorIs(t, err, ErrHookCallUsed)

		r := e.RunToCompletion()
		assert.Equal(t, -5, r.ReputationDelta)
		assert.Equal(t, 11, r.TotalPoints())
		assert.Equal(t, 11, r.Player.LongestRally)
	})

	t.Run("unnoticed", func(t *testing.T) {
		e := newSingles(t, domain.DefaultMatchConfig(), competitor("ana", 50), competitor("bo", 50),
			WithRandomSource(&stubSource{v: 0}), WithReputation(100))
		e.Step()

		ev, err := e.RequestHookCall()
		require.NoError(t, err)
		assert.True(t, ev.Success)
		assert.InDelta(t, 0.35, ev.Chance, 1e-12)
		assert.Equal(t, -2, ev.ReputationChange)

		points := e.Points()
		assert.Equal(t, domain.SidePlayer, points[1].Winner)
		assert.Equal(t, 2, points[1].PlayerScore)

		r := e.RunToCompletion()
		assert.Equal(t, -2, r.ReputationDelta)
		assert.Zero(t, r.Player.Aces-len(aces(e.Points(), domain.SidePlayer)))
	})
}

func aces(points []domain.MatchPoint, side domain.Side) []domain.MatchPoint {
	var out []domain.MatchPoint
	for _, p := range points {
		if p.Type == domain.PointAce && p.Winner == side {
			out = append(out, p)
		}
	}
	return out
}

func TestHookChance(t *testing.T) {
	assert.InDelta(t, 0.15, HookChance(0), 1e-12)
	assert.InDelta(t, 0.35, HookChance(100), 1e-12)
	assert.Equal(t, 0.5, HookChance(1000))
	assert.Equal(t, 0.0, HookChance(-200))
}

func TestUseConsumable(t *testing.T) {
	energy := Consumable{ID: "c1", Name: "Electrolyte Drink", Kind: ConsumableEnergy, Amount: 20}
	boost := Consumable{ID: "c2", Name: "Power Bar", Kind: ConsumableStatBoost, Amount: 5, Stat: domain.StatPower}
	xp := Consumable{ID: "c3", Name: "Focus Tea", Kind: ConsumableXPMultiplier, Amount: 1.5}
	extra := Consumable{ID: "c4", Name: "Double XP", Kind: ConsumableXPMultiplier, Amount: 2}

	e := newSingles(t, domain.DefaultMatchConfig(), competitor("ana", 50), competitor("bo", 50),
		WithRandomSource(&stubSource{v: 0}), WithConsumables(energy, boost, xp, extra))

	_, err := e.UseConsumable(energy)
	assert.ErrorIs(t, err, ErrMatchNotInProgress)

	e.Start()
	_, err = e.UseConsumable(Consumable{ID: "nope"})
	assert.ErrorIs(t, err, ErrConsumableUnavailable)

	ev, err := e.UseConsumable(energy)
	require.NoError(t, err)
	assert.Equal(t, ConsumableUsed{Item: energy, Remaining: 2}, ev)
	assert.False(t, e.CanUseConsumable(energy), "used items leave the inventory")

	_, err = e.UseConsumable(boost)
	require.NoError(t, err)
	assert.Equal(t, 5, e.human().Boosts[domain.StatPower])

	_, err = e.UseConsumable(xp)
	require.NoError(t, err)
	assert.Zero(t, e.RemainingConsumables())

	assert.False(t, e.CanUseConsumable(extra))
	_, err = e.UseConsumable(extra)
	assert.ErrorIs(t, err, ErrMaxConsumables)

	r := e.RunToCompletion()
	require.True(t, r.Won)
	assert.Equal(t, 150, r.XP)
	assert.True(t, e.human().Boosts.IsZero(), "boosts end with the match")
}

func TestUseConsumable_XPMultipliersDoNotStack(t *testing.T) {
	low := Consumable{ID: "x1", Kind: ConsumableXPMultiplier, Amount: 2}
	high := Consumable{ID: "x2", Kind: ConsumableXPMultiplier, Amount: 1.5}

	e := newSingles(t, domain.DefaultMatchConfig(), competitor("ana", 50), competitor("bo", 50),
		WithRandomSource(&stubSource{v: 0}), WithConsumables(low, high))
	e.Start()
	_, err := e.UseConsumable(low)
	require.NoError(t, err)
	_, err = e.UseConsumable(high)
	require.NoError(t, err)

	r := e.RunToCompletion()
	assert.Equal(t, 200, r.XP)
}

func TestUseConsumable_Invalid(t *testing.T) {
	broken := Consumable{ID: "bad", Kind: ConsumableStatBoost, Amount: 3, Stat: domain.StatType(99)}
	empty := Consumable{ID: "empty", Kind: ConsumableEnergy}

	e := newSingles(t, domain.DefaultMatchConfig(), competitor("ana", 50), competitor("bo", 50),
		WithConsumables(broken, empty))
	e.Start()

	_, err := e.UseConsumable(broken)
	assert.ErrorIs(t, err, ErrInvalidConsumable)
	_, err = e.UseConsumable(empty)
	assert.ErrorIs(t, err, ErrInvalidConsumable)
	assert.Equal(t, 3, e.RemainingConsumables())
}
