package match

import (
	"errors"
	"math"
	"pickleball-sim/internal/constants"
	"pickleball-sim/internal/domain"
)

type ConsumableKind string

const (
	ConsumableEnergy       ConsumableKind = "energy_restore"
	ConsumableStatBoost    ConsumableKind = "stat_boost"
	ConsumableXPMultiplier ConsumableKind = "xp_multiplier"
)

// Consumable is a single-use item. Amount is energy for energy_restore, flat
// stat points for stat_boost and the multiplier for xp_multiplier.
type Consumable struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Kind   ConsumableKind  `json:"kind"`
	Amount float64         `json:"amount"`
	Stat   domain.StatType `json:"stat,omitempty"`
}

func (c Consumable) validate() error {
	if c.Amount <= 0 {
		return ErrInvalidConsumable
	}
	switch c.Kind {
	case ConsumableEnergy, ConsumableXPMultiplier:
		return nil
	case ConsumableStatBoost:
		if !c.Stat.Valid() {
			return ErrInvalidConsumable
		}
		return nil
	}
	return ErrInvalidConsumable
}

var (
	ErrMatchNotInProgress    = errors.New("match is not in progress")
	ErrTimeoutUsed           = errors.New("already used timeout this game")
	ErrNoOpponentMomentum    = errors.New("opponent has no momentum to break")
	ErrMaxConsumables        = errors.New("max consumables reached")
	ErrConsumableUnavailable = errors.New("consumable not in inventory")
	ErrInvalidConsumable     = errors.New("invalid consumable")
	ErrHookCallUsed          = errors.New("already used hook call this game")
	ErrHookTooEarly          = errors.New("can only hook after a point is played")
)

// LootGenerator turns a won match into items. The engine only asks; what comes
// back is up to the caller's tables.
type LootGenerator interface {
	Generate(req domain.LootRequest) []domain.LootItem
}

// RequestTimeout restores the player's side and breaks the opponent's run.
func (e *Engine) RequestTimeout() (TimeoutCalled, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.timeoutAllowed(); err != nil {
		return TimeoutCalled{}, err
	}

	broken := e.momentum.Streak(domain.SideOpponent)
	for _, m := range e.sides[domain.SidePlayer].Members {
		m.Fatigue.Restore(constants.TimeoutEnergyRestore)
	}
	e.momentum.ResetStreak(domain.SideOpponent)
	e.timeoutUsed = true

	ev := TimeoutCalled{
		Game:           e.game,
		BrokenStreak:   broken,
		EnergyRestored: constants.TimeoutEnergyRestore,
		PlayerEnergy:   e.human().Fatigue.Energy(),
	}
	e.emit(ev)
	e.syncFatigueLevels()
	return ev, nil
}

func (e *Engine) timeoutAllowed() error {
	if e.phase != phasePlaying {
		return ErrMatchNotInProgress
	}
	if e.timeoutUsed {
		return ErrTimeoutUsed
	}
	if e.momentum.Streak(domain.SideOpponent) < constants.TimeoutStreakThreshold {
		return ErrNoOpponentMomentum
	}
	return nil
}

// UseConsumable spends one item from the inventory passed to the engine.
// Stat boosts and XP multipliers last until the match ends.
func (e *Engine) UseConsumable(item Consumable) (ConsumableUsed, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx, err := e.consumableAllowed(item)
	if err != nil {
		return ConsumableUsed{}, err
	}
	item = e.inventory[idx]
	if err := item.validate(); err != nil {
		return ConsumableUsed{}, err
	}

	human := e.human()
	switch item.Kind {
	case ConsumableEnergy:
		human.Fatigue.Restore(item.Amount)
	case ConsumableStatBoost:
		human.Boosts[item.Stat] += int(math.Round(item.Amount))
	case ConsumableXPMultiplier:
		e.xpMultiplier = math.Max(e.xpMultiplier, item.Amount)
	}

	e.inventory = append(e.inventory[:idx], e.inventory[idx+1:]...)
	e.consumablesUsed++

	ev := ConsumableUsed{Item: item, Remaining: e.remainingConsumables()}
	e.emit(ev)
	e.syncFatigueLevels()
	return ev, nil
}

func (e *Engine) consumableAllowed(item Consumable) (int, error) {
	if e.phase != phasePlaying {
		return -1, ErrMatchNotInProgress
	}
	if e.consumablesUsed >= constants.MaxConsumablesPerMatch {
		return -1, ErrMaxConsumables
	}
	for i, c := range e.inventory {
		if c.ID == item.ID {
			return i, nil
		}
	}
	return -1, ErrConsumableUnavailable
}

// RequestHookCall challenges the last line call. The outcome is a point of its
// own, recorded with a zero rally length.
func (e *Engine) RequestHookCall() (HookCallAttempt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.hookAllowed(); err != nil {
		return HookCallAttempt{}, err
	}

	chance := HookChance(e.reputation)
	success := e.src.Float64() < chance

	winner, change := domain.SideOpponent, -constants.HookCaughtPenalty
	if success {
		winner, change = domain.SidePlayer, -constants.HookSuccessPenalty
	}
	e.reputation += change
	e.reputationDelta += change
	e.hookUsed = true

	ev := HookCallAttempt{Game: e.game, Success: success, Chance: chance, ReputationChange: change}
	e.emit(ev)

	e.recordPoint(winner, domain.PointHookCall, 0, e.servingSide())
	e.closeGameIfOver()
	return ev, nil
}

func (e *Engine) hookAllowed() error {
	if e.phase != phasePlaying {
		return ErrMatchNotInProgress
	}
	if e.hookUsed {
		return ErrHookCallUsed
	}
	if e.gamePoints == 0 {
		return ErrHookTooEarly
	}
	return nil
}

// HookChance is the probability a hook call goes unnoticed at a reputation.
func HookChance(reputation int) float64 {
	chance := constants.HookBaseChance + float64(reputation)*constants.HookPerReputation
	return math.Max(0, math.Min(constants.HookMaxChance, chance))
}

// RequestSkip stops per-point events; the simulation itself still runs.
func (e *Engine) RequestSkip() {
	e.mu.Lock()
	e.skipRequested = true
	e.mu.Unlock()
}

// RequestResign takes effect before the next point.
func (e *Engine) RequestResign() {
	e.mu.Lock()
	e.resignRequested = true
	e.mu.Unlock()
}

func (e *Engine) CanTimeout() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.timeoutAllowed() == nil
}

func (e *Engine) CanHookCall() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hookAllowed() == nil
}

func (e *Engine) CanUseConsumable(item Consumable) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, err := e.consumableAllowed(item)
	return err == nil
}

func (e *Engine) RemainingConsumables() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.remainingConsumables()
}

func (e *Engine) remainingConsumables() int {
	return constants.MaxConsumablesPerMatch - e.consumablesUsed
}

func (e *Engine) OpponentCurrentStreak() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.momentum.Streak(domain.SideOpponent)
}
