// Package stats turns base stat lines into the values the rally simulator
// consumes: equipment aggregation with diminishing returns, fatigue and
// momentum scaling, consumable boosts and doubles team compositing.
package stats

import (
	"math"
	"pickleball-sim/internal/constants"
	"pickleball-sim/internal/domain"
)

// Boosts holds flat per-stat boosts from consumables, indexed by StatType.
type Boosts [domain.StatCount]int

func (b Boosts) IsZero() bool {
	return b == Boosts{}
}

// EffectiveStats applies every item the player is allowed to wear at level.
func EffectiveStats(base domain.PlayerStats, equipment []domain.Equipment, level int) domain.PlayerStats {
	totals := BonusTotals(equipment, level)
	return base.Map(func(stat domain.StatType, v int) int {
		return ApplyDiminishingReturns(v, totals[stat])
	})
}

// BonusTotals sums flat bonuses (scaled by level multiplier), cumulative set
// tiers and trait deltas per stat. Items above the player's level are skipped.
func BonusTotals(equipment []domain.Equipment, level int) Boosts {
	var totals Boosts
	setCounts := make(map[string]int)
	setTiers := make(map[string][]domain.SetBonusTier)
	var setOrder []string

	for _, item := range equipment {
		if item.RequiredLevel > level {
			continue
		}
		mult := item.Multiplier()
		for stat, bonus := range item.Bonuses {
			if stat.Valid() {
				totals[stat] += int(math.Round(float64(bonus) * mult))
			}
		}
		for _, trait := range item.Traits {
			for stat, delta := range trait.Deltas {
				if stat.Valid() {
					totals[stat] += delta
				}
			}
		}
		if item.SetID != "" {
			if _, seen := setCounts[item.SetID]; !seen {
				setOrder = append(setOrder, item.SetID)
				setTiers[item.SetID] = item.SetBonuses
			}
			setCounts[item.SetID]++
		}
	}

	for _, setID := range setOrder {
		owned := setCounts[setID]
		for _, tier := range setTiers[setID] {
			if tier.Pieces > owned {
				continue
			}
			for stat, bonus := range tier.Bonuses {
				if stat.Valid() {
					totals[stat] += bonus
				}
			}
		}
	}
	return totals
}

// ApplyDiminishingReturns spends bonus points against the current value:
// full rate below 60, 0.7 between 60 and 80, 0.4 above 80, capped at 99.
// A net bonus of zero or less leaves the base value untouched.
func ApplyDiminishingReturns(base, bonus int) int {
	if bonus <= 0 {
		return base
	}

	value := float64(base)
	remaining := float64(bonus)

	if value < constants.DRFullBandCeiling {
		take := math.Min(remaining, constants.DRFullBandCeiling-value)
		value += take
		remaining -= take
	}
	if remaining > 0 && value < constants.DRReducedBandCeiling {
		room := constants.DRReducedBandCeiling - value
		gain := remaining * constants.DRReducedRate
		if gain <= room {
			value += gain
			remaining = 0
		} else {
			value = constants.DRReducedBandCeiling
			remaining -= room / constants.DRReducedRate
		}
	}
	if remaining > 0 {
		value += remaining * constants.DRMinimalRate
	}

	result := int(math.Floor(value + 1e-9))
	if result > domain.MaxStatValue {
		return domain.MaxStatValue
	}
	return result
}

func fatiguePenalty(energy float64) float64 {
	switch {
	case energy > constants.FatigueMildThreshold:
		return 0
	case energy > constants.FatigueModThreshold:
		return constants.FatigueMildPenalty
	case energy > constants.FatigueSevereThreshold:
		return constants.FatigueModPenalty
	default:
		return constants.FatigueSeverePenalty
	}
}

// ApplyFatigue scales every stat except stamina down once energy drops to the
// mild threshold. Values never fall below MinStatValue.
func ApplyFatigue(s domain.PlayerStats, energy float64) domain.PlayerStats {
	penalty := fatiguePenalty(energy)
	if penalty == 0 {
		return s
	}
	return s.Map(func(stat domain.StatType, v int) int {
		if stat == domain.StatStamina {
			return v
		}
		scaled := int(math.Round(float64(v) * (1 - penalty)))
		if scaled < domain.MinStatValue {
			return domain.MinStatValue
		}
		return scaled
	})
}

var momentumStats = map[domain.StatType]bool{
	domain.StatPower:       true,
	domain.StatAccuracy:    true,
	domain.StatSpin:        true,
	domain.StatSpeed:       true,
	domain.StatClutch:      true,
	domain.StatConsistency: true,
}

// ApplyMomentum multiplies the offense/defense subset by (1 + modifier).
func ApplyMomentum(s domain.PlayerStats, modifier float64) domain.PlayerStats {
	if modifier == 0 {
		return s
	}
	return s.Map(func(stat domain.StatType, v int) int {
		if !momentumStats[stat] {
			return v
		}
		return int(math.Round(float64(v) * (1 + modifier)))
	})
}

// ApplyBoosts adds consumable boosts flat, clamped to the stat range.
func ApplyBoosts(s domain.PlayerStats, boosts Boosts) domain.PlayerStats {
	if boosts.IsZero() {
		return s
	}
	return s.Map(func(stat domain.StatType, v int) int {
		return domain.ClampStat(v + boosts[stat])
	})
}

// ScaleEquipment returns copies of items with their level multiplier scaled by factor.
func ScaleEquipment(items []domain.Equipment, factor float64) []domain.Equipment {
	if factor == 1 || len(items) == 0 {
		return items
	}
	out := make([]domain.Equipment, len(items))
	for i, item := range items {
		item.LevelMultiplier = item.Multiplier() * factor
		out[i] = item
	}
	return out
}
