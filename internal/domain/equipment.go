package domain

type Slot string

const (
	SlotPaddle    Slot = "paddle"
	SlotShoes     Slot = "shoes"
	SlotShirt     Slot = "shirt"
	SlotShorts    Slot = "shorts"
	SlotHeadwear  Slot = "headwear"
	SlotWristband Slot = "wristband"
)

type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// SetBonusTier unlocks once at least Pieces items of the same set are equipped.
// Tiers are cumulative: owning 4 pieces grants both the 2-piece and 4-piece tier.
type SetBonusTier struct {
	Pieces  int              `json:"pieces"`
	Bonuses map[StatType]int `json:"bonuses"`
}

type Trait struct {
	Name   string           `json:"name"`
	Deltas map[StatType]int `json:"deltas"`
}

// Equipment is produced by the external loot tables and consumed read-only here.
type Equipment struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Slot            Slot             `json:"slot"`
	Rarity          Rarity           `json:"rarity"`
	Bonuses         map[StatType]int `json:"bonuses"`
	SetID           string           `json:"set_id,omitempty"`
	SetBonuses      []SetBonusTier   `json:"set_bonuses,omitempty"`
	Traits          []Trait          `json:"traits,omitempty"`
	LevelMultiplier float64          `json:"level_multiplier"`
	RequiredLevel   int              `json:"required_level"`
}

// Multiplier treats an unset level multiplier as 1.
func (e Equipment) Multiplier() float64 {
	if e.LevelMultiplier <= 0 {
		return 1
	}
	return e.LevelMultiplier
}
