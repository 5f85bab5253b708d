package match

import (
	"errors"
	"fmt"
	"pickleball-sim/internal/constants"
	"pickleball-sim/internal/domain"
	"pickleball-sim/internal/fatigue"
	"pickleball-sim/internal/point"
	"pickleball-sim/internal/stats"
)

type Competitor struct {
	Name      string             `json:"name"`
	Stats     domain.PlayerStats `json:"stats"`
	Equipment []domain.Equipment `json:"equipment,omitempty"`
	Level     int                `json:"level"`
	// Energy is the starting energy; zero or less means fully rested.
	Energy float64 `json:"energy,omitempty"`
	// NPC competitors have their equipment scaled by the tuning document.
	NPC bool `json:"npc,omitempty"`
}

// Participants is either Singles or Doubles.
type Participants interface {
	matchType() domain.MatchType
	validate() error
}

type Singles struct {
	Player   Competitor `json:"player"`
	Opponent Competitor `json:"opponent"`
}

func (Singles) matchType() domain.MatchType { return domain.MatchSingles }

func (s Singles) validate() error {
	return nil
}

type Doubles struct {
	Player          Competitor        `json:"player"`
	Partner         Competitor        `json:"partner"`
	Opponent        Competitor        `json:"opponent"`
	Opponent2       Competitor        `json:"opponent2"`
	PlayerSynergy   stats.TeamSynergy `json:"player_synergy"`
	OpponentSynergy stats.TeamSynergy `json:"opponent_synergy"`
}

func (Doubles) matchType() domain.MatchType { return domain.MatchDoubles }

func (d Doubles) validate() error {
	if d.PlayerSynergy.Multiplier <= 0 {
		return errors.New("doubles requires a positive player synergy multiplier")
	}
	if d.OpponentSynergy.Multiplier <= 0 {
		return errors.New("doubles requires a positive opponent synergy multiplier")
	}
	return nil
}

func validateParticipants(cfg domain.MatchConfig, p Participants) error {
	if p == nil {
		return errors.New("participants are required")
	}
	if p.matchType() != cfg.Type {
		return fmt.Errorf("match type %q does not match %s participants", cfg.Type, p.matchType())
	}
	return p.validate()
}

func newParticipant(c Competitor, npcScale float64) *point.Participant {
	energy := c.Energy
	if energy <= 0 {
		energy = constants.MaxEnergy
	}
	equipment := c.Equipment
	if c.NPC {
		equipment = stats.ScaleEquipment(equipment, npcScale)
	}
	base := c.Stats.Clamped()
	return &point.Participant{
		Name:      c.Name,
		Base:      base,
		Equipment: equipment,
		Level:     c.Level,
		Fatigue:   fatigue.New(base.Stamina, energy),
	}
}

func buildTeams(p Participants, npcScale float64) [2]point.Team {
	switch v := p.(type) {
	case *Singles:
		return buildTeams(*v, npcScale)
	case *Doubles:
		return buildTeams(*v, npcScale)
	case Singles:
		return [2]point.Team{
			{Members: []*point.Participant{newParticipant(v.Player, npcScale)}},
			{Members: []*point.Participant{newParticipant(v.Opponent, npcScale)}},
		}
	case Doubles:
		return [2]point.Team{
			{
				Members: []*point.Participant{newParticipant(v.Player, npcScale), newParticipant(v.Partner, npcScale)},
				Synergy: v.PlayerSynergy,
			},
			{
				Members: []*point.Participant{newParticipant(v.Opponent, npcScale), newParticipant(v.Opponent2, npcScale)},
				Synergy: v.OpponentSynergy,
			},
		}
	}
	return [2]point.Team{}
}

func teamName(t point.Team) string {
	if len(t.Members) == 2 {
		return t.Members[0].Name + " & " + t.Members[1].Name
	}
	return t.Members[0].Name
}
