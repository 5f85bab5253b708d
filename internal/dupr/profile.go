package dupr

import (
	"math"
	"pickleball-sim/internal/constants"
	"sort"
	"time"
)

type Profile struct {
	PlayerID       string
	Rating         float64
	RatedMatches   int
	Opponents      map[string]struct{}
	LastRatedMatch time.Time
}

func NewProfile(playerID string) *Profile {
	return &Profile{
		PlayerID:  playerID,
		Rating:    constants.DefaultRating,
		Opponents: make(map[string]struct{}),
	}
}

func (p *Profile) UniqueOpponents() int {
	return len(p.Opponents)
}

func (p *Profile) OpponentIDs() []string {
	ids := make([]string, 0, len(p.Opponents))
	for id := range p.Opponents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// RecordRatedMatch is the only mutation path for a profile.
func (p *Profile) RecordRatedMatch(opponentID string, delta float64, at time.Time) float64 {
	if p.Opponents == nil {
		p.Opponents = make(map[string]struct{})
	}
	p.Rating = Clamp(p.Rating + delta)
	p.RatedMatches++
	if opponentID != "" {
		p.Opponents[opponentID] = struct{}{}
	}
	p.LastRatedMatch = at
	return p.Rating
}

// Reliability blends match depth, opponent breadth and recency into [0, 1].
func Reliability(p *Profile, now time.Time) float64 {
	depth := math.Min(1, float64(p.RatedMatches)/constants.DepthCap)
	breadth := math.Min(1, float64(p.UniqueOpponents())/constants.BreadthCap)
	return constants.DepthWeight*depth +
		constants.BreadthWeight*breadth +
		constants.RecencyWeight*recency(p.LastRatedMatch, now)
}

func recency(last, now time.Time) float64 {
	if last.IsZero() {
		return 0
	}
	age := now.Sub(last)
	if age <= constants.FreshnessWindow {
		return 1
	}
	over := float64(age-constants.FreshnessWindow) / float64(constants.RecencyDecay)
	return constants.RecencyFloor + (1-constants.RecencyFloor)*math.Exp(-over)
}
