package domain

import (
	"time"
)

// RatingHistory is one rating update for one player.
type RatingHistory struct {
	ID           string    `json:"id"` // nanoid
	MatchID      string    `json:"match_id"`
	PlayerID     string    `json:"player_id"`
	OpponentID   string    `json:"opponent_id"`
	RatingBefore float64   `json:"rating_before"`
	RatingAfter  float64   `json:"rating_after"`
	Delta        float64   `json:"delta"`
	KFactor      float64   `json:"k_factor"`
	Reliability  float64   `json:"reliability"`
	// Unrated matches were played across too wide a rating gap; Delta is 0.
	Unrated      bool      `json:"unrated"`
	RecordedAt   time.Time `json:"recorded_at"`
}

// MatchRecord is a finished match as stored in the ledger.
type MatchRecord struct {
	ID         string      `json:"id"` // uuid
	PlayerID   string      `json:"player_id"`
	OpponentID string      `json:"opponent_id"`
	Type       MatchType   `json:"type"`
	Seed       *uint64     `json:"seed,omitempty"` // nil when the match used the system source
	Result     MatchResult `json:"result"`
	CreatedAt  time.Time   `json:"created_at"`
}
