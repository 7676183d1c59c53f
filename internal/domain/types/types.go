// Package types contains common types used across the application
package types

// RatingEntry represents a leaderboard entry
type RatingEntry struct {
	Rank     int     `json:"rank"`
	PlayerID string  `json:"player_id"`
	Games    int     `json:"games"`
	Rating   float64 `json:"rating"`
}

// HistoryEntry is one rating snapshot of one participant
type HistoryEntry struct {
	PlayerID string  `json:"player_id"`
	Label    string  `json:"label"`
	Rating   float64 `json:"rating"`
}
