package model

import "time"

// SentimentReport is the qualitative outlook for one symbol.
type SentimentReport struct {
	Symbol         string    `json:"symbol"`
	Emotion        string    `json:"emotion"`
	Conclusion     string    `json:"conclusion"`
	PositivePoints []string  `json:"positive_points"`
	NegativePoints []string  `json:"negative_points"`
	FetchedAt      time.Time `json:"fetched_at"`
	// Unavailable marks a placeholder block produced because the provider could not be reached.
	Unavailable bool `json:"unavailable"`
}
