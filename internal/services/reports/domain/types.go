// Package domain defines the leaderboard and reporting types
// All data derives from archived games; nothing here mutates history
package domain

import "time"

// RankingEntry is one leaderboard row
type RankingEntry struct {
	Rank     int     `json:"rank"`
	Username string  `json:"username"`
	Wins     int     `json:"wins"`
	Losses   int     `json:"losses"`
	Ties     int     `json:"ties"`
	Total    int     `json:"total"`
	WinRatio float64 `json:"win_ratio"`
}

// PlayerStats is the per-player view; visible to the player even when
// excluded from the global ranking
type PlayerStats struct {
	Username string       `json:"username"`
	Wins     int          `json:"wins"`
	Losses   int          `json:"losses"`
	Ties     int          `json:"ties"`
	Total    int          `json:"total"`
	WinRatio float64      `json:"win_ratio"`
	Recent   []GameResult `json:"recent_games"`
}

// GameResult is one archived game summary
type GameResult struct {
	GameID     string    `json:"game_id"`
	Player1    string    `json:"player1"`
	Player2    string    `json:"player2"`
	P1Score    int       `json:"player1_score"`
	P2Score    int       `json:"player2_score"`
	Winner     *string   `json:"winner"`
	ArchivedAt time.Time `json:"archived_at"`
}

// Aggregate is the global statistics view
type Aggregate struct {
	TotalGames    int     `json:"total_games"`
	TotalPlayers  int     `json:"total_players"`
	TotalTies     int     `json:"total_ties"`
	AvgScore      float64 `json:"avg_score"`
	HighestScore  int     `json:"highest_score"`
	MostActiveDay *string `json:"most_active_day,omitempty"`
}
