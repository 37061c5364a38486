package domain

import "context"

// LeaderboardPort is the archived-game aggregation surface
type LeaderboardPort interface {
	// Ranking returns entries ordered by wins then win ratio, excluding
	// players whose visibility flag is off
	Ranking(ctx context.Context, limit int) ([]RankingEntry, error)

	PlayerStats(ctx context.Context, username string, recentLimit int) (PlayerStats, error)
	Recent(ctx context.Context, limit int) ([]GameResult, error)
	Aggregate(ctx context.Context) (Aggregate, error)
}

// VisibilityPort reads and writes the account-level ranking opt-out
type VisibilityPort interface {
	Get(ctx context.Context, username string) (bool, error)
	Set(ctx context.Context, username string, visible bool) error
}
