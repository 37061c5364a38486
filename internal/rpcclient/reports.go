package rpcclient

import (
	"context"

	dom "cardduel/internal/services/reports/domain"
)

// Leaderboard drives the persistence adapter's aggregation surface
type Leaderboard struct{ c *Client }

// NewLeaderboard wraps a client for the aggregation surface
func NewLeaderboard(c *Client) *Leaderboard { return &Leaderboard{c: c} }

var _ dom.LeaderboardPort = (*Leaderboard)(nil)

// Ranking returns the visibility-filtered global board
func (l *Leaderboard) Ranking(ctx context.Context, limit int) ([]dom.RankingEntry, error) {
	var out []dom.RankingEntry
	err := l.c.call(ctx, "/rpc/leaderboard/ranking", map[string]int{"limit": limit}, &out)
	return out, err
}

// PlayerStats returns one player's record plus their latest games
func (l *Leaderboard) PlayerStats(ctx context.Context, username string, recentLimit int) (dom.PlayerStats, error) {
	var out dom.PlayerStats
	err := l.c.call(ctx, "/rpc/leaderboard/player", map[string]any{
		"username": username, "recent_limit": recentLimit,
	}, &out)
	return out, err
}

// Recent returns the latest archived games
func (l *Leaderboard) Recent(ctx context.Context, limit int) ([]dom.GameResult, error) {
	var out []dom.GameResult
	err := l.c.call(ctx, "/rpc/leaderboard/recent", map[string]int{"limit": limit}, &out)
	return out, err
}

// Aggregate returns the global statistics view
func (l *Leaderboard) Aggregate(ctx context.Context) (dom.Aggregate, error) {
	var out dom.Aggregate
	err := l.c.call(ctx, "/rpc/leaderboard/aggregate", nil, &out)
	return out, err
}

// Visibility drives the ranking opt-out surface
type Visibility struct{ c *Client }

// NewVisibility wraps a client for the opt-out surface
func NewVisibility(c *Client) *Visibility { return &Visibility{c: c} }

var _ dom.VisibilityPort = (*Visibility)(nil)

// Get reads the flag; players with no preference row are visible
func (v *Visibility) Get(ctx context.Context, username string) (bool, error) {
	var out struct {
		Visible bool `json:"visible"`
	}
	err := v.c.call(ctx, "/rpc/visibility/get", map[string]string{"username": username}, &out)
	return out.Visible, err
}

// Set upserts the flag
func (v *Visibility) Set(ctx context.Context, username string, visible bool) error {
	return v.c.call(ctx, "/rpc/visibility/set", map[string]any{
		"username": username, "visible": visible,
	}, nil)
}
