// Package service implements leaderboard reads and the visibility toggle
package service

import (
	"context"

	perr "cardduel/internal/platform/errors"
	dom "cardduel/internal/services/reports/domain"
)

// Config bounds the list endpoints
type Config struct {
	DefaultLimit int
	HardLimit    int
	RecentGames  int
}

// withDefaults fills unset fields
func (c Config) withDefaults() Config {
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = 10
	}
	if c.HardLimit <= 0 {
		c.HardLimit = 100
	}
	if c.RecentGames <= 0 {
		c.RecentGames = 10
	}
	return c
}

// Service implements the reporting operations over the archive aggregations
type Service struct {
	Board      dom.LeaderboardPort
	Visibility dom.VisibilityPort
	Cfg        Config
}

// New wires the reports service
func New(board dom.LeaderboardPort, visibility dom.VisibilityPort, cfg Config) *Service {
	if board == nil {
		panic("reports: nil leaderboard port")
	}
	if visibility == nil {
		panic("reports: nil visibility port")
	}
	return &Service{Board: board, Visibility: visibility, Cfg: cfg.withDefaults()}
}

// Ranking returns the global leaderboard
func (s *Service) Ranking(ctx context.Context, limit int) ([]dom.RankingEntry, error) {
	if limit <= 0 {
		limit = s.Cfg.DefaultLimit
	}
	if limit > s.Cfg.HardLimit {
		limit = s.Cfg.HardLimit
	}
	return s.Board.Ranking(ctx, limit)
}

// PlayerStats returns one player's record with their recent games
func (s *Service) PlayerStats(ctx context.Context, username string) (dom.PlayerStats, error) {
	if username == "" {
		return dom.PlayerStats{}, perr.InvalidArgf("player name is required")
	}
	return s.Board.PlayerStats(ctx, username, s.Cfg.RecentGames)
}

// Recent returns the latest completed games
func (s *Service) Recent(ctx context.Context, limit int) ([]dom.GameResult, error) {
	if limit <= 0 {
		limit = s.Cfg.DefaultLimit
	}
	if limit > s.Cfg.HardLimit {
		limit = s.Cfg.HardLimit
	}
	return s.Board.Recent(ctx, limit)
}

// Aggregate returns the global statistics view
func (s *Service) Aggregate(ctx context.Context) (dom.Aggregate, error) {
	return s.Board.Aggregate(ctx)
}

// GetVisibility reads the subject's ranking opt-out
func (s *Service) GetVisibility(ctx context.Context, username string) (bool, error) {
	return s.Visibility.Get(ctx, username)
}

// SetVisibility writes the subject's ranking opt-out
func (s *Service) SetVisibility(ctx context.Context, username string, visible bool) error {
	return s.Visibility.Set(ctx, username, visible)
}
