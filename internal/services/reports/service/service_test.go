package service

import (
	"context"
	"testing"

	perr "cardduel/internal/platform/errors"
	dom "cardduel/internal/services/reports/domain"
)

// memBoard records the limits it was asked for
type memBoard struct {
	lastLimit  int
	lastRecent int
}

func (m *memBoard) Ranking(_ context.Context, limit int) ([]dom.RankingEntry, error) {
	m.lastLimit = limit
	return []dom.RankingEntry{}, nil
}

func (m *memBoard) PlayerStats(_ context.Context, username string, recentLimit int) (dom.PlayerStats, error) {
	m.lastRecent = recentLimit
	return dom.PlayerStats{Username: username}, nil
}

func (m *memBoard) Recent(_ context.Context, limit int) ([]dom.GameResult, error) {
	m.lastLimit = limit
	return []dom.GameResult{}, nil
}

func (m *memBoard) Aggregate(context.Context) (dom.Aggregate, error) {
	return dom.Aggregate{TotalGames: 3}, nil
}

// memVisibility is a map-backed VisibilityPort defaulting to visible
type memVisibility struct{ rows map[string]bool }

func (m *memVisibility) Get(_ context.Context, username string) (bool, error) {
	if v, ok := m.rows[username]; ok {
		return v, nil
	}
	return true, nil
}

func (m *memVisibility) Set(_ context.Context, username string, visible bool) error {
	m.rows[username] = visible
	return nil
}

func newService() (*Service, *memBoard, *memVisibility) {
	board := &memBoard{}
	vis := &memVisibility{rows: map[string]bool{}}
	return New(board, vis, Config{}), board, vis
}

func TestRankingLimitClamping(t *testing.T) {
	svc, board, _ := newService()
	ctx := context.Background()

	if _, err := svc.Ranking(ctx, 0); err != nil {
		t.Fatalf("ranking: %v", err)
	}
	if board.lastLimit != svc.Cfg.DefaultLimit {
		t.Fatalf("zero limit used %d, want default %d", board.lastLimit, svc.Cfg.DefaultLimit)
	}

	if _, err := svc.Ranking(ctx, 10_000); err != nil {
		t.Fatalf("ranking: %v", err)
	}
	if board.lastLimit != svc.Cfg.HardLimit {
		t.Fatalf("oversized limit used %d, want hard cap %d", board.lastLimit, svc.Cfg.HardLimit)
	}

	if _, err := svc.Recent(ctx, -5); err != nil {
		t.Fatalf("recent: %v", err)
	}
	if board.lastLimit != svc.Cfg.DefaultLimit {
		t.Fatalf("negative limit used %d, want default", board.lastLimit)
	}
}

func TestPlayerStatsRequiresName(t *testing.T) {
	svc, board, _ := newService()

	if _, err := svc.PlayerStats(context.Background(), ""); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("empty name: got %v, want invalid argument", err)
	}

	stats, err := svc.PlayerStats(context.Background(), "alice")
	if err != nil || stats.Username != "alice" {
		t.Fatalf("player stats = %+v, %v", stats, err)
	}
	if board.lastRecent != svc.Cfg.RecentGames {
		t.Fatalf("recent limit = %d, want %d", board.lastRecent, svc.Cfg.RecentGames)
	}
}

func TestVisibilityDefaultsAndToggle(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()

	visible, err := svc.GetVisibility(ctx, "alice")
	if err != nil || !visible {
		t.Fatalf("default visibility = %v, %v; want true", visible, err)
	}

	if err := svc.SetVisibility(ctx, "alice", false); err != nil {
		t.Fatalf("set visibility: %v", err)
	}
	visible, err = svc.GetVisibility(ctx, "alice")
	if err != nil || visible {
		t.Fatalf("after opt-out visibility = %v, %v; want false", visible, err)
	}
}

func TestAggregatePassThrough(t *testing.T) {
	svc, _, _ := newService()

	agg, err := svc.Aggregate(context.Background())
	if err != nil || agg.TotalGames != 3 {
		t.Fatalf("aggregate = %+v, %v", agg, err)
	}
}
