package repo

import (
	"context"

	perr "cardduel/internal/platform/errors"
	"cardduel/internal/platform/store"
	dom "cardduel/internal/services/reports/domain"
)

// LeaderboardPG binds the archive aggregation repo to a querier
type LeaderboardPG struct{}

// NewLeaderboard returns the leaderboard repo binder
func NewLeaderboard() store.Binder[dom.LeaderboardPort] { return LeaderboardPG{} }

// Bind implements store.Binder
func (LeaderboardPG) Bind(q store.RowQuerier) dom.LeaderboardPort { return &boardQueries{q: q} }

type boardQueries struct{ q store.RowQuerier }

var _ dom.LeaderboardPort = (*boardQueries)(nil)

// standingsCTE flattens game_history into one row per participant with the
// outcome from that participant's side
const standingsCTE = `
	WITH sides AS (
		SELECT player1 AS username,
			CASE WHEN winner = player1 THEN 1 ELSE 0 END AS win,
			CASE WHEN winner = player2 THEN 1 ELSE 0 END AS loss,
			CASE WHEN winner IS NULL THEN 1 ELSE 0 END AS tie
		FROM game_history
		UNION ALL
		SELECT player2,
			CASE WHEN winner = player2 THEN 1 ELSE 0 END,
			CASE WHEN winner = player1 THEN 1 ELSE 0 END,
			CASE WHEN winner IS NULL THEN 1 ELSE 0 END
		FROM game_history
	),
	standings AS (
		SELECT username,
			SUM(win)  AS wins,
			SUM(loss) AS losses,
			SUM(tie)  AS ties,
			COUNT(*)  AS total
		FROM sides
		GROUP BY username
	)`

// Ranking returns the global board ordered by wins then win ratio,
// excluding players who opted out of visibility
func (r *boardQueries) Ranking(ctx context.Context, limit int) ([]dom.RankingEntry, error) {
	rows, err := r.q.Query(ctx, standingsCTE+`
		SELECT s.username, s.wins, s.losses, s.ties, s.total,
			s.wins::float / s.total AS win_ratio
		FROM standings s
		LEFT JOIN user_preferences p ON p.username = s.username
		WHERE COALESCE(p.ranking_visible, TRUE)
		ORDER BY s.wins DESC, win_ratio DESC, s.username ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDB, "ranking")
	}
	defer rows.Close()

	out := make([]dom.RankingEntry, 0, limit)
	for rows.Next() {
		var e dom.RankingEntry
		if err := rows.Scan(&e.Username, &e.Wins, &e.Losses, &e.Ties, &e.Total, &e.WinRatio); err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeDB, "ranking scan")
		}
		e.Rank = len(out) + 1
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDB, "ranking rows")
	}
	return out, nil
}

// PlayerStats returns one player's record plus their latest games
// The visibility flag does not apply here: players always see themselves
func (r *boardQueries) PlayerStats(ctx context.Context, username string, recentLimit int) (dom.PlayerStats, error) {
	stats := dom.PlayerStats{Username: username, Recent: []dom.GameResult{}}

	err := r.q.QueryRow(ctx, standingsCTE+`
		SELECT wins, losses, ties, total, wins::float / total
		FROM standings WHERE username = $1`, username,
	).Scan(&stats.Wins, &stats.Losses, &stats.Ties, &stats.Total, &stats.WinRatio)
	if err != nil && !store.IsNoRows(err) {
		return dom.PlayerStats{}, perr.Wrap(err, perr.ErrorCodeDB, "player stats")
	}

	rows, err := r.q.Query(ctx, `
		SELECT game_id, player1, player2, player1_score, player2_score, winner, archived_at
		FROM game_history
		WHERE player1 = $1 OR player2 = $1
		ORDER BY archived_at DESC
		LIMIT $2`, username, recentLimit)
	if err != nil {
		return dom.PlayerStats{}, perr.Wrap(err, perr.ErrorCodeDB, "player recent")
	}
	defer rows.Close()

	for rows.Next() {
		var g dom.GameResult
		if err := rows.Scan(&g.GameID, &g.Player1, &g.Player2, &g.P1Score, &g.P2Score, &g.Winner, &g.ArchivedAt); err != nil {
			return dom.PlayerStats{}, perr.Wrap(err, perr.ErrorCodeDB, "player recent scan")
		}
		stats.Recent = append(stats.Recent, g)
	}
	if err := rows.Err(); err != nil {
		return dom.PlayerStats{}, perr.Wrap(err, perr.ErrorCodeDB, "player recent rows")
	}
	return stats, nil
}

// Recent returns the latest archived games
func (r *boardQueries) Recent(ctx context.Context, limit int) ([]dom.GameResult, error) {
	rows, err := r.q.Query(ctx, `
		SELECT game_id, player1, player2, player1_score, player2_score, winner, archived_at
		FROM game_history
		ORDER BY archived_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDB, "recent games")
	}
	defer rows.Close()

	out := make([]dom.GameResult, 0, limit)
	for rows.Next() {
		var g dom.GameResult
		if err := rows.Scan(&g.GameID, &g.Player1, &g.Player2, &g.P1Score, &g.P2Score, &g.Winner, &g.ArchivedAt); err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeDB, "recent games scan")
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDB, "recent games rows")
	}
	return out, nil
}

// Aggregate returns the global statistics view
func (r *boardQueries) Aggregate(ctx context.Context) (dom.Aggregate, error) {
	var agg dom.Aggregate
	err := r.q.QueryRow(ctx, `
		SELECT COUNT(*),
			(SELECT COUNT(DISTINCT u) FROM (
				SELECT player1 AS u FROM game_history
				UNION
				SELECT player2 FROM game_history) names),
			COUNT(*) FILTER (WHERE winner IS NULL),
			COALESCE(AVG((player1_score + player2_score) / 2.0), 0),
			COALESCE(MAX(GREATEST(player1_score, player2_score)), 0)
		FROM game_history`,
	).Scan(&agg.TotalGames, &agg.TotalPlayers, &agg.TotalTies, &agg.AvgScore, &agg.HighestScore)
	if err != nil {
		return dom.Aggregate{}, perr.Wrap(err, perr.ErrorCodeDB, "aggregate")
	}

	var day *string
	err = r.q.QueryRow(ctx, `
		SELECT to_char(archived_at::date, 'YYYY-MM-DD')
		FROM game_history
		GROUP BY archived_at::date
		ORDER BY COUNT(*) DESC, archived_at::date DESC
		LIMIT 1`,
	).Scan(&day)
	if err != nil && !store.IsNoRows(err) {
		return dom.Aggregate{}, perr.Wrap(err, perr.ErrorCodeDB, "aggregate most active day")
	}
	agg.MostActiveDay = day
	return agg, nil
}
