package repo

import (
	"context"
	"encoding/json"

	perr "cardduel/internal/platform/errors"
	"cardduel/internal/platform/store"
	dom "cardduel/internal/services/games/domain"
)

// ArchivePG binds the frozen history repo to a querier
type ArchivePG struct{}

// NewArchive returns the archive repo binder
func NewArchive() store.Binder[dom.ArchivePort] { return ArchivePG{} }

// Bind implements store.Binder
func (ArchivePG) Bind(q store.RowQuerier) dom.ArchivePort { return &archiveQueries{q: q} }

type archiveQueries struct{ q store.RowQuerier }

var _ dom.ArchivePort = (*archiveQueries)(nil)

// Archive inserts the sealed history row; an existing row wins the race
func (r *archiveQueries) Archive(ctx context.Context, rec dom.ArchiveRecord) error {
	history, err := json.Marshal(rec.History)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "encode archive history")
	}

	_, err = r.q.Exec(ctx, `
		INSERT INTO game_history (game_id, player1, player2, player1_score, player2_score,
			winner, ciphertext, mac, round_history, archived_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (game_id) DO NOTHING`,
		rec.GameID, rec.Player1, rec.Player2, rec.P1Score, rec.P2Score,
		rec.Winner, rec.Ciphertext, rec.MAC, history, rec.ArchivedAt)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "archive game")
	}
	return nil
}

// Fetch loads the archive row for a game
func (r *archiveQueries) Fetch(ctx context.Context, gameID string) (dom.ArchiveRecord, error) {
	row := r.q.QueryRow(ctx, `
		SELECT game_id, player1, player2, player1_score, player2_score,
			winner, ciphertext, mac, round_history, archived_at
		FROM game_history WHERE game_id = $1`, gameID)

	var (
		rec     dom.ArchiveRecord
		history []byte
	)
	err := row.Scan(&rec.GameID, &rec.Player1, &rec.Player2, &rec.P1Score, &rec.P2Score,
		&rec.Winner, &rec.Ciphertext, &rec.MAC, &history, &rec.ArchivedAt)
	if err != nil {
		if store.IsNoRows(err) || perr.IsSQLState(err, "22P02") {
			return dom.ArchiveRecord{}, perr.NotFoundf("no archived history for game %s", gameID)
		}
		return dom.ArchiveRecord{}, perr.Wrap(err, perr.ErrorCodeDB, "fetch archive")
	}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &rec.History); err != nil {
			return dom.ArchiveRecord{}, perr.Wrap(err, perr.ErrorCodeDB, "decode archive history")
		}
	}
	return rec, nil
}

// IsArchived reports whether the game already has a frozen row
func (r *archiveQueries) IsArchived(ctx context.Context, gameID string) (bool, error) {
	var ok bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM game_history WHERE game_id = $1)`, gameID,
	).Scan(&ok)
	if err != nil {
		if perr.IsSQLState(err, "22P02") {
			return false, nil
		}
		return false, perr.Wrap(err, perr.ErrorCodeDB, "check archive")
	}
	return ok, nil
}
