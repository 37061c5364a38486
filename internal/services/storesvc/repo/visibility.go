package repo

import (
	"context"

	perr "cardduel/internal/platform/errors"
	"cardduel/internal/platform/store"
	dom "cardduel/internal/services/reports/domain"
)

// VisibilityPG binds the ranking opt-out repo to a querier
type VisibilityPG struct{}

// NewVisibility returns the visibility repo binder
func NewVisibility() store.Binder[dom.VisibilityPort] { return VisibilityPG{} }

// Bind implements store.Binder
func (VisibilityPG) Bind(q store.RowQuerier) dom.VisibilityPort { return &visibilityQueries{q: q} }

type visibilityQueries struct{ q store.RowQuerier }

var _ dom.VisibilityPort = (*visibilityQueries)(nil)

// Get reads the flag; players with no preference row are visible
func (r *visibilityQueries) Get(ctx context.Context, username string) (bool, error) {
	var visible bool
	err := r.q.QueryRow(ctx,
		`SELECT ranking_visible FROM user_preferences WHERE username = $1`, username,
	).Scan(&visible)
	if err != nil {
		if store.IsNoRows(err) {
			return true, nil
		}
		return false, perr.Wrap(err, perr.ErrorCodeDB, "get visibility")
	}
	return visible, nil
}

// Set upserts the flag
func (r *visibilityQueries) Set(ctx context.Context, username string, visible bool) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO user_preferences (username, ranking_visible, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (username) DO UPDATE
		SET ranking_visible = EXCLUDED.ranking_visible, updated_at = now()`,
		username, visible)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "set visibility")
	}
	return nil
}
