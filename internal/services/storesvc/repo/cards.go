package repo

import (
	"context"

	perr "cardduel/internal/platform/errors"
	"cardduel/internal/platform/store"
	dom "cardduel/internal/services/cards/domain"
)

// CardsPG binds the seeded catalogue reads to a querier
// The cards service samples from its in-memory copy of the same pool; this
// read side exists so peers can verify the seeded rows over rpc
type CardsPG struct{}

// NewCards returns the card catalogue repo binder
func NewCards() store.Binder[dom.CatalogPort] { return CardsPG{} }

// Bind implements store.Binder
func (CardsPG) Bind(q store.RowQuerier) dom.CatalogPort { return &cardQueries{q: q} }

type cardQueries struct{ q store.RowQuerier }

var _ dom.CatalogPort = (*cardQueries)(nil)

func (r *cardQueries) list(ctx context.Context, sql string, args ...any) ([]dom.Card, error) {
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDB, "list cards")
	}
	defer rows.Close()

	var out []dom.Card
	for rows.Next() {
		var c dom.Card
		if err := rows.Scan(&c.ID, &c.Suit, &c.Power); err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeDB, "scan card")
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDB, "list cards rows")
	}
	return out, nil
}

// List returns the whole catalogue in id order
func (r *cardQueries) List(ctx context.Context) ([]dom.Card, error) {
	return r.list(ctx, `SELECT id, type, power FROM cards ORDER BY id`)
}

// BySuit returns the 13 cards of one suit
func (r *cardQueries) BySuit(ctx context.Context, suit dom.Suit) ([]dom.Card, error) {
	return r.list(ctx, `SELECT id, type, power FROM cards WHERE type = $1 ORDER BY id`, string(suit))
}

// ByID returns one card
func (r *cardQueries) ByID(ctx context.Context, id int) (dom.Card, error) {
	var c dom.Card
	err := r.q.QueryRow(ctx, `SELECT id, type, power FROM cards WHERE id = $1`, id).
		Scan(&c.ID, &c.Suit, &c.Power)
	if err != nil {
		if store.IsNoRows(err) {
			return dom.Card{}, perr.NotFoundf("card %d not found", id)
		}
		return dom.Card{}, perr.Wrap(err, perr.ErrorCodeDB, "card by id")
	}
	return c, nil
}
