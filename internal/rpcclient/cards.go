package rpcclient

import (
	"context"

	cards "cardduel/internal/services/cards/domain"
	gamedom "cardduel/internal/services/games/domain"
)

// DeckSource draws concrete cards from the cards service's peer surface
type DeckSource struct{ c *Client }

// NewDeckSource wraps a client for deck materialization
func NewDeckSource(c *Client) *DeckSource { return &DeckSource{c: c} }

var _ gamedom.DeckSourcePort = (*DeckSource)(nil)

// RandomOfSuit draws one random card of the given suit
func (d *DeckSource) RandomOfSuit(ctx context.Context, suit cards.Suit) (gamedom.Card, error) {
	var out cards.Card
	err := d.c.call(ctx, "/rpc/cards/draw", map[string]string{"type": string(suit)}, &out)
	if err != nil {
		return gamedom.Card{}, err
	}
	return gamedom.Card{Suit: out.Suit, Power: out.Power}, nil
}

// Catalog reads the seeded card rows from the persistence adapter
type Catalog struct{ c *Client }

// NewCatalog wraps a client for the seeded catalogue reads
func NewCatalog(c *Client) *Catalog { return &Catalog{c: c} }

var _ cards.CatalogPort = (*Catalog)(nil)

// List returns the whole seeded catalogue
func (cl *Catalog) List(ctx context.Context) ([]cards.Card, error) {
	var out []cards.Card
	err := cl.c.call(ctx, "/rpc/cards/list", nil, &out)
	return out, err
}

// BySuit returns the seeded cards of one suit
func (cl *Catalog) BySuit(ctx context.Context, suit cards.Suit) ([]cards.Card, error) {
	var out []cards.Card
	err := cl.c.call(ctx, "/rpc/cards/by-type", map[string]string{"type": string(suit)}, &out)
	return out, err
}

// ByID returns one seeded card
func (cl *Catalog) ByID(ctx context.Context, id int) (cards.Card, error) {
	var out cards.Card
	err := cl.c.call(ctx, "/rpc/cards/by-id", map[string]int{"id": id}, &out)
	return out, err
}
