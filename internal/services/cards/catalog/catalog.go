// Package catalog indexes the card catalogue in memory and samples from it
package catalog

import (
	"context"
	"math/rand/v2"
	"sync"

	perr "cardduel/internal/platform/errors"
	dom "cardduel/internal/services/cards/domain"
)

// Catalog holds the immutable card pool plus derived indexes
// Safe for concurrent use; only the rng is guarded
type Catalog struct {
	cards  []dom.Card
	byID   map[int]dom.Card
	bySuit map[dom.Suit][]dom.Card

	mu  sync.Mutex
	rng *rand.Rand
}

// New indexes the given pool
// Passing nil uses the canonical generated catalogue
func New(cards []dom.Card) *Catalog {
	if cards == nil {
		cards = dom.Generate()
	}
	c := &Catalog{
		cards:  cards,
		byID:   make(map[int]dom.Card, len(cards)),
		bySuit: make(map[dom.Suit][]dom.Card, 3),
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, card := range cards {
		c.byID[card.ID] = card
		c.bySuit[card.Suit] = append(c.bySuit[card.Suit], card)
	}
	return c
}

// List returns the full pool
func (c *Catalog) List(context.Context) ([]dom.Card, error) {
	out := make([]dom.Card, len(c.cards))
	copy(out, c.cards)
	return out, nil
}

// BySuit returns the pool filtered to one suit
func (c *Catalog) BySuit(_ context.Context, suit dom.Suit) ([]dom.Card, error) {
	if !suit.Valid() {
		return nil, perr.InvalidArgf("unknown card type %q", suit)
	}
	src := c.bySuit[suit]
	out := make([]dom.Card, len(src))
	copy(out, src)
	return out, nil
}

// ByID returns one card
func (c *Catalog) ByID(_ context.Context, id int) (dom.Card, error) {
	card, ok := c.byID[id]
	if !ok {
		return dom.Card{}, perr.NotFoundf("card %d not found", id)
	}
	return card, nil
}

// RandomDeck samples size cards without replacement from the pool
func (c *Catalog) RandomDeck(_ context.Context, size int) ([]dom.Card, error) {
	if size < 1 || size > dom.MaxRandomDeck {
		return nil, perr.InvalidArgf("deck size must be between 1 and %d", dom.MaxRandomDeck)
	}
	if size > len(c.cards) {
		return nil, perr.InvalidArgf("deck size %d exceeds pool of %d", size, len(c.cards))
	}

	idx := make([]int, len(c.cards))
	for i := range idx {
		idx[i] = i
	}
	c.mu.Lock()
	c.rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
	c.mu.Unlock()

	out := make([]dom.Card, 0, size)
	for _, i := range idx[:size] {
		out = append(out, c.cards[i])
	}
	return out, nil
}

// RandomOfSuit draws one random card of the given suit, with replacement
func (c *Catalog) RandomOfSuit(_ context.Context, suit dom.Suit) (dom.Card, error) {
	if !suit.Valid() {
		return dom.Card{}, perr.InvalidArgf("unknown card type %q", suit)
	}
	pool := c.bySuit[suit]
	if len(pool) == 0 {
		return dom.Card{}, perr.Internalf("catalogue has no cards of type %q", suit)
	}
	c.mu.Lock()
	i := c.rng.IntN(len(pool))
	c.mu.Unlock()
	return pool[i], nil
}

// Stats derives the catalogue summary
func (c *Catalog) Stats(context.Context) (dom.Stats, error) {
	st := dom.Stats{
		Total:   len(c.cards),
		BySuit:  make(map[dom.Suit]int, 3),
		ByPower: make(map[int]int, dom.PowerMax),
	}
	for i, card := range c.cards {
		st.BySuit[card.Suit]++
		st.ByPower[card.Power]++
		if i == 0 || card.Power < st.MinPower {
			st.MinPower = card.Power
		}
		if card.Power > st.MaxPower {
			st.MaxPower = card.Power
		}
	}
	return st, nil
}
