package domain

import "context"

// CatalogPort reads the card catalogue
type CatalogPort interface {
	List(ctx context.Context) ([]Card, error)
	BySuit(ctx context.Context, suit Suit) ([]Card, error)
	ByID(ctx context.Context, id int) (Card, error)
}

// SamplerPort draws random cards for deck building
type SamplerPort interface {
	// RandomDeck samples size cards without replacement from the pool
	RandomDeck(ctx context.Context, size int) ([]Card, error)

	// RandomOfSuit draws one random card of the given suit, with replacement
	RandomOfSuit(ctx context.Context, suit Suit) (Card, error)
}
