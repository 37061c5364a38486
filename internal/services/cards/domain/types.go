// Package domain defines the types and interfaces for the card catalogue
package domain

// Suit is one of the three playable suits
type Suit string

// Playable suits
const (
	SuitRock     Suit = "rock"
	SuitPaper    Suit = "paper"
	SuitScissors Suit = "scissors"
)

// Catalogue bounds
const (
	PowerMin = 1
	PowerMax = 13

	// CatalogueSize is one card per (suit, power) pair
	CatalogueSize = 39

	// DeckSize is the fixed length of a confirmed deck
	DeckSize = 22

	// MaxRandomDeck bounds the random-deck sampling request
	MaxRandomDeck = 50
)

// Suits lists the playable suits in canonical order
func Suits() []Suit { return []Suit{SuitRock, SuitPaper, SuitScissors} }

// Valid reports whether s names a playable suit
func (s Suit) Valid() bool {
	switch s {
	case SuitRock, SuitPaper, SuitScissors:
		return true
	}
	return false
}

// Beats reports whether s defeats other under rock>scissors, scissors>paper, paper>rock
func (s Suit) Beats(other Suit) bool {
	switch s {
	case SuitRock:
		return other == SuitScissors
	case SuitScissors:
		return other == SuitPaper
	case SuitPaper:
		return other == SuitRock
	}
	return false
}

// Card is one catalogue entry
type Card struct {
	ID    int  `json:"id"`
	Suit  Suit `json:"type"`
	Power int  `json:"power"`
}

// Stats summarizes the catalogue for the read endpoint
type Stats struct {
	Total    int          `json:"total"`
	BySuit   map[Suit]int `json:"by_type"`
	ByPower  map[int]int  `json:"by_power"`
	MinPower int          `json:"min_power"`
	MaxPower int          `json:"max_power"`
}

// Generate builds the canonical 39-card catalogue with stable ids
// rock holds ids 1..13, paper 14..26, scissors 27..39
func Generate() []Card {
	out := make([]Card, 0, CatalogueSize)
	id := 1
	for _, s := range Suits() {
		for p := PowerMin; p <= PowerMax; p++ {
			out = append(out, Card{ID: id, Suit: s, Power: p})
			id++
		}
	}
	return out
}
