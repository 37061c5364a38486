// Package domain defines the game state machine types and the pure
// round-resolution engine shared by the coordinator and the persistence adapter
package domain

import (
	"time"

	cards "cardduel/internal/services/cards/domain"
)

// Status is the game lifecycle state
type Status string

// Lifecycle states
const (
	StatusPending       Status = "pending"
	StatusDeckSelection Status = "deck_selection"
	StatusActive        Status = "active"
	StatusCompleted     Status = "completed"
	StatusAbandoned     Status = "abandoned"
	StatusIgnored       Status = "ignored"
	StatusCancelled     Status = "cancelled"
)

// Terminal reports whether no further transitions are possible
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusAbandoned, StatusIgnored, StatusCancelled:
		return true
	}
	return false
}

// ArchivedMessage is the fixed conflict text for mutations on archived games
const ArchivedMessage = "Game history is archived and cannot be modified"

// Turn loop constants
const (
	// HandSize is the number of cards drawn per turn when the deck allows
	HandSize = 3

	// TiebreakerRound is the round after which a tie triggers the tiebreaker prompt
	TiebreakerRound = 7
)

// Card is a concrete playable card (suit plus bound power)
type Card struct {
	Suit  cards.Suit `json:"type"`
	Power int        `json:"power"`
}

// Deck is an ordered card sequence; index 0 is the top
type Deck []Card

// Hand is the cards drawn this turn and not yet played
type Hand []Card

// PlayerState is one participant's half of the live game row
type PlayerState struct {
	Deck      Deck  `json:"deck"`
	Hand      Hand  `json:"hand"`
	Played    *Card `json:"played_card,omitempty"`
	Drawn     bool  `json:"has_drawn"`
	HasPlayed bool  `json:"has_played"`
	Score     int   `json:"score"`

	// TiebreakerDecision is nil until the player decides
	TiebreakerDecision *bool `json:"tiebreaker_decision,omitempty"`
}

// RoundRecord is one resolved round in the history
type RoundRecord struct {
	Round  int  `json:"round"`
	P1Card Card `json:"player1_card"`
	P2Card Card `json:"player2_card"`
	// Winner is 1 or 2, or 0 for a tie
	Winner  int `json:"winner"`
	P1Score int `json:"player1_score"`
	P2Score int `json:"player2_score"`
}

// Game is the live game row
type Game struct {
	ID      string `json:"id"`
	Player1 string `json:"player1"`
	Player2 string `json:"player2"`
	Status  Status `json:"status"`
	Turn    int    `json:"turn"`

	P1 PlayerState `json:"player1_state"`
	P2 PlayerState `json:"player2_state"`

	History            []RoundRecord `json:"round_history"`
	AwaitingTiebreaker bool          `json:"awaiting_tiebreaker"`

	// Winner is the winning player's name; nil while running or on a draw
	Winner *string `json:"winner,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Seat is a participant index within a game
type Seat int

// Participant seats
const (
	Seat1 Seat = 1
	Seat2 Seat = 2
)

// SeatOf returns the seat of name, or 0 when name is not a participant
func (g *Game) SeatOf(name string) Seat {
	switch name {
	case g.Player1:
		return Seat1
	case g.Player2:
		return Seat2
	}
	return 0
}

// State returns the player state for a seat
func (g *Game) State(s Seat) *PlayerState {
	if s == Seat1 {
		return &g.P1
	}
	return &g.P2
}

// Opponent returns the other seat
func (s Seat) Opponent() Seat {
	if s == Seat1 {
		return Seat2
	}
	return Seat1
}

// Name returns the seat's player name
func (g *Game) Name(s Seat) string {
	if s == Seat1 {
		return g.Player1
	}
	return g.Player2
}
