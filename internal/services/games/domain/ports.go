package domain

import (
	"context"
	"time"

	cards "cardduel/internal/services/cards/domain"
)

// Snapshot is the plaintext history payload sealed into an archive row
type Snapshot struct {
	GameID      string        `json:"game_id"`
	TurnsPlayed int           `json:"turns_played"`
	Player1     PlayerSummary `json:"player1"`
	Player2     PlayerSummary `json:"player2"`
	Winner      *string       `json:"winner"`
	WasTie      bool          `json:"was_tie"`
	History     []RoundRecord `json:"round_history"`
	CreatedAt   time.Time     `json:"created_at"`
	ArchivedAt  time.Time     `json:"archived_at"`
}

// PlayerSummary is one participant's final standing inside a snapshot
type PlayerSummary struct {
	Name          string `json:"name"`
	FinalScore    int    `json:"final_score"`
	RemainingDeck Deck   `json:"remaining_deck"`
}

// ArchiveRecord is the stored archive row: sealed payload plus the
// plaintext summary columns queries need
type ArchiveRecord struct {
	GameID     string        `json:"game_id"`
	Player1    string        `json:"player1"`
	Player2    string        `json:"player2"`
	P1Score    int           `json:"player1_score"`
	P2Score    int           `json:"player2_score"`
	Winner     *string       `json:"winner"`
	Ciphertext []byte        `json:"ciphertext"`
	MAC        string        `json:"mac"`
	History    []RoundRecord `json:"round_history"`
	ArchivedAt time.Time     `json:"archived_at"`
}

// StorePort is the live-row surface the coordinator drives
// Implementations run each verb in one transaction with the row lock held;
// phase preconditions are enforced as conditional updates on the pre-state
type StorePort interface {
	Create(ctx context.Context, creator, invitee string) (Game, error)
	Get(ctx context.Context, id string) (Game, error)

	Accept(ctx context.Context, id string) (Game, error)
	Ignore(ctx context.Context, id string) (Game, error)
	Cancel(ctx context.Context, id string) (Game, error)
	Abandon(ctx context.Context, id string) (Game, error)

	ConfirmDeck(ctx context.Context, id string, seat Seat, deck Deck) (Game, error)
	DrawHand(ctx context.Context, id string, seat Seat) (Game, error)

	// PlayCard runs the auto-resolve in the same transaction when the
	// write flips the second played flag
	PlayCard(ctx context.Context, id string, seat Seat, cardIndex int) (Game, error)

	TiebreakerDecision(ctx context.Context, id string, seat Seat, accept bool) (Game, error)
	TiebreakerPlay(ctx context.Context, id string, seat Seat) (Game, error)
}

// ArchivePort stores and retrieves the frozen history rows
type ArchivePort interface {
	Archive(ctx context.Context, rec ArchiveRecord) error
	Fetch(ctx context.Context, gameID string) (ArchiveRecord, error)
	IsArchived(ctx context.Context, gameID string) (bool, error)
}

// DeckSourcePort materializes suit choices into concrete cards
type DeckSourcePort interface {
	RandomOfSuit(ctx context.Context, suit cards.Suit) (Card, error)
}

// RosterPort answers whether an invitee names a real account
type RosterPort interface {
	Exists(ctx context.Context, username string) (bool, error)
}
