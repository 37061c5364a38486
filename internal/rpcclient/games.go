package rpcclient

import (
	"context"

	dom "cardduel/internal/services/games/domain"
)

// GameStore drives the persistence adapter's game rpc surface
// The adapter runs each verb transactionally; this client only transports
type GameStore struct{ c *Client }

// NewGameStore wraps a client for the game surface
func NewGameStore(c *Client) *GameStore { return &GameStore{c: c} }

var _ dom.StorePort = (*GameStore)(nil)

func (g *GameStore) game(ctx context.Context, path string, in any) (dom.Game, error) {
	var out dom.Game
	err := g.c.call(ctx, path, in, &out)
	return out, err
}

// Create inserts a pending invitation
func (g *GameStore) Create(ctx context.Context, creator, invitee string) (dom.Game, error) {
	return g.game(ctx, "/rpc/games/create", map[string]string{"creator": creator, "invitee": invitee})
}

// Get reads the live game row
func (g *GameStore) Get(ctx context.Context, id string) (dom.Game, error) {
	return g.game(ctx, "/rpc/games/get", map[string]string{"id": id})
}

// Accept moves a pending invitation into deck selection
func (g *GameStore) Accept(ctx context.Context, id string) (dom.Game, error) {
	return g.game(ctx, "/rpc/games/accept", map[string]string{"id": id})
}

// Ignore declines a pending invitation
func (g *GameStore) Ignore(ctx context.Context, id string) (dom.Game, error) {
	return g.game(ctx, "/rpc/games/ignore", map[string]string{"id": id})
}

// Cancel withdraws a pending invitation
func (g *GameStore) Cancel(ctx context.Context, id string) (dom.Game, error) {
	return g.game(ctx, "/rpc/games/cancel", map[string]string{"id": id})
}

// Abandon ends any non-terminal game
func (g *GameStore) Abandon(ctx context.Context, id string) (dom.Game, error) {
	return g.game(ctx, "/rpc/games/abandon", map[string]string{"id": id})
}

// ConfirmDeck stores a seat's materialized deck
func (g *GameStore) ConfirmDeck(ctx context.Context, id string, seat dom.Seat, deck dom.Deck) (dom.Game, error) {
	return g.game(ctx, "/rpc/games/confirm-deck", map[string]any{
		"id": id, "seat": int(seat), "deck": deck,
	})
}

// DrawHand moves up to a full hand from the seat's deck
func (g *GameStore) DrawHand(ctx context.Context, id string, seat dom.Seat) (dom.Game, error) {
	return g.game(ctx, "/rpc/games/draw-hand", map[string]any{"id": id, "seat": int(seat)})
}

// PlayCard commits a hand card; the adapter resolves the round on the
// second play of the turn
func (g *GameStore) PlayCard(ctx context.Context, id string, seat dom.Seat, cardIndex int) (dom.Game, error) {
	return g.game(ctx, "/rpc/games/play-card", map[string]any{
		"id": id, "seat": int(seat), "card_index": cardIndex,
	})
}

// TiebreakerDecision records a seat's yes/no
func (g *GameStore) TiebreakerDecision(ctx context.Context, id string, seat dom.Seat, accept bool) (dom.Game, error) {
	return g.game(ctx, "/rpc/games/tiebreaker-decision", map[string]any{
		"id": id, "seat": int(seat), "accept": accept,
	})
}

// TiebreakerPlay commits the seat's top card
func (g *GameStore) TiebreakerPlay(ctx context.Context, id string, seat dom.Seat) (dom.Game, error) {
	return g.game(ctx, "/rpc/games/tiebreaker-play", map[string]any{"id": id, "seat": int(seat)})
}

// Archive drives the persistence adapter's frozen history surface
type Archive struct{ c *Client }

// NewArchive wraps a client for the archive surface
func NewArchive(c *Client) *Archive { return &Archive{c: c} }

var _ dom.ArchivePort = (*Archive)(nil)

// Archive stores the sealed history row; the adapter keeps it idempotent
func (a *Archive) Archive(ctx context.Context, rec dom.ArchiveRecord) error {
	return a.c.call(ctx, "/rpc/archive/put", map[string]any{"record": rec}, nil)
}

// Fetch loads the archive row for a game
func (a *Archive) Fetch(ctx context.Context, gameID string) (dom.ArchiveRecord, error) {
	var out dom.ArchiveRecord
	err := a.c.call(ctx, "/rpc/archive/fetch", map[string]string{"id": gameID}, &out)
	return out, err
}

// IsArchived reports whether the game already has a frozen row
func (a *Archive) IsArchived(ctx context.Context, gameID string) (bool, error) {
	var out struct {
		Archived bool `json:"archived"`
	}
	err := a.c.call(ctx, "/rpc/archive/exists", map[string]string{"id": gameID}, &out)
	return out.Archived, err
}

// Roster answers invitee existence against the account surface
type Roster struct{ c *Client }

// NewRoster wraps a client for the roster check
func NewRoster(c *Client) *Roster { return &Roster{c: c} }

var _ dom.RosterPort = (*Roster)(nil)

// Exists reports whether the username names a real account
func (r *Roster) Exists(ctx context.Context, username string) (bool, error) {
	var out struct {
		Exists bool `json:"exists"`
	}
	err := r.c.call(ctx, "/rpc/accounts/exists", map[string]string{"username": username}, &out)
	return out.Exists, err
}
