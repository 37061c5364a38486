// Package service implements the game coordinator: invitations, deck
// selection, the turn loop, tiebreakers and archival
package service

import (
	"context"
	"fmt"
	"time"

	perr "cardduel/internal/platform/errors"
	"cardduel/internal/platform/logger"
	cards "cardduel/internal/services/cards/domain"
	"cardduel/internal/services/games/archive"
	dom "cardduel/internal/services/games/domain"
	logdom "cardduel/internal/services/logs/domain"
)

// ArchivedMessage is the fixed conflict text for mutations on archived games
const ArchivedMessage = dom.ArchivedMessage

// Service coordinates the game state machine across the persistence
// adapter, the card catalogue and the archive sealer
type Service struct {
	Store   dom.StorePort
	Archive dom.ArchivePort
	Decks   dom.DeckSourcePort
	Roster  dom.RosterPort
	Sealer  *archive.Sealer
	Audit   logdom.RecorderPort
	Log     logger.Logger
}

// New wires the coordinator; every dependency is required except Audit
func New(store dom.StorePort, arch dom.ArchivePort, decks dom.DeckSourcePort, roster dom.RosterPort, sealer *archive.Sealer, audit logdom.RecorderPort, log logger.Logger) *Service {
	switch {
	case store == nil:
		panic("games: nil store port")
	case arch == nil:
		panic("games: nil archive port")
	case decks == nil:
		panic("games: nil deck source")
	case roster == nil:
		panic("games: nil roster port")
	case sealer == nil:
		panic("games: nil sealer")
	}
	return &Service{Store: store, Archive: arch, Decks: decks, Roster: roster, Sealer: sealer, Audit: audit, Log: log}
}

// Create opens a pending invitation from creator to invitee
func (s *Service) Create(ctx context.Context, creator, invitee string) (dom.Game, error) {
	if creator == invitee {
		return dom.Game{}, perr.InvalidArgf("cannot invite yourself")
	}
	ok, err := s.Roster.Exists(ctx, invitee)
	if err != nil {
		return dom.Game{}, err
	}
	if !ok {
		return dom.Game{}, perr.InvalidArgf("player %q does not exist", invitee)
	}

	g, err := s.Store.Create(ctx, creator, invitee)
	if err != nil {
		return dom.Game{}, err
	}
	s.audit(ctx, logdom.ActionInvitationCreated, creator, fmt.Sprintf("game %s vs %s", g.ID, invitee))
	return g, nil
}

// Get returns the live game state to a participant
func (s *Service) Get(ctx context.Context, subject, id string) (dom.Game, error) {
	g, err := s.Store.Get(ctx, id)
	if err != nil {
		return dom.Game{}, err
	}
	if g.SeatOf(subject) == 0 {
		return dom.Game{}, perr.Forbiddenf("not a participant in this game")
	}
	return g, nil
}

// Accept moves a pending invitation to deck selection; invitee only
func (s *Service) Accept(ctx context.Context, subject, id string) (dom.Game, error) {
	g, err := s.Store.Get(ctx, id)
	if err != nil {
		return dom.Game{}, err
	}
	if seat := g.SeatOf(subject); seat == 0 {
		return dom.Game{}, perr.Forbiddenf("not a participant in this game")
	} else if seat != dom.Seat2 {
		return dom.Game{}, perr.InvalidArgf("only the invited player can accept")
	}

	g, err = s.Store.Accept(ctx, id)
	if err != nil {
		return dom.Game{}, err
	}
	s.audit(ctx, logdom.ActionInvitationAccepted, subject, "game "+id)
	return g, nil
}

// Ignore declines a pending invitation; invitee only; terminal
func (s *Service) Ignore(ctx context.Context, subject, id string) (dom.Game, error) {
	g, err := s.Store.Get(ctx, id)
	if err != nil {
		return dom.Game{}, err
	}
	if seat := g.SeatOf(subject); seat == 0 {
		return dom.Game{}, perr.Forbiddenf("not a participant in this game")
	} else if seat != dom.Seat2 {
		return dom.Game{}, perr.InvalidArgf("only the invited player can ignore")
	}

	g, err = s.Store.Ignore(ctx, id)
	if err != nil {
		return dom.Game{}, err
	}
	s.audit(ctx, logdom.ActionInvitationIgnored, subject, "game "+id)
	return g, s.archiveTerminal(ctx, g)
}

// Cancel withdraws a pending invitation; creator only; terminal
func (s *Service) Cancel(ctx context.Context, subject, id string) (dom.Game, error) {
	g, err := s.Store.Get(ctx, id)
	if err != nil {
		return dom.Game{}, err
	}
	if seat := g.SeatOf(subject); seat == 0 {
		return dom.Game{}, perr.Forbiddenf("not a participant in this game")
	} else if seat != dom.Seat1 {
		return dom.Game{}, perr.InvalidArgf("only the creator can cancel")
	}

	g, err = s.Store.Cancel(ctx, id)
	if err != nil {
		return dom.Game{}, err
	}
	s.audit(ctx, logdom.ActionInvitationCancelled, subject, "game "+id)
	return g, s.archiveTerminal(ctx, g)
}

// SelectDeck materializes a suit composition into a concrete deck and
// confirms it for the subject's seat
func (s *Service) SelectDeck(ctx context.Context, subject, id string, composition []string) (dom.Game, error) {
	if len(composition) != cards.DeckSize {
		return dom.Game{}, perr.InvalidArgf("deck must contain exactly %d cards, got %d", cards.DeckSize, len(composition))
	}
	suits := make([]cards.Suit, len(composition))
	for i, entry := range composition {
		suit := cards.Suit(entry)
		if !suit.Valid() {
			return dom.Game{}, perr.InvalidArgf("unknown card type %q at position %d", entry, i)
		}
		suits[i] = suit
	}

	g, err := s.Store.Get(ctx, id)
	if err != nil {
		return dom.Game{}, err
	}
	seat := g.SeatOf(subject)
	if seat == 0 {
		return dom.Game{}, perr.Forbiddenf("not a participant in this game")
	}

	deck := make(dom.Deck, 0, len(suits))
	for _, suit := range suits {
		c, err := s.Decks.RandomOfSuit(ctx, suit)
		if err != nil {
			return dom.Game{}, err
		}
		deck = append(deck, c)
	}

	g, err = s.Store.ConfirmDeck(ctx, id, seat, deck)
	if err != nil {
		return dom.Game{}, err
	}
	if g.Status == dom.StatusActive {
		s.audit(ctx, logdom.ActionGameStarted, subject, "game "+id)
	}
	return g, nil
}

// Draw moves up to a full hand from the subject's deck
func (s *Service) Draw(ctx context.Context, subject, id string) (dom.Game, error) {
	seat, err := s.seatOf(ctx, subject, id)
	if err != nil {
		return dom.Game{}, err
	}
	return s.Store.DrawHand(ctx, id, seat)
}

// Play commits the indexed hand card; the store resolves the round when
// this is the second play of the turn
func (s *Service) Play(ctx context.Context, subject, id string, cardIndex int) (dom.Game, error) {
	seat, err := s.seatOf(ctx, subject, id)
	if err != nil {
		return dom.Game{}, err
	}
	g, err := s.Store.PlayCard(ctx, id, seat, cardIndex)
	if err != nil {
		return dom.Game{}, err
	}
	if g.Status.Terminal() {
		s.audit(ctx, logdom.ActionGameCompleted, subject, "game "+id)
		return g, s.archiveTerminal(ctx, g)
	}
	return g, nil
}

// ResolveRound reports the outcome of the latest resolved round
// Rounds resolve automatically with the second play of the turn, so this
// fails while either play of the current round is still outstanding
func (s *Service) ResolveRound(ctx context.Context, subject, id string) (dom.Game, error) {
	g, err := s.Store.Get(ctx, id)
	if err != nil {
		return dom.Game{}, err
	}
	if g.SeatOf(subject) == 0 {
		return dom.Game{}, perr.Forbiddenf("not a participant in this game")
	}
	if g.Status == dom.StatusActive && (g.P1.HasPlayed || g.P2.HasPlayed || g.P1.Drawn || g.P2.Drawn) {
		return dom.Game{}, perr.InvalidArgf("round is still in progress")
	}
	if len(g.History) == 0 {
		return dom.Game{}, perr.InvalidArgf("no rounds have been played yet")
	}
	return g, nil
}

// TiebreakerDecision records the subject's yes/no; any no completes the
// game as a draw
func (s *Service) TiebreakerDecision(ctx context.Context, subject, id string, accept bool) (dom.Game, error) {
	seat, err := s.seatOf(ctx, subject, id)
	if err != nil {
		return dom.Game{}, err
	}
	g, err := s.Store.TiebreakerDecision(ctx, id, seat, accept)
	if err != nil {
		return dom.Game{}, err
	}
	if g.Status.Terminal() {
		s.audit(ctx, logdom.ActionGameCompleted, subject, "game "+id)
		return g, s.archiveTerminal(ctx, g)
	}
	return g, nil
}

// TiebreakerPlay commits the subject's top card; the second play resolves
// the tiebreaker round
func (s *Service) TiebreakerPlay(ctx context.Context, subject, id string) (dom.Game, error) {
	seat, err := s.seatOf(ctx, subject, id)
	if err != nil {
		return dom.Game{}, err
	}
	g, err := s.Store.TiebreakerPlay(ctx, id, seat)
	if err != nil {
		return dom.Game{}, err
	}
	if g.Status.Terminal() {
		s.audit(ctx, logdom.ActionGameCompleted, subject, "game "+id)
		return g, s.archiveTerminal(ctx, g)
	}
	return g, nil
}

// End abandons a running game and archives it. On a game that is already
// terminal it is a no-op that still backfills a missing archive row, so a
// failed archive write after completion has a repair path
func (s *Service) End(ctx context.Context, subject, id string) (dom.Game, error) {
	g, err := s.Store.Get(ctx, id)
	if err != nil {
		return dom.Game{}, err
	}
	if g.SeatOf(subject) == 0 {
		return dom.Game{}, perr.Forbiddenf("not a participant in this game")
	}

	if !g.Status.Terminal() {
		if g, err = s.Store.Abandon(ctx, id); err != nil {
			return dom.Game{}, err
		}
		s.audit(ctx, logdom.ActionGameAbandoned, subject, "game "+id)
	}
	return g, s.archiveTerminal(ctx, g)
}

// History returns the decrypted archive snapshot to a participant
func (s *Service) History(ctx context.Context, subject, id string) (dom.Snapshot, error) {
	rec, err := s.Archive.Fetch(ctx, id)
	if err != nil {
		return dom.Snapshot{}, err
	}
	if subject != rec.Player1 && subject != rec.Player2 {
		return dom.Snapshot{}, perr.Forbiddenf("not a participant in this game")
	}
	return s.Sealer.Open(rec.Ciphertext, rec.MAC)
}

// seatOf loads the game and authorizes the subject as a participant
func (s *Service) seatOf(ctx context.Context, subject, id string) (dom.Seat, error) {
	g, err := s.Store.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	seat := g.SeatOf(subject)
	if seat == 0 {
		return 0, perr.Forbiddenf("not a participant in this game")
	}
	return seat, nil
}

// archiveTerminal seals the terminal game into its archive row
// Archiving is idempotent; an existing row wins
func (s *Service) archiveTerminal(ctx context.Context, g dom.Game) error {
	if !g.Status.Terminal() {
		return nil
	}
	if ok, err := s.Archive.IsArchived(ctx, g.ID); err != nil {
		return err
	} else if ok {
		return nil
	}

	now := time.Now().UTC()
	snap := dom.Snapshot{
		GameID:      g.ID,
		TurnsPlayed: len(g.History),
		Player1:     dom.PlayerSummary{Name: g.Player1, FinalScore: g.P1.Score, RemainingDeck: g.P1.Deck},
		Player2:     dom.PlayerSummary{Name: g.Player2, FinalScore: g.P2.Score, RemainingDeck: g.P2.Deck},
		Winner:      g.Winner,
		WasTie:      g.Status == dom.StatusCompleted && g.Winner == nil,
		History:     g.History,
		CreatedAt:   g.CreatedAt,
		ArchivedAt:  now,
	}

	ct, mac, err := s.Sealer.Seal(snap)
	if err != nil {
		return err
	}

	return s.Archive.Archive(ctx, dom.ArchiveRecord{
		GameID:     g.ID,
		Player1:    g.Player1,
		Player2:    g.Player2,
		P1Score:    g.P1.Score,
		P2Score:    g.P2.Score,
		Winner:     g.Winner,
		Ciphertext: ct,
		MAC:        mac,
		History:    g.History,
		ArchivedAt: now,
	})
}

// audit appends a best-effort log entry; failures are logged and dropped
func (s *Service) audit(ctx context.Context, action, actor, details string) {
	if s.Audit == nil {
		return
	}
	if err := s.Audit.Record(ctx, action, actor, details); err != nil {
		s.Log.Warn().Err(err).Str("action", action).Msg("audit append failed")
	}
}
