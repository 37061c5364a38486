package repo

import (
	"context"
	"encoding/json"
	"math/rand/v2"

	perr "cardduel/internal/platform/errors"
	"cardduel/internal/platform/store"
	dom "cardduel/internal/services/games/domain"
)

// Games implements the live-row store for the game state machine
// Every verb runs in its own transaction: the row is locked FOR UPDATE,
// preconditions are checked against the locked pre-state, the domain
// mutation runs, and the full row is written back
type Games struct {
	run store.TxRunner
}

var _ dom.StorePort = (*Games)(nil)

// NewGames wires the game store onto a transaction runner
func NewGames(run store.TxRunner) *Games {
	if run == nil {
		panic("repo: nil tx runner")
	}
	return &Games{run: run}
}

const gameColumns = `id, player1, player2, status, turn,
	p1_deck, p1_hand, p1_played, p1_drawn, p1_has_played, p1_score, p1_tb_decision,
	p2_deck, p2_hand, p2_played, p2_drawn, p2_has_played, p2_score, p2_tb_decision,
	round_history, awaiting_tiebreaker, winner, created_at, updated_at`

// scanGame hydrates a full game row, decoding the jsonb columns
func scanGame(row store.Row) (dom.Game, error) {
	var (
		g              dom.Game
		p1Deck, p1Hand []byte
		p1Played       []byte
		p2Deck, p2Hand []byte
		p2Played       []byte
		history        []byte
	)
	err := row.Scan(
		&g.ID, &g.Player1, &g.Player2, &g.Status, &g.Turn,
		&p1Deck, &p1Hand, &p1Played, &g.P1.Drawn, &g.P1.HasPlayed, &g.P1.Score, &g.P1.TiebreakerDecision,
		&p2Deck, &p2Hand, &p2Played, &g.P2.Drawn, &g.P2.HasPlayed, &g.P2.Score, &g.P2.TiebreakerDecision,
		&history, &g.AwaitingTiebreaker, &g.Winner, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return dom.Game{}, err
	}

	for _, col := range []struct {
		raw  []byte
		dest any
	}{
		{p1Deck, &g.P1.Deck}, {p1Hand, &g.P1.Hand},
		{p2Deck, &g.P2.Deck}, {p2Hand, &g.P2.Hand},
		{history, &g.History},
	} {
		if len(col.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(col.raw, col.dest); err != nil {
			return dom.Game{}, perr.Wrap(err, perr.ErrorCodeDB, "decode game row")
		}
	}
	if len(p1Played) > 0 {
		g.P1.Played = &dom.Card{}
		if err := json.Unmarshal(p1Played, g.P1.Played); err != nil {
			return dom.Game{}, perr.Wrap(err, perr.ErrorCodeDB, "decode game row")
		}
	}
	if len(p2Played) > 0 {
		g.P2.Played = &dom.Card{}
		if err := json.Unmarshal(p2Played, g.P2.Played); err != nil {
			return dom.Game{}, perr.Wrap(err, perr.ErrorCodeDB, "decode game row")
		}
	}
	return g, nil
}

// Create inserts a pending invitation
func (s *Games) Create(ctx context.Context, creator, invitee string) (dom.Game, error) {
	row := s.run.QueryRow(ctx, `
		INSERT INTO games (player1, player2, status, turn)
		VALUES ($1, $2, 'pending', 1)
		RETURNING `+gameColumns, creator, invitee)

	g, err := scanGame(row)
	if err != nil {
		return dom.Game{}, perr.Wrap(err, perr.ErrorCodeDB, "create game")
	}
	return g, nil
}

// Get reads the game row without locking
func (s *Games) Get(ctx context.Context, id string) (dom.Game, error) {
	row := s.run.QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE id = $1`, id)
	g, err := scanGame(row)
	if err != nil {
		if store.IsNoRows(err) || perr.IsSQLState(err, "22P02") {
			return dom.Game{}, perr.NotFoundf("game %s not found", id)
		}
		return dom.Game{}, perr.Wrap(err, perr.ErrorCodeDB, "get game")
	}
	return g, nil
}

// mutate runs fn against the locked row and persists the result
// Archived games are frozen before any precondition fires
func (s *Games) mutate(ctx context.Context, id string, fn func(g *dom.Game) error) (dom.Game, error) {
	var out dom.Game
	err := s.run.Tx(ctx, func(q store.RowQuerier) error {
		row := q.QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE id = $1 FOR UPDATE`, id)
		g, err := scanGame(row)
		if err != nil {
			if store.IsNoRows(err) || perr.IsSQLState(err, "22P02") {
				return perr.NotFoundf("game %s not found", id)
			}
			return perr.Wrap(err, perr.ErrorCodeDB, "lock game")
		}

		var archived bool
		if err := q.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM game_history WHERE game_id = $1)`, id,
		).Scan(&archived); err != nil {
			return perr.Wrap(err, perr.ErrorCodeDB, "check archive")
		}
		if archived {
			return perr.Conflictf("%s", dom.ArchivedMessage)
		}

		if err := fn(&g); err != nil {
			return err
		}
		if err := saveGame(ctx, q, &g); err != nil {
			return err
		}
		out = g
		return nil
	})
	if err != nil {
		return dom.Game{}, err
	}
	return out, nil
}

// saveGame writes every mutable column back under the held lock
func saveGame(ctx context.Context, q store.RowQuerier, g *dom.Game) error {
	enc := func(v any) ([]byte, error) { return json.Marshal(v) }

	p1Deck, err := enc(g.P1.Deck)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "encode game row")
	}
	p1Hand, _ := enc(g.P1.Hand)
	p2Deck, _ := enc(g.P2.Deck)
	p2Hand, _ := enc(g.P2.Hand)
	history, _ := enc(g.History)

	var p1Played, p2Played []byte
	if g.P1.Played != nil {
		p1Played, _ = enc(g.P1.Played)
	}
	if g.P2.Played != nil {
		p2Played, _ = enc(g.P2.Played)
	}

	tag, err := q.Exec(ctx, `
		UPDATE games SET
			status = $2, turn = $3,
			p1_deck = $4, p1_hand = $5, p1_played = $6, p1_drawn = $7,
			p1_has_played = $8, p1_score = $9, p1_tb_decision = $10,
			p2_deck = $11, p2_hand = $12, p2_played = $13, p2_drawn = $14,
			p2_has_played = $15, p2_score = $16, p2_tb_decision = $17,
			round_history = $18, awaiting_tiebreaker = $19, winner = $20,
			updated_at = now()
		WHERE id = $1`,
		g.ID, string(g.Status), g.Turn,
		p1Deck, p1Hand, p1Played, g.P1.Drawn, g.P1.HasPlayed, g.P1.Score, g.P1.TiebreakerDecision,
		p2Deck, p2Hand, p2Played, g.P2.Drawn, g.P2.HasPlayed, g.P2.Score, g.P2.TiebreakerDecision,
		history, g.AwaitingTiebreaker, g.Winner,
	)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "save game")
	}
	if tag.RowsAffected() != 1 {
		return perr.DBf("save game: %d rows affected", tag.RowsAffected())
	}
	return nil
}

// transition moves the game between lifecycle states
func (s *Games) transition(ctx context.Context, id string, from, to dom.Status) (dom.Game, error) {
	return s.mutate(ctx, id, func(g *dom.Game) error {
		if g.Status != from {
			return perr.Conflictf("game is %s", g.Status)
		}
		g.Status = to
		return nil
	})
}

// Accept moves a pending invitation into deck selection
func (s *Games) Accept(ctx context.Context, id string) (dom.Game, error) {
	return s.transition(ctx, id, dom.StatusPending, dom.StatusDeckSelection)
}

// Ignore declines a pending invitation
func (s *Games) Ignore(ctx context.Context, id string) (dom.Game, error) {
	return s.transition(ctx, id, dom.StatusPending, dom.StatusIgnored)
}

// Cancel withdraws a pending invitation
func (s *Games) Cancel(ctx context.Context, id string) (dom.Game, error) {
	return s.transition(ctx, id, dom.StatusPending, dom.StatusCancelled)
}

// Abandon ends any non-terminal game
func (s *Games) Abandon(ctx context.Context, id string) (dom.Game, error) {
	return s.mutate(ctx, id, func(g *dom.Game) error {
		if g.Status.Terminal() {
			return perr.Conflictf("game is %s", g.Status)
		}
		g.Status = dom.StatusAbandoned
		return nil
	})
}

// ConfirmDeck stores a seat's materialized deck; the second confirmation
// activates the game
func (s *Games) ConfirmDeck(ctx context.Context, id string, seat dom.Seat, deck dom.Deck) (dom.Game, error) {
	return s.mutate(ctx, id, func(g *dom.Game) error {
		if g.Status != dom.StatusDeckSelection {
			return perr.InvalidArgf("game is not selecting decks")
		}
		st := g.State(seat)
		if len(st.Deck) > 0 {
			return perr.InvalidArgf("deck already selected")
		}
		st.Deck = deck
		if len(g.P1.Deck) > 0 && len(g.P2.Deck) > 0 {
			g.Status = dom.StatusActive
			g.Turn = 1
		}
		return nil
	})
}

// DrawHand moves up to a full hand from the seat's deck
func (s *Games) DrawHand(ctx context.Context, id string, seat dom.Seat) (dom.Game, error) {
	return s.mutate(ctx, id, func(g *dom.Game) error {
		if g.Status != dom.StatusActive || g.AwaitingTiebreaker {
			return perr.InvalidArgf("game is not in the turn loop")
		}
		st := g.State(seat)
		if st.Drawn {
			return perr.InvalidArgf("already drawn this turn")
		}
		if len(st.Deck) == 0 {
			return perr.InvalidArgf("deck is empty")
		}
		st.Hand, st.Deck = dom.DrawFrom(st.Deck, rand.IntN)
		st.Drawn = true
		return nil
	})
}

// PlayCard commits a hand card; the second play of the turn resolves the
// round inside the same transaction
func (s *Games) PlayCard(ctx context.Context, id string, seat dom.Seat, idx int) (dom.Game, error) {
	return s.mutate(ctx, id, func(g *dom.Game) error {
		if g.Status != dom.StatusActive || g.AwaitingTiebreaker {
			return perr.InvalidArgf("game is not in the turn loop")
		}
		st := g.State(seat)
		if !st.Drawn || st.HasPlayed {
			return perr.InvalidArgf("already played this turn")
		}
		if idx < 0 || idx >= len(st.Hand) {
			return perr.InvalidArgf("card index out of range")
		}
		c := st.Hand[idx]
		st.Played = &c
		st.Hand = nil
		st.HasPlayed = true
		if g.P1.HasPlayed && g.P2.HasPlayed {
			g.ResolveRound()
		}
		return nil
	})
}

// TiebreakerDecision records a seat's yes/no; any no completes as a draw
func (s *Games) TiebreakerDecision(ctx context.Context, id string, seat dom.Seat, accept bool) (dom.Game, error) {
	return s.mutate(ctx, id, func(g *dom.Game) error {
		if !g.AwaitingTiebreaker {
			return perr.InvalidArgf("game is not awaiting a tiebreaker")
		}
		d := accept
		g.State(seat).TiebreakerDecision = &d
		if !accept {
			g.DeclineTiebreaker()
		}
		return nil
	})
}

// TiebreakerPlay commits the seat's top card once both seats accepted
func (s *Games) TiebreakerPlay(ctx context.Context, id string, seat dom.Seat) (dom.Game, error) {
	return s.mutate(ctx, id, func(g *dom.Game) error {
		if !g.AwaitingTiebreaker {
			return perr.InvalidArgf("game is not awaiting a tiebreaker")
		}
		p1, p2 := g.P1.TiebreakerDecision, g.P2.TiebreakerDecision
		if p1 == nil || p2 == nil || !*p1 || !*p2 {
			return perr.InvalidArgf("both players must accept the tiebreaker first")
		}
		if g.State(seat).HasPlayed {
			return perr.InvalidArgf("tiebreaker card already played")
		}
		g.PlayTiebreaker(seat)
		return nil
	})
}
