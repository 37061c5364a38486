package service

import (
	"context"
	"math/rand/v2"
	"strconv"
	"sync"
	"testing"
	"time"

	perr "cardduel/internal/platform/errors"
	"cardduel/internal/platform/logger"
	cards "cardduel/internal/services/cards/domain"
	"cardduel/internal/services/games/archive"
	dom "cardduel/internal/services/games/domain"
)

// memStore is an in-memory StorePort mirroring the persistence adapter's
// precondition checks
type memStore struct {
	mu    sync.Mutex
	next  int
	games map[string]*dom.Game
	arch  *memArchive
}

func newMemStore(arch *memArchive) *memStore {
	return &memStore{games: map[string]*dom.Game{}, arch: arch}
}

func (m *memStore) Create(_ context.Context, creator, invitee string) (dom.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	id := "game-" + strconv.Itoa(m.next)
	g := &dom.Game{
		ID: id, Player1: creator, Player2: invitee,
		Status: dom.StatusPending, Turn: 1,
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}
	m.games[id] = g
	return *g, nil
}

func (m *memStore) Get(_ context.Context, id string) (dom.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return dom.Game{}, perr.NotFoundf("game %s not found", id)
	}
	return *g, nil
}

func (m *memStore) locked(id string, fn func(g *dom.Game) error) (dom.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return dom.Game{}, perr.NotFoundf("game %s not found", id)
	}
	if m.arch != nil && m.arch.has(id) {
		return dom.Game{}, perr.Conflictf("%s", ArchivedMessage)
	}
	if err := fn(g); err != nil {
		return dom.Game{}, err
	}
	g.UpdatedAt = time.Now().UTC()
	return *g, nil
}

func (m *memStore) transition(id string, from, to dom.Status) (dom.Game, error) {
	return m.locked(id, func(g *dom.Game) error {
		if g.Status != from {
			return perr.Conflictf("game is %s", g.Status)
		}
		g.Status = to
		return nil
	})
}

func (m *memStore) Accept(ctx context.Context, id string) (dom.Game, error) {
	return m.transition(id, dom.StatusPending, dom.StatusDeckSelection)
}

func (m *memStore) Ignore(ctx context.Context, id string) (dom.Game, error) {
	return m.transition(id, dom.StatusPending, dom.StatusIgnored)
}

func (m *memStore) Cancel(ctx context.Context, id string) (dom.Game, error) {
	return m.transition(id, dom.StatusPending, dom.StatusCancelled)
}

func (m *memStore) Abandon(_ context.Context, id string) (dom.Game, error) {
	return m.locked(id, func(g *dom.Game) error {
		if g.Status.Terminal() {
			return perr.Conflictf("game is %s", g.Status)
		}
		g.Status = dom.StatusAbandoned
		return nil
	})
}

func (m *memStore) ConfirmDeck(_ context.Context, id string, seat dom.Seat, deck dom.Deck) (dom.Game, error) {
	return m.locked(id, func(g *dom.Game) error {
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

func (m *memStore) DrawHand(_ context.Context, id string, seat dom.Seat) (dom.Game, error) {
	return m.locked(id, func(g *dom.Game) error {
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

func (m *memStore) PlayCard(_ context.Context, id string, seat dom.Seat, idx int) (dom.Game, error) {
	return m.locked(id, func(g *dom.Game) error {
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

func (m *memStore) TiebreakerDecision(_ context.Context, id string, seat dom.Seat, accept bool) (dom.Game, error) {
	return m.locked(id, func(g *dom.Game) error {
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

func (m *memStore) TiebreakerPlay(_ context.Context, id string, seat dom.Seat) (dom.Game, error) {
	return m.locked(id, func(g *dom.Game) error {
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

// memArchive is an in-memory ArchivePort
type memArchive struct {
	mu   sync.Mutex
	rows map[string]dom.ArchiveRecord
}

func newMemArchive() *memArchive { return &memArchive{rows: map[string]dom.ArchiveRecord{}} }

func (m *memArchive) has(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rows[id]
	return ok
}

func (m *memArchive) Archive(_ context.Context, rec dom.ArchiveRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[rec.GameID]; ok {
		return nil
	}
	m.rows[rec.GameID] = rec
	return nil
}

func (m *memArchive) Fetch(_ context.Context, id string) (dom.ArchiveRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.rows[id]
	if !ok {
		return dom.ArchiveRecord{}, perr.NotFoundf("no archived history for game %s", id)
	}
	return rec, nil
}

func (m *memArchive) IsArchived(_ context.Context, id string) (bool, error) {
	return m.has(id), nil
}

// fixedDecks always returns the same power per suit so outcomes are deterministic
type fixedDecks struct{ power int }

func (f fixedDecks) RandomOfSuit(_ context.Context, suit cards.Suit) (dom.Card, error) {
	return dom.Card{Suit: suit, Power: f.power}, nil
}

// allKnown recognizes every username except "ghost"
type allKnown struct{}

func (allKnown) Exists(_ context.Context, name string) (bool, error) {
	return name != "ghost", nil
}

func newTestService(t *testing.T) (*Service, *memStore, *memArchive) {
	t.Helper()
	arch := newMemArchive()
	st := newMemStore(arch)
	key := make([]byte, 32)
	sealer, err := archive.NewSealer(key)
	if err != nil {
		t.Fatalf("NewSealer: %v", err)
	}
	svc := New(st, arch, fixedDecks{power: 7}, allKnown{}, sealer, nil, *logger.Named("games-test"))
	return svc, st, arch
}

func composition(suit string) []string {
	out := make([]string, cards.DeckSize)
	for i := range out {
		out[i] = suit
	}
	return out
}

func TestCreate_Validation(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "alice", "alice"); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("self-invite: got %v, want invalid", err)
	}
	if _, err := svc.Create(ctx, "alice", "ghost"); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("unknown invitee: got %v, want invalid", err)
	}

	g, err := svc.Create(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if g.Status != dom.StatusPending || g.Turn != 1 {
		t.Fatalf("new game = %+v", g)
	}
}

func TestInvitation_RoleChecks(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	g, _ := svc.Create(ctx, "alice", "bob")

	if _, err := svc.Accept(ctx, "alice", g.ID); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("creator accept: got %v, want invalid", err)
	}
	if _, err := svc.Accept(ctx, "mallory", g.ID); !perr.IsCode(err, perr.ErrorCodeForbidden) {
		t.Fatalf("outsider accept: got %v, want forbidden", err)
	}
	if _, err := svc.Cancel(ctx, "bob", g.ID); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("invitee cancel: got %v, want invalid", err)
	}

	g2, err := svc.Accept(ctx, "bob", g.ID)
	if err != nil || g2.Status != dom.StatusDeckSelection {
		t.Fatalf("accept: %v status=%s", err, g2.Status)
	}

	// accept again on a non-pending game conflicts
	if _, err := svc.Accept(ctx, "bob", g.ID); !perr.IsCode(err, perr.ErrorCodeConflict) {
		t.Fatalf("double accept: got %v, want conflict", err)
	}
}

func TestIgnore_ArchivesTerminalGame(t *testing.T) {
	t.Parallel()
	svc, _, arch := newTestService(t)
	ctx := context.Background()

	g, _ := svc.Create(ctx, "alice", "bob")
	g2, err := svc.Ignore(ctx, "bob", g.ID)
	if err != nil || g2.Status != dom.StatusIgnored {
		t.Fatalf("ignore: %v status=%s", err, g2.Status)
	}
	if !arch.has(g.ID) {
		t.Fatalf("ignored game not archived")
	}

	// archived rows freeze the live row
	if _, err := svc.Accept(ctx, "bob", g.ID); !perr.IsCode(err, perr.ErrorCodeConflict) {
		t.Fatalf("mutation after archive: got %v, want conflict", err)
	}
}

func TestSelectDeck_Validation(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	g, _ := svc.Create(ctx, "alice", "bob")
	if _, err := svc.Accept(ctx, "bob", g.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	if _, err := svc.SelectDeck(ctx, "alice", g.ID, composition("rock")[:21]); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("short composition: got %v, want invalid", err)
	}

	bad := composition("rock")
	bad[5] = "lizard"
	if _, err := svc.SelectDeck(ctx, "alice", g.ID, bad); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("bad suit: got %v, want invalid", err)
	}

	g2, err := svc.SelectDeck(ctx, "alice", g.ID, composition("rock"))
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if g2.Status != dom.StatusDeckSelection {
		t.Fatalf("one deck confirmed should stay in deck_selection, got %s", g2.Status)
	}

	if _, err := svc.SelectDeck(ctx, "alice", g.ID, composition("paper")); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("re-select: got %v, want invalid", err)
	}

	g3, err := svc.SelectDeck(ctx, "bob", g.ID, composition("scissors"))
	if err != nil {
		t.Fatalf("select 2: %v", err)
	}
	if g3.Status != dom.StatusActive || g3.Turn != 1 {
		t.Fatalf("both decks confirmed: status=%s turn=%d", g3.Status, g3.Turn)
	}
	if len(g3.P1.Deck) != cards.DeckSize || len(g3.P2.Deck) != cards.DeckSize {
		t.Fatalf("deck sizes = %d, %d", len(g3.P1.Deck), len(g3.P2.Deck))
	}
}

func TestTurnLoop_DrawPlayResolve(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	g, _ := svc.Create(ctx, "alice", "bob")
	_, _ = svc.Accept(ctx, "bob", g.ID)
	_, _ = svc.SelectDeck(ctx, "alice", g.ID, composition("rock"))
	_, _ = svc.SelectDeck(ctx, "bob", g.ID, composition("scissors"))

	ga, err := svc.Draw(ctx, "alice", g.ID)
	if err != nil {
		t.Fatalf("draw: %v", err)
	}
	if len(ga.P1.Hand) != dom.HandSize || len(ga.P1.Deck) != cards.DeckSize-dom.HandSize {
		t.Fatalf("hand=%d deck=%d", len(ga.P1.Hand), len(ga.P1.Deck))
	}

	if _, err := svc.Draw(ctx, "alice", g.ID); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("double draw: got %v, want invalid", err)
	}
	if _, err := svc.Play(ctx, "bob", g.ID, 0); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("play before draw: got %v, want invalid", err)
	}

	_, _ = svc.Draw(ctx, "bob", g.ID)

	if _, err := svc.Play(ctx, "alice", g.ID, 5); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("index out of range: got %v, want invalid", err)
	}

	g1, err := svc.Play(ctx, "alice", g.ID, 0)
	if err != nil {
		t.Fatalf("play 1: %v", err)
	}
	if !g1.P1.HasPlayed || len(g1.History) != 0 {
		t.Fatalf("first play must not resolve: %+v", g1)
	}

	g2, err := svc.Play(ctx, "bob", g.ID, 0)
	if err != nil {
		t.Fatalf("play 2: %v", err)
	}
	// rock beats scissors every round with these decks
	if len(g2.History) != 1 || g2.History[0].Winner != 1 {
		t.Fatalf("resolve: history=%+v", g2.History)
	}
	if g2.P1.Score != 1 || g2.Turn != 2 {
		t.Fatalf("score=%d turn=%d", g2.P1.Score, g2.Turn)
	}
	if g2.P1.HasPlayed || g2.P2.Drawn || g2.P1.Played != nil {
		t.Fatalf("phase flags not cleared: %+v", g2)
	}

	if _, err := svc.Play(ctx, "bob", g.ID, 0); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("replay after resolve: got %v, want invalid", err)
	}
}

// playFullGame drives rock-vs-scissors rounds until the game leaves the
// turn loop
func playFullGame(t *testing.T, svc *Service, id string) dom.Game {
	t.Helper()
	ctx := context.Background()
	for range 8 {
		g, err := svc.Get(ctx, "alice", id)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if g.Status != dom.StatusActive || g.AwaitingTiebreaker {
			return g
		}
		if _, err := svc.Draw(ctx, "alice", id); err != nil {
			t.Fatalf("alice draw: %v", err)
		}
		if _, err := svc.Draw(ctx, "bob", id); err != nil {
			t.Fatalf("bob draw: %v", err)
		}
		if _, err := svc.Play(ctx, "alice", id, 0); err != nil {
			t.Fatalf("alice play: %v", err)
		}
		g, err = svc.Play(ctx, "bob", id, 0)
		if err != nil {
			t.Fatalf("bob play: %v", err)
		}
		if g.Status != dom.StatusActive || g.AwaitingTiebreaker {
			return g
		}
	}
	g, _ := svc.Get(ctx, "alice", id)
	return g
}

func TestFullGame_CompletesAndArchives(t *testing.T) {
	t.Parallel()
	svc, _, arch := newTestService(t)
	ctx := context.Background()

	g, _ := svc.Create(ctx, "alice", "bob")
	_, _ = svc.Accept(ctx, "bob", g.ID)
	_, _ = svc.SelectDeck(ctx, "alice", g.ID, composition("rock"))
	_, _ = svc.SelectDeck(ctx, "bob", g.ID, composition("scissors"))

	final := playFullGame(t, svc, g.ID)
	if final.Status != dom.StatusCompleted {
		t.Fatalf("final status = %s", final.Status)
	}
	if final.Winner == nil || *final.Winner != "alice" {
		t.Fatalf("winner = %v", final.Winner)
	}
	if !arch.has(g.ID) {
		t.Fatalf("completed game not archived")
	}

	snap, err := svc.History(ctx, "alice", g.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if snap.GameID != g.ID || snap.Winner == nil || *snap.Winner != "alice" {
		t.Fatalf("snapshot = %+v", snap)
	}
	if snap.Player1.FinalScore != final.P1.Score {
		t.Fatalf("snapshot score = %d, want %d", snap.Player1.FinalScore, final.P1.Score)
	}

	if _, err := svc.History(ctx, "mallory", g.ID); !perr.IsCode(err, perr.ErrorCodeForbidden) {
		t.Fatalf("outsider history: got %v, want forbidden", err)
	}

	if _, err := svc.Draw(ctx, "alice", g.ID); !perr.IsCode(err, perr.ErrorCodeConflict) {
		t.Fatalf("draw after archive: got %v, want conflict", err)
	}
}

func TestHistory_TamperedRowFailsIntegrity(t *testing.T) {
	t.Parallel()
	svc, _, arch := newTestService(t)
	ctx := context.Background()

	g, _ := svc.Create(ctx, "alice", "bob")
	_, _ = svc.Accept(ctx, "bob", g.ID)
	_, _ = svc.SelectDeck(ctx, "alice", g.ID, composition("rock"))
	_, _ = svc.SelectDeck(ctx, "bob", g.ID, composition("scissors"))
	playFullGame(t, svc, g.ID)

	arch.mu.Lock()
	rec := arch.rows[g.ID]
	rec.Ciphertext[len(rec.Ciphertext)/2] ^= 0xff
	arch.rows[g.ID] = rec
	arch.mu.Unlock()

	if _, err := svc.History(ctx, "alice", g.ID); !perr.IsCode(err, perr.ErrorCodeIntegrity) {
		t.Fatalf("tampered archive: got %v, want integrity", err)
	}
}

func TestTiebreaker_DeclineDraws(t *testing.T) {
	t.Parallel()
	svc, st, arch := newTestService(t)
	ctx := context.Background()

	g, _ := svc.Create(ctx, "alice", "bob")
	_, _ = svc.Accept(ctx, "bob", g.ID)
	_, _ = svc.SelectDeck(ctx, "alice", g.ID, composition("rock"))
	_, _ = svc.SelectDeck(ctx, "bob", g.ID, composition("rock"))

	// identical decks mean every round ties; force the tiebreaker pause
	st.mu.Lock()
	live := st.games[g.ID]
	live.P1.Deck, live.P2.Deck = live.P1.Deck[:2], live.P2.Deck[:2]
	live.AwaitingTiebreaker = true
	st.mu.Unlock()

	if _, err := svc.Draw(ctx, "alice", g.ID); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("draw while awaiting tiebreaker: got %v, want invalid", err)
	}

	g2, err := svc.TiebreakerDecision(ctx, "alice", g.ID, true)
	if err != nil || g2.Status != dom.StatusActive {
		t.Fatalf("first decision: %v status=%s", err, g2.Status)
	}

	g3, err := svc.TiebreakerDecision(ctx, "bob", g.ID, false)
	if err != nil {
		t.Fatalf("decline: %v", err)
	}
	if g3.Status != dom.StatusCompleted || g3.Winner != nil {
		t.Fatalf("decline should draw: status=%s winner=%v", g3.Status, g3.Winner)
	}
	if !arch.has(g.ID) {
		t.Fatalf("drawn game not archived")
	}
}

func TestTiebreaker_BothYesPlaysTopCards(t *testing.T) {
	t.Parallel()
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	g, _ := svc.Create(ctx, "alice", "bob")
	_, _ = svc.Accept(ctx, "bob", g.ID)
	_, _ = svc.SelectDeck(ctx, "alice", g.ID, composition("rock"))
	_, _ = svc.SelectDeck(ctx, "bob", g.ID, composition("rock"))

	st.mu.Lock()
	live := st.games[g.ID]
	live.P1.Deck = dom.Deck{{Suit: cards.SuitRock, Power: 9}}
	live.P2.Deck = dom.Deck{{Suit: cards.SuitScissors, Power: 9}}
	live.P1.Score, live.P2.Score = 3, 3
	live.AwaitingTiebreaker = true
	st.mu.Unlock()

	// play before both decide is rejected
	if _, err := svc.TiebreakerPlay(ctx, "alice", g.ID); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("play before decisions: got %v, want invalid", err)
	}

	if _, err := svc.TiebreakerDecision(ctx, "alice", g.ID, true); err != nil {
		t.Fatalf("decision: %v", err)
	}
	if _, err := svc.TiebreakerDecision(ctx, "bob", g.ID, true); err != nil {
		t.Fatalf("decision: %v", err)
	}

	// resubmitting the same decision is a no-op
	if _, err := svc.TiebreakerDecision(ctx, "bob", g.ID, true); err != nil {
		t.Fatalf("resubmit decision: %v", err)
	}

	g2, err := svc.TiebreakerPlay(ctx, "alice", g.ID)
	if err != nil || g2.Status != dom.StatusActive {
		t.Fatalf("first play: %v status=%s", err, g2.Status)
	}

	g3, err := svc.TiebreakerPlay(ctx, "bob", g.ID)
	if err != nil {
		t.Fatalf("second play: %v", err)
	}
	if g3.Status != dom.StatusCompleted || g3.Winner == nil || *g3.Winner != "alice" {
		t.Fatalf("tiebreaker outcome: status=%s winner=%v", g3.Status, g3.Winner)
	}
	last := g3.History[len(g3.History)-1]
	if last.Winner != 1 || last.P1Score != 4 {
		t.Fatalf("tiebreaker record = %+v", last)
	}
}

func TestEnd_AbandonsAndArchives(t *testing.T) {
	t.Parallel()
	svc, _, arch := newTestService(t)
	ctx := context.Background()

	g, _ := svc.Create(ctx, "alice", "bob")
	_, _ = svc.Accept(ctx, "bob", g.ID)

	if _, err := svc.End(ctx, "mallory", g.ID); !perr.IsCode(err, perr.ErrorCodeForbidden) {
		t.Fatalf("outsider end: got %v, want forbidden", err)
	}

	g2, err := svc.End(ctx, "bob", g.ID)
	if err != nil || g2.Status != dom.StatusAbandoned {
		t.Fatalf("end: %v status=%s", err, g2.Status)
	}
	if !arch.has(g.ID) {
		t.Fatalf("abandoned game not archived")
	}

	// ending an already-terminal game is a no-op, not a conflict
	g3, err := svc.End(ctx, "alice", g.ID)
	if err != nil || g3.Status != dom.StatusAbandoned {
		t.Fatalf("repeat end: %v status=%s", err, g3.Status)
	}

	// a terminal game whose archive write was lost is repaired by end
	arch.mu.Lock()
	delete(arch.rows, g.ID)
	arch.mu.Unlock()
	if _, err := svc.End(ctx, "bob", g.ID); err != nil {
		t.Fatalf("end after lost archive: %v", err)
	}
	if !arch.has(g.ID) {
		t.Fatalf("archive row not backfilled")
	}
}
