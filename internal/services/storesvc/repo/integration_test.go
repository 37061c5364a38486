//go:build integration_pg
// +build integration_pg

package repo

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	perr "cardduel/internal/platform/errors"
	"cardduel/internal/platform/store"
	cardsdom "cardduel/internal/services/cards/domain"
	gamesdom "cardduel/internal/services/games/domain"
	identdom "cardduel/internal/services/identity/domain"
	logsdom "cardduel/internal/services/logs/domain"
)

// startPostgres launches a disposable Postgres and returns DSN + stop func
func startPostgres(t *testing.T) (dsn string, stop func()) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)

	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_DB":       "postgres",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections"),
		).WithDeadline(2 * time.Minute),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		cancel()
		t.Fatalf("failed to start postgres container: %v", err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get container host: %v", err)
	}
	mapped, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get mapped port: %v", err)
	}

	dsn = fmt.Sprintf("postgres://postgres:postgres@%s:%s/postgres?sslmode=disable", host, mapped.Port())
	stop = func() {
		_ = c.Terminate(context.Background())
		cancel()
	}
	return dsn, stop
}

// openStore opens a pooled TxRunner against a fresh container with the
// schema applied and the catalogue seeded
func openStore(t *testing.T, ctx context.Context) store.TxRunner {
	t.Helper()

	dsn, stop := startPostgres(t)
	t.Cleanup(stop)

	s, err := store.Open(ctx, store.Config{
		AppName: "cardduel-store-integration",
		PG:      store.PGConfig{Enabled: true, URL: dsn, MaxConns: 4},
	})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close(context.Background()) })

	// applying twice must be harmless
	for i := 0; i < 2; i++ {
		if err := EnsureSchema(ctx, s.PG); err != nil {
			t.Fatalf("ensure schema (pass %d): %v", i+1, err)
		}
		if err := SeedCards(ctx, s.PG); err != nil {
			t.Fatalf("seed cards (pass %d): %v", i+1, err)
		}
	}
	return s.PG
}

func TestCardSeed_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()
	run := openStore(t, ctx)

	catalog := store.MustBind(NewCards(), run)

	all, err := catalog.List(ctx)
	if err != nil {
		t.Fatalf("list cards: %v", err)
	}
	if len(all) != 39 {
		t.Fatalf("catalogue has %d cards, want 39", len(all))
	}

	rocks, err := catalog.BySuit(ctx, cardsdom.SuitRock)
	if err != nil {
		t.Fatalf("by suit: %v", err)
	}
	if len(rocks) != 13 {
		t.Fatalf("rock suit has %d cards, want 13", len(rocks))
	}
	powers := map[int]bool{}
	for _, c := range rocks {
		powers[c.Power] = true
	}
	if len(powers) != 13 {
		t.Fatalf("rock powers not unique: %v", powers)
	}

	first, err := catalog.ByID(ctx, all[0].ID)
	if err != nil || first.ID != all[0].ID {
		t.Fatalf("by id = %+v, %v", first, err)
	}
}

func TestAccountsLifecycle_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()
	run := openStore(t, ctx)

	accounts := store.MustBind(NewAccounts(), run)

	created, err := accounts.Create(ctx, "alice", "$2a$04$hash")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.Username != "alice" || !created.Enabled {
		t.Fatalf("created = %+v", created)
	}

	if _, err := accounts.Create(ctx, "alice", "$2a$04$other"); !perr.IsCode(err, perr.ErrorCodeDuplicateKey) {
		t.Fatalf("duplicate username: got %v, want duplicate key", err)
	}

	byID, err := accounts.ByID(ctx, created.ID)
	if err != nil || byID.Username != "alice" {
		t.Fatalf("by id = %+v, %v", byID, err)
	}
	if _, err := accounts.ByUsername(ctx, "nobody"); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("missing account: got %v, want not found", err)
	}

	ok, err := accounts.Exists(ctx, "alice")
	if err != nil || !ok {
		t.Fatalf("exists = %v, %v", ok, err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	for want := 1; want <= 2; want++ {
		n, err := accounts.RecordFailure(ctx, "alice", now)
		if err != nil || n != want {
			t.Fatalf("failure #%d = %d, %v", want, n, err)
		}
	}
	if err := accounts.Lock(ctx, "alice", now.Add(15*time.Minute)); err != nil {
		t.Fatalf("lock: %v", err)
	}
	locked, err := accounts.ByUsername(ctx, "alice")
	if err != nil || locked.LockUntil == nil || locked.FailedLogins != 2 {
		t.Fatalf("locked view = %+v, %v", locked, err)
	}

	if err := accounts.ResetFailures(ctx, "alice"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	reset, err := accounts.ByUsername(ctx, "alice")
	if err != nil || reset.FailedLogins != 0 || reset.LockUntil != nil {
		t.Fatalf("reset view = %+v, %v", reset, err)
	}

	if err := accounts.UpdatePassword(ctx, "nobody", "$2a$04$x"); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("update password for missing account: got %v, want not found", err)
	}
}

func TestSessionsLifecycle_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()
	run := openStore(t, ctx)

	accounts := store.MustBind(NewAccounts(), run)
	sessions := store.MustBind(NewSessions(), run)

	acct, err := accounts.Create(ctx, "alice", "$2a$04$hash")
	if err != nil {
		t.Fatalf("create account: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	stored, err := sessions.Store(ctx, identdom.Session{
		AccountID: acct.ID,
		Username:  "alice",
		Token:     "tok-1",
		Device:    identdom.Device{UserAgent: "cli/1.0", IP: "127.0.0.1", Label: "laptop"},
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("store session: %v", err)
	}
	if stored.ID == "" || stored.Token != "tok-1" || stored.Device.Label != "laptop" {
		t.Fatalf("stored = %+v", stored)
	}

	active, found, err := sessions.ActiveForAccount(ctx, acct.ID, now)
	if err != nil || !found || active.ID != stored.ID {
		t.Fatalf("active = %+v found=%v err=%v", active, found, err)
	}

	if err := sessions.Touch(ctx, stored.ID, now.Add(time.Minute)); err != nil {
		t.Fatalf("touch: %v", err)
	}
	touched, err := sessions.ByToken(ctx, "tok-1")
	if err != nil || touched.LastUsedAt == nil {
		t.Fatalf("touched = %+v, %v", touched, err)
	}

	if err := sessions.Revoke(ctx, "tok-1", now.Add(2*time.Minute)); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	// revoking the same token again is a no-op
	if err := sessions.Revoke(ctx, "tok-1", now.Add(3*time.Minute)); err != nil {
		t.Fatalf("revoke again: %v", err)
	}
	if _, found, err = sessions.ActiveForAccount(ctx, acct.ID, now); err != nil || found {
		t.Fatalf("active after revoke: found=%v err=%v", found, err)
	}

	if _, err := sessions.Store(ctx, identdom.Session{
		AccountID: acct.ID, Username: "alice", Token: "tok-2",
		IssuedAt: now, ExpiresAt: now.Add(time.Hour),
	}); err != nil {
		t.Fatalf("store second session: %v", err)
	}
	n, err := sessions.RevokeAll(ctx, acct.ID, now.Add(4*time.Minute))
	if err != nil || n != 1 {
		t.Fatalf("revoke all = %d, %v; want 1", n, err)
	}

	if _, err := sessions.ByToken(ctx, "gone"); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("missing token: got %v, want not found", err)
	}
}

func TestSingleSessionPolicy_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()
	run := openStore(t, ctx)

	accounts := store.MustBind(NewAccounts(), run)
	sessions := store.MustBind(NewSessions(), run)

	acct, err := accounts.Create(ctx, "alice", "$2a$04$hash")
	if err != nil {
		t.Fatalf("create account: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	session := func(token string, issued time.Time, ttl time.Duration) identdom.Session {
		return identdom.Session{
			AccountID: acct.ID, Username: "alice", Token: token,
			IssuedAt: issued, ExpiresAt: issued.Add(ttl),
		}
	}

	if _, err := sessions.Open(ctx, session("tok-1", now, time.Hour)); err != nil {
		t.Fatalf("first open: %v", err)
	}
	if _, err := sessions.Open(ctx, session("tok-2", now, time.Hour)); !perr.IsCode(err, perr.ErrorCodeConflict) {
		t.Fatalf("second open: got %v, want conflict", err)
	}
	// the index guards the raw insert path too
	if _, err := sessions.Store(ctx, session("tok-3", now, time.Hour)); !perr.IsCode(err, perr.ErrorCodeConflict) {
		t.Fatalf("store beside live session: got %v, want conflict", err)
	}

	if err := sessions.Revoke(ctx, "tok-1", now); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	// an expired but unrevoked credential must not block a new open
	if _, err := sessions.Store(ctx, session("tok-4", now.Add(-2*time.Hour), time.Hour)); err != nil {
		t.Fatalf("store expired session: %v", err)
	}
	if _, err := sessions.Open(ctx, session("tok-5", now, time.Hour)); err != nil {
		t.Fatalf("open past expired session: %v", err)
	}
	stale, err := sessions.ByToken(ctx, "tok-4")
	if err != nil || !stale.Revoked {
		t.Fatalf("expired session not revoked by open: %+v, %v", stale, err)
	}

	if err := sessions.Revoke(ctx, "tok-5", now); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	// concurrent opens race on the unique index; exactly one wins
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(token string) {
			defer wg.Done()
			_, err := sessions.Open(ctx, session(token, now, time.Hour))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case perr.IsCode(err, perr.ErrorCodeConflict):
				conflicts++
			default:
				t.Errorf("concurrent open: %v", err)
			}
		}(fmt.Sprintf("race-tok-%d", i))
	}
	wg.Wait()

	if wins != 1 || conflicts != 1 {
		t.Fatalf("wins=%d conflicts=%d, want exactly one of each", wins, conflicts)
	}
	if _, found, err := sessions.ActiveForAccount(ctx, acct.ID, now); err != nil || !found {
		t.Fatalf("no live session after race: found=%v err=%v", found, err)
	}
}

// testDeck is 22 concrete cards; composition checks live upstream
func testDeck() gamesdom.Deck {
	var d gamesdom.Deck
	for p := 1; p <= 13; p++ {
		d = append(d, gamesdom.Card{Suit: cardsdom.SuitRock, Power: p})
	}
	for p := 1; p <= 9; p++ {
		d = append(d, gamesdom.Card{Suit: cardsdom.SuitPaper, Power: p})
	}
	return d
}

func TestGameFlowAndArchiveFreeze_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()
	run := openStore(t, ctx)

	games := NewGames(run)
	archive := store.MustBind(NewArchive(), run)

	g, err := games.Create(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if g.Status != gamesdom.StatusPending || g.Turn != 1 {
		t.Fatalf("created = %+v", g)
	}

	// deck confirmation before accepting is out of phase
	if _, err := games.ConfirmDeck(ctx, g.ID, gamesdom.Seat1, testDeck()); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("confirm while pending: got %v, want invalid argument", err)
	}

	if g, err = games.Accept(ctx, g.ID); err != nil || g.Status != gamesdom.StatusDeckSelection {
		t.Fatalf("accept = %+v, %v", g, err)
	}
	// accepting twice conflicts on the pre-state
	if _, err := games.Accept(ctx, g.ID); !perr.IsCode(err, perr.ErrorCodeConflict) {
		t.Fatalf("double accept: got %v, want conflict", err)
	}

	if g, err = games.ConfirmDeck(ctx, g.ID, gamesdom.Seat1, testDeck()); err != nil || g.Status != gamesdom.StatusDeckSelection {
		t.Fatalf("first deck = %+v, %v", g, err)
	}
	if _, err := games.ConfirmDeck(ctx, g.ID, gamesdom.Seat1, testDeck()); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("re-confirm seat 1: got %v, want invalid argument", err)
	}
	if g, err = games.ConfirmDeck(ctx, g.ID, gamesdom.Seat2, testDeck()); err != nil || g.Status != gamesdom.StatusActive {
		t.Fatalf("second deck = %+v, %v", g, err)
	}

	for _, seat := range []gamesdom.Seat{gamesdom.Seat1, gamesdom.Seat2} {
		if g, err = games.DrawHand(ctx, g.ID, seat); err != nil {
			t.Fatalf("draw seat %d: %v", seat, err)
		}
		st := g.State(seat)
		if len(st.Hand) != gamesdom.HandSize || len(st.Deck) != 22-gamesdom.HandSize {
			t.Fatalf("seat %d after draw: hand %d deck %d", seat, len(st.Hand), len(st.Deck))
		}
	}
	if _, err := games.DrawHand(ctx, g.ID, gamesdom.Seat1); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("double draw: got %v, want invalid argument", err)
	}

	if g, err = games.PlayCard(ctx, g.ID, gamesdom.Seat1, 0); err != nil {
		t.Fatalf("seat 1 play: %v", err)
	}
	if !g.P1.HasPlayed || g.Turn != 1 {
		t.Fatalf("after first play = %+v", g)
	}
	if _, err := games.PlayCard(ctx, g.ID, gamesdom.Seat1, 0); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("replay seat 1: got %v, want invalid argument", err)
	}

	// second play resolves the round in the same transaction
	if g, err = games.PlayCard(ctx, g.ID, gamesdom.Seat2, 0); err != nil {
		t.Fatalf("seat 2 play: %v", err)
	}
	if g.Turn != 2 || len(g.History) != 1 {
		t.Fatalf("round not resolved: turn %d history %d", g.Turn, len(g.History))
	}
	if g.P1.HasPlayed || g.P2.HasPlayed || g.P1.Drawn || g.P2.Drawn {
		t.Fatalf("round state not cleared: %+v", g)
	}

	// freezing: an archive row blocks every further mutation
	if err := archive.Archive(ctx, gamesdom.ArchiveRecord{
		GameID: g.ID, Player1: "alice", Player2: "bob",
		P1Score: g.P1.Score, P2Score: g.P2.Score,
		Ciphertext: []byte("sealed"), MAC: "abcd",
		History: g.History,
	}); err != nil {
		t.Fatalf("archive: %v", err)
	}

	_, err = games.DrawHand(ctx, g.ID, gamesdom.Seat1)
	if !perr.IsCode(err, perr.ErrorCodeConflict) || !strings.Contains(err.Error(), gamesdom.ArchivedMessage) {
		t.Fatalf("mutation on archived game: got %v", err)
	}
	if _, err := games.Abandon(ctx, g.ID); !perr.IsCode(err, perr.ErrorCodeConflict) {
		t.Fatalf("abandon archived game: got %v, want conflict", err)
	}

	// archiving again keeps the original row
	if err := archive.Archive(ctx, gamesdom.ArchiveRecord{
		GameID: g.ID, Player1: "alice", Player2: "bob",
		P1Score: 99, P2Score: 99,
		Ciphertext: []byte("other"), MAC: "ffff",
	}); err != nil {
		t.Fatalf("second archive: %v", err)
	}
	rec, err := archive.Fetch(ctx, g.ID)
	if err != nil || rec.MAC != "abcd" || string(rec.Ciphertext) != "sealed" {
		t.Fatalf("fetched = %+v, %v", rec, err)
	}
	if ok, err := archive.IsArchived(ctx, g.ID); err != nil || !ok {
		t.Fatalf("is archived = %v, %v", ok, err)
	}

	if _, err := games.Get(ctx, uuid.NewString()); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("unknown id: got %v, want not found", err)
	}
	if _, err := games.Get(ctx, "not-a-uuid"); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("malformed id: got %v, want not found", err)
	}
}

func TestReportsQueries_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()
	run := openStore(t, ctx)

	archive := store.MustBind(NewArchive(), run)
	board := store.MustBind(NewLeaderboard(), run)
	visibility := store.MustBind(NewVisibility(), run)

	alice, bob := "alice", "bob"
	seed := []gamesdom.ArchiveRecord{
		{GameID: uuid.NewString(), Player1: alice, Player2: bob, P1Score: 5, P2Score: 3, Winner: &alice,
			Ciphertext: []byte("a"), MAC: "1"},
		{GameID: uuid.NewString(), Player1: alice, Player2: "carol", P1Score: 4, P2Score: 4,
			Ciphertext: []byte("b"), MAC: "2"},
		{GameID: uuid.NewString(), Player1: bob, Player2: "carol", P1Score: 6, P2Score: 2, Winner: &bob,
			Ciphertext: []byte("c"), MAC: "3"},
	}
	for _, rec := range seed {
		if err := archive.Archive(ctx, rec); err != nil {
			t.Fatalf("seed archive %s: %v", rec.GameID, err)
		}
	}

	ranking, err := board.Ranking(ctx, 10)
	if err != nil {
		t.Fatalf("ranking: %v", err)
	}
	if len(ranking) != 3 || ranking[0].Username != alice || ranking[0].Wins != 1 {
		t.Fatalf("ranking = %+v", ranking)
	}

	// opting out hides bob from the ranking but not from his own stats
	if err := visibility.Set(ctx, bob, false); err != nil {
		t.Fatalf("set visibility: %v", err)
	}
	if v, err := visibility.Get(ctx, bob); err != nil || v {
		t.Fatalf("visibility = %v, %v; want false", v, err)
	}
	if v, err := visibility.Get(ctx, "carol"); err != nil || !v {
		t.Fatalf("default visibility = %v, %v; want true", v, err)
	}

	ranking, err = board.Ranking(ctx, 10)
	if err != nil {
		t.Fatalf("ranking after opt-out: %v", err)
	}
	for _, e := range ranking {
		if e.Username == bob {
			t.Fatalf("opted-out player still ranked: %+v", ranking)
		}
	}

	stats, err := board.PlayerStats(ctx, bob, 5)
	if err != nil {
		t.Fatalf("player stats: %v", err)
	}
	if stats.Wins != 1 || stats.Losses != 1 || stats.Total != 2 || len(stats.Recent) != 2 {
		t.Fatalf("bob stats = %+v", stats)
	}

	recent, err := board.Recent(ctx, 2)
	if err != nil || len(recent) != 2 {
		t.Fatalf("recent = %+v, %v", recent, err)
	}

	agg, err := board.Aggregate(ctx)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if agg.TotalGames != 3 || agg.TotalPlayers != 3 || agg.TotalTies != 1 {
		t.Fatalf("aggregate = %+v", agg)
	}
}

func TestLogsQueries_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()
	run := openStore(t, ctx)

	logs := store.MustBind(NewLogs(), run)

	entries := []struct{ action, actor, details string }{
		{logsdom.ActionLoginSuccess, "alice", "device laptop"},
		{logsdom.ActionLoginFailed, "bob", "bad password"},
		{logsdom.ActionGameCompleted, "", "alice vs bob"},
	}
	for _, e := range entries {
		if err := logs.Record(ctx, e.action, e.actor, e.details); err != nil {
			t.Fatalf("record %s: %v", e.action, err)
		}
	}

	page, err := logs.List(ctx, 0, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 3 || len(page.Entries) != 2 {
		t.Fatalf("page = %+v", page)
	}
	// newest first
	if page.Entries[0].Action != logsdom.ActionGameCompleted {
		t.Fatalf("first entry = %+v", page.Entries[0])
	}
	// empty actor is stored as NULL
	if page.Entries[0].Actor != nil {
		t.Fatalf("blank actor persisted as %q", *page.Entries[0].Actor)
	}

	found, err := logs.Search(ctx, "login", 0, 10)
	if err != nil || found.Total != 2 {
		t.Fatalf("search = %+v, %v", found, err)
	}
	none, err := logs.Search(ctx, "nothing-matches", 0, 10)
	if err != nil || none.Total != 0 {
		t.Fatalf("empty search = %+v, %v", none, err)
	}
}
