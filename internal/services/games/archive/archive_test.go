package archive

import (
	"bytes"
	"testing"
	"time"

	perr "cardduel/internal/platform/errors"
	"cardduel/internal/platform/testkit"
	cards "cardduel/internal/services/cards/domain"
	dom "cardduel/internal/services/games/domain"
)

func testKey() []byte {
	k := make([]byte, 32)
	for i := range k {
		k[i] = byte(i)
	}
	return k
}

func sampleSnapshot() dom.Snapshot {
	winner := "alice"
	return dom.Snapshot{
		GameID:      "7b2a2f5e-9f2a-4c8e-9b1e-0d5a3c1f2e4d",
		TurnsPlayed: 2,
		Player1: dom.PlayerSummary{
			Name:       "alice",
			FinalScore: 2,
			RemainingDeck: dom.Deck{
				{Suit: cards.SuitRock, Power: 4},
			},
		},
		Player2: dom.PlayerSummary{Name: "bob", FinalScore: 0},
		Winner:  &winner,
		History: []dom.RoundRecord{
			{Round: 1, P1Card: dom.Card{Suit: cards.SuitRock, Power: 9}, P2Card: dom.Card{Suit: cards.SuitScissors, Power: 13}, Winner: 1, P1Score: 1},
			{Round: 2, P1Card: dom.Card{Suit: cards.SuitPaper, Power: 1}, P2Card: dom.Card{Suit: cards.SuitPaper, Power: 13}, Winner: 1, P1Score: 2},
		},
		CreatedAt:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		ArchivedAt: time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC),
	}
}

func TestNewSealer_RejectsBadKey(t *testing.T) {
	t.Parallel()
	_, err := NewSealer(make([]byte, 16))
	testkit.MustErr(t, err)
	_, err = NewSealer(nil)
	testkit.MustErr(t, err)
}

func TestSealOpen_RoundTrip(t *testing.T) {
	t.Parallel()
	s, err := NewSealer(testKey())
	if err != nil {
		t.Fatalf("NewSealer: %v", err)
	}

	snap := sampleSnapshot()
	ct, mac, err := s.Seal(snap)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if len(ct) == 0 || mac == "" {
		t.Fatalf("empty ciphertext or mac")
	}

	got, err := s.Open(ct, mac)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got.GameID != snap.GameID || got.TurnsPlayed != snap.TurnsPlayed {
		t.Fatalf("snapshot fields lost: %+v", got)
	}
	if got.Winner == nil || *got.Winner != "alice" {
		t.Fatalf("winner lost: %v", got.Winner)
	}
	if len(got.History) != 2 || got.History[1].Winner != 1 {
		t.Fatalf("history lost: %+v", got.History)
	}
}

func TestOpen_TamperedCiphertext(t *testing.T) {
	t.Parallel()
	s, _ := NewSealer(testKey())
	ct, mac, err := s.Seal(sampleSnapshot())
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	tampered := bytes.Clone(ct)
	tampered[len(tampered)/2] ^= 0xff
	if _, err := s.Open(tampered, mac); !perr.IsCode(err, perr.ErrorCodeIntegrity) {
		t.Fatalf("tampered ciphertext: got %v, want integrity", err)
	}
}

func TestOpen_TamperedMAC(t *testing.T) {
	t.Parallel()
	s, _ := NewSealer(testKey())
	ct, mac, err := s.Seal(sampleSnapshot())
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	bad := "00" + mac[2:]
	if bad == mac {
		bad = "ff" + mac[2:]
	}
	if _, err := s.Open(ct, bad); !perr.IsCode(err, perr.ErrorCodeIntegrity) {
		t.Fatalf("tampered mac: got %v, want integrity", err)
	}
}

func TestOpen_WrongKey(t *testing.T) {
	t.Parallel()
	s1, _ := NewSealer(testKey())
	ct, mac, err := s1.Seal(sampleSnapshot())
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	other := testKey()
	other[0] ^= 1
	s2, _ := NewSealer(other)
	if _, err := s2.Open(ct, mac); !perr.IsCode(err, perr.ErrorCodeIntegrity) {
		t.Fatalf("wrong key: got %v, want integrity", err)
	}
}

func TestCanonical_Stable(t *testing.T) {
	t.Parallel()
	snap := sampleSnapshot()

	a, err := Canonical(snap)
	if err != nil {
		t.Fatalf("Canonical: %v", err)
	}
	b, err := Canonical(snap)
	if err != nil {
		t.Fatalf("Canonical: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("canonical form not stable:\n%s\n%s", a, b)
	}
}
