package domain

// DrawFrom removes up to HandSize random cards from deck into a hand
// pick returns a random index in [0, n); the caller supplies the rng
// A short final hand is allowed; an empty deck yields an empty hand
func DrawFrom(deck Deck, pick func(n int) int) (Hand, Deck) {
	n := HandSize
	if len(deck) < n {
		n = len(deck)
	}
	remaining := make(Deck, len(deck))
	copy(remaining, deck)

	hand := make(Hand, 0, n)
	for range n {
		i := pick(len(remaining))
		hand = append(hand, remaining[i])
		remaining = append(remaining[:i], remaining[i+1:]...)
	}
	return hand, remaining
}
