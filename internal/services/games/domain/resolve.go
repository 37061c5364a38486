package domain

// Compare decides a round between cards a and b
// Returns 1 when a wins, 2 when b wins, 0 on a full tie
func Compare(a, b Card) int {
	if a.Suit.Beats(b.Suit) {
		return 1
	}
	if b.Suit.Beats(a.Suit) {
		return 2
	}
	// same suit: higher power wins, except 1 beats 13
	if a.Power == b.Power {
		return 0
	}
	if a.Power == 1 && b.Power == 13 {
		return 1
	}
	if b.Power == 1 && a.Power == 13 {
		return 2
	}
	if a.Power > b.Power {
		return 1
	}
	return 2
}

// ResolveRound applies the auto-resolve step to g in place
// Both played cards must be set; the caller runs this inside the same
// transaction as the write that flipped the second played flag
func (g *Game) ResolveRound() {
	a, b := *g.P1.Played, *g.P2.Played

	winner := Compare(a, b)
	switch winner {
	case 1:
		g.P1.Score++
	case 2:
		g.P2.Score++
	}

	g.History = append(g.History, RoundRecord{
		Round:   g.Turn,
		P1Card:  a,
		P2Card:  b,
		Winner:  winner,
		P1Score: g.P1.Score,
		P2Score: g.P2.Score,
	})

	g.clearRoundState()
	g.applyEndConditions()
}

// clearRoundState resets the per-turn phase fields on both seats
func (g *Game) clearRoundState() {
	for _, st := range []*PlayerState{&g.P1, &g.P2} {
		st.Played = nil
		st.Hand = nil
		st.Drawn = false
		st.HasPlayed = false
	}
}

// applyEndConditions runs the consolidated post-resolve check
func (g *Game) applyEndConditions() {
	rounds := len(g.History)
	tied := g.P1.Score == g.P2.Score
	bothHaveCards := len(g.P1.Deck) >= 1 && len(g.P2.Deck) >= 1

	// 7th-round tie with playable decks pauses for the tiebreaker prompt
	if rounds == TiebreakerRound && tied && bothHaveCards {
		g.AwaitingTiebreaker = true
		return
	}

	// either deck too small for the next draw ends the game
	if len(g.P1.Deck) < HandSize || len(g.P2.Deck) < HandSize {
		switch {
		case !tied:
			g.complete(g.leader())
		case bothHaveCards:
			g.AwaitingTiebreaker = true
		default:
			g.complete(0) // draw, tiebreaker impossible
		}
		return
	}

	g.Turn++
}

// PlayTiebreaker pops the seat's top deck card as its played card
// When the second seat plays, the tiebreaker round resolves and the game
// completes; like normal play this runs under the row lock
func (g *Game) PlayTiebreaker(seat Seat) {
	st := g.State(seat)
	c := st.Deck[0]
	st.Deck = st.Deck[1:]
	st.Played = &c
	st.HasPlayed = true

	if g.P1.HasPlayed && g.P2.HasPlayed {
		g.resolveTiebreakerRound()
	}
}

// resolveTiebreakerRound records the tiebreaker round and completes the game
// A second tie completes as a draw
func (g *Game) resolveTiebreakerRound() {
	a, b := *g.P1.Played, *g.P2.Played

	winner := Compare(a, b)
	switch winner {
	case 1:
		g.P1.Score++
	case 2:
		g.P2.Score++
	}

	g.History = append(g.History, RoundRecord{
		Round:   g.Turn,
		P1Card:  a,
		P2Card:  b,
		Winner:  winner,
		P1Score: g.P1.Score,
		P2Score: g.P2.Score,
	})

	g.clearRoundState()
	g.complete(Seat(winner))
}

// DeclineTiebreaker completes the game as a draw
func (g *Game) DeclineTiebreaker() {
	g.clearRoundState()
	g.complete(0)
}

// leader returns the seat with the strictly higher score, or 0 on a tie
func (g *Game) leader() Seat {
	switch {
	case g.P1.Score > g.P2.Score:
		return Seat1
	case g.P2.Score > g.P1.Score:
		return Seat2
	}
	return 0
}

// complete transitions to the terminal completed state
// winner 0 records a draw
func (g *Game) complete(winner Seat) {
	g.Status = StatusCompleted
	g.AwaitingTiebreaker = false
	if winner != 0 {
		name := g.Name(winner)
		g.Winner = &name
	} else {
		g.Winner = nil
	}
}
