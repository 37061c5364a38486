// Package http mounts the game coordinator endpoints
package http

import (
	"net/http"

	pnet "cardduel/internal/platform/net"
	phttp "cardduel/internal/platform/net/http"
	"cardduel/internal/platform/net/middleware"
	"cardduel/internal/services/games/service"
)

// CreateRequest opens an invitation
type CreateRequest struct {
	Player2Name string `json:"player2_name" validate:"required,username"`
}

// SelectDeckRequest names a suit for each of the 22 deck slots
type SelectDeckRequest struct {
	Deck []DeckEntry `json:"deck" validate:"required,len=22,dive"`
}

// DeckEntry is one composition slot
type DeckEntry struct {
	Type string `json:"type" validate:"required,oneof=rock paper scissors"`
}

// PlayRequest selects a hand card by index
type PlayRequest struct {
	CardIndex *int `json:"card_index" validate:"required,min=0"`
}

// DecisionRequest is the tiebreaker yes/no
type DecisionRequest struct {
	Decision string `json:"decision" validate:"required,oneof=yes no"`
}

// Mount registers the client-facing game routes behind end-user auth
func Mount(r phttp.Router, svc *service.Service, auth middleware.AuthPort) {
	r.Group(func(g phttp.Router) {
		g.Use(middleware.Auth(auth, phttp.JSON))

		phttp.PostJSON(g, "/api/games", func(r *http.Request, in CreateRequest) (any, error) {
			game, err := svc.Create(r.Context(), pnet.Subject(r.Context()), in.Player2Name)
			if err != nil {
				return nil, err
			}
			return phttp.Created(game), nil
		})

		phttp.GetJSON(g, "/api/games/{id}", func(r *http.Request) (any, error) {
			return svc.Get(r.Context(), pnet.Subject(r.Context()), phttp.Param(r, "id"))
		})

		phttp.PostCall(g, "/api/games/{id}/accept", func(r *http.Request) (any, error) {
			return svc.Accept(r.Context(), pnet.Subject(r.Context()), phttp.Param(r, "id"))
		})

		phttp.PostCall(g, "/api/games/{id}/ignore", func(r *http.Request) (any, error) {
			return svc.Ignore(r.Context(), pnet.Subject(r.Context()), phttp.Param(r, "id"))
		})

		phttp.PostCall(g, "/api/games/{id}/cancel", func(r *http.Request) (any, error) {
			return svc.Cancel(r.Context(), pnet.Subject(r.Context()), phttp.Param(r, "id"))
		})

		phttp.PostJSON(g, "/api/games/{id}/select-deck", func(r *http.Request, in SelectDeckRequest) (any, error) {
			composition := make([]string, len(in.Deck))
			for i, e := range in.Deck {
				composition[i] = e.Type
			}
			return svc.SelectDeck(r.Context(), pnet.Subject(r.Context()), phttp.Param(r, "id"), composition)
		})

		phttp.PostCall(g, "/api/games/{id}/draw-hand", func(r *http.Request) (any, error) {
			game, err := svc.Draw(r.Context(), pnet.Subject(r.Context()), phttp.Param(r, "id"))
			if err != nil {
				return nil, err
			}
			seat := game.SeatOf(pnet.Subject(r.Context()))
			return map[string]any{
				"game": game,
				"hand": game.State(seat).Hand,
			}, nil
		})

		phttp.PostJSON(g, "/api/games/{id}/play-card", func(r *http.Request, in PlayRequest) (any, error) {
			return svc.Play(r.Context(), pnet.Subject(r.Context()), phttp.Param(r, "id"), *in.CardIndex)
		})

		phttp.PostCall(g, "/api/games/{id}/resolve-round", func(r *http.Request) (any, error) {
			return svc.ResolveRound(r.Context(), pnet.Subject(r.Context()), phttp.Param(r, "id"))
		})

		phttp.PostJSON(g, "/api/games/{id}/tiebreaker-decision", func(r *http.Request, in DecisionRequest) (any, error) {
			return svc.TiebreakerDecision(r.Context(), pnet.Subject(r.Context()), phttp.Param(r, "id"), in.Decision == "yes")
		})

		phttp.PostCall(g, "/api/games/{id}/tiebreaker-play", func(r *http.Request) (any, error) {
			return svc.TiebreakerPlay(r.Context(), pnet.Subject(r.Context()), phttp.Param(r, "id"))
		})

		phttp.PostCall(g, "/api/games/{id}/end", func(r *http.Request) (any, error) {
			return svc.End(r.Context(), pnet.Subject(r.Context()), phttp.Param(r, "id"))
		})

		phttp.GetJSON(g, "/api/games/{id}/history", func(r *http.Request) (any, error) {
			return svc.History(r.Context(), pnet.Subject(r.Context()), phttp.Param(r, "id"))
		})
	})
}
