// Package http mounts the card catalogue endpoints
package http

import (
	"net/http"
	"strconv"

	perr "cardduel/internal/platform/errors"
	phttp "cardduel/internal/platform/net/http"
	"cardduel/internal/platform/net/middleware"
	dom "cardduel/internal/services/cards/domain"
	"cardduel/internal/services/cards/service"
)

// RandomDeckRequest selects the sample size, defaulting to a full deck
type RandomDeckRequest struct {
	Size int `json:"size" validate:"omitempty,min=1,max=50"`
}

// DrawRequest asks for one random card of a suit (peer surface)
type DrawRequest struct {
	Type string `json:"type" validate:"required,oneof=rock paper scissors"`
}

// MountPublic registers the client-facing catalogue routes behind end-user auth
func MountPublic(r phttp.Router, svc *service.Service, auth middleware.AuthPort) {
	r.Group(func(g phttp.Router) {
		g.Use(middleware.Auth(auth, phttp.JSON))

		phttp.GetJSON(g, "/api/cards", func(r *http.Request) (any, error) {
			return svc.List(r.Context())
		})

		phttp.GetJSON(g, "/api/cards/stats", func(r *http.Request) (any, error) {
			return svc.Stats(r.Context())
		})

		phttp.GetJSON(g, "/api/cards/by-type/{suit}", func(r *http.Request) (any, error) {
			return svc.BySuit(r.Context(), dom.Suit(phttp.Param(r, "suit")))
		})

		phttp.GetJSON(g, "/api/cards/{id}", func(r *http.Request) (any, error) {
			id, err := strconv.Atoi(phttp.Param(r, "id"))
			if err != nil {
				return nil, perr.InvalidArgf("card id must be numeric")
			}
			return svc.ByID(r.Context(), id)
		})

		phttp.PostJSON(g, "/api/cards/random-deck", func(r *http.Request, in RandomDeckRequest) (any, error) {
			return svc.RandomDeck(r.Context(), in.Size)
		})
	})
}

// MountPeer registers the internal draw surface used during deck materialization
func MountPeer(r phttp.Router, svc *service.Service, peers middleware.ServicePort) {
	r.Group(func(g phttp.Router) {
		g.Use(middleware.ServiceAuth(peers, phttp.JSON))

		phttp.PostJSON(g, "/rpc/cards/draw", func(r *http.Request, in DrawRequest) (any, error) {
			return svc.RandomOfSuit(r.Context(), dom.Suit(in.Type))
		})
	})
}
