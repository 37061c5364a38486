// Package http exposes the persistence adapter's internal rpc surface.
// Every route lives under /rpc and is guarded by the trust plane; each
// surface is narrowed to the peer services that legitimately call it
package http

import (
	"net/http"
	"time"

	phttp "cardduel/internal/platform/net/http"
	"cardduel/internal/platform/net/middleware"
	"cardduel/internal/platform/store"
	"cardduel/internal/platform/trust"
	cardsdom "cardduel/internal/services/cards/domain"
	gamedom "cardduel/internal/services/games/domain"
	identdom "cardduel/internal/services/identity/domain"
	reportsdom "cardduel/internal/services/reports/domain"
	"cardduel/internal/services/storesvc/repo"
)

// Deps is everything the rpc surface needs
type Deps struct {
	Run  store.TxRunner
	Ring *trust.Keyring
}

// Mount registers the whole /rpc tree
func Mount(r phttp.Router, d Deps) {
	accounts := store.MustBind(repo.NewAccounts(), d.Run)
	sessions := store.MustBind(repo.NewSessions(), d.Run)
	archive := store.MustBind(repo.NewArchive(), d.Run)
	board := store.MustBind(repo.NewLeaderboard(), d.Run)
	visibility := store.MustBind(repo.NewVisibility(), d.Run)
	logs := store.MustBind(repo.NewLogs(), d.Run)
	catalog := store.MustBind(repo.NewCards(), d.Run)
	games := repo.NewGames(d.Run)

	r.Route("/rpc", func(rpc phttp.Router) {
		mountAccounts(rpc, accounts, d.Ring.Allow("identity", "games"))
		mountSessions(rpc, sessions, d.Ring.Allow("identity"))
		mountGames(rpc, games, archive, d.Ring.Allow("games"))
		mountCards(rpc, catalog, d.Ring.Allow("cards", "games"))
		mountReports(rpc, board, visibility, d.Ring.Allow("reports"))
		mountLogs(rpc, logs, d.Ring)
	})
}

// account rpc payloads

type usernameRequest struct {
	Username string `json:"username" validate:"required"`
}

type idRequest struct {
	ID string `json:"id" validate:"required"`
}

type createAccountRequest struct {
	Username     string `json:"username" validate:"required"`
	PasswordHash string `json:"password_hash" validate:"required"`
}

type recordFailureRequest struct {
	Username string    `json:"username" validate:"required"`
	At       time.Time `json:"at" validate:"required"`
}

type lockAccountRequest struct {
	Username string    `json:"username" validate:"required"`
	Until    time.Time `json:"until" validate:"required"`
}

type updatePasswordRequest struct {
	Username     string `json:"username" validate:"required"`
	PasswordHash string `json:"password_hash" validate:"required"`
}

func mountAccounts(r phttp.Router, accounts identdom.AccountsPort, guard middleware.ServicePort) {
	r.Route("/accounts", func(g phttp.Router) {
		g.Use(middleware.ServiceAuth(guard, phttp.JSON))

		phttp.PostJSON(g, "/create", func(r *http.Request, in createAccountRequest) (any, error) {
			return accounts.Create(r.Context(), in.Username, in.PasswordHash)
		})
		phttp.PostJSON(g, "/by-username", func(r *http.Request, in usernameRequest) (any, error) {
			return accounts.ByUsername(r.Context(), in.Username)
		})
		phttp.PostJSON(g, "/by-id", func(r *http.Request, in idRequest) (any, error) {
			return accounts.ByID(r.Context(), in.ID)
		})
		phttp.PostJSON(g, "/exists", func(r *http.Request, in usernameRequest) (any, error) {
			ok, err := accounts.Exists(r.Context(), in.Username)
			if err != nil {
				return nil, err
			}
			return map[string]bool{"exists": ok}, nil
		})
		phttp.PostJSON(g, "/record-failure", func(r *http.Request, in recordFailureRequest) (any, error) {
			count, err := accounts.RecordFailure(r.Context(), in.Username, in.At)
			if err != nil {
				return nil, err
			}
			return map[string]int{"failed_logins": count}, nil
		})
		phttp.PostJSON(g, "/lock", func(r *http.Request, in lockAccountRequest) (any, error) {
			return nil, accounts.Lock(r.Context(), in.Username, in.Until)
		})
		phttp.PostJSON(g, "/reset-failures", func(r *http.Request, in usernameRequest) (any, error) {
			return nil, accounts.ResetFailures(r.Context(), in.Username)
		})
		phttp.PostJSON(g, "/update-password", func(r *http.Request, in updatePasswordRequest) (any, error) {
			return nil, accounts.UpdatePassword(r.Context(), in.Username, in.PasswordHash)
		})
	})
}

// session rpc payloads

// storeSessionRequest carries the token explicitly since the domain type
// never serializes it
type storeSessionRequest struct {
	AccountID string          `json:"account_id" validate:"required"`
	Username  string          `json:"username" validate:"required"`
	Token     string          `json:"token" validate:"required"`
	Device    identdom.Device `json:"device"`
	IssuedAt  time.Time       `json:"issued_at" validate:"required"`
	ExpiresAt time.Time       `json:"expires_at" validate:"required"`
}

type tokenRequest struct {
	Token string `json:"token" validate:"required"`
}

type tokenAtRequest struct {
	Token string    `json:"token" validate:"required"`
	At    time.Time `json:"at" validate:"required"`
}

type activeSessionRequest struct {
	AccountID string    `json:"account_id" validate:"required"`
	Now       time.Time `json:"now" validate:"required"`
}

type touchSessionRequest struct {
	ID string    `json:"id" validate:"required"`
	At time.Time `json:"at" validate:"required"`
}

type revokeAllRequest struct {
	AccountID string    `json:"account_id" validate:"required"`
	At        time.Time `json:"at" validate:"required"`
}

// sessionWire is the rpc projection of a session including the token
type sessionWire struct {
	identdom.Session
	Token string `json:"token"`
}

func mountSessions(r phttp.Router, sessions identdom.SessionsPort, guard middleware.ServicePort) {
	r.Route("/sessions", func(g phttp.Router) {
		g.Use(middleware.ServiceAuth(guard, phttp.JSON))

		phttp.PostJSON(g, "/open", func(r *http.Request, in storeSessionRequest) (any, error) {
			s, err := sessions.Open(r.Context(), identdom.Session{
				AccountID: in.AccountID,
				Username:  in.Username,
				Token:     in.Token,
				Device:    in.Device,
				IssuedAt:  in.IssuedAt,
				ExpiresAt: in.ExpiresAt,
			})
			if err != nil {
				return nil, err
			}
			return sessionWire{Session: s, Token: s.Token}, nil
		})
		phttp.PostJSON(g, "/store", func(r *http.Request, in storeSessionRequest) (any, error) {
			s, err := sessions.Store(r.Context(), identdom.Session{
				AccountID: in.AccountID,
				Username:  in.Username,
				Token:     in.Token,
				Device:    in.Device,
				IssuedAt:  in.IssuedAt,
				ExpiresAt: in.ExpiresAt,
			})
			if err != nil {
				return nil, err
			}
			return sessionWire{Session: s, Token: s.Token}, nil
		})
		phttp.PostJSON(g, "/by-token", func(r *http.Request, in tokenRequest) (any, error) {
			s, err := sessions.ByToken(r.Context(), in.Token)
			if err != nil {
				return nil, err
			}
			return sessionWire{Session: s, Token: s.Token}, nil
		})
		phttp.PostJSON(g, "/active", func(r *http.Request, in activeSessionRequest) (any, error) {
			s, found, err := sessions.ActiveForAccount(r.Context(), in.AccountID, in.Now)
			if err != nil {
				return nil, err
			}
			return map[string]any{"found": found, "session": sessionWire{Session: s, Token: s.Token}}, nil
		})
		phttp.PostJSON(g, "/touch", func(r *http.Request, in touchSessionRequest) (any, error) {
			return nil, sessions.Touch(r.Context(), in.ID, in.At)
		})
		phttp.PostJSON(g, "/revoke", func(r *http.Request, in tokenAtRequest) (any, error) {
			return nil, sessions.Revoke(r.Context(), in.Token, in.At)
		})
		phttp.PostJSON(g, "/revoke-all", func(r *http.Request, in revokeAllRequest) (any, error) {
			n, err := sessions.RevokeAll(r.Context(), in.AccountID, in.At)
			if err != nil {
				return nil, err
			}
			return map[string]int{"revoked": n}, nil
		})
	})
}

// game rpc payloads

type createGameRequest struct {
	Creator string `json:"creator" validate:"required"`
	Invitee string `json:"invitee" validate:"required"`
}

type gameIDRequest struct {
	ID string `json:"id" validate:"required"`
}

type seatRequest struct {
	ID   string `json:"id" validate:"required"`
	Seat int    `json:"seat" validate:"required,oneof=1 2"`
}

type confirmDeckRequest struct {
	ID   string       `json:"id" validate:"required"`
	Seat int          `json:"seat" validate:"required,oneof=1 2"`
	Deck gamedom.Deck `json:"deck" validate:"required,min=1"`
}

type playCardRequest struct {
	ID        string `json:"id" validate:"required"`
	Seat      int    `json:"seat" validate:"required,oneof=1 2"`
	CardIndex *int   `json:"card_index" validate:"required,min=0"`
}

type tiebreakerDecisionRequest struct {
	ID     string `json:"id" validate:"required"`
	Seat   int    `json:"seat" validate:"required,oneof=1 2"`
	Accept *bool  `json:"accept" validate:"required"`
}

type archiveGameRequest struct {
	Record gamedom.ArchiveRecord `json:"record" validate:"required"`
}

func mountGames(r phttp.Router, games gamedom.StorePort, archive gamedom.ArchivePort, guard middleware.ServicePort) {
	r.Route("/games", func(g phttp.Router) {
		g.Use(middleware.ServiceAuth(guard, phttp.JSON))

		phttp.PostJSON(g, "/create", func(r *http.Request, in createGameRequest) (any, error) {
			return games.Create(r.Context(), in.Creator, in.Invitee)
		})
		phttp.PostJSON(g, "/get", func(r *http.Request, in gameIDRequest) (any, error) {
			return games.Get(r.Context(), in.ID)
		})
		phttp.PostJSON(g, "/accept", func(r *http.Request, in gameIDRequest) (any, error) {
			return games.Accept(r.Context(), in.ID)
		})
		phttp.PostJSON(g, "/ignore", func(r *http.Request, in gameIDRequest) (any, error) {
			return games.Ignore(r.Context(), in.ID)
		})
		phttp.PostJSON(g, "/cancel", func(r *http.Request, in gameIDRequest) (any, error) {
			return games.Cancel(r.Context(), in.ID)
		})
		phttp.PostJSON(g, "/abandon", func(r *http.Request, in gameIDRequest) (any, error) {
			return games.Abandon(r.Context(), in.ID)
		})
		phttp.PostJSON(g, "/confirm-deck", func(r *http.Request, in confirmDeckRequest) (any, error) {
			return games.ConfirmDeck(r.Context(), in.ID, gamedom.Seat(in.Seat), in.Deck)
		})
		phttp.PostJSON(g, "/draw-hand", func(r *http.Request, in seatRequest) (any, error) {
			return games.DrawHand(r.Context(), in.ID, gamedom.Seat(in.Seat))
		})
		phttp.PostJSON(g, "/play-card", func(r *http.Request, in playCardRequest) (any, error) {
			return games.PlayCard(r.Context(), in.ID, gamedom.Seat(in.Seat), *in.CardIndex)
		})
		phttp.PostJSON(g, "/tiebreaker-decision", func(r *http.Request, in tiebreakerDecisionRequest) (any, error) {
			return games.TiebreakerDecision(r.Context(), in.ID, gamedom.Seat(in.Seat), *in.Accept)
		})
		phttp.PostJSON(g, "/tiebreaker-play", func(r *http.Request, in seatRequest) (any, error) {
			return games.TiebreakerPlay(r.Context(), in.ID, gamedom.Seat(in.Seat))
		})
	})

	r.Route("/archive", func(g phttp.Router) {
		g.Use(middleware.ServiceAuth(guard, phttp.JSON))

		phttp.PostJSON(g, "/put", func(r *http.Request, in archiveGameRequest) (any, error) {
			return nil, archive.Archive(r.Context(), in.Record)
		})
		phttp.PostJSON(g, "/fetch", func(r *http.Request, in gameIDRequest) (any, error) {
			return archive.Fetch(r.Context(), in.ID)
		})
		phttp.PostJSON(g, "/exists", func(r *http.Request, in gameIDRequest) (any, error) {
			ok, err := archive.IsArchived(r.Context(), in.ID)
			if err != nil {
				return nil, err
			}
			return map[string]bool{"archived": ok}, nil
		})
	})
}

// card rpc payloads

type suitRequest struct {
	Suit string `json:"type" validate:"required,oneof=rock paper scissors"`
}

type cardIDRequest struct {
	ID int `json:"id" validate:"required,min=1"`
}

func mountCards(r phttp.Router, catalog cardsdom.CatalogPort, guard middleware.ServicePort) {
	r.Route("/cards", func(g phttp.Router) {
		g.Use(middleware.ServiceAuth(guard, phttp.JSON))

		phttp.PostCall(g, "/list", func(r *http.Request) (any, error) {
			return catalog.List(r.Context())
		})
		phttp.PostJSON(g, "/by-type", func(r *http.Request, in suitRequest) (any, error) {
			return catalog.BySuit(r.Context(), cardsdom.Suit(in.Suit))
		})
		phttp.PostJSON(g, "/by-id", func(r *http.Request, in cardIDRequest) (any, error) {
			return catalog.ByID(r.Context(), in.ID)
		})
	})
}

// reporting rpc payloads

type limitRequest struct {
	Limit int `json:"limit" validate:"min=0"`
}

type playerStatsRequest struct {
	Username    string `json:"username" validate:"required"`
	RecentLimit int    `json:"recent_limit" validate:"min=0"`
}

type setVisibilityRequest struct {
	Username string `json:"username" validate:"required"`
	Visible  *bool  `json:"visible" validate:"required"`
}

func mountReports(r phttp.Router, board reportsdom.LeaderboardPort, visibility reportsdom.VisibilityPort, guard middleware.ServicePort) {
	r.Route("/leaderboard", func(g phttp.Router) {
		g.Use(middleware.ServiceAuth(guard, phttp.JSON))

		phttp.PostJSON(g, "/ranking", func(r *http.Request, in limitRequest) (any, error) {
			return board.Ranking(r.Context(), in.Limit)
		})
		phttp.PostJSON(g, "/player", func(r *http.Request, in playerStatsRequest) (any, error) {
			return board.PlayerStats(r.Context(), in.Username, in.RecentLimit)
		})
		phttp.PostJSON(g, "/recent", func(r *http.Request, in limitRequest) (any, error) {
			return board.Recent(r.Context(), in.Limit)
		})
		phttp.PostCall(g, "/aggregate", func(r *http.Request) (any, error) {
			return board.Aggregate(r.Context())
		})
	})

	r.Route("/visibility", func(g phttp.Router) {
		g.Use(middleware.ServiceAuth(guard, phttp.JSON))

		phttp.PostJSON(g, "/get", func(r *http.Request, in usernameRequest) (any, error) {
			visible, err := visibility.Get(r.Context(), in.Username)
			if err != nil {
				return nil, err
			}
			return map[string]bool{"visible": visible}, nil
		})
		phttp.PostJSON(g, "/set", func(r *http.Request, in setVisibilityRequest) (any, error) {
			return nil, visibility.Set(r.Context(), in.Username, *in.Visible)
		})
	})
}

// log rpc payloads

type recordLogRequest struct {
	Action  string `json:"action" validate:"required"`
	Actor   string `json:"actor"`
	Details string `json:"details"`
}

type listLogsRequest struct {
	Offset int `json:"offset" validate:"min=0"`
	Limit  int `json:"limit" validate:"min=0"`
}

type searchLogsRequest struct {
	Query  string `json:"query" validate:"required"`
	Offset int    `json:"offset" validate:"min=0"`
	Limit  int    `json:"limit" validate:"min=0"`
}

func mountLogs(r phttp.Router, logs repo.LogStore, ring *trust.Keyring) {
	r.Route("/logs", func(g phttp.Router) {
		// append is open to every provisioned peer; reads stay with reports
		g.Group(func(w phttp.Router) {
			w.Use(middleware.ServiceAuth(ring, phttp.JSON))
			phttp.PostJSON(w, "/record", func(r *http.Request, in recordLogRequest) (any, error) {
				return nil, logs.Record(r.Context(), in.Action, in.Actor, in.Details)
			})
		})

		g.Group(func(ro phttp.Router) {
			ro.Use(middleware.ServiceAuth(ring.Allow("reports"), phttp.JSON))
			phttp.PostJSON(ro, "/list", func(r *http.Request, in listLogsRequest) (any, error) {
				return logs.List(r.Context(), in.Offset, in.Limit)
			})
			phttp.PostJSON(ro, "/search", func(r *http.Request, in searchLogsRequest) (any, error) {
				return logs.Search(r.Context(), in.Query, in.Offset, in.Limit)
			})
		})
	})
}
