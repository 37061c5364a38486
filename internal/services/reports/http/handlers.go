// Package http mounts the leaderboard and audit log endpoints
package http

import (
	"net/http"
	"strconv"

	pnet "cardduel/internal/platform/net"
	phttp "cardduel/internal/platform/net/http"
	"cardduel/internal/platform/net/middleware"
	logsvc "cardduel/internal/services/logs/service"
	"cardduel/internal/services/reports/service"
)

// VisibilityRequest toggles the subject's presence on the global ranking
type VisibilityRequest struct {
	Visible *bool `json:"visible" validate:"required"`
}

// queryInt parses an optional integer query parameter
func queryInt(r *http.Request, name string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return v
}

// Mount registers the leaderboard and log routes behind end-user auth
func Mount(r phttp.Router, reports *service.Service, logs *logsvc.Service, auth middleware.AuthPort) {
	r.Group(func(g phttp.Router) {
		g.Use(middleware.Auth(auth, phttp.JSON))

		phttp.GetJSON(g, "/api/leaderboard", func(r *http.Request) (any, error) {
			return reports.Ranking(r.Context(), queryInt(r, "limit"))
		})

		phttp.GetJSON(g, "/api/leaderboard/recent", func(r *http.Request) (any, error) {
			return reports.Recent(r.Context(), queryInt(r, "limit"))
		})

		phttp.GetJSON(g, "/api/leaderboard/stats", func(r *http.Request) (any, error) {
			return reports.Aggregate(r.Context())
		})

		phttp.GetJSON(g, "/api/leaderboard/player/{name}", func(r *http.Request) (any, error) {
			return reports.PlayerStats(r.Context(), phttp.Param(r, "name"))
		})

		phttp.GetJSON(g, "/api/leaderboard/visibility", func(r *http.Request) (any, error) {
			visible, err := reports.GetVisibility(r.Context(), pnet.Subject(r.Context()))
			if err != nil {
				return nil, err
			}
			return map[string]bool{"visible": visible}, nil
		})

		phttp.PutJSON(g, "/api/leaderboard/visibility", func(r *http.Request, in VisibilityRequest) (any, error) {
			if err := reports.SetVisibility(r.Context(), pnet.Subject(r.Context()), *in.Visible); err != nil {
				return nil, err
			}
			return map[string]bool{"visible": *in.Visible}, nil
		})

		phttp.GetJSON(g, "/api/logs/list", func(r *http.Request) (any, error) {
			ctx := r.Context()
			return logs.List(ctx, pnet.Subject(ctx), pnet.IsAdmin(ctx), queryInt(r, "offset"), queryInt(r, "limit"))
		})

		phttp.GetJSON(g, "/api/logs/search", func(r *http.Request) (any, error) {
			ctx := r.Context()
			return logs.Search(ctx, pnet.Subject(ctx), pnet.IsAdmin(ctx), r.URL.Query().Get("q"), queryInt(r, "offset"), queryInt(r, "limit"))
		})
	})
}
