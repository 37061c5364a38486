package rpcclient

import (
	"net/http"

	"cardduel/internal/platform/net/middleware"
	"cardduel/internal/services/identity/token"
)

// Auth validates end-user bearer tokens against the identity service's
// peer surface, so downstream services never hold the signing secret
type Auth struct{ c *Client }

// NewAuth wraps a client for remote token validation
func NewAuth(c *Client) *Auth { return &Auth{c: c} }

var _ middleware.AuthPort = (*Auth)(nil)

// Parse implements the middleware seam over /rpc/auth/validate
func (a *Auth) Parse(r *http.Request) (string, bool, error) {
	raw, err := token.FromHeader(r)
	if err != nil {
		return "", false, err
	}

	var out struct {
		Valid    bool   `json:"valid"`
		Username string `json:"username"`
		Admin    bool   `json:"is_admin"`
	}
	if err := a.c.call(r.Context(), "/rpc/auth/validate", map[string]string{"access_token": raw}, &out); err != nil {
		return "", false, err
	}
	return out.Username, out.Admin, nil
}
