package rpcclient

import (
	"context"
	"time"

	dom "cardduel/internal/services/identity/domain"
)

// Accounts drives the persistence adapter's account rpc surface
type Accounts struct{ c *Client }

// NewAccounts wraps a client for the account surface
func NewAccounts(c *Client) *Accounts { return &Accounts{c: c} }

var _ dom.AccountsPort = (*Accounts)(nil)

// Create inserts a new account row
func (a *Accounts) Create(ctx context.Context, username, passwordHash string) (dom.Account, error) {
	var out dom.Account
	err := a.c.call(ctx, "/rpc/accounts/create", map[string]string{
		"username": username, "password_hash": passwordHash,
	}, &out)
	return out, err
}

// ByUsername loads the account row by exact username
func (a *Accounts) ByUsername(ctx context.Context, username string) (dom.Account, error) {
	var out dom.Account
	err := a.c.call(ctx, "/rpc/accounts/by-username", map[string]string{"username": username}, &out)
	return out, err
}

// ByID loads the account row by id
func (a *Accounts) ByID(ctx context.Context, id string) (dom.Account, error) {
	var out dom.Account
	err := a.c.call(ctx, "/rpc/accounts/by-id", map[string]string{"id": id}, &out)
	return out, err
}

// Exists reports whether the username is registered
func (a *Accounts) Exists(ctx context.Context, username string) (bool, error) {
	var out struct {
		Exists bool `json:"exists"`
	}
	err := a.c.call(ctx, "/rpc/accounts/exists", map[string]string{"username": username}, &out)
	return out.Exists, err
}

// RecordFailure bumps the failed counter, returning the post-write value
func (a *Accounts) RecordFailure(ctx context.Context, username string, at time.Time) (int, error) {
	var out struct {
		FailedLogins int `json:"failed_logins"`
	}
	err := a.c.call(ctx, "/rpc/accounts/record-failure", map[string]any{
		"username": username, "at": at,
	}, &out)
	return out.FailedLogins, err
}

// Lock stamps the lock-until timestamp
func (a *Accounts) Lock(ctx context.Context, username string, until time.Time) error {
	return a.c.call(ctx, "/rpc/accounts/lock", map[string]any{
		"username": username, "until": until,
	}, nil)
}

// ResetFailures clears the counter and any lock
func (a *Accounts) ResetFailures(ctx context.Context, username string) error {
	return a.c.call(ctx, "/rpc/accounts/reset-failures", map[string]string{"username": username}, nil)
}

// UpdatePassword swaps the stored hash
func (a *Accounts) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	return a.c.call(ctx, "/rpc/accounts/update-password", map[string]string{
		"username": username, "password_hash": passwordHash,
	}, nil)
}

// Sessions drives the persistence adapter's refresh credential rpc surface
type Sessions struct{ c *Client }

// NewSessions wraps a client for the session surface
func NewSessions(c *Client) *Sessions { return &Sessions{c: c} }

var _ dom.SessionsPort = (*Sessions)(nil)

// sessionWire carries the token the domain type never serializes
type sessionWire struct {
	dom.Session
	Token string `json:"token"`
}

func (w sessionWire) session() dom.Session {
	s := w.Session
	s.Token = w.Token
	return s
}

// Open stores the credential under the single-session policy; a live
// credential for the account yields a conflict
func (s *Sessions) Open(ctx context.Context, in dom.Session) (dom.Session, error) {
	var out sessionWire
	err := s.c.call(ctx, "/rpc/sessions/open", map[string]any{
		"account_id": in.AccountID,
		"username":   in.Username,
		"token":      in.Token,
		"device":     in.Device,
		"issued_at":  in.IssuedAt,
		"expires_at": in.ExpiresAt,
	}, &out)
	return out.session(), err
}

// Store inserts the refresh credential row
func (s *Sessions) Store(ctx context.Context, in dom.Session) (dom.Session, error) {
	var out sessionWire
	err := s.c.call(ctx, "/rpc/sessions/store", map[string]any{
		"account_id": in.AccountID,
		"username":   in.Username,
		"token":      in.Token,
		"device":     in.Device,
		"issued_at":  in.IssuedAt,
		"expires_at": in.ExpiresAt,
	}, &out)
	return out.session(), err
}

// ByToken loads the session row holding the opaque token
func (s *Sessions) ByToken(ctx context.Context, token string) (dom.Session, error) {
	var out sessionWire
	err := s.c.call(ctx, "/rpc/sessions/by-token", map[string]string{"token": token}, &out)
	return out.session(), err
}

// ActiveForAccount returns the live session for the account, if any
func (s *Sessions) ActiveForAccount(ctx context.Context, accountID string, now time.Time) (dom.Session, bool, error) {
	var out struct {
		Found   bool        `json:"found"`
		Session sessionWire `json:"session"`
	}
	err := s.c.call(ctx, "/rpc/sessions/active", map[string]any{
		"account_id": accountID, "now": now,
	}, &out)
	return out.Session.session(), out.Found, err
}

// Touch stamps last use on refresh
func (s *Sessions) Touch(ctx context.Context, id string, at time.Time) error {
	return s.c.call(ctx, "/rpc/sessions/touch", map[string]any{"id": id, "at": at}, nil)
}

// Revoke marks the session holding token as revoked
func (s *Sessions) Revoke(ctx context.Context, token string, at time.Time) error {
	return s.c.call(ctx, "/rpc/sessions/revoke", map[string]any{"token": token, "at": at}, nil)
}

// RevokeAll revokes every live session for the account
func (s *Sessions) RevokeAll(ctx context.Context, accountID string, at time.Time) (int, error) {
	var out struct {
		Revoked int `json:"revoked"`
	}
	err := s.c.call(ctx, "/rpc/sessions/revoke-all", map[string]any{
		"account_id": accountID, "at": at,
	}, &out)
	return out.Revoked, err
}
