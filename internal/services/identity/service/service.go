// Package service implements the identity protocol: registration, lockout
// guarded login, single-session refresh credentials and revocation
package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	perr "cardduel/internal/platform/errors"
	"cardduel/internal/platform/logger"
	dom "cardduel/internal/services/identity/domain"
	"cardduel/internal/services/identity/token"
	logdom "cardduel/internal/services/logs/domain"
)

// Config tunes the lockout and credential lifetimes
type Config struct {
	LockoutThreshold int
	LockoutDuration  time.Duration
	RefreshTTL       time.Duration
	BcryptCost       int
}

// withDefaults fills unset fields
func (c Config) withDefaults() Config {
	if c.LockoutThreshold <= 0 {
		c.LockoutThreshold = dom.DefaultLockoutThreshold
	}
	if c.LockoutDuration <= 0 {
		c.LockoutDuration = dom.DefaultLockoutDuration
	}
	if c.RefreshTTL <= 0 {
		c.RefreshTTL = dom.DefaultRefreshTTL
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = bcrypt.DefaultCost
	}
	return c
}

// Service implements the identity operations
type Service struct {
	Accounts dom.AccountsPort
	Sessions dom.SessionsPort
	Tokens   *token.Issuer
	Audit    logdom.RecorderPort
	Cfg      Config
	Log      logger.Logger

	now func() time.Time
}

// New wires the identity service
func New(accounts dom.AccountsPort, sessions dom.SessionsPort, issuer *token.Issuer, audit logdom.RecorderPort, cfg Config, log logger.Logger) *Service {
	switch {
	case accounts == nil:
		panic("identity: nil accounts port")
	case sessions == nil:
		panic("identity: nil sessions port")
	case issuer == nil:
		panic("identity: nil token issuer")
	}
	return &Service{
		Accounts: accounts,
		Sessions: sessions,
		Tokens:   issuer,
		Audit:    audit,
		Cfg:      cfg.withDefaults(),
		Log:      log,
		now:      time.Now,
	}
}

// RegisterResult is the register response payload
type RegisterResult struct {
	AccountID string        `json:"account_id"`
	Username  string        `json:"username"`
	Tokens    dom.TokenPair `json:"tokens"`
}

// Register creates an account and opens its first session
func (s *Service) Register(ctx context.Context, username, password string, device dom.Device) (RegisterResult, error) {
	username, err := dom.NormalizeUsername(username)
	if err != nil {
		return RegisterResult{}, err
	}
	if err := dom.CheckPassword(password); err != nil {
		return RegisterResult{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.Cfg.BcryptCost)
	if err != nil {
		return RegisterResult{}, perr.Wrapf(err, perr.ErrorCodeUnknown, "hash password")
	}

	acct, err := s.Accounts.Create(ctx, username, string(hash))
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeDuplicateKey) {
			return RegisterResult{}, perr.Conflictf("username %q is taken", username)
		}
		return RegisterResult{}, err
	}

	pair, err := s.openSession(ctx, acct, device)
	if err != nil {
		return RegisterResult{}, err
	}

	s.audit(ctx, logdom.ActionAccountCreated, username, "")
	return RegisterResult{AccountID: acct.ID, Username: acct.Username, Tokens: pair}, nil
}

// Login authenticates and opens a session, enforcing lockout and the
// single-session policy
func (s *Service) Login(ctx context.Context, username, password string, device dom.Device) (dom.TokenPair, error) {
	username, err := dom.NormalizeUsername(username)
	if err != nil {
		return dom.TokenPair{}, err
	}
	now := s.now().UTC()

	acct, err := s.Accounts.ByUsername(ctx, username)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return dom.TokenPair{}, perr.Unauthorizedf("invalid username or password")
		}
		return dom.TokenPair{}, err
	}
	if !acct.Enabled {
		return dom.TokenPair{}, perr.Unauthorizedf("invalid username or password")
	}

	if acct.LockUntil != nil && acct.LockUntil.After(now) {
		return dom.TokenPair{}, s.lockedErr(*acct.LockUntil, now)
	}

	if bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)) != nil {
		return dom.TokenPair{}, s.recordFailure(ctx, username, now)
	}

	if err := s.Accounts.ResetFailures(ctx, username); err != nil {
		return dom.TokenPair{}, err
	}

	// the store rejects a second credential while one is live; decorate the
	// conflict with a redacted view of the session holding the account
	pair, err := s.openSession(ctx, acct, device)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeConflict) {
			if active, ok, aerr := s.Sessions.ActiveForAccount(ctx, acct.ID, now); aerr == nil && ok {
				err = perr.WithDetail(err, "active_session", active.Redact())
			}
		}
		return dom.TokenPair{}, err
	}
	s.audit(ctx, logdom.ActionLoginSuccess, username, device.Label)
	return pair, nil
}

// recordFailure bumps the counter, locks at the threshold, and shapes the
// client-facing error
func (s *Service) recordFailure(ctx context.Context, username string, now time.Time) error {
	count, err := s.Accounts.RecordFailure(ctx, username, now)
	if err != nil {
		return err
	}
	s.audit(ctx, logdom.ActionLoginFailed, username, fmt.Sprintf("attempt %d", count))

	if count >= s.Cfg.LockoutThreshold {
		until := now.Add(s.Cfg.LockoutDuration)
		if err := s.Accounts.Lock(ctx, username, until); err != nil {
			return err
		}
		s.audit(ctx, logdom.ActionAccountLocked, username, "")
		return s.lockedErr(until, now)
	}

	e := perr.Unauthorizedf("invalid username or password")
	return perr.WithDetail(e, "remaining_attempts", s.Cfg.LockoutThreshold-count)
}

// lockedErr shapes the locked response with the retry window
func (s *Service) lockedErr(until, now time.Time) error {
	e := perr.Lockedf("account is locked due to repeated failed logins")
	e = perr.WithDetail(e, "retry_after", int(until.Sub(now).Seconds()))
	return perr.WithDetail(e, "locked_until", until.UTC().Format(time.RFC3339))
}

// openSession issues the token pair and opens the refresh credential; the
// store enforces at most one live credential per account
func (s *Service) openSession(ctx context.Context, acct dom.Account, device dom.Device) (dom.TokenPair, error) {
	access, err := s.Tokens.Issue(acct.Username, acct.Admin)
	if err != nil {
		return dom.TokenPair{}, err
	}
	refresh, err := token.NewRefresh()
	if err != nil {
		return dom.TokenPair{}, err
	}

	now := s.now().UTC()
	if _, err := s.Sessions.Open(ctx, dom.Session{
		AccountID: acct.ID,
		Username:  acct.Username,
		Token:     refresh,
		Device:    device,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.Cfg.RefreshTTL),
	}); err != nil {
		return dom.TokenPair{}, err
	}

	return dom.TokenPair{Access: access, Refresh: refresh}, nil
}

// Refresh issues a new access token against a live refresh credential
// The refresh credential is not rotated
func (s *Service) Refresh(ctx context.Context, refresh string) (dom.TokenPair, error) {
	now := s.now().UTC()
	sess, err := s.Sessions.ByToken(ctx, refresh)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return dom.TokenPair{}, perr.Unauthorizedf("invalid refresh token")
		}
		return dom.TokenPair{}, err
	}
	if !sess.Live(now) {
		return dom.TokenPair{}, perr.Unauthorizedf("refresh token is revoked or expired")
	}

	acct, err := s.Accounts.ByID(ctx, sess.AccountID)
	if err != nil {
		return dom.TokenPair{}, perr.Unauthorizedf("invalid refresh token")
	}
	if !acct.Enabled {
		return dom.TokenPair{}, perr.Unauthorizedf("account is disabled")
	}

	if err := s.Sessions.Touch(ctx, sess.ID, now); err != nil {
		return dom.TokenPair{}, err
	}

	access, err := s.Tokens.Issue(acct.Username, acct.Admin)
	if err != nil {
		return dom.TokenPair{}, err
	}
	return dom.TokenPair{Access: access}, nil
}

// Logout revokes the presented refresh credential; with no credential it
// revokes all of the subject's sessions. Idempotent
func (s *Service) Logout(ctx context.Context, subject, refresh string) error {
	now := s.now().UTC()
	if refresh != "" {
		if err := s.Sessions.Revoke(ctx, refresh, now); err != nil && !perr.IsCode(err, perr.ErrorCodeNotFound) {
			return err
		}
		s.audit(ctx, logdom.ActionSessionRevoked, subject, "logout")
		return nil
	}
	if subject == "" {
		return perr.Unauthorizedf("nothing to revoke")
	}
	return s.RevokeAll(ctx, subject)
}

// RevokeAll marks every live refresh credential for the subject revoked
func (s *Service) RevokeAll(ctx context.Context, username string) error {
	acct, err := s.Accounts.ByUsername(ctx, username)
	if err != nil {
		return err
	}
	n, err := s.Sessions.RevokeAll(ctx, acct.ID, s.now().UTC())
	if err != nil {
		return err
	}
	s.audit(ctx, logdom.ActionSessionRevoked, username, fmt.Sprintf("revoked %d sessions", n))
	return nil
}

// Validate confirms an access token and that its subject is still enabled
// Used by peers through the trust plane
func (s *Service) Validate(ctx context.Context, access string) (string, bool, error) {
	subject, _, err := s.Tokens.Verify(access)
	if err != nil {
		return "", false, err
	}
	acct, err := s.Accounts.ByUsername(ctx, subject)
	if err != nil {
		return "", false, perr.Unauthorizedf("unknown subject")
	}
	if !acct.Enabled {
		return "", false, perr.Unauthorizedf("account is disabled")
	}
	return acct.Username, acct.Admin, nil
}

// Profile returns the subject's public account view
func (s *Service) Profile(ctx context.Context, username string) (dom.Profile, error) {
	acct, err := s.Accounts.ByUsername(ctx, username)
	if err != nil {
		return dom.Profile{}, err
	}
	return acct.Profile(), nil
}

// ChangePassword applies the policy, stores the new hash and revokes all
// of the subject's sessions
func (s *Service) ChangePassword(ctx context.Context, username, password string) error {
	if err := dom.CheckPassword(password); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.Cfg.BcryptCost)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "hash password")
	}
	if err := s.Accounts.UpdatePassword(ctx, username, string(hash)); err != nil {
		return err
	}
	s.audit(ctx, logdom.ActionPasswordChanged, username, "")
	return s.RevokeAll(ctx, username)
}

// audit appends a best-effort log entry
func (s *Service) audit(ctx context.Context, action, actor, details string) {
	if s.Audit == nil {
		return
	}
	if err := s.Audit.Record(ctx, action, actor, details); err != nil {
		s.Log.Warn().Err(err).Str("action", action).Msg("audit append failed")
	}
}
