package repo

import (
	"context"
	"time"

	perr "cardduel/internal/platform/errors"
	"cardduel/internal/platform/store"
	dom "cardduel/internal/services/identity/domain"
)

// SessionsPG binds the refresh credential repo to a querier
type SessionsPG struct{}

// NewSessions returns the session repo binder
func NewSessions() store.Binder[dom.SessionsPort] { return SessionsPG{} }

// Bind implements store.Binder
func (SessionsPG) Bind(q store.RowQuerier) dom.SessionsPort { return &sessionQueries{q: q} }

type sessionQueries struct{ q store.RowQuerier }

var _ dom.SessionsPort = (*sessionQueries)(nil)

const sessionColumns = `id, account_id, username, token, user_agent, ip, device_label,
	issued_at, expires_at, last_used_at, revoked, revoked_at`

func scanSession(row store.Row) (dom.Session, error) {
	var s dom.Session
	err := row.Scan(
		&s.ID, &s.AccountID, &s.Username, &s.Token,
		&s.Device.UserAgent, &s.Device.IP, &s.Device.Label,
		&s.IssuedAt, &s.ExpiresAt, &s.LastUsedAt, &s.Revoked, &s.RevokedAt,
	)
	return s, err
}

// liveSessionIndex guards the single-session policy in the schema
const liveSessionIndex = "refresh_tokens_one_live_per_account_idx"

func (r *sessionQueries) insert(ctx context.Context, s dom.Session) (dom.Session, error) {
	row := r.q.QueryRow(ctx, `
		INSERT INTO refresh_tokens (account_id, username, token, user_agent, ip, device_label, issued_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+sessionColumns,
		s.AccountID, s.Username, s.Token,
		s.Device.UserAgent, s.Device.IP, s.Device.Label,
		s.IssuedAt, s.ExpiresAt)
	return scanSession(row)
}

// Open stores the credential while enforcing the single-session policy.
// Expired live rows are revoked first; the insert then races on the partial
// unique index, so even concurrent opens leave at most one live credential
func (r *sessionQueries) Open(ctx context.Context, s dom.Session) (dom.Session, error) {
	if _, err := r.q.Exec(ctx, `
		UPDATE refresh_tokens
		SET revoked = TRUE, revoked_at = $2
		WHERE account_id = $1 AND NOT revoked AND expires_at <= $2`,
		s.AccountID, s.IssuedAt); err != nil {
		return dom.Session{}, perr.Wrap(err, perr.ErrorCodeDB, "revoke expired sessions")
	}

	out, err := r.insert(ctx, s)
	if err != nil {
		return dom.Session{}, insertErr(err, "open session")
	}
	return out, nil
}

// Store inserts the refresh credential row without revoking expired ones;
// the live index still applies
func (r *sessionQueries) Store(ctx context.Context, s dom.Session) (dom.Session, error) {
	out, err := r.insert(ctx, s)
	if err != nil {
		return dom.Session{}, insertErr(err, "store session")
	}
	return out, nil
}

// insertErr classifies a failed credential insert
func insertErr(err error, op string) error {
	if pg, ok := perr.ExtractPgError(err); ok && pg.ConstraintName == liveSessionIndex {
		return perr.Conflictf("an active session already exists for this account")
	}
	if perr.IsDuplicateKey(err) {
		return perr.DuplicateKeyf("refresh token collision")
	}
	return perr.Wrap(err, perr.ErrorCodeDB, op)
}

// ByToken loads the session row holding the opaque token
func (r *sessionQueries) ByToken(ctx context.Context, token string) (dom.Session, error) {
	row := r.q.QueryRow(ctx, `SELECT `+sessionColumns+` FROM refresh_tokens WHERE token = $1`, token)
	s, err := scanSession(row)
	if err != nil {
		if store.IsNoRows(err) {
			return dom.Session{}, perr.NotFoundf("session not found")
		}
		return dom.Session{}, perr.Wrap(err, perr.ErrorCodeDB, "session by token")
	}
	return s, nil
}

// ActiveForAccount returns the live session for the account, if any
func (r *sessionQueries) ActiveForAccount(ctx context.Context, accountID string, now time.Time) (dom.Session, bool, error) {
	row := r.q.QueryRow(ctx, `
		SELECT `+sessionColumns+`
		FROM refresh_tokens
		WHERE account_id = $1 AND NOT revoked AND expires_at > $2
		ORDER BY issued_at DESC
		LIMIT 1`, accountID, now)

	s, err := scanSession(row)
	if err != nil {
		if store.IsNoRows(err) {
			return dom.Session{}, false, nil
		}
		return dom.Session{}, false, perr.Wrap(err, perr.ErrorCodeDB, "active session")
	}
	return s, true, nil
}

// Touch stamps last use on refresh
func (r *sessionQueries) Touch(ctx context.Context, id string, at time.Time) error {
	_, err := r.q.Exec(ctx, `UPDATE refresh_tokens SET last_used_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "touch session")
	}
	return nil
}

// Revoke marks the session holding token as revoked; already-revoked is a no-op
func (r *sessionQueries) Revoke(ctx context.Context, token string, at time.Time) error {
	_, err := r.q.Exec(ctx, `
		UPDATE refresh_tokens
		SET revoked = TRUE, revoked_at = $2
		WHERE token = $1 AND NOT revoked`, token, at)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "revoke session")
	}
	return nil
}

// RevokeAll revokes every live session for the account
func (r *sessionQueries) RevokeAll(ctx context.Context, accountID string, at time.Time) (int, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE refresh_tokens
		SET revoked = TRUE, revoked_at = $2
		WHERE account_id = $1 AND NOT revoked`, accountID, at)
	if err != nil {
		return 0, perr.Wrap(err, perr.ErrorCodeDB, "revoke all sessions")
	}
	return int(tag.RowsAffected()), nil
}
