package repo

import (
	"context"
	"time"

	perr "cardduel/internal/platform/errors"
	"cardduel/internal/platform/store"
	dom "cardduel/internal/services/identity/domain"
)

// AccountsPG binds the account repo to a querier
type AccountsPG struct{}

// NewAccounts returns the account repo binder
func NewAccounts() store.Binder[dom.AccountsPort] { return AccountsPG{} }

// Bind implements store.Binder
func (AccountsPG) Bind(q store.RowQuerier) dom.AccountsPort { return &accountQueries{q: q} }

type accountQueries struct{ q store.RowQuerier }

var _ dom.AccountsPort = (*accountQueries)(nil)

const accountColumns = `id, username, password_hash, is_admin, is_enabled,
	failed_logins, lock_until, last_failed_at, created_at`

func scanAccount(row store.Row) (dom.Account, error) {
	var a dom.Account
	err := row.Scan(
		&a.ID, &a.Username, &a.PasswordHash, &a.Admin, &a.Enabled,
		&a.FailedLogins, &a.LockUntil, &a.LastFailedAt, &a.CreatedAt,
	)
	return a, err
}

// Create inserts a new account row
func (r *accountQueries) Create(ctx context.Context, username, passwordHash string) (dom.Account, error) {
	row := r.q.QueryRow(ctx, `
		INSERT INTO users (username, password_hash)
		VALUES ($1, $2)
		RETURNING `+accountColumns, username, passwordHash)

	a, err := scanAccount(row)
	if err != nil {
		if perr.IsDuplicateKey(err) {
			return dom.Account{}, perr.DuplicateKeyf("username %q is taken", username)
		}
		return dom.Account{}, perr.Wrap(err, perr.ErrorCodeDB, "create account")
	}
	return a, nil
}

// ByUsername loads the account row by exact username
func (r *accountQueries) ByUsername(ctx context.Context, username string) (dom.Account, error) {
	row := r.q.QueryRow(ctx, `SELECT `+accountColumns+` FROM users WHERE username = $1`, username)
	a, err := scanAccount(row)
	if err != nil {
		if store.IsNoRows(err) {
			return dom.Account{}, perr.NotFoundf("account %q not found", username)
		}
		return dom.Account{}, perr.Wrap(err, perr.ErrorCodeDB, "account by username")
	}
	return a, nil
}

// ByID loads the account row by id
func (r *accountQueries) ByID(ctx context.Context, id string) (dom.Account, error) {
	row := r.q.QueryRow(ctx, `SELECT `+accountColumns+` FROM users WHERE id = $1`, id)
	a, err := scanAccount(row)
	if err != nil {
		if store.IsNoRows(err) || perr.IsSQLState(err, "22P02") {
			return dom.Account{}, perr.NotFoundf("account %s not found", id)
		}
		return dom.Account{}, perr.Wrap(err, perr.ErrorCodeDB, "account by id")
	}
	return a, nil
}

// Exists reports whether the username is registered
func (r *accountQueries) Exists(ctx context.Context, username string) (bool, error) {
	var ok bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username,
	).Scan(&ok)
	if err != nil {
		return false, perr.Wrap(err, perr.ErrorCodeDB, "account exists")
	}
	return ok, nil
}

// RecordFailure bumps the failed counter atomically, returning the new value
func (r *accountQueries) RecordFailure(ctx context.Context, username string, at time.Time) (int, error) {
	var count int
	err := r.q.QueryRow(ctx, `
		UPDATE users
		SET failed_logins = failed_logins + 1, last_failed_at = $2
		WHERE username = $1
		RETURNING failed_logins`, username, at).Scan(&count)
	if err != nil {
		if store.IsNoRows(err) {
			return 0, perr.NotFoundf("account %q not found", username)
		}
		return 0, perr.Wrap(err, perr.ErrorCodeDB, "record failure")
	}
	return count, nil
}

// Lock stamps the lock-until timestamp
func (r *accountQueries) Lock(ctx context.Context, username string, until time.Time) error {
	tag, err := r.q.Exec(ctx, `UPDATE users SET lock_until = $2 WHERE username = $1`, username, until)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "lock account")
	}
	if tag.RowsAffected() == 0 {
		return perr.NotFoundf("account %q not found", username)
	}
	return nil
}

// ResetFailures clears the counter and any lock
func (r *accountQueries) ResetFailures(ctx context.Context, username string) error {
	_, err := r.q.Exec(ctx, `
		UPDATE users
		SET failed_logins = 0, lock_until = NULL, last_failed_at = NULL
		WHERE username = $1`, username)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "reset failures")
	}
	return nil
}

// UpdatePassword swaps the stored hash
func (r *accountQueries) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	tag, err := r.q.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE username = $1`, username, passwordHash)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "update password")
	}
	if tag.RowsAffected() == 0 {
		return perr.NotFoundf("account %q not found", username)
	}
	return nil
}
