package domain

import (
	"context"
	"time"
)

// AccountsPort is the account row surface on the persistence adapter
type AccountsPort interface {
	Create(ctx context.Context, username, passwordHash string) (Account, error)
	ByUsername(ctx context.Context, username string) (Account, error)
	ByID(ctx context.Context, id string) (Account, error)
	Exists(ctx context.Context, username string) (bool, error)

	// RecordFailure bumps the failed counter and stamps the failure time,
	// returning the post-write counter value
	RecordFailure(ctx context.Context, username string, at time.Time) (int, error)

	// Lock sets the lock-until timestamp
	Lock(ctx context.Context, username string, until time.Time) error

	// ResetFailures clears the counter and any lock
	ResetFailures(ctx context.Context, username string) error

	UpdatePassword(ctx context.Context, username, passwordHash string) error
}

// SessionsPort is the refresh credential surface on the persistence adapter
type SessionsPort interface {
	// Open stores the credential while atomically enforcing the
	// single-session policy: if a live credential already exists for the
	// account, nothing is inserted and a conflict is returned
	Open(ctx context.Context, s Session) (Session, error)

	Store(ctx context.Context, s Session) (Session, error)
	ByToken(ctx context.Context, token string) (Session, error)

	// ActiveForAccount returns the non-revoked, unexpired session for the
	// account, if one exists
	ActiveForAccount(ctx context.Context, accountID string, now time.Time) (Session, bool, error)

	Touch(ctx context.Context, id string, at time.Time) error
	Revoke(ctx context.Context, token string, at time.Time) error
	RevokeAll(ctx context.Context, accountID string, at time.Time) (int, error)
}
