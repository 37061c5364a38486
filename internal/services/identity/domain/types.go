// Package domain defines the identity types, ports and credential policy
package domain

import "time"

// Account is the stored user row; the password hash never leaves the
// persistence boundary except into the verifier
type Account struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Admin        bool       `json:"is_admin"`
	Enabled      bool       `json:"is_enabled"`
	FailedLogins int        `json:"-"`
	LockUntil    *time.Time `json:"-"`
	LastFailedAt *time.Time `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Profile is the client-facing account view
type Profile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Admin     bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile projects the public fields
func (a Account) Profile() Profile {
	return Profile{ID: a.ID, Username: a.Username, Admin: a.Admin, CreatedAt: a.CreatedAt}
}

// Device describes where a session was opened from
type Device struct {
	UserAgent string `json:"user_agent"`
	IP        string `json:"ip"`
	Label     string `json:"device,omitempty"`
}

// Session is a stored refresh credential
type Session struct {
	ID         string     `json:"id"`
	AccountID  string     `json:"account_id"`
	Username   string     `json:"username"`
	Token      string     `json:"-"`
	Device     Device     `json:"device"`
	IssuedAt   time.Time  `json:"issued_at"`
	ExpiresAt  time.Time  `json:"expires_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	Revoked    bool       `json:"revoked"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
}

// Live reports whether the session is usable at now
func (s Session) Live(now time.Time) bool {
	return !s.Revoked && now.Before(s.ExpiresAt)
}

// SessionDescriptor is the redacted view returned on a session conflict
type SessionDescriptor struct {
	Device    string    `json:"device,omitempty"`
	IP        string    `json:"ip,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Redact builds the conflict descriptor from a live session
func (s Session) Redact() SessionDescriptor {
	return SessionDescriptor{Device: s.Device.Label, IP: s.Device.IP, CreatedAt: s.IssuedAt}
}

// TokenPair is the issued credential set
type TokenPair struct {
	Access  string `json:"access_token"`
	Refresh string `json:"refresh_token,omitempty"`
}

// Lockout policy defaults, tunable via config
const (
	DefaultLockoutThreshold = 3
	DefaultLockoutDuration  = 15 * time.Minute
	DefaultAccessTTL        = 24 * time.Hour
	DefaultRefreshTTL       = 30 * 24 * time.Hour
)
